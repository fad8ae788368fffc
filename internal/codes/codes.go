package codes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/moat-bus/moatcfg/internal/eeprom"
)

// file is the on-disk YAML shape of a codes table.
type file struct {
	Blocks []struct {
		Name string `yaml:"name"`
		Kind string `yaml:"kind"`
	} `yaml:"blocks"`
	Capabilities []string `yaml:"capabilities"`
}

// entry binds one configured block name to its variant kind. The slice
// index in Table.blocks is the wire type id.
type entry struct {
	Name string
	Kind eeprom.Kind
}

// Table is an immutable codes table. It satisfies eeprom.Registry.
type Table struct {
	blocks   []entry
	byName   map[string]uint8
	caps     []string
	capIndex map[string]int
}

// Load reads and validates a codes file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read codes file: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("codes file %s: %w", path, err)
	}
	return t, nil
}

// Parse builds a table from YAML codes data.
func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse codes YAML: %w", err)
	}
	if len(f.Blocks) == 0 {
		return nil, fmt.Errorf("codes table declares no blocks")
	}
	if len(f.Blocks) > 256 {
		return nil, fmt.Errorf("codes table declares %d blocks, the type id is one byte", len(f.Blocks))
	}

	t := &Table{
		byName:   make(map[string]uint8, len(f.Blocks)),
		caps:     f.Capabilities,
		capIndex: make(map[string]int, len(f.Capabilities)),
	}

	seenSingle := make(map[eeprom.Kind]string)
	for i, b := range f.Blocks {
		if b.Name == "" {
			return nil, fmt.Errorf("block %d has no name", i)
		}
		kind, ok := eeprom.KindByName(b.Kind)
		if !ok {
			return nil, fmt.Errorf("block %q: unknown kind %q", b.Name, b.Kind)
		}
		if _, dup := t.byName[b.Name]; dup {
			return nil, fmt.Errorf("block name %q declared twice", b.Name)
		}
		if kind == eeprom.KindCapabilities || kind == eeprom.KindName {
			if prev, dup := seenSingle[kind]; dup {
				return nil, fmt.Errorf("kind %s declared by both %q and %q, only one allowed", kind, prev, b.Name)
			}
			seenSingle[kind] = b.Name
		}
		t.byName[b.Name] = uint8(i)
		t.blocks = append(t.blocks, entry{Name: b.Name, Kind: kind})
	}

	for i, c := range f.Capabilities {
		if c == "" {
			return nil, fmt.Errorf("capability %d has no name", i)
		}
		if _, dup := t.capIndex[c]; dup {
			return nil, fmt.Errorf("capability %q declared twice", c)
		}
		t.capIndex[c] = i
	}
	return t, nil
}

// BlockByID resolves a wire type id. Part of eeprom.Registry.
func (t *Table) BlockByID(id uint8) (string, eeprom.Kind, bool) {
	if int(id) >= len(t.blocks) {
		return "", 0, false
	}
	e := t.blocks[id]
	return e.Name, e.Kind, true
}

// BlockByName resolves a configured block name to its type id and kind.
func (t *Table) BlockByName(name string) (uint8, eeprom.Kind, bool) {
	id, ok := t.byName[name]
	if !ok {
		return 0, 0, false
	}
	return id, t.blocks[id].Kind, true
}

// BlockNames returns the configured block names in type-id order.
func (t *Table) BlockNames() []string {
	names := make([]string, len(t.blocks))
	for i, e := range t.blocks {
		names[i] = e.Name
	}
	return names
}

// NewBlock constructs an empty block for a configured name.
func (t *Table) NewBlock(name string) (eeprom.Block, error) {
	_, kind, ok := t.BlockByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", eeprom.ErrUnknownBlockType, name)
	}
	return eeprom.NewBlock(kind, t.caps), nil
}

// Capabilities returns the ordered capability universe. Part of
// eeprom.Registry. The slice must not be modified.
func (t *Table) Capabilities() []string {
	return t.caps
}

// CapabilityIndex returns the bitmask slot of a capability name.
func (t *Table) CapabilityIndex(name string) (int, bool) {
	i, ok := t.capIndex[name]
	return i, ok
}

// defaultCodes is the stock MoaT assignment, used when no codes file is
// given on the command line.
const defaultCodes = `
blocks:
  - name: types
    kind: capabilities
  - name: euid
    kind: hardware-id
  - name: rf12
    kind: radio-link
  - name: crypto
    kind: crypto
  - name: owid
    kind: onewire-id
  - name: name
    kind: name
  - name: loader
    kind: loader
  - name: port
    kind: bytes
  - name: adc
    kind: words
capabilities: [alert, console, port, temp, humid, adc, pid, pwm, count]
`

// DefaultTable returns the built-in codes assignment.
func DefaultTable() *Table {
	t, err := Parse([]byte(defaultCodes))
	if err != nil {
		panic(fmt.Sprintf("built-in codes table invalid: %v", err))
	}
	return t
}
