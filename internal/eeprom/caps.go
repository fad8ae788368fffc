package eeprom

import (
	"fmt"
	"strconv"
)

// capabilitiesBlock is the sparse capability-count block: which device
// capabilities (1-Wire channel types, in bus terms) a device carries, and
// how many of each. The field universe and slot indices come from the
// registry's ordered capability list.
//
// Wire form, repeated per group of 8 slots up to the highest used index:
// one bitmask byte whose bit j-i is set iff slot j holds a nonzero count,
// followed by one count byte per set bit, low slot first. A block with no
// capability set packs as a single zero byte.
type capabilitiesBlock struct {
	names []string
	index map[string]int
	slots []uint8 // zero means unset
}

func newCapabilitiesBlock(names []string) *capabilitiesBlock {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return &capabilitiesBlock{
		names: names,
		index: idx,
		slots: make([]uint8, len(names)),
	}
}

func (b *capabilitiesBlock) Kind() Kind { return KindCapabilities }

func (b *capabilitiesBlock) Pack() ([]byte, error) {
	highest := -1
	for i, v := range b.slots {
		if v != 0 {
			highest = i
		}
	}
	if highest < 0 {
		return []byte{0}, nil
	}

	var out []byte
	for i := 0; i <= highest; i += 8 {
		var mask byte
		var values []byte
		for j := i; j < i+8 && j < len(b.slots); j++ {
			if b.slots[j] != 0 {
				mask |= 1 << (j - i)
				values = append(values, b.slots[j])
			}
		}
		out = append(out, mask)
		out = append(out, values...)
	}
	return out, nil
}

func (b *capabilitiesBlock) Unpack(payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyBlockPayload
	}

	slots := make([]uint8, len(b.slots))
	pos := 0
	for group := 0; pos < len(payload); group += 8 {
		mask := payload[pos]
		pos++
		for bit := 0; bit < 8; bit++ {
			if mask&(1<<bit) == 0 {
				continue
			}
			if pos >= len(payload) {
				return fmt.Errorf("%w: capability group %d truncated", ErrValueCount, group/8)
			}
			slot := group + bit
			if slot >= len(slots) {
				return fmt.Errorf("%w: capability index %d outside registry (%d names)",
					ErrInvalidFieldValue, slot, len(slots))
			}
			slots[slot] = payload[pos]
			pos++
		}
	}

	b.slots = slots
	return nil
}

func (b *capabilitiesBlock) GetField(name string) (string, error) {
	i, ok := b.index[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if b.slots[i] == 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	return strconv.Itoa(int(b.slots[i])), nil
}

func (b *capabilitiesBlock) SetField(name, value string) error {
	i, ok := b.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	v, err := parseUint(name, value, 8)
	if err != nil {
		return err
	}
	// A zero count clears the slot; its bit is simply absent on the wire.
	b.slots[i] = uint8(v)
	return nil
}

// FieldNames returns the currently-set capability names in slot order, not
// the full universe.
func (b *capabilitiesBlock) FieldNames() []string {
	var set []string
	for i, v := range b.slots {
		if v != 0 {
			set = append(set, b.names[i])
		}
	}
	return set
}
