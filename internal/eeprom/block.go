package eeprom

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies one of the closed set of block variants. The external
// registry assigns wire type ids to kinds; the set of kinds itself is fixed
// and matched exhaustively.
type Kind int

const (
	KindCapabilities Kind = iota
	KindBytes
	KindWords
	KindName
	KindLoader
	KindHardwareID
	KindCrypto
	KindRadioLink
	KindOneWireID
)

// String returns the canonical kind name as used in codes files.
func (k Kind) String() string {
	switch k {
	case KindCapabilities:
		return "capabilities"
	case KindBytes:
		return "bytes"
	case KindWords:
		return "words"
	case KindName:
		return "name"
	case KindLoader:
		return "loader"
	case KindHardwareID:
		return "hardware-id"
	case KindCrypto:
		return "crypto"
	case KindRadioLink:
		return "radio-link"
	case KindOneWireID:
		return "onewire-id"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KindByName maps a codes-file kind name back to its Kind.
func KindByName(name string) (Kind, bool) {
	for k := KindCapabilities; k <= KindOneWireID; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// singleInstance reports whether at most one block of this kind may exist
// in a container.
func (k Kind) singleInstance() bool {
	return k == KindCapabilities || k == KindName
}

// Block is the capability contract every variant implements. Field values
// cross this boundary as text: the command-line front end and the codes
// registry deal in human-readable names and literals, and each variant owns
// the parsing and formatting of its fields.
type Block interface {
	// Kind returns the variant tag.
	Kind() Kind

	// Pack serializes the current field values into a record payload.
	// It fails with ErrMissingField if a required field was never set and
	// with ErrValueCount if a fixed-arity variant holds the wrong number
	// of values.
	Pack() ([]byte, error)

	// Unpack populates the block from a record payload. Derived fields
	// are recomputed, never trusted verbatim beyond their validity check.
	Unpack(payload []byte) error

	// GetField returns the named field's value. Reading a field that was
	// never set fails with ErrMissingField.
	GetField(name string) (string, error)

	// SetField assigns the named field from a text literal.
	SetField(name, value string) error

	// FieldNames enumerates the displayable field names. For the
	// capabilities variant this is the currently-set capability names;
	// for all others it is the fixed declared list.
	FieldNames() []string
}

// Registry supplies the external name-to-identifier assignment the codec
// consumes: wire type ids for block variants and the ordered capability
// universe for the bitmask block. It is treated as immutable for the life
// of the process and passed by handle into codec calls.
type Registry interface {
	// BlockByID resolves a wire type id to its configured name and kind.
	BlockByID(id uint8) (name string, kind Kind, ok bool)

	// Capabilities returns the ordered capability names; the slice index
	// is the bitmask slot index.
	Capabilities() []string
}

// NewBlock constructs an empty block of the given kind. The capability name
// list (from Registry.Capabilities) is only consulted by KindCapabilities;
// other kinds ignore it.
func NewBlock(kind Kind, capabilities []string) Block {
	switch kind {
	case KindCapabilities:
		return newCapabilitiesBlock(capabilities)
	case KindBytes:
		return &arrayBlock{kind: KindBytes, width: 1}
	case KindWords:
		return &arrayBlock{kind: KindWords, width: 2}
	case KindName:
		return &nameBlock{}
	case KindLoader:
		return &loaderBlock{}
	case KindHardwareID:
		return &arrayBlock{kind: KindHardwareID, width: 1, arity: 8}
	case KindCrypto:
		return &arrayBlock{kind: KindCrypto, width: 1, arity: 16}
	case KindRadioLink:
		return &radioLinkBlock{}
	case KindOneWireID:
		return &oneWireIDBlock{}
	default:
		return nil
	}
}

// parseUint parses an integer literal (decimal, or hex/octal/binary with the
// usual prefixes) that must fit in bits.
func parseUint(field, value string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(value), 0, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidFieldValue, field, value)
	}
	return v, nil
}

// parseBool coerces a closed set of truthy/falsy literal tokens. Anything
// else fails with ErrInvalidBooleanLiteral.
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "y", "yes", "true", "on":
		return true, nil
	case "0", "n", "no", "false", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidBooleanLiteral, value)
	}
}
