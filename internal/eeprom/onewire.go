package eeprom

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/moat-bus/moatcfg/internal/crc"
)

// oneWireIDBlock is the 1-Wire device identity. Wire form, 8 bytes: family
// type byte, 6-byte serial, then the CRC-8 of the preceding seven bytes.
// The crc field is derived and read-only; a payload whose CRC-8 over all
// eight bytes is nonzero fails to unpack.
type oneWireIDBlock struct {
	family  uint8
	serial  [6]byte
	typeSet bool
	serSet  bool
}

var oneWireFields = []string{"type", "serial", "crc"}

func (b *oneWireIDBlock) Kind() Kind { return KindOneWireID }

func (b *oneWireIDBlock) Pack() ([]byte, error) {
	if !b.typeSet {
		return nil, fmt.Errorf("%w: type", ErrMissingField)
	}
	if !b.serSet {
		return nil, fmt.Errorf("%w: serial", ErrMissingField)
	}

	out := make([]byte, 8)
	out[0] = b.family
	copy(out[1:7], b.serial[:])
	out[7] = crc.Crc8(out[:7])
	return out, nil
}

func (b *oneWireIDBlock) Unpack(payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyBlockPayload
	}
	if len(payload) != 8 {
		return fmt.Errorf("%w: onewire-id payload must be 8 bytes, got %d", ErrValueCount, len(payload))
	}
	if crc.Crc8(payload) != 0 {
		return fmt.Errorf("%w: onewire-id CRC-8", ErrChecksumMismatch)
	}

	b.family = payload[0]
	copy(b.serial[:], payload[1:7])
	b.typeSet, b.serSet = true, true
	return nil
}

func (b *oneWireIDBlock) GetField(name string) (string, error) {
	switch name {
	case "type":
		if !b.typeSet {
			return "", fmt.Errorf("%w: type", ErrMissingField)
		}
		return strconv.Itoa(int(b.family)), nil
	case "serial":
		if !b.serSet {
			return "", fmt.Errorf("%w: serial", ErrMissingField)
		}
		return hex.EncodeToString(b.serial[:]), nil
	case "crc":
		// Always derived, never stored.
		if !b.typeSet || !b.serSet {
			return "", fmt.Errorf("%w: crc is derived from type and serial", ErrMissingField)
		}
		id := make([]byte, 7)
		id[0] = b.family
		copy(id[1:], b.serial[:])
		return strconv.Itoa(int(crc.Crc8(id))), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

func (b *oneWireIDBlock) SetField(name, value string) error {
	switch name {
	case "type":
		v, err := parseUint(name, value, 8)
		if err != nil {
			return err
		}
		b.family, b.typeSet = uint8(v), true
		return nil
	case "serial":
		raw, err := parseSerial(value)
		if err != nil {
			return err
		}
		b.serial, b.serSet = raw, true
		return nil
	case "crc":
		return fmt.Errorf("%w: crc", ErrReadOnlyField)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

func (b *oneWireIDBlock) FieldNames() []string { return oneWireFields }

// parseSerial accepts 12 hex digits with optional ':', '.', '-' or space
// separators, e.g. "010203040506" or "01:02:03:04:05:06".
func parseSerial(value string) ([6]byte, error) {
	var out [6]byte
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '.', '-', ' ':
			return -1
		}
		return r
	}, value)

	raw, err := hex.DecodeString(clean)
	if err != nil || len(raw) != 6 {
		return out, fmt.Errorf("%w: serial %q must be 6 hex bytes", ErrInvalidFieldValue, value)
	}
	copy(out[:], raw)
	return out, nil
}
