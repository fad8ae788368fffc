package eeprom

import (
	"fmt"
	"strconv"
)

// radioLinkBlock is the RF link identity. Wire form, 3 bytes:
//
//	byte 0: band code (2 bits, high) | collect flag (1 bit) | node id (5 bits)
//	byte 1: logical group
//	byte 2: link speed
//
// Band is stored as a code {1,2,3} and surfaced as a frequency in MHz
// {433,868,915}. SetField accepts either form plus the single-digit
// shorthands {4,8,9}; anything else is rejected. Codes outside {1,2,3}
// in a stored payload are likewise rejected on decode.
type radioLinkBlock struct {
	band    uint8 // packed code 1..3
	node    uint8 // 0..31
	collect bool
	group   uint8
	speed   uint8

	bandSet bool
	nodeSet bool
}

var radioFields = []string{"band", "node", "collect", "group", "speed"}

// bandCodes normalizes accepted band literals to the packed code.
var bandCodes = map[uint64]uint8{
	1: 1, 4: 1, 433: 1,
	2: 2, 8: 2, 868: 2,
	3: 3, 9: 3, 915: 3,
}

// bandMHz translates packed codes back to frequencies.
var bandMHz = map[uint8]uint16{1: 433, 2: 868, 3: 915}

func (b *radioLinkBlock) Kind() Kind { return KindRadioLink }

func (b *radioLinkBlock) Pack() ([]byte, error) {
	if !b.bandSet {
		return nil, fmt.Errorf("%w: band", ErrMissingField)
	}
	if !b.nodeSet {
		return nil, fmt.Errorf("%w: node", ErrMissingField)
	}

	packed := b.band << 6
	if b.collect {
		packed |= 1 << 5
	}
	packed |= b.node & 0x1F
	return []byte{packed, b.group, b.speed}, nil
}

func (b *radioLinkBlock) Unpack(payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyBlockPayload
	}
	if len(payload) != 3 {
		return fmt.Errorf("%w: radio-link payload must be 3 bytes, got %d", ErrValueCount, len(payload))
	}

	code := payload[0] >> 6
	if _, ok := bandMHz[code]; !ok {
		return fmt.Errorf("%w: band code %d", ErrInvalidFieldValue, code)
	}

	// Derived fields are recomputed from the packed byte, not trusted.
	b.band = code
	b.collect = payload[0]&(1<<5) != 0
	b.node = payload[0] & 0x1F
	b.group = payload[1]
	b.speed = payload[2]
	b.bandSet, b.nodeSet = true, true
	return nil
}

func (b *radioLinkBlock) GetField(name string) (string, error) {
	switch name {
	case "band":
		if !b.bandSet {
			return "", fmt.Errorf("%w: band", ErrMissingField)
		}
		return strconv.Itoa(int(bandMHz[b.band])), nil
	case "node":
		if !b.nodeSet {
			return "", fmt.Errorf("%w: node", ErrMissingField)
		}
		return strconv.Itoa(int(b.node)), nil
	case "collect":
		return strconv.FormatBool(b.collect), nil
	case "group":
		return strconv.Itoa(int(b.group)), nil
	case "speed":
		return strconv.Itoa(int(b.speed)), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

func (b *radioLinkBlock) SetField(name, value string) error {
	switch name {
	case "band":
		v, err := parseUint(name, value, 16)
		if err != nil {
			return err
		}
		code, ok := bandCodes[v]
		if !ok {
			return fmt.Errorf("%w: band %d is not one of 433/868/915", ErrInvalidFieldValue, v)
		}
		b.band, b.bandSet = code, true
	case "node":
		v, err := parseUint(name, value, 8)
		if err != nil {
			return err
		}
		if v > 31 {
			return fmt.Errorf("%w: node %d exceeds 31", ErrInvalidFieldValue, v)
		}
		b.node, b.nodeSet = uint8(v), true
	case "collect":
		v, err := parseBool(value)
		if err != nil {
			return err
		}
		b.collect = v
	case "group":
		v, err := parseUint(name, value, 8)
		if err != nil {
			return err
		}
		b.group = uint8(v)
	case "speed":
		v, err := parseUint(name, value, 8)
		if err != nil {
			return err
		}
		b.speed = uint8(v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

func (b *radioLinkBlock) FieldNames() []string { return radioFields }
