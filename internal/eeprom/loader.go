package eeprom

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// loaderBlock is the boot loader descriptor: three big-endian 16-bit fields
// in a fixed 6-byte payload. The field widths are part of the wire contract.
type loaderBlock struct {
	start, size, crc uint16
	startSet         bool
	sizeSet          bool
	crcSet           bool
}

var loaderFields = []string{"start", "size", "crc"}

func (b *loaderBlock) Kind() Kind { return KindLoader }

func (b *loaderBlock) Pack() ([]byte, error) {
	if !b.startSet {
		return nil, fmt.Errorf("%w: start", ErrMissingField)
	}
	if !b.sizeSet {
		return nil, fmt.Errorf("%w: size", ErrMissingField)
	}
	if !b.crcSet {
		return nil, fmt.Errorf("%w: crc", ErrMissingField)
	}

	out := make([]byte, 6)
	binary.BigEndian.PutUint16(out[0:2], b.start)
	binary.BigEndian.PutUint16(out[2:4], b.size)
	binary.BigEndian.PutUint16(out[4:6], b.crc)
	return out, nil
}

func (b *loaderBlock) Unpack(payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyBlockPayload
	}
	if len(payload) != 6 {
		return fmt.Errorf("%w: loader payload must be 6 bytes, got %d", ErrValueCount, len(payload))
	}
	b.start = binary.BigEndian.Uint16(payload[0:2])
	b.size = binary.BigEndian.Uint16(payload[2:4])
	b.crc = binary.BigEndian.Uint16(payload[4:6])
	b.startSet, b.sizeSet, b.crcSet = true, true, true
	return nil
}

func (b *loaderBlock) GetField(name string) (string, error) {
	var v uint16
	var set bool
	switch name {
	case "start":
		v, set = b.start, b.startSet
	case "size":
		v, set = b.size, b.sizeSet
	case "crc":
		v, set = b.crc, b.crcSet
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if !set {
		return "", fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	return strconv.Itoa(int(v)), nil
}

func (b *loaderBlock) SetField(name, value string) error {
	switch name {
	case "start", "size", "crc":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	v, err := parseUint(name, value, 16)
	if err != nil {
		return err
	}
	switch name {
	case "start":
		b.start, b.startSet = uint16(v), true
	case "size":
		b.size, b.sizeSet = uint16(v), true
	case "crc":
		b.crc, b.crcSet = uint16(v), true
	}
	return nil
}

func (b *loaderBlock) FieldNames() []string { return loaderFields }
