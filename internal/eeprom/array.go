package eeprom

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// arrayBlock backs the four array-shaped variants: variable-length byte and
// word arrays, plus the fixed-arity hardware-id (8 bytes) and key-material
// (16 bytes) blocks. width is the per-value wire size in bytes; arity > 0
// pins the exact value count.
type arrayBlock struct {
	kind   Kind
	width  int
	arity  int
	values []uint16
	set    bool
}

func (b *arrayBlock) Kind() Kind { return b.kind }

func (b *arrayBlock) Pack() ([]byte, error) {
	if !b.set {
		return nil, fmt.Errorf("%w: values", ErrMissingField)
	}
	if b.arity > 0 && len(b.values) != b.arity {
		return nil, fmt.Errorf("%w: %s needs exactly %d values, have %d",
			ErrValueCount, b.kind, b.arity, len(b.values))
	}

	out := make([]byte, 0, len(b.values)*b.width)
	for _, v := range b.values {
		if b.width == 2 {
			out = binary.BigEndian.AppendUint16(out, v)
		} else {
			out = append(out, byte(v))
		}
	}
	return out, nil
}

func (b *arrayBlock) Unpack(payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyBlockPayload
	}
	if len(payload)%b.width != 0 {
		return fmt.Errorf("%w: %s payload of %d bytes is not a whole number of values",
			ErrValueCount, b.kind, len(payload))
	}
	n := len(payload) / b.width
	if b.arity > 0 && n != b.arity {
		return fmt.Errorf("%w: %s needs exactly %d values, payload has %d",
			ErrValueCount, b.kind, b.arity, n)
	}

	values := make([]uint16, n)
	for i := range values {
		if b.width == 2 {
			values[i] = binary.BigEndian.Uint16(payload[i*2:])
		} else {
			values[i] = uint16(payload[i])
		}
	}
	b.values = values
	b.set = true
	return nil
}

func (b *arrayBlock) GetField(name string) (string, error) {
	if name != "values" {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if !b.set {
		return "", fmt.Errorf("%w: values", ErrMissingField)
	}
	parts := make([]string, len(b.values))
	for i, v := range b.values {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, " "), nil
}

func (b *arrayBlock) SetField(name, value string) error {
	if name != "values" {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	fields := strings.Fields(value)
	values := make([]uint16, len(fields))
	for i, f := range fields {
		v, err := parseUint("values", f, b.width*8)
		if err != nil {
			return err
		}
		values[i] = uint16(v)
	}
	b.values = values
	b.set = true
	return nil
}

func (b *arrayBlock) FieldNames() []string { return []string{"values"} }
