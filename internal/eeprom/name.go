package eeprom

import (
	"fmt"
	"unicode/utf8"
)

// nameBlock carries the device's human-readable name as UTF-8 text.
// A container holds at most one.
type nameBlock struct {
	name string
	set  bool
}

func (b *nameBlock) Kind() Kind { return KindName }

func (b *nameBlock) Pack() ([]byte, error) {
	if !b.set {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}
	return []byte(b.name), nil
}

func (b *nameBlock) Unpack(payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyBlockPayload
	}
	if !utf8.Valid(payload) {
		return fmt.Errorf("%w: name is not valid UTF-8", ErrInvalidFieldValue)
	}
	b.name = string(payload)
	b.set = true
	return nil
}

func (b *nameBlock) GetField(name string) (string, error) {
	if name != "name" {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if !b.set {
		return "", fmt.Errorf("%w: name", ErrMissingField)
	}
	return b.name, nil
}

func (b *nameBlock) SetField(name, value string) error {
	if name != "name" {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if value == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidFieldValue)
	}
	b.name = value
	b.set = true
	return nil
}

func (b *nameBlock) FieldNames() []string { return []string{"name"} }
