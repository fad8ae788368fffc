package eeprom

import (
	"bytes"
	"fmt"

	"github.com/moat-bus/moatcfg/internal/crc"
)

// Container framing constants.
const (
	// Magic opens every encoded container.
	Magic = "MoaT"
	// LegacyMagic is the pre-rename magic, accepted on decode and
	// normalized to Magic.
	LegacyMagic = "DevC"

	// MaxPayload is the largest record payload the one-byte length
	// prefix can frame.
	MaxPayload = 255

	magicSize   = 4
	trailerSize = 3 // terminator byte + 2-byte CRC-16
)

// Record is one type-tagged entry of a container. The wire type id is
// assigned by the external registry; Name is the registry's human-readable
// name for it (empty for records appended without a registry at hand).
type Record struct {
	TypeID uint8
	Name   string
	Block  Block
}

// Container is an ordered sequence of records. Order is meaningful: it is
// preserved on round-trip and determines the EEPROM layout. A container is
// one-shot in either direction — built up and encoded once, or produced by
// a single decode.
type Container struct {
	records []Record
	sealed  bool
}

// NewContainer returns an empty container ready for Append.
func NewContainer() *Container {
	return &Container{}
}

// Append adds a record. Single-instance kinds (capabilities, name) may
// appear at most once; a second append fails with ErrDuplicateBlock.
func (c *Container) Append(id uint8, name string, b Block) error {
	if c.sealed {
		return ErrContainerSealed
	}
	if b.Kind().singleInstance() {
		for _, r := range c.records {
			if r.Block.Kind() == b.Kind() {
				return fmt.Errorf("%w: %s", ErrDuplicateBlock, b.Kind())
			}
		}
	}
	c.records = append(c.records, Record{TypeID: id, Name: name, Block: b})
	return nil
}

// Records returns the records in container order. The slice is shared;
// callers must not reorder it.
func (c *Container) Records() []Record {
	return c.records
}

// BlockByName returns the first record whose registry name matches, or nil.
func (c *Container) BlockByName(name string) Block {
	for _, r := range c.records {
		if r.Name == name {
			return r.Block
		}
	}
	return nil
}

// Encode serializes the container: magic, each record as
// [length][type id][payload], a zero terminator, and the CRC-16 trailer low
// byte first. Encoding seals the container; it cannot be encoded twice or
// appended to afterwards.
func (c *Container) Encode() ([]byte, error) {
	if c.sealed {
		return nil, ErrContainerSealed
	}

	out := []byte(Magic)
	for _, r := range c.records {
		payload, err := r.Block.Pack()
		if err != nil {
			return nil, fmt.Errorf("block %s (type %d): %w", r.Block.Kind(), r.TypeID, err)
		}
		if len(payload) == 0 {
			return nil, fmt.Errorf("%w: block %s (type %d)", ErrEmptyBlockPayload, r.Block.Kind(), r.TypeID)
		}
		if len(payload) > MaxPayload {
			return nil, fmt.Errorf("%w: block %s packs to %d bytes", ErrPayloadTooLarge, r.Block.Kind(), len(payload))
		}
		out = append(out, byte(len(payload)), r.TypeID)
		out = append(out, payload...)
	}
	out = append(out, 0)

	sum := crc.Crc16(out)
	out = append(out, byte(sum&0xFF), byte(sum>>8))

	c.sealed = true
	return out, nil
}

// Decode validates and disassembles an encoded blob into a container, using
// the registry to resolve type ids to block variants.
//
// The whole-blob CRC-16 is checked first: the trailer was computed over
// everything before it, so the CRC of the intact blob is zero and any bit
// corruption anywhere fails here, not per record.
func Decode(data []byte, reg Registry) (*Container, error) {
	if len(data) < magicSize+trailerSize {
		return nil, fmt.Errorf("%w: %d bytes is below the minimum container size", ErrTrailingGarbage, len(data))
	}
	if crc.Crc16(data) != 0 {
		return nil, fmt.Errorf("%w: container CRC-16", ErrChecksumMismatch)
	}

	if bytes.HasPrefix(data, []byte(LegacyMagic)) {
		// Normalize the legacy magic; the framing is otherwise identical.
		data = append([]byte(Magic), data[magicSize:]...)
	}
	if !bytes.HasPrefix(data, []byte(Magic)) {
		return nil, fmt.Errorf("%w: % x", ErrBadMagic, data[:magicSize])
	}

	c := NewContainer()
	offset := magicSize
	for offset < len(data) && data[offset] != 0 {
		if offset+2 > len(data) {
			return nil, fmt.Errorf("%w: record header truncated at offset %d", ErrTrailingGarbage, offset)
		}
		length := int(data[offset])
		typeID := data[offset+1]

		name, kind, ok := reg.BlockByID(typeID)
		if !ok {
			return nil, fmt.Errorf("%w: type id %d at offset %d", ErrUnknownBlockType, typeID, offset)
		}
		if offset+2+length > len(data) {
			return nil, fmt.Errorf("%w: record at offset %d runs past the end", ErrTrailingGarbage, offset)
		}

		b := NewBlock(kind, reg.Capabilities())
		if err := b.Unpack(data[offset+2 : offset+2+length]); err != nil {
			return nil, fmt.Errorf("block %s (type %d): %w", kind, typeID, err)
		}
		if err := c.Append(typeID, name, b); err != nil {
			return nil, err
		}
		offset += 2 + length
	}

	if offset >= len(data) {
		return nil, fmt.Errorf("%w: terminator missing", ErrTrailingGarbage)
	}
	// Exactly the terminator and the two trailer bytes may remain.
	if len(data)-offset != trailerSize {
		return nil, fmt.Errorf("%w: %d bytes after the record scan, want %d",
			ErrTrailingGarbage, len(data)-offset, trailerSize)
	}
	return c, nil
}
