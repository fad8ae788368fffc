package eeprom

import "errors"

// Codec failure modes. All are surfaced to the caller unwrapped or via %w;
// nothing is silently recovered. Corrupt input is never repaired or guessed
// at — a failed decode requires the caller to re-read or regenerate.
var (
	// ErrChecksumMismatch covers both the container CRC-16 gate and the
	// 1-Wire identity block's CRC-8 check.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrBadMagic means the blob does not start with a recognized magic.
	ErrBadMagic = errors.New("bad magic")

	// ErrUnknownBlockType means a record's type id has no registry entry,
	// usually a sign of version skew between writer and reader.
	ErrUnknownBlockType = errors.New("unknown block type")

	// ErrTrailingGarbage means the record framing is malformed: a record
	// runs past the end of the blob, the terminator is missing, or bytes
	// other than the terminator and trailer remain after the scan.
	ErrTrailingGarbage = errors.New("trailing garbage")

	// ErrEmptyBlockPayload means a block packed to zero bytes.
	ErrEmptyBlockPayload = errors.New("empty block payload")

	// ErrPayloadTooLarge means a block packed past the 255-byte record limit.
	ErrPayloadTooLarge = errors.New("block payload too large")

	// ErrMissingField means a required field was never set, or a never-set
	// field was read.
	ErrMissingField = errors.New("field not set")

	// ErrUnknownField means the field name is not declared by the block.
	ErrUnknownField = errors.New("unknown field")

	// ErrReadOnlyField means the field is derived and cannot be set.
	ErrReadOnlyField = errors.New("field is read-only")

	// ErrInvalidBooleanLiteral means a flag field was given a token outside
	// the accepted truthy/falsy sets.
	ErrInvalidBooleanLiteral = errors.New("invalid boolean literal")

	// ErrInvalidFieldValue means a field value is out of range or malformed.
	ErrInvalidFieldValue = errors.New("invalid field value")

	// ErrValueCount means a fixed-arity block holds the wrong number of
	// values, or a payload has the wrong length for its variant.
	ErrValueCount = errors.New("wrong value count")

	// ErrDuplicateBlock means a single-instance block kind was appended twice.
	ErrDuplicateBlock = errors.New("duplicate block")

	// ErrContainerSealed means Append or Encode was called on a container
	// that has already been encoded; both directions are one-shot.
	ErrContainerSealed = errors.New("container already encoded")
)
