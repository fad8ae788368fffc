package eeprom

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/moat-bus/moatcfg/internal/crc"
)

// testRegistry mirrors the stock codes assignment without depending on the
// codes package.
type testRegistry struct{}

var testBlocks = []struct {
	name string
	kind Kind
}{
	{"types", KindCapabilities},
	{"euid", KindHardwareID},
	{"rf12", KindRadioLink},
	{"crypto", KindCrypto},
	{"owid", KindOneWireID},
	{"name", KindName},
	{"loader", KindLoader},
	{"port", KindBytes},
	{"adc", KindWords},
}

func (testRegistry) BlockByID(id uint8) (string, Kind, bool) {
	if int(id) >= len(testBlocks) {
		return "", 0, false
	}
	return testBlocks[id].name, testBlocks[id].kind, true
}

func (testRegistry) Capabilities() []string { return testCaps }

func (testRegistry) id(name string) uint8 {
	for i, b := range testBlocks {
		if b.name == name {
			return uint8(i)
		}
	}
	panic("unknown test block " + name)
}

// reseal rewrites the CRC-16 trailer after test-side blob surgery.
func reseal(blob []byte) []byte {
	body := blob[:len(blob)-2]
	sum := crc.Crc16(body)
	return append(append([]byte{}, body...), byte(sum&0xFF), byte(sum>>8))
}

// buildTestContainer populates one block of every variant.
func buildTestContainer(t *testing.T, reg testRegistry) *Container {
	t.Helper()
	c := NewContainer()

	add := func(name string, fields map[string]string) {
		t.Helper()
		_, kind, _ := testRegistry{}.BlockByID(reg.id(name))
		b := NewBlock(kind, testCaps)
		for f, v := range fields {
			if err := b.SetField(f, v); err != nil {
				t.Fatalf("SetField(%s.%s, %q) error = %v", name, f, v, err)
			}
		}
		if err := c.Append(reg.id(name), name, b); err != nil {
			t.Fatalf("Append(%s) error = %v", name, err)
		}
	}

	add("types", map[string]string{"temp": "2", "smoke": "1"})
	add("euid", map[string]string{"values": "1 2 3 4 5 6 7 8"})
	add("rf12", map[string]string{"band": "868", "node": "5", "collect": "yes", "group": "12"})
	add("crypto", map[string]string{"values": "9 9 9 9 9 9 9 9 9 9 9 9 9 9 9 9"})
	add("owid", map[string]string{"type": "0x10", "serial": "010203040506"})
	add("name", map[string]string{"name": "cellar sensor"})
	add("loader", map[string]string{"start": "0x7000", "size": "4096", "crc": "43981"})
	add("port", map[string]string{"values": "3 1 4"})
	add("adc", map[string]string{"values": "1023 512"})
	return c
}

func TestContainerRoundTrip(t *testing.T) {
	reg := testRegistry{}
	c := buildTestContainer(t, reg)

	blob, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if !bytes.HasPrefix(blob, []byte(Magic)) {
		t.Errorf("blob starts with % x, want magic %q", blob[:4], Magic)
	}
	if crc.Crc16(blob) != 0 {
		t.Errorf("Crc16(blob) = 0x%04x, want 0", crc.Crc16(blob))
	}

	dec, err := Decode(blob, reg)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	// Record order survives the round-trip.
	if got, want := len(dec.Records()), len(c.Records()); got != want {
		t.Fatalf("decoded %d records, want %d", got, want)
	}
	for i, r := range dec.Records() {
		if r.TypeID != c.Records()[i].TypeID {
			t.Errorf("record %d type id = %d, want %d", i, r.TypeID, c.Records()[i].TypeID)
		}
		if r.Name != c.Records()[i].Name {
			t.Errorf("record %d name = %q, want %q", i, r.Name, c.Records()[i].Name)
		}
	}

	// Spot-check fields across variants.
	checks := []struct {
		block, field, want string
	}{
		{"types", "temp", "2"},
		{"types", "smoke", "1"},
		{"euid", "values", "1 2 3 4 5 6 7 8"},
		{"rf12", "band", "868"},
		{"rf12", "node", "5"},
		{"rf12", "collect", "true"},
		{"rf12", "group", "12"},
		{"owid", "serial", "010203040506"},
		{"name", "name", "cellar sensor"},
		{"loader", "size", "4096"},
		{"port", "values", "3 1 4"},
		{"adc", "values", "1023 512"},
	}
	for _, chk := range checks {
		b := dec.BlockByName(chk.block)
		if b == nil {
			t.Fatalf("decoded container has no block %q", chk.block)
		}
		got, err := b.GetField(chk.field)
		if err != nil {
			t.Errorf("%s.%s: GetField error = %v", chk.block, chk.field, err)
			continue
		}
		if got != chk.want {
			t.Errorf("%s.%s = %q, want %q", chk.block, chk.field, got, chk.want)
		}
	}
}

func TestContainerChecksumSensitivity(t *testing.T) {
	reg := testRegistry{}
	blob, err := buildTestContainer(t, reg).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// Any single-bit flip anywhere in the blob must fail the CRC-16 gate.
	for i := range blob {
		for bit := 0; bit < 8; bit++ {
			bad := append([]byte{}, blob...)
			bad[i] ^= 1 << bit
			if _, err := Decode(bad, reg); !errors.Is(err, ErrChecksumMismatch) {
				t.Fatalf("flip byte %d bit %d: Decode error = %v, want ErrChecksumMismatch", i, bit, err)
			}
		}
	}
}

func TestContainerEmptyEncode(t *testing.T) {
	reg := testRegistry{}
	blob, err := NewContainer().Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	// Magic, terminator, trailer; nothing else.
	if len(blob) != 7 {
		t.Errorf("empty container encodes to %d bytes, want 7", len(blob))
	}

	dec, err := Decode(blob, reg)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(dec.Records()) != 0 {
		t.Errorf("decoded %d records from empty container", len(dec.Records()))
	}
}

func TestContainerLegacyMagic(t *testing.T) {
	reg := testRegistry{}
	blob, err := buildTestContainer(t, reg).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	legacy := append([]byte{}, blob...)
	copy(legacy, LegacyMagic)
	legacy = reseal(legacy)

	dec, err := Decode(legacy, reg)
	if err != nil {
		t.Fatalf("Decode(legacy magic) error = %v", err)
	}

	want, err := Decode(blob, reg)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(dec.Records()) != len(want.Records()) {
		t.Fatalf("legacy decode has %d records, want %d", len(dec.Records()), len(want.Records()))
	}
	for i, r := range dec.Records() {
		a, _ := r.Block.Pack()
		b, _ := want.Records()[i].Block.Pack()
		if !bytes.Equal(a, b) {
			t.Errorf("record %d differs between legacy and canonical decode", i)
		}
	}
}

func TestContainerDecodeErrors(t *testing.T) {
	reg := testRegistry{}
	good, err := buildTestContainer(t, reg).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		wantErr error
	}{
		{
			name:    "unrecognized magic",
			mutate:  func(b []byte) []byte { copy(b, "XXXX"); return reseal(b) },
			wantErr: ErrBadMagic,
		},
		{
			name: "unknown block type",
			mutate: func(b []byte) []byte {
				b[5] = 99 // type id of the first record
				return reseal(b)
			},
			wantErr: ErrUnknownBlockType,
		},
		{
			name: "bytes after terminator",
			mutate: func(b []byte) []byte {
				body := b[:len(b)-2]
				body = append(body, 0xAA)
				return reseal(append(body, 0, 0))
			},
			wantErr: ErrTrailingGarbage,
		},
		{
			name: "record runs past the end",
			mutate: func([]byte) []byte {
				// Record claims 5 payload bytes but only 2 follow.
				return reseal(append([]byte("MoaT\x05\x07\x01\x02"), 0, 0))
			},
			wantErr: ErrTrailingGarbage,
		},
		{
			name:    "too short for a container",
			mutate:  func(b []byte) []byte { return b[:5] },
			wantErr: ErrTrailingGarbage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := tt.mutate(append([]byte{}, good...))
			if _, err := Decode(bad, reg); !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestContainerEncodeErrors(t *testing.T) {
	reg := testRegistry{}

	t.Run("empty block payload", func(t *testing.T) {
		c := NewContainer()
		b := NewBlock(KindBytes, nil)
		if err := b.SetField("values", ""); err != nil {
			t.Fatalf("SetField() error = %v", err)
		}
		if err := c.Append(reg.id("port"), "port", b); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if _, err := c.Encode(); !errors.Is(err, ErrEmptyBlockPayload) {
			t.Errorf("Encode() error = %v, want ErrEmptyBlockPayload", err)
		}
	})

	t.Run("payload too large", func(t *testing.T) {
		c := NewContainer()
		b := NewBlock(KindBytes, nil)
		if err := b.SetField("values", strings.TrimSpace(strings.Repeat("7 ", 256))); err != nil {
			t.Fatalf("SetField() error = %v", err)
		}
		if err := c.Append(reg.id("port"), "port", b); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if _, err := c.Encode(); !errors.Is(err, ErrPayloadTooLarge) {
			t.Errorf("Encode() error = %v, want ErrPayloadTooLarge", err)
		}
	})

	t.Run("incomplete block", func(t *testing.T) {
		c := NewContainer()
		if err := c.Append(reg.id("rf12"), "rf12", NewBlock(KindRadioLink, nil)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if _, err := c.Encode(); !errors.Is(err, ErrMissingField) {
			t.Errorf("Encode() error = %v, want ErrMissingField", err)
		}
	})
}

func TestContainerSingleInstance(t *testing.T) {
	reg := testRegistry{}
	c := NewContainer()

	n1 := NewBlock(KindName, nil)
	n1.SetField("name", "one")
	if err := c.Append(reg.id("name"), "name", n1); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	n2 := NewBlock(KindName, nil)
	n2.SetField("name", "two")
	if err := c.Append(reg.id("name"), "name", n2); !errors.Is(err, ErrDuplicateBlock) {
		t.Errorf("second Append(name) error = %v, want ErrDuplicateBlock", err)
	}

	// Repeated variable-length blocks are allowed.
	p1 := NewBlock(KindBytes, nil)
	p1.SetField("values", "1")
	p2 := NewBlock(KindBytes, nil)
	p2.SetField("values", "2")
	if err := c.Append(reg.id("port"), "port", p1); err != nil {
		t.Errorf("Append(port #1) error = %v", err)
	}
	if err := c.Append(reg.id("port"), "port", p2); err != nil {
		t.Errorf("Append(port #2) error = %v", err)
	}
}

func TestContainerOneShot(t *testing.T) {
	c := NewContainer()
	if _, err := c.Encode(); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if _, err := c.Encode(); !errors.Is(err, ErrContainerSealed) {
		t.Errorf("second Encode() error = %v, want ErrContainerSealed", err)
	}
	if err := c.Append(0, "types", NewBlock(KindCapabilities, testCaps)); !errors.Is(err, ErrContainerSealed) {
		t.Errorf("Append() after Encode() error = %v, want ErrContainerSealed", err)
	}
}
