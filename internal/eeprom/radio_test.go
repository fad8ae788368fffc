package eeprom

import (
	"bytes"
	"errors"
	"testing"
)

func TestRadioLinkRoundTrip(t *testing.T) {
	b := NewBlock(KindRadioLink, nil)
	if err := b.SetField("band", "868"); err != nil {
		t.Fatalf("SetField(band) error = %v", err)
	}
	if err := b.SetField("node", "5"); err != nil {
		t.Fatalf("SetField(node) error = %v", err)
	}
	if err := b.SetField("collect", "yes"); err != nil {
		t.Fatalf("SetField(collect) error = %v", err)
	}

	payload, err := b.Pack()
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	// band code 2 in the top 2 bits, collect bit, node 5; group and
	// speed default to zero.
	want := []byte{0x80 | 0x20 | 0x05, 0x00, 0x00}
	if !bytes.Equal(payload, want) {
		t.Errorf("Pack() = % x, want % x", payload, want)
	}

	b2 := NewBlock(KindRadioLink, nil)
	if err := b2.Unpack(payload); err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	for field, wantVal := range map[string]string{
		"band":    "868",
		"node":    "5",
		"collect": "true",
		"group":   "0",
		"speed":   "0",
	} {
		got, err := b2.GetField(field)
		if err != nil {
			t.Errorf("GetField(%q) error = %v", field, err)
			continue
		}
		if got != wantVal {
			t.Errorf("GetField(%q) = %q, want %q", field, got, wantVal)
		}
	}
}

func TestRadioLinkBandLiterals(t *testing.T) {
	tests := []struct {
		literal string
		wantMHz string
		wantErr bool
	}{
		{literal: "1", wantMHz: "433"},
		{literal: "4", wantMHz: "433"},
		{literal: "433", wantMHz: "433"},
		{literal: "2", wantMHz: "868"},
		{literal: "8", wantMHz: "868"},
		{literal: "868", wantMHz: "868"},
		{literal: "3", wantMHz: "915"},
		{literal: "9", wantMHz: "915"},
		{literal: "915", wantMHz: "915"},
		{literal: "5", wantErr: true},
		{literal: "434", wantErr: true},
		{literal: "0", wantErr: true},
		{literal: "2400", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			b := NewBlock(KindRadioLink, nil)
			err := b.SetField("band", tt.literal)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFieldValue) {
					t.Errorf("SetField(band, %q) error = %v, want ErrInvalidFieldValue", tt.literal, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetField(band, %q) error = %v", tt.literal, err)
			}
			if got, _ := b.GetField("band"); got != tt.wantMHz {
				t.Errorf("GetField(band) = %q, want %q", got, tt.wantMHz)
			}
		})
	}
}

func TestRadioLinkCollectLiterals(t *testing.T) {
	truthy := []string{"1", "y", "yes", "true", "on", "YES", "On"}
	falsy := []string{"0", "n", "no", "false", "off", "No"}

	for _, lit := range truthy {
		b := NewBlock(KindRadioLink, nil)
		if err := b.SetField("collect", lit); err != nil {
			t.Errorf("SetField(collect, %q) error = %v", lit, err)
		} else if got, _ := b.GetField("collect"); got != "true" {
			t.Errorf("collect %q parsed to %q, want true", lit, got)
		}
	}
	for _, lit := range falsy {
		b := NewBlock(KindRadioLink, nil)
		if err := b.SetField("collect", lit); err != nil {
			t.Errorf("SetField(collect, %q) error = %v", lit, err)
		} else if got, _ := b.GetField("collect"); got != "false" {
			t.Errorf("collect %q parsed to %q, want false", lit, got)
		}
	}

	b := NewBlock(KindRadioLink, nil)
	if err := b.SetField("collect", "maybe"); !errors.Is(err, ErrInvalidBooleanLiteral) {
		t.Errorf("SetField(collect, maybe) error = %v, want ErrInvalidBooleanLiteral", err)
	}
}

func TestRadioLinkNodeRange(t *testing.T) {
	b := NewBlock(KindRadioLink, nil)
	if err := b.SetField("node", "31"); err != nil {
		t.Errorf("SetField(node, 31) error = %v", err)
	}
	if err := b.SetField("node", "32"); !errors.Is(err, ErrInvalidFieldValue) {
		t.Errorf("SetField(node, 32) error = %v, want ErrInvalidFieldValue", err)
	}
}

func TestRadioLinkPackRequiredFields(t *testing.T) {
	b := NewBlock(KindRadioLink, nil)
	b.SetField("band", "433")
	if _, err := b.Pack(); !errors.Is(err, ErrMissingField) {
		t.Errorf("Pack() without node error = %v, want ErrMissingField", err)
	}
}

func TestRadioLinkUnpackErrors(t *testing.T) {
	b := NewBlock(KindRadioLink, nil)
	if err := b.Unpack([]byte{0x45, 0x01}); !errors.Is(err, ErrValueCount) {
		t.Errorf("Unpack(2 bytes) error = %v, want ErrValueCount", err)
	}
	// Band code 0 is outside the translation table; rejected rather than
	// passed through.
	if err := b.Unpack([]byte{0x05, 0x01, 0x02}); !errors.Is(err, ErrInvalidFieldValue) {
		t.Errorf("Unpack(band code 0) error = %v, want ErrInvalidFieldValue", err)
	}
}
