package eeprom

import (
	"bytes"
	"errors"
	"testing"
)

// testCaps is an eleven-name capability universe so tests can reach the
// second bitmask group.
var testCaps = []string{
	"alert", "console", "port", "temp", "humid",
	"adc", "pid", "pwm", "count", "button", "smoke",
}

func TestCapabilitiesPack(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]string
		want []byte
	}{
		{
			name: "nothing set packs one zero byte",
			set:  nil,
			want: []byte{0x00},
		},
		{
			name: "first slot only",
			set:  map[string]string{"alert": "1"},
			want: []byte{0x01, 0x01},
		},
		{
			name: "two slots in first group",
			set:  map[string]string{"console": "1", "temp": "3"},
			want: []byte{0x0A, 0x01, 0x03},
		},
		{
			name: "slot in second group only",
			set:  map[string]string{"smoke": "2"},
			// Empty group 0 still emits its mask byte; slot 10 is bit 2
			// of the group starting at 8.
			want: []byte{0x00, 0x04, 0x02},
		},
		{
			name: "both groups populated",
			set:  map[string]string{"pwm": "1", "count": "4", "smoke": "2"},
			want: []byte{0x80, 0x01, 0x05, 0x04, 0x02},
		},
		{
			name: "zero count clears a slot",
			set:  map[string]string{"temp": "2", "smoke": "0"},
			want: []byte{0x08, 0x02},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newCapabilitiesBlock(testCaps)
			for name, value := range tt.set {
				if err := b.SetField(name, value); err != nil {
					t.Fatalf("SetField(%q, %q) error = %v", name, value, err)
				}
			}
			got, err := b.Pack()
			if err != nil {
				t.Fatalf("Pack() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Pack() = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestCapabilitiesRoundTrip(t *testing.T) {
	b := newCapabilitiesBlock(testCaps)
	for name, value := range map[string]string{"temp": "2", "adc": "4", "smoke": "1"} {
		if err := b.SetField(name, value); err != nil {
			t.Fatalf("SetField(%q) error = %v", name, err)
		}
	}

	payload, err := b.Pack()
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	b2 := newCapabilitiesBlock(testCaps)
	if err := b2.Unpack(payload); err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}

	for name, want := range map[string]string{"temp": "2", "adc": "4", "smoke": "1"} {
		got, err := b2.GetField(name)
		if err != nil {
			t.Errorf("GetField(%q) error = %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("GetField(%q) = %q, want %q", name, got, want)
		}
	}

	// Never-set slots read as missing.
	if _, err := b2.GetField("console"); !errors.Is(err, ErrMissingField) {
		t.Errorf("GetField(console) error = %v, want ErrMissingField", err)
	}
}

func TestCapabilitiesFieldNames(t *testing.T) {
	b := newCapabilitiesBlock(testCaps)

	if names := b.FieldNames(); len(names) != 0 {
		t.Errorf("FieldNames() on empty block = %v, want none", names)
	}

	b.SetField("smoke", "1")
	b.SetField("temp", "2")

	// Currently-set names only, in slot order.
	want := []string{"temp", "smoke"}
	got := b.FieldNames()
	if len(got) != len(want) {
		t.Fatalf("FieldNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FieldNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCapabilitiesUnpackErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		wantErr error
	}{
		{
			name:    "empty payload",
			payload: nil,
			wantErr: ErrEmptyBlockPayload,
		},
		{
			name:    "truncated group",
			payload: []byte{0x03, 0x01},
			wantErr: ErrValueCount,
		},
		{
			name:    "index outside registry",
			payload: []byte{0x00, 0x00, 0x80, 0x01},
			wantErr: ErrInvalidFieldValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newCapabilitiesBlock(testCaps)
			if err := b.Unpack(tt.payload); !errors.Is(err, tt.wantErr) {
				t.Errorf("Unpack(% x) error = %v, want %v", tt.payload, err, tt.wantErr)
			}
		})
	}
}

func TestCapabilitiesUnknownField(t *testing.T) {
	b := newCapabilitiesBlock(testCaps)
	if err := b.SetField("warp", "1"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("SetField(warp) error = %v, want ErrUnknownField", err)
	}
	if _, err := b.GetField("warp"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("GetField(warp) error = %v, want ErrUnknownField", err)
	}
}
