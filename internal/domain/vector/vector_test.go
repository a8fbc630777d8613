package vector

import (
	"math"
	"testing"
)

func unit(i int) []float32 {
	v := make([]float32, Dimensions)
	v[i] = 1
	return v
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		v    []float32
		want bool
	}{
		{"nil", nil, false},
		{"short", make([]float32, 10), false},
		{"long", make([]float32, Dimensions+1), false},
		{"exact", make([]float32, Dimensions), true},
		{"nan", func() []float32 { v := unit(0); v[3] = float32(math.NaN()); return v }(), false},
		{"inf", func() []float32 { v := unit(0); v[5] = float32(math.Inf(1)); return v }(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.v); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosine(t *testing.T) {
	if got := Cosine(unit(0), unit(0)); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors: got %v, want 1", got)
	}
	if got := Cosine(unit(0), unit(1)); got != 0 {
		t.Errorf("orthogonal vectors: got %v, want 0", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{-1, 0}); math.Abs(got+1) > 1e-9 {
		t.Errorf("opposite vectors: got %v, want -1", got)
	}
	if got := Cosine([]float32{1, 2}, []float32{1, 2, 3}); got != 0 {
		t.Errorf("length mismatch: got %v, want 0", got)
	}
	if got := Cosine([]float32{0, 0}, []float32{1, 2}); got != 0 {
		t.Errorf("zero norm: got %v, want 0", got)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	v := []float32{0.25, -1.5, 3.125, 0}
	data := Encode(v)
	if len(data) != 16 {
		t.Fatalf("expected 16 bytes, got %d", len(data))
	}
	// 0.25 == 0x3E800000, little-endian
	if data[0] != 0x00 || data[3] != 0x3E || data[2] != 0x80 {
		t.Errorf("unexpected byte layout: % x", data[:4])
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range v {
		if got[i] != v[i] {
			t.Errorf("element %d: got %v, want %v", i, got[i], v[i])
		}
	}
}

func TestDecode_BadLength(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for length not multiple of 4")
	}
}

func TestBase64_RoundTrip(t *testing.T) {
	v := unit(7)
	got, err := DecodeBase64(EncodeBase64(v))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Valid(got) || got[7] != 1 {
		t.Errorf("round trip lost data")
	}
	if _, err := DecodeBase64("not base64!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestHash_Stable(t *testing.T) {
	a := Hash("Skills: go, python.")
	if a != Hash("Skills: go, python.") {
		t.Error("hash not stable")
	}
	if a == Hash("Skills: go.") {
		t.Error("different texts share a hash")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}
