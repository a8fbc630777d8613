// Package vector holds the fixed-length embedding vector type shared by the
// cache, the candidate store and the scoring engine.
package vector

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// Dimensions is the length of every embedding produced by all-MiniLM-L6-v2.
const Dimensions = 384

// Valid reports whether v has the fixed dimensionality and only finite values.
func Valid(v []float32) bool {
	if len(v) != Dimensions {
		return false
	}
	for _, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return false
		}
	}
	return true
}

// Cosine returns the cosine similarity of a and b.
// Mismatched lengths or a zero norm yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Encode serializes v as little-endian float32, 4 bytes per element.
func Encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode parses a little-endian float32 blob.
func Decode(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector blob: len=%d (not multiple of 4)", len(data))
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v, nil
}

// EncodeBase64 wraps Encode in standard base64 for text-safe transport.
func EncodeBase64(v []float32) string {
	return base64.StdEncoding.EncodeToString(Encode(v))
}

// DecodeBase64 reverses EncodeBase64.
func DecodeBase64(s string) ([]float32, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64 vector: %w", err)
	}
	return Decode(data)
}

// Hash returns the SHA-256 hex digest of text, used as the cache key.
func Hash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
