package random

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntnReadsFromSource(t *testing.T) {
	// One byte per draw for n=6; the low three bits are the value
	r := NewFromReader(bytes.NewReader([]byte{0x02, 0x05, 0x07, 0x01}))

	assert.Equal(t, 2, r.Intn(6))
	assert.Equal(t, 5, r.Intn(6))
	// 7 is out of range, so the next byte is drawn
	assert.Equal(t, 1, r.Intn(6))
}

func TestExhaustedSourceFallsBackToZero(t *testing.T) {
	r := NewFromReader(bytes.NewReader(nil))

	assert.Equal(t, 0, r.Intn(6))
	assert.Equal(t, "AAA", r.String(3, "ABCDEF"))
}

func TestStringUsesAlphabet(t *testing.T) {
	r := NewFromReader(bytes.NewReader([]byte{0x00, 0x03}))
	assert.Equal(t, "AD", r.String(2, "ABCDEF"))

	assert.Empty(t, New().String(0, "ABCDEF"))
	assert.Empty(t, New().String(4, ""))
	assert.Equal(t, 0, New().Intn(0))
}

func TestCryptoSourceStaysInRange(t *testing.T) {
	r := New()
	for range 500 {
		n := r.Intn(6)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 6)
	}
}
