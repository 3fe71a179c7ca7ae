package random

import (
	"crypto/rand"
	"io"
	"math/big"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// CryptoRandom implements Random on top of a cryptographic byte source
type CryptoRandom struct {
	source io.Reader
}

// New creates a CryptoRandom reading from crypto/rand
func New() *CryptoRandom {
	return &CryptoRandom{source: rand.Reader}
}

// NewFromReader creates a CryptoRandom reading from the given source
func NewFromReader(source io.Reader) *CryptoRandom {
	return &CryptoRandom{source: source}
}

// Intn returns a uniformly distributed int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(r.source, big.NewInt(int64(n)))
	if err != nil {
		// Only reachable with an exhausted custom source
		return 0
	}
	return int(result.Int64())
}

// String generates a random string of the given length from the given alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(result)
}
