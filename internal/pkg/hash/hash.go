package hash

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// AlgorithmSaltedSHA256 selects SaltedSHA256.
	AlgorithmSaltedSHA256 = "sha256"
	// AlgorithmArgon2id selects Argon2id.
	AlgorithmArgon2id = "argon2id"

	// DefaultSaltBytes is the number of random bytes in a salt.
	DefaultSaltBytes = 16
)

// ErrUnknownAlgorithm indicates an unsupported digest algorithm.
var ErrUnknownAlgorithm = errors.New("hash: unknown algorithm")

// Digester derives a fixed-length digest from a code and salt.
//
// Only the digest and salt are ever stored; there is no path back to the code.
type Digester interface {
	// Digest returns the lowercase hex digest of code under salt.
	Digest(code, salt string) (string, error)
	// Verify recomputes the digest for code and compares it in constant time.
	Verify(digest, code, salt string) bool
}

// New builds a Digester by algorithm name. An empty name selects SaltedSHA256.
func New(algorithm, pepper string) (Digester, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmSaltedSHA256:
		return NewSaltedSHA256(pepper), nil
	case AlgorithmArgon2id:
		return NewArgon2id(pepper), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algorithm)
	}
}

// NewSalt returns n random bytes from crypto/rand, hex encoded.
func NewSalt(n int) (string, error) {
	if n <= 0 {
		n = DefaultSaltBytes
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	return hex.EncodeToString(b), nil
}
