package uid

import (
	"crypto/rand"
	"encoding/hex"
)

// DefaultTokenBytes is the entropy of a Token in bytes.
const DefaultTokenBytes = 32

// Token generates opaque identifiers from crypto/rand only. Output carries no
// time, sequence or caller-derived component.
type Token struct {
	size int
}

// NewToken returns a Token generator producing size random bytes, hex encoded.
func NewToken(size int) *Token {
	if size < 16 {
		size = DefaultTokenBytes
	}

	return &Token{size: size}
}

// Generate returns a new random token. crypto/rand.Read never returns an
// error on supported platforms and crashes the program otherwise.
func (t *Token) Generate() string {
	b := make([]byte, t.size)
	//nolint:errcheck // see doc comment
	_, _ = rand.Read(b)

	return hex.EncodeToString(b)
}
