package hash

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// Argon2id digests codes with Argon2id using the caller-provided salt.
type Argon2id struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	keyLength   uint32
	pepper      string
	sema        chan struct{}
}

// NewArgon2id returns an Argon2id digester with defaults sized for short codes.
func NewArgon2id(pepper string) *Argon2id {
	const maxConcurrent = 4

	return &Argon2id{
		memory:      19 * 1024, // KiB
		iterations:  2,
		parallelism: 1,
		keyLength:   32,
		pepper:      pepper,
		sema:        make(chan struct{}, maxConcurrent),
	}
}

// Digest returns the 64-char hex Argon2id key.
func (a *Argon2id) Digest(code, salt string) (string, error) {
	return hex.EncodeToString(a.derive(code, salt)), nil
}

// Verify recomputes the key and compares it in constant time.
func (a *Argon2id) Verify(digest, code, salt string) bool {
	if digest == "" || code == "" {
		return false
	}

	expected, err := hex.DecodeString(digest)
	if err != nil || len(expected) != int(a.keyLength) {
		return false
	}

	return subtle.ConstantTimeCompare(expected, a.derive(code, salt)) == 1
}

func (a *Argon2id) derive(code, salt string) []byte {
	a.sema <- struct{}{}
	defer func() { <-a.sema }()

	return argon2.IDKey([]byte(code+a.pepper), []byte(salt), a.iterations, a.memory, a.parallelism, a.keyLength)
}
