package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

// DefaultDigits is the code length used when none is configured.
const DefaultDigits = 6

// Generator produces fresh numeric codes.
type Generator interface {
	Generate() (string, error)
}

// Random draws codes uniformly from [10^(digits-1), 10^digits-1] using
// crypto/rand, so a code never has a leading zero.
type Random struct {
	digits int
	low    *big.Int
	span   *big.Int
}

// NewRandom builds a generator for codes of the given length. Lengths outside
// 4..10 fall back to DefaultDigits.
func NewRandom(digits int) *Random {
	if digits < 4 || digits > 10 {
		digits = DefaultDigits
	}

	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits-1)), nil)
	high := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)

	return &Random{
		digits: digits,
		low:    low,
		span:   new(big.Int).Sub(high, low),
	}
}

// Digits returns the configured code length.
func (r *Random) Digits() int {
	return r.digits
}

// Generate returns a new code.
func (r *Random) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, r.span)
	if err != nil {
		return "", fmt.Errorf("otp: failed to draw code: %w", err)
	}

	return strconv.FormatInt(n.Add(n, r.low).Int64(), 10), nil
}
