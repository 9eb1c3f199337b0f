package otp

import (
	"strconv"
	"testing"
)

func TestRandom_Generate(t *testing.T) {
	// Arrange
	gen := NewRandom(6)

	// Act & Assert
	for range 2000 {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("len(%q) = %d, want 6", code, len(code))
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d out of range", n)
		}
	}
}

func TestNewRandom_FallbackDigits(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: DefaultDigits},
		{in: 3, want: DefaultDigits},
		{in: 11, want: DefaultDigits},
		{in: 8, want: 8},
	}

	for _, tt := range tests {
		if got := NewRandom(tt.in).Digits(); got != tt.want {
			t.Fatalf("NewRandom(%d).Digits() = %d, want %d", tt.in, got, tt.want)
		}
	}
}
