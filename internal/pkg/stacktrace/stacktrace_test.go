package stacktrace

import "testing"

func TestInternalPaths(t *testing.T) {
	// Arrange
	stack := []byte(`goroutine 1 [running]:
main.main()
	/home/dev/otpguard/internal/verification/usecase/verify.go:42 +0x1d
runtime.main()
	/usr/local/go/src/runtime/proc.go:271 +0x29e
`)

	// Act
	paths := InternalPaths(stack)

	// Assert
	if len(paths) != 1 {
		t.Fatalf("InternalPaths() = %v, want one entry", paths)
	}
	if paths[0] != "internal/verification/usecase/verify.go:42" {
		t.Fatalf("InternalPaths()[0] = %q", paths[0])
	}
}
