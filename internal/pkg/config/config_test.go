package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
app:
  name: otpguard
  debug: true
modules:
  verification:
    max_attempts: 5
    code_expiry_seconds: 300
    block_minutes: 30
    zero: 0
authz:
  admins: "root, ops ,,"
  policies:
    - admin|otp.audit|read
    - auditor|otp.audit|read
instrument:
  trace_sample_ratio: 0.25
`

func newTestViper(t *testing.T) *Viper {
	t.Helper()

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}
	return cfg
}

func TestViper_Getters(t *testing.T) {
	// Arrange
	cfg := newTestViper(t)

	// Act & Assert
	if got := cfg.GetString("app.name"); got != "otpguard" {
		t.Fatalf("GetString() = %q", got)
	}
	if !cfg.GetBool("app.debug") {
		t.Fatalf("GetBool() = false")
	}
	if got := cfg.GetInt("modules.verification.max_attempts"); got != 5 {
		t.Fatalf("GetInt() = %d", got)
	}
	if got := cfg.GetSecond("modules.verification.code_expiry_seconds"); got != 5*time.Minute {
		t.Fatalf("GetSecond() = %v", got)
	}
	if got := cfg.GetMinute("modules.verification.block_minutes"); got != 30*time.Minute {
		t.Fatalf("GetMinute() = %v", got)
	}
	if got := cfg.GetFloat64("instrument.trace_sample_ratio"); got != 0.25 {
		t.Fatalf("GetFloat64() = %v", got)
	}
	if err := cfg.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestViper_GetArray(t *testing.T) {
	cfg := newTestViper(t)

	admins := cfg.GetArray("authz.admins")
	if len(admins) != 2 || admins[0] != "root" || admins[1] != "ops" {
		t.Fatalf("GetArray(scalar) = %#v", admins)
	}

	policies := cfg.GetArray("authz.policies")
	if len(policies) != 2 || policies[1] != "auditor|otp.audit|read" {
		t.Fatalf("GetArray(list) = %#v", policies)
	}

	if missing := cfg.GetArray("nope"); len(missing) != 0 {
		t.Fatalf("GetArray(missing) = %#v, want empty", missing)
	}
}

func TestDefaults(t *testing.T) {
	cfg := newTestViper(t)

	if got := IntOr(cfg, "modules.verification.zero", 7); got != 7 {
		t.Fatalf("IntOr(zero) = %d, want 7", got)
	}
	if got := IntOr(cfg, "modules.verification.max_attempts", 7); got != 5 {
		t.Fatalf("IntOr(set) = %d, want 5", got)
	}
	if got := SecondOr(nil, "x", time.Second); got != time.Second {
		t.Fatalf("SecondOr(nil) = %v", got)
	}
	if got := MinuteOr(cfg, "modules.verification.block_minutes", time.Minute); got != 30*time.Minute {
		t.Fatalf("MinuteOr() = %v", got)
	}
	if got := StringOr(cfg, "missing", "fallback"); got != "fallback" {
		t.Fatalf("StringOr() = %q", got)
	}
}

func TestNewViper_File(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	// Act
	cfg, err := NewViper(path)

	// Assert
	if err != nil {
		t.Fatalf("NewViper() error = %v", err)
	}
	if got := cfg.GetString("app.name"); got != "otpguard" {
		t.Fatalf("GetString() = %q", got)
	}
}

func TestNewViper_EnvOverride(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("OTPGUARD_MODULES_VERIFICATION_MAX_ATTEMPTS", "9")

	// Act
	cfg, err := NewViper(path)

	// Assert
	if err != nil {
		t.Fatalf("NewViper() error = %v", err)
	}
	if got := cfg.GetInt("modules.verification.max_attempts"); got != 9 {
		t.Fatalf("GetInt() = %d, want 9", got)
	}
}

func TestNewViperFromBytes_RequiresType(t *testing.T) {
	if _, err := NewViperFromBytes(" ", nil); err == nil {
		t.Fatalf("NewViperFromBytes() error = nil, want error")
	}
}
