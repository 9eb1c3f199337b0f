// Package config exposes read-only access to runtime settings. Keys are
// dotted paths ("modules.verification.max_attempts"); every key can be
// overridden by an OTPGUARD_ prefixed environment variable with dots
// replaced by underscores.
package config

import (
	"io"
	"time"
)

// Config is the view of configuration shared by every module. Values may be
// reloaded underneath callers, so read keys at the point of use.
//
// Missing keys yield the zero value of the requested type.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetInt(key string) int
	GetFloat64(key string) float64
	GetString(key string) string

	// GetSecond and GetMinute scale an integer value to a duration.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration

	// GetArray reads a YAML list or splits a comma separated value. Blank
	// elements are dropped.
	GetArray(key string) []string
}
