// Package config exposes typed, read-only access to runtime configuration.
//
// The Viper implementation reads a YAML file, lets OTPGUARD_* environment
// variables override keys, and hot-reloads on file change.
package config
