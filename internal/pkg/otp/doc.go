// Package otp generates random numeric one-time codes.
//
// Codes come straight from crypto/rand and carry no relation to time, the
// identifier or previous codes.
package otp
