// Package goerror defines the structured error used between usecases and the
// HTTP layer.
//
// Usecases wrap domain sentinels with NewBusinessCause so callers can still use
// errors.Is, while the router maps Code to an HTTP status.
package goerror
