// Package uid generates identifiers.
//
// NumberID produces sortable int64 ids (audit entries). StringID produces
// string ids: time-ordered UUIDs for correlation and unguessable random
// tokens for verification sessions.
package uid

// NumberID generates int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
