// Package idempotency guards keyed operations against duplicate execution.
//
// A Tracker stores one of in_progress, failed or completed (with the result
// payload) per key. Redis backs it in deployments; MemoryStore covers a
// single process.
package idempotency
