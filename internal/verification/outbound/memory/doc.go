// Package memory holds the process-local stores behind the verification
// usecase: sessions, issuance rate limits, lockouts and the audit trail.
//
// Every store is safe for concurrent use. Per-key updates run under the
// key's shard lock so check-and-mutate sequences are atomic.
package memory
