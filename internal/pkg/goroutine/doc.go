// Package goroutine runs background work on a bounded, recoverable pool.
package goroutine
