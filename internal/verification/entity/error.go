package entity

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrBlocked             = errors.New("verification: identifier is blocked")
	ErrRateLimited         = errors.New("verification: issuance rate limit exceeded")
	ErrSessionNotFound     = errors.New("verification: session not found")
	ErrSessionExpired      = errors.New("verification: session expired")
	ErrMaxAttemptsExceeded = errors.New("verification: max attempts exceeded")
)

// BlockedError carries when a blocked identifier may try again.
type BlockedError struct {
	UnblockAt time.Time
	Remaining time.Duration
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s: try again in %d minutes", ErrBlocked.Error(), e.RemainingMinutes())
}

func (e *BlockedError) Unwrap() error {
	return ErrBlocked
}

// RemainingMinutes rounds the remaining lockout up to whole minutes.
func (e *BlockedError) RemainingMinutes() int {
	if e.Remaining <= 0 {
		return 0
	}
	return int(math.Ceil(e.Remaining.Minutes()))
}
