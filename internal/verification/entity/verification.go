package entity

import "time"

// Session is an issued, not yet consumed code. Only the digest and salt of
// the code are kept.
type Session struct {
	TokenID    string
	Identifier string
	Purpose    Purpose
	Channel    Channel
	Digest     string
	Salt       string
	ExpiresAt  time.Time
	Attempts   int
}

// IsExpired reports whether now is strictly past the expiry instant.
func (s Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// RateLimitState is the fixed issuance window of one identifier.
type RateLimitState struct {
	Identifier    string
	Count         int
	WindowResetAt time.Time
}

// BlockEntry is a lockout of one identifier. It is inert once UnblockAt passes.
type BlockEntry struct {
	Identifier string
	UnblockAt  time.Time
}

func (b BlockEntry) IsActive(now time.Time) bool {
	return now.Before(b.UnblockAt)
}

type AuditLogEntry struct {
	ID         int64
	Timestamp  time.Time
	Identifier string
	Purpose    Purpose
	Channel    Channel
	Status     Status
	Metadata   string
}

type Stats struct {
	TotalSent          int
	TotalVerified      int
	TotalFailed        int
	TotalBlocked       int
	TotalExpired       int
	SuccessRatePercent float64
}
