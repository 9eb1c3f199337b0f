package memory

import "time"

type clocker interface {
	Now() time.Time
}

const (
	DefaultShards        = 64
	DefaultRateLimit     = 10
	DefaultRateWindow    = time.Hour
	DefaultAuditCapacity = 500
	DefaultBlockDuration = 30 * time.Minute
)
