package memory

import (
	"time"

	"github.com/shandysiswandi/otpguard/internal/pkg/shardmap"
	"github.com/shandysiswandi/otpguard/internal/verification/entity"
)

// RateLimiter admits at most limit issuances per identifier in a fixed window
// that opens on the first issuance after the previous window elapsed.
type RateLimiter struct {
	clock  clocker
	limit  int
	window time.Duration
	states *shardmap.Map[entity.RateLimitState]
}

func NewRateLimiter(clock clocker, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}

	return &RateLimiter{
		clock:  clock,
		limit:  limit,
		window: window,
		states: shardmap.New[entity.RateLimitState](DefaultShards),
	}
}

// TryConsume takes one slot for identifier. A refusal leaves the state as is.
func (r *RateLimiter) TryConsume(identifier string) bool {
	now := r.clock.Now()
	allowed := false

	r.states.Compute(identifier, func(cur entity.RateLimitState, exists bool) (entity.RateLimitState, shardmap.Action) {
		if !exists || !now.Before(cur.WindowResetAt) {
			cur = entity.RateLimitState{
				Identifier:    identifier,
				WindowResetAt: now.Add(r.window),
			}
		}

		if cur.Count >= r.limit {
			return cur, shardmap.Keep
		}

		cur.Count++
		allowed = true
		return cur, shardmap.Store
	})

	return allowed
}

// State returns the stored window for identifier, if any.
func (r *RateLimiter) State(identifier string) (entity.RateLimitState, bool) {
	return r.states.Get(identifier)
}

// Sweep drops windows that have elapsed.
func (r *RateLimiter) Sweep(now time.Time) int {
	return r.states.DeleteIf(func(_ string, st entity.RateLimitState) bool {
		return !now.Before(st.WindowResetAt)
	})
}
