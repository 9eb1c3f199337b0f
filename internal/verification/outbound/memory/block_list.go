package memory

import (
	"time"

	"github.com/shandysiswandi/otpguard/internal/pkg/shardmap"
	"github.com/shandysiswandi/otpguard/internal/verification/entity"
)

type BlockList struct {
	clock   clocker
	entries *shardmap.Map[entity.BlockEntry]
}

func NewBlockList(clock clocker) *BlockList {
	return &BlockList{
		clock:   clock,
		entries: shardmap.New[entity.BlockEntry](DefaultShards),
	}
}

// IsBlocked reports an active lockout and when it ends. Lapsed entries read
// as not blocked and are left for Sweep.
func (b *BlockList) IsBlocked(identifier string) (bool, time.Time) {
	e, ok := b.entries.Get(identifier)
	if !ok || !e.IsActive(b.clock.Now()) {
		return false, time.Time{}
	}
	return true, e.UnblockAt
}

// Block sets or overwrites the lockout to end d from now.
func (b *BlockList) Block(identifier string, d time.Duration) time.Time {
	if d <= 0 {
		d = DefaultBlockDuration
	}

	unblockAt := b.clock.Now().Add(d)
	b.entries.Set(identifier, entity.BlockEntry{Identifier: identifier, UnblockAt: unblockAt})
	return unblockAt
}

func (b *BlockList) Sweep(now time.Time) int {
	return b.entries.DeleteIf(func(_ string, e entity.BlockEntry) bool {
		return !e.IsActive(now)
	})
}
