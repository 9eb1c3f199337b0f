package memory

import (
	"sync"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpguard/internal/pkg/uid"
	"github.com/shandysiswandi/otpguard/internal/verification/entity"
)

// AuditLog is a bounded, newest-first record of verification events. Once
// full, each append evicts the oldest entry.
type AuditLog struct {
	mu    sync.RWMutex
	clock clocker
	ids   uid.NumberID
	buf   []entity.AuditLogEntry
	head  int // next write position
	size  int
}

func NewAuditLog(clock clocker, ids uid.NumberID, capacity int) *AuditLog {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}

	return &AuditLog{
		clock: clock,
		ids:   ids,
		buf:   make([]entity.AuditLogEntry, capacity),
	}
}

// Append stamps the entry with an id and timestamp and stores it.
func (a *AuditLog) Append(e entity.AuditLogEntry) entity.AuditLogEntry {
	e.ID = a.ids.Generate()
	if e.Timestamp.IsZero() {
		e.Timestamp = a.clock.Now()
	}

	a.mu.Lock()
	a.buf[a.head] = e
	a.head = (a.head + 1) % len(a.buf)
	if a.size < len(a.buf) {
		a.size++
	}
	a.mu.Unlock()

	return e
}

// Snapshot returns a copy of every retained entry, newest first.
func (a *AuditLog) Snapshot() []entity.AuditLogEntry {
	return a.Recent(0)
}

// Recent returns up to n newest entries, newest first. n <= 0 means all.
func (a *AuditLog) Recent(n int) []entity.AuditLogEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if n <= 0 || n > a.size {
		n = a.size
	}

	out := make([]entity.AuditLogEntry, n)
	for i := range n {
		idx := (a.head - 1 - i + len(a.buf)) % len(a.buf)
		out[i] = a.buf[idx]
	}
	return out
}

func (a *AuditLog) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.size
}

func (a *AuditLog) Stats() entity.Stats {
	entries := a.Snapshot()

	count := func(s entity.Status) int {
		return lo.CountBy(entries, func(e entity.AuditLogEntry) bool { return e.Status == s })
	}

	st := entity.Stats{
		TotalSent:     count(entity.StatusSent),
		TotalVerified: count(entity.StatusVerified),
		TotalFailed:   count(entity.StatusFailed),
		TotalBlocked:  count(entity.StatusBlocked),
		TotalExpired:  count(entity.StatusExpired),
	}
	if st.TotalSent > 0 {
		st.SuccessRatePercent = float64(st.TotalVerified) / float64(st.TotalSent) * 100
	}

	return st
}
