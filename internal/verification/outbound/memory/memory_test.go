package memory

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpguard/internal/pkg/clock"
	"github.com/shandysiswandi/otpguard/internal/pkg/goerror"
	"github.com/shandysiswandi/otpguard/internal/pkg/uid"
	"github.com/shandysiswandi/otpguard/internal/verification/entity"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestSessionStore_Lifecycle(t *testing.T) {
	// Arrange
	st := NewSessionStore()
	sess := entity.Session{TokenID: "t1", Identifier: "a@x.io", ExpiresAt: epoch.Add(5 * time.Minute)}

	// Act & Assert
	if err := st.Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := st.Create(sess); !errors.Is(err, goerror.ErrConflict) {
		t.Fatalf("Create(duplicate) error = %v, want ErrConflict", err)
	}

	got, err := st.Update("t1", func(s *entity.Session) bool {
		s.Attempts++
		return false
	})
	if err != nil || got.Attempts != 1 {
		t.Fatalf("Update() = %+v, %v", got, err)
	}

	stored, _ := st.Get("t1")
	if stored.Attempts != 1 {
		t.Fatalf("stored attempts = %d, want 1", stored.Attempts)
	}

	if _, err := st.Update("t1", func(*entity.Session) bool { return true }); err != nil {
		t.Fatalf("Update(remove) error = %v", err)
	}
	if _, err := st.Get("t1"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("Get() after remove error = %v, want ErrNotFound", err)
	}
	if _, err := st.Update("t1", func(*entity.Session) bool { return false }); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSessionStore_Sweep(t *testing.T) {
	st := NewSessionStore()
	_ = st.Create(entity.Session{TokenID: "old", ExpiresAt: epoch.Add(-time.Second)})
	_ = st.Create(entity.Session{TokenID: "new", ExpiresAt: epoch.Add(time.Minute)})

	if n := st.Sweep(epoch); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
	if st.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", st.Len())
	}
}

func TestRateLimiter_FixedWindow(t *testing.T) {
	// Arrange
	clk := clock.NewManual(epoch)
	rl := NewRateLimiter(clk, 10, time.Hour)

	// Act
	for i := range 10 {
		if !rl.TryConsume("a@x.io") {
			t.Fatalf("TryConsume() #%d refused", i+1)
		}
	}

	// Assert
	if rl.TryConsume("a@x.io") {
		t.Fatalf("11th TryConsume() admitted")
	}
	if st, _ := rl.State("a@x.io"); st.Count != 10 {
		t.Fatalf("refusal mutated count to %d", st.Count)
	}
	if !rl.TryConsume("b@x.io") {
		t.Fatalf("other identifier should not be limited")
	}

	clk.Advance(time.Hour)
	if !rl.TryConsume("a@x.io") {
		t.Fatalf("TryConsume() after window reset refused")
	}
	if st, _ := rl.State("a@x.io"); st.Count != 1 || !st.WindowResetAt.Equal(epoch.Add(2*time.Hour)) {
		t.Fatalf("state after reset = %+v", st)
	}
}

func TestRateLimiter_ConcurrentAdmitsExactlyLimit(t *testing.T) {
	rl := NewRateLimiter(clock.NewManual(epoch), 10, time.Hour)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for range 100 {
		wg.Go(func() {
			if rl.TryConsume("hot@x.io") {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	if granted != 10 {
		t.Fatalf("granted = %d, want 10", granted)
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	clk := clock.NewManual(epoch)
	rl := NewRateLimiter(clk, 0, 0)
	rl.TryConsume("a")

	if n := rl.Sweep(epoch.Add(59 * time.Minute)); n != 0 {
		t.Fatalf("Sweep() inside window = %d, want 0", n)
	}
	if n := rl.Sweep(epoch.Add(time.Hour)); n != 1 {
		t.Fatalf("Sweep() at reset = %d, want 1", n)
	}
}

func TestBlockList(t *testing.T) {
	// Arrange
	clk := clock.NewManual(epoch)
	bl := NewBlockList(clk)

	// Act
	until := bl.Block("a@x.io", 30*time.Minute)

	// Assert
	blocked, at := bl.IsBlocked("a@x.io")
	if !blocked || !at.Equal(until) || !until.Equal(epoch.Add(30*time.Minute)) {
		t.Fatalf("IsBlocked() = %v, %v", blocked, at)
	}

	clk.Advance(29 * time.Minute)
	if blocked, _ := bl.IsBlocked("a@x.io"); !blocked {
		t.Fatalf("should still be blocked at 29m")
	}

	clk.Advance(time.Minute)
	if blocked, _ := bl.IsBlocked("a@x.io"); blocked {
		t.Fatalf("should be unblocked at 30m")
	}
	if n := bl.Sweep(clk.Now()); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
}

func TestBlockList_Overwrite(t *testing.T) {
	clk := clock.NewManual(epoch)
	bl := NewBlockList(clk)

	bl.Block("a", time.Hour)
	bl.Block("a", time.Minute)

	if _, at := bl.IsBlocked("a"); !at.Equal(epoch.Add(time.Minute)) {
		t.Fatalf("unblockAt = %v, want overwrite to 1m", at)
	}
}

func newTestAuditLog(t *testing.T, capacity int) *AuditLog {
	t.Helper()

	sf, err := uid.NewSnowflakeNode(1)
	if err != nil {
		t.Fatalf("NewSnowflakeNode() error = %v", err)
	}
	return NewAuditLog(clock.NewManual(epoch), sf, capacity)
}

func TestAuditLog_BoundedNewestFirst(t *testing.T) {
	// Arrange
	al := newTestAuditLog(t, 500)

	// Act
	for i := range 501 {
		al.Append(entity.AuditLogEntry{Identifier: fmt.Sprintf("u%d", i), Status: entity.StatusSent})
	}

	// Assert
	snap := al.Snapshot()
	if len(snap) != 500 {
		t.Fatalf("len = %d, want 500", len(snap))
	}
	if snap[0].Identifier != "u500" || snap[499].Identifier != "u1" {
		t.Fatalf("order = %s..%s, want u500..u1", snap[0].Identifier, snap[499].Identifier)
	}

	recent := al.Recent(20)
	if len(recent) != 20 || recent[19].Identifier != "u481" {
		t.Fatalf("Recent(20) last = %s, want u481", recent[19].Identifier)
	}
}

func TestAuditLog_SnapshotIsCopy(t *testing.T) {
	al := newTestAuditLog(t, 10)
	al.Append(entity.AuditLogEntry{Identifier: "a", Status: entity.StatusSent})

	snap := al.Snapshot()
	snap[0].Identifier = "mutated"

	if al.Snapshot()[0].Identifier != "a" {
		t.Fatalf("snapshot aliases internal buffer")
	}
}

func TestAuditLog_Stats(t *testing.T) {
	tests := []struct {
		name     string
		statuses []entity.Status
		want     entity.Stats
	}{
		{name: "empty", want: entity.Stats{}},
		{
			name:     "mixed",
			statuses: []entity.Status{entity.StatusSent, entity.StatusSent, entity.StatusSent, entity.StatusSent, entity.StatusVerified, entity.StatusFailed, entity.StatusBlocked, entity.StatusExpired},
			want:     entity.Stats{TotalSent: 4, TotalVerified: 1, TotalFailed: 1, TotalBlocked: 1, TotalExpired: 1, SuccessRatePercent: 25},
		},
		{
			name:     "blocked without sent",
			statuses: []entity.Status{entity.StatusBlocked},
			want:     entity.Stats{TotalBlocked: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			al := newTestAuditLog(t, 0)
			for _, s := range tt.statuses {
				al.Append(entity.AuditLogEntry{Status: s})
			}

			if got := al.Stats(); got != tt.want {
				t.Fatalf("Stats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
