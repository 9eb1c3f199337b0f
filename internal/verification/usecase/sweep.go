package usecase

import (
	"context"
	"log/slog"
)

type SweepOutput struct {
	Sessions    int
	Blocks      int
	RateWindows int
}

// Sweep reaps lapsed blocks, elapsed rate-limit windows and sessions that
// expired more than the retention period ago. Younger expired sessions stay
// so Verify reports them as expired and audits the outcome.
func (s *Usecase) Sweep(ctx context.Context) (*SweepOutput, error) {
	ctx, span := s.startSpan(ctx, "Sweep")
	defer span.End()

	now := s.clock.Now()
	out := &SweepOutput{
		Sessions:    s.sessions.Sweep(now.Add(-s.sessionRetention())),
		Blocks:      s.blocks.Sweep(now),
		RateWindows: s.limiter.Sweep(now),
	}

	if out.Sessions+out.Blocks+out.RateWindows > 0 {
		slog.DebugContext(ctx, "verification state swept",
			"sessions", out.Sessions,
			"blocks", out.Blocks,
			"rate_windows", out.RateWindows,
		)
	}

	return out, nil
}
