package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shandysiswandi/otpguard/internal/pkg/goerror"
	"github.com/shandysiswandi/otpguard/internal/verification/entity"
)

type VerifyInput struct {
	TokenID string `validate:"required,max=128"`
	// Format is not checked here: a malformed code is a wrong code and must
	// still hit the expiry check and count as an attempt.
	Code    string `validate:"required,max=32"`
}

type VerifyOutput struct {
	Verified          bool
	AttemptsRemaining int
}

// Verify checks a candidate code against a session. Expiry check, attempt
// increment, digest comparison and the lockout all happen under the token's
// lock, so concurrent calls on one token are serialized.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	var (
		now       = s.clock.Now()
		ceiling   = s.maxAttempts()
		outcome   entity.Status
		unblockAt time.Time
	)

	sess, err := s.sessions.Update(in.TokenID, func(sess *entity.Session) bool {
		if sess.IsExpired(now) {
			outcome = entity.StatusExpired
			return true
		}

		sess.Attempts++
		if s.digester.Verify(sess.Digest, in.Code, sess.Salt) {
			outcome = entity.StatusVerified
			return true
		}

		if sess.Attempts >= ceiling {
			outcome = entity.StatusBlocked
			unblockAt = s.blocks.Block(sess.Identifier, s.blockDuration())
			return true
		}

		outcome = entity.StatusFailed
		return false
	})
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "verification session not found")
		return nil, goerror.NewBusinessCause(entity.ErrSessionNotFound, "Verification session not found or already used", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to update verification session", "error", err)
		return nil, goerror.NewServer(err)
	}

	switch outcome {
	case entity.StatusExpired:
		s.record(ctx, sess, entity.StatusExpired, "")
		return nil, goerror.NewBusinessCause(entity.ErrSessionExpired, "Verification code has expired", goerror.CodeGone)

	case entity.StatusVerified:
		s.record(ctx, sess, entity.StatusVerified, "")
		return &VerifyOutput{Verified: true}, nil

	case entity.StatusBlocked:
		slog.WarnContext(ctx, "identifier blocked after max attempts", "purpose", sess.Purpose.String(), "unblock_at", unblockAt)
		s.record(ctx, sess, entity.StatusBlocked, "max attempts reached")

		be := &entity.BlockedError{UnblockAt: unblockAt, Remaining: unblockAt.Sub(now)}
		return nil, goerror.NewBusinessCause(
			fmt.Errorf("%w: %w", entity.ErrMaxAttemptsExceeded, be),
			fmt.Sprintf("Maximum attempts reached. Try again in %d minutes.", be.RemainingMinutes()),
			goerror.CodeLocked,
			goerror.FieldRetryAfter, strconv.Itoa(ceilSeconds(be.Remaining)))

	case entity.StatusFailed:
		s.record(ctx, sess, entity.StatusFailed, fmt.Sprintf("attempt %d/%d", sess.Attempts, ceiling))
		return &VerifyOutput{Verified: false, AttemptsRemaining: ceiling - sess.Attempts}, nil

	case entity.StatusSent, entity.StatusUnknown:
		return nil, goerror.NewServer(fmt.Errorf("unexpected verification outcome %s", outcome))

	default:
		return nil, goerror.NewServer(fmt.Errorf("unexpected verification outcome %s", outcome))
	}
}
