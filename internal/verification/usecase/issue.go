package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shandysiswandi/otpguard/internal/pkg/goerror"
	"github.com/shandysiswandi/otpguard/internal/pkg/hash"
	"github.com/shandysiswandi/otpguard/internal/verification/entity"
)

const maxTokenAttempts = 3

type IssueInput struct {
	Identifier string `validate:"required,max=320"`
	Purpose    entity.Purpose
	Channel    entity.Channel
}

type IssueOutput struct {
	TokenID   string
	ExpiresAt time.Time
	// Code is the plaintext code for the delivery hand-off only.
	Code string
}

// Issue opens a verification session for an identifier. A blocked identifier
// is refused before the rate limiter is consulted.
func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if in.Purpose.IsUnknown() {
		return nil, goerror.NewInvalidInput(nil, "purpose", "purpose is not supported")
	}
	if in.Channel.IsUnknown() {
		return nil, goerror.NewInvalidInput(nil, "channel", "channel is not supported")
	}

	subject := entity.Session{Identifier: in.Identifier, Purpose: in.Purpose, Channel: in.Channel}

	if blocked, unblockAt := s.blocks.IsBlocked(in.Identifier); blocked {
		slog.WarnContext(ctx, "issuance refused for blocked identifier", "purpose", in.Purpose.String(), "unblock_at", unblockAt)
		s.record(ctx, subject, entity.StatusBlocked, "Blocked until "+unblockAt.UTC().Format(time.RFC3339))
		return nil, s.blockedError(unblockAt)
	}

	if !s.limiter.TryConsume(in.Identifier) {
		slog.WarnContext(ctx, "issuance refused by rate limiter", "purpose", in.Purpose.String())
		s.metrics.limited(ctx, in.Purpose, in.Channel)

		retry := ""
		if st, ok := s.limiter.State(in.Identifier); ok {
			retry = strconv.Itoa(ceilSeconds(st.WindowResetAt.Sub(s.clock.Now())))
		}
		return nil, goerror.NewBusinessCause(entity.ErrRateLimited,
			"Too many code requests. Please try again later.", goerror.CodeTooManyRequest,
			goerror.FieldRetryAfter, retry)
	}

	code, err := s.otp.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	salt, err := hash.NewSalt(hash.DefaultSaltBytes)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate salt", "error", err)
		return nil, goerror.NewServer(err)
	}

	digest, err := s.digester.Digest(code, salt)
	if err != nil {
		slog.ErrorContext(ctx, "failed to digest otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	sess := entity.Session{
		Identifier: in.Identifier,
		Purpose:    in.Purpose,
		Channel:    in.Channel,
		Digest:     digest,
		Salt:       salt,
		ExpiresAt:  s.clock.Now().Add(s.codeExpiry()),
	}

	if err := s.persist(&sess); err != nil {
		slog.ErrorContext(ctx, "failed to store verification session", "error", err)
		return nil, goerror.NewServer(err)
	}

	s.record(ctx, sess, entity.StatusSent, "")

	return &IssueOutput{
		TokenID:   sess.TokenID,
		ExpiresAt: sess.ExpiresAt,
		Code:      code,
	}, nil
}

// persist assigns a fresh token and stores the session, retrying on the
// vanishingly rare token collision.
func (s *Usecase) persist(sess *entity.Session) error {
	var err error
	for range maxTokenAttempts {
		sess.TokenID = s.token.Generate()
		if err = s.sessions.Create(*sess); !errors.Is(err, goerror.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("token collision after %d attempts: %w", maxTokenAttempts, err)
}

func (s *Usecase) blockedError(unblockAt time.Time) error {
	be := &entity.BlockedError{UnblockAt: unblockAt, Remaining: unblockAt.Sub(s.clock.Now())}

	return goerror.NewBusinessCause(be,
		fmt.Sprintf("Too many failed attempts. Try again in %d minutes.", be.RemainingMinutes()),
		goerror.CodeLocked,
		goerror.FieldRetryAfter, strconv.Itoa(ceilSeconds(be.Remaining)))
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
