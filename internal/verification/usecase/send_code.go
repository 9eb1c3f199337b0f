package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/otpguard/internal/pkg/goerror"
	"github.com/shandysiswandi/otpguard/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpguard/internal/verification/entity"
)

type SendCodeInput struct {
	Identifier     string `validate:"required,max=320,identifier"`
	Purpose        string `validate:"required"`
	Channel        string `validate:"required"`
	IdempotencyKey string `validate:"omitempty,max=128"`
}

type SendCodeOutput struct {
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
	// Code is set only when exposing codes is enabled for non-production use.
	Code string `json:"-"`
	// Replayed reports that the result came from an earlier identical request.
	Replayed bool `json:"-"`
}

// SendCode is the public issuance path: it normalizes the identifier, issues
// a session and hands the code to the delivery channel in the background.
func (s *Usecase) SendCode(ctx context.Context, in SendCodeInput) (*SendCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "SendCode")
	defer span.End()

	in.Identifier = normalizeIdentifier(in.Identifier)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	purpose := entity.ParsePurposeFromString(in.Purpose)
	if purpose.IsUnknown() {
		return nil, goerror.NewInvalidInput(nil, "purpose", "purpose is not supported")
	}

	channel := entity.ParseChannelFromString(in.Channel)
	if channel.IsUnknown() {
		return nil, goerror.NewInvalidInput(nil, "channel", "channel is not supported")
	}

	if isEmail := strings.Contains(in.Identifier, "@"); isEmail != (channel == entity.ChannelEmail) {
		return nil, goerror.NewInvalidInput(nil, "channel", "channel does not match identifier")
	}

	var code string
	run := func(ctx context.Context) ([]byte, error) {
		out, err := s.Issue(ctx, IssueInput{Identifier: in.Identifier, Purpose: purpose, Channel: channel})
		if err != nil {
			return nil, err
		}

		code = out.Code
		s.dispatch(ctx, OTPDeliveryEvent{
			TokenID:    out.TokenID,
			Identifier: in.Identifier,
			Purpose:    purpose,
			Channel:    channel,
			Code:       out.Code,
			ExpiresAt:  out.ExpiresAt,
		})

		return json.Marshal(SendCodeOutput{TokenID: out.TokenID, ExpiresAt: out.ExpiresAt})
	}

	var (
		payload  []byte
		replayed bool
		err      error
	)
	if in.IdempotencyKey == "" || s.idemp == nil {
		payload, err = run(ctx)
	} else {
		key := "otp:send:" + in.Identifier + ":" + in.IdempotencyKey
		payload, replayed, err = s.idemp.Exec(ctx, key, run, idempotency.WithReleaseOn(isBusinessError))
	}
	if err != nil {
		return nil, s.mapIdempotencyError(ctx, err)
	}

	var result SendCodeOutput
	if err := json.Unmarshal(payload, &result); err != nil {
		slog.ErrorContext(ctx, "failed to decode issuance result", "error", err)
		return nil, goerror.NewServer(err)
	}

	result.Replayed = replayed
	// The plaintext code is never written to the idempotency store, so a
	// replay carries only the token and expiry.
	if !replayed && s.cfg != nil && s.cfg.GetBool("modules.verification.expose_code") {
		result.Code = code
	}

	return &result, nil
}

func (s *Usecase) dispatch(ctx context.Context, ev OTPDeliveryEvent) {
	accepted := s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishOTPDelivery(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "failed to publish otp delivery", "channel", ev.Channel.String(), "error", err)
		}
		return nil
	})
	if !accepted {
		slog.WarnContext(ctx, "otp delivery dropped", "token_id", ev.TokenID, "channel", ev.Channel.String())
	}
}

// isBusinessError reports refusals such as Blocked or RateLimited. They
// reflect state at call time, so a retry under the same key must be
// evaluated again rather than answered with a stale failure.
func isBusinessError(err error) bool {
	var gerr *goerror.Error
	return errors.As(err, &gerr) && gerr.Type() == goerror.TypeBusiness
}

func (s *Usecase) mapIdempotencyError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		return goerror.NewBusiness("A request with this idempotency key is still in progress", goerror.CodeConflict)
	case errors.Is(err, idempotency.ErrAlreadyFailed):
		return goerror.NewBusiness("A previous request with this idempotency key failed, use a new key", goerror.CodeConflict)
	}

	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		return err
	}

	slog.ErrorContext(ctx, "failed to execute idempotent issuance", "error", err)
	return goerror.NewServer(err)
}

// normalizeIdentifier trims the identifier and lowercases email addresses so
// rate limits and blocks apply per mailbox regardless of case.
func normalizeIdentifier(id string) string {
	id = strings.TrimSpace(id)
	if strings.Contains(id, "@") {
		return strings.ToLower(id)
	}
	return id
}
