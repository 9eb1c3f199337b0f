package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shandysiswandi/otpguard/internal/pkg/config"
	"github.com/shandysiswandi/otpguard/internal/verification/entity"
)

func TestSendCode_DeliversAndHidesCode(t *testing.T) {
	// Arrange
	f := newFixture(t, nil)

	// Act
	out, err := f.uc.SendCode(context.Background(), SendCodeInput{
		Identifier: "  Alice@Example.COM ",
		Purpose:    "registration",
		Channel:    "EMAIL",
	})
	if waitErr := f.goroutine.Wait(); waitErr != nil {
		t.Fatalf("Wait() error = %v", waitErr)
	}

	// Assert
	if err != nil {
		t.Fatalf("SendCode() error = %v", err)
	}
	if out.Code != "" {
		t.Fatalf("code must not be exposed by default")
	}
	if f.publisher.count() != 1 {
		t.Fatalf("published = %d, want 1", f.publisher.count())
	}

	ev := f.publisher.events[0]
	if ev.TokenID != out.TokenID || ev.Identifier != "alice@example.com" || ev.Channel != entity.ChannelEmail || len(ev.Code) != 6 {
		t.Fatalf("event = %+v", ev)
	}
}

func TestSendCode_ExposeCode(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  verification:\n    expose_code: true\n"))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}
	f := newFixture(t, cfg)

	out, err := f.uc.SendCode(context.Background(), SendCodeInput{Identifier: "+6281234567890", Purpose: "LOGIN_2FA", Channel: "SMS"})
	if err != nil {
		t.Fatalf("SendCode() error = %v", err)
	}

	res, err := f.uc.Verify(context.Background(), VerifyInput{TokenID: out.TokenID, Code: out.Code})
	if err != nil || !res.Verified {
		t.Fatalf("Verify(exposed code) = %+v, %v", res, err)
	}
}

func TestSendCode_IdempotencyReplay(t *testing.T) {
	// Arrange
	f := newFixture(t, nil)
	in := SendCodeInput{Identifier: "a@x.com", Purpose: "PASSWORD_RESET", Channel: "EMAIL", IdempotencyKey: "req-1"}

	// Act
	first, err1 := f.uc.SendCode(context.Background(), in)
	second, err2 := f.uc.SendCode(context.Background(), in)
	_ = f.goroutine.Wait()

	// Assert
	if err1 != nil || err2 != nil {
		t.Fatalf("SendCode() errors = %v, %v", err1, err2)
	}
	if first.Replayed || !second.Replayed {
		t.Fatalf("Replayed = %v, %v; want false, true", first.Replayed, second.Replayed)
	}
	if first.TokenID != second.TokenID || !first.ExpiresAt.Equal(second.ExpiresAt) {
		t.Fatalf("replay returned a different session")
	}
	if f.audit.Len() != 1 || f.publisher.count() != 1 {
		t.Fatalf("audit = %d, published = %d; want 1, 1", f.audit.Len(), f.publisher.count())
	}
}

func TestSendCode_IdempotencyKeyNotStuckOnRefusal(t *testing.T) {
	// Arrange
	f := newFixture(t, nil)
	ctx := context.Background()
	in := SendCodeInput{Identifier: "a@x.com", Purpose: "LOGIN_2FA", Channel: "EMAIL", IdempotencyKey: "req-2"}
	f.uc.blocks.Block("a@x.com", time.Minute)

	// Act
	_, blockedErr := f.uc.SendCode(ctx, in)
	_, retryErr := f.uc.SendCode(ctx, in)
	f.clock.Advance(2 * time.Minute)
	out, err := f.uc.SendCode(ctx, in)
	_ = f.goroutine.Wait()

	// Assert
	for _, e := range []error{blockedErr, retryErr} {
		if !errors.Is(e, entity.ErrBlocked) || statusOf(t, e) != http.StatusLocked {
			t.Fatalf("SendCode() while blocked error = %v, want 423 ErrBlocked", e)
		}
	}
	if err != nil || out.Replayed || out.TokenID == "" {
		t.Fatalf("SendCode() after unblock = %+v, %v", out, err)
	}
}

func TestSendCode_ReplayDoesNotExposeCode(t *testing.T) {
	// Arrange
	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  verification:\n    expose_code: true\n"))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}
	f := newFixture(t, cfg)
	in := SendCodeInput{Identifier: "a@x.com", Purpose: "REGISTRATION", Channel: "EMAIL", IdempotencyKey: "req-3"}

	// Act
	first, err1 := f.uc.SendCode(context.Background(), in)
	second, err2 := f.uc.SendCode(context.Background(), in)
	_ = f.goroutine.Wait()

	// Assert
	if err1 != nil || err2 != nil {
		t.Fatalf("SendCode() errors = %v, %v", err1, err2)
	}
	if first.Code == "" || second.Code != "" || !second.Replayed {
		t.Fatalf("codes = %q, %q (replayed %v); want code only on the first call", first.Code, second.Code, second.Replayed)
	}
}

func TestSendCode_InvalidInput(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name string
		in   SendCodeInput
	}{
		{name: "bad identifier", in: SendCodeInput{Identifier: "not-an-address", Purpose: "LOGIN_2FA", Channel: "SMS"}},
		{name: "unknown purpose", in: SendCodeInput{Identifier: "a@x.com", Purpose: "SIGNUP", Channel: "EMAIL"}},
		{name: "unknown channel", in: SendCodeInput{Identifier: "a@x.com", Purpose: "LOGIN_2FA", Channel: "FAX"}},
		{name: "email over sms", in: SendCodeInput{Identifier: "a@x.com", Purpose: "LOGIN_2FA", Channel: "SMS"}},
		{name: "phone over email", in: SendCodeInput{Identifier: "+6281234567890", Purpose: "LOGIN_2FA", Channel: "EMAIL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.SendCode(context.Background(), tt.in)
			if code := statusOf(t, err); code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", code)
			}
		})
	}
}
