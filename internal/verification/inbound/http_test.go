package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpguard/internal/pkg/clock"
	"github.com/shandysiswandi/otpguard/internal/pkg/goerror"
	"github.com/shandysiswandi/otpguard/internal/pkg/instrument"
	"github.com/shandysiswandi/otpguard/internal/pkg/jwt"
	"github.com/shandysiswandi/otpguard/internal/pkg/router"
	"github.com/shandysiswandi/otpguard/internal/pkg/uid"
	"github.com/shandysiswandi/otpguard/internal/verification/entity"
	"github.com/shandysiswandi/otpguard/internal/verification/usecase"
)

type fakeUsecase struct {
	sendIn    usecase.SendCodeInput
	sendErr   error
	verify    *usecase.VerifyOutput
	verifyErr error
	logsIn    usecase.LogsInput
	logs      []entity.AuditLogEntry
}

func (f *fakeUsecase) SendCode(_ context.Context, in usecase.SendCodeInput) (*usecase.SendCodeOutput, error) {
	f.sendIn = in
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &usecase.SendCodeOutput{TokenID: "tok", ExpiresAt: time.Unix(0, 0).UTC()}, nil
}

func (f *fakeUsecase) Verify(context.Context, usecase.VerifyInput) (*usecase.VerifyOutput, error) {
	return f.verify, f.verifyErr
}

func (f *fakeUsecase) Logs(_ context.Context, in usecase.LogsInput) ([]entity.AuditLogEntry, error) {
	f.logsIn = in
	return f.logs, nil
}

func (f *fakeUsecase) Stats(context.Context) (*entity.Stats, error) {
	return &entity.Stats{TotalSent: 2, TotalVerified: 1, SuccessRatePercent: 50}, nil
}

func newTestServer(t *testing.T, f *fakeUsecase) (*router.Router, string) {
	t.Helper()

	j, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("z", 64)),
		Issuer:    "otpguard",
		Audiences: []string{"otpguard-admin"},
		TTL:       time.Hour,
		Clock:     clock.New(),
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}
	tok, err := j.Generate("ops-1", "auditor")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	r := router.NewRouter(router.Config{UUID: uid.NewUUID(), JWT: j, Instrument: instrument.NewNoop()})
	RegisterHTTPEndpoint(r, f)
	return r, tok
}

func TestHTTPEndpoint_SendCode(t *testing.T) {
	// Arrange
	f := &fakeUsecase{}
	r, _ := newTestServer(t, f)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/otp/send",
		strings.NewReader(`{"identifier":"a@x.com","purpose":"REGISTRATION","channel":"EMAIL"}`))
	req.Header.Set("Idempotency-Key", " k-1 ")
	rec := httptest.NewRecorder()

	// Act
	r.ServeHTTP(rec, req)

	// Assert
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if f.sendIn.IdempotencyKey != "k-1" || f.sendIn.Identifier != "a@x.com" {
		t.Fatalf("usecase input = %+v", f.sendIn)
	}

	var body struct {
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data["token_id"] != "tok" {
		t.Fatalf("data = %v", body.Data)
	}
	if _, ok := body.Data["code"]; ok {
		t.Fatalf("code must be omitted when empty")
	}
}

func TestHTTPEndpoint_SendCodeErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantRetry  string
	}{
		{name: "unknown field", body: `{"identifier":"a@x.com","foo":1}`, wantStatus: http.StatusBadRequest},
		{
			name:       "blocked",
			body:       `{"identifier":"a@x.com","purpose":"REGISTRATION","channel":"EMAIL"}`,
			err:        goerror.NewBusinessCause(entity.ErrBlocked, "Too many failed attempts. Try again in 30 minutes.", goerror.CodeLocked, goerror.FieldRetryAfter, "1800"),
			wantStatus: http.StatusLocked,
			wantRetry:  "1800",
		},
		{
			name:       "rate limited",
			body:       `{"identifier":"a@x.com","purpose":"REGISTRATION","channel":"EMAIL"}`,
			err:        goerror.NewBusinessCause(entity.ErrRateLimited, "Too many code requests. Please try again later.", goerror.CodeTooManyRequest, goerror.FieldRetryAfter, "60"),
			wantStatus: http.StatusTooManyRequests,
			wantRetry:  "60",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestServer(t, &fakeUsecase{sendErr: tt.err})
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/otp/send", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Retry-After"); got != tt.wantRetry {
				t.Fatalf("Retry-After = %q, want %q", got, tt.wantRetry)
			}
		})
	}
}

func TestHTTPEndpoint_Verify(t *testing.T) {
	f := &fakeUsecase{verify: &usecase.VerifyOutput{Verified: false, AttemptsRemaining: 3}}
	r, _ := newTestServer(t, f)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/otp/verify", strings.NewReader(`{"token_id":"tok","code":"123456"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"attempts_remaining":3`) || !strings.Contains(rec.Body.String(), "Incorrect code") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestHTTPEndpoint_LogsRequiresToken(t *testing.T) {
	// Arrange
	f := &fakeUsecase{logs: []entity.AuditLogEntry{{ID: 42, Status: entity.StatusSent, Purpose: entity.PurposeLogin2FA, Channel: entity.ChannelSMS}}}
	r, tok := newTestServer(t, f)

	// Act
	anon := httptest.NewRecorder()
	r.ServeHTTP(anon, httptest.NewRequest(http.MethodGet, "/api/v1/otp/logs", nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/otp/logs?limit=20", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	authed := httptest.NewRecorder()
	r.ServeHTTP(authed, req)

	// Assert
	if anon.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", anon.Code)
	}
	if authed.Code != http.StatusOK {
		t.Fatalf("authorized status = %d, body = %s", authed.Code, authed.Body.String())
	}
	if f.logsIn.Limit != 20 {
		t.Fatalf("limit = %d, want 20", f.logsIn.Limit)
	}
	for _, want := range []string{`"id":"42"`, `"status":"OTP_SENT"`, `"channel":"SMS"`, `"count":1`} {
		if !strings.Contains(authed.Body.String(), want) {
			t.Fatalf("body %s missing %s", authed.Body.String(), want)
		}
	}
}

func TestHTTPEndpoint_LogsBadLimit(t *testing.T) {
	r, tok := newTestServer(t, &fakeUsecase{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/otp/logs?limit=abc", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHTTPEndpoint_Stats(t *testing.T) {
	r, tok := newTestServer(t, &fakeUsecase{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/otp/stats", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success_rate_percent":50`) {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
