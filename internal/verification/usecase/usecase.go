package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/shandysiswandi/otpguard/internal/pkg/clock"
	"github.com/shandysiswandi/otpguard/internal/pkg/config"
	"github.com/shandysiswandi/otpguard/internal/pkg/goerror"
	"github.com/shandysiswandi/otpguard/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpguard/internal/pkg/hash"
	"github.com/shandysiswandi/otpguard/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpguard/internal/pkg/instrument"
	"github.com/shandysiswandi/otpguard/internal/pkg/jwt"
	"github.com/shandysiswandi/otpguard/internal/pkg/otp"
	"github.com/shandysiswandi/otpguard/internal/pkg/uid"
	"github.com/shandysiswandi/otpguard/internal/pkg/validator"
	"github.com/shandysiswandi/otpguard/internal/verification/entity"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultMaxAttempts   = 5
	defaultCodeExpiry    = 5 * time.Minute
	defaultBlockDuration = 30 * time.Minute

	// expired sessions are kept this long so Verify can still answer
	// SessionExpired; after it they are reaped and read as not found.
	defaultSessionRetention = time.Hour
)

type OTPDeliveryEvent struct {
	TokenID    string
	Identifier string
	Purpose    entity.Purpose
	Channel    entity.Channel
	Code       string
	ExpiresAt  time.Time
}

type repoMessaging interface {
	PublishOTPDelivery(ctx context.Context, msg OTPDeliveryEvent) error
}

type sessionStore interface {
	Create(sess entity.Session) error
	Get(tokenID string) (entity.Session, error)
	Update(tokenID string, fn func(sess *entity.Session) (remove bool)) (entity.Session, error)
	Delete(tokenID string)
	Sweep(cutoff time.Time) int
}

type rateLimiter interface {
	TryConsume(identifier string) bool
	State(identifier string) (entity.RateLimitState, bool)
	Sweep(now time.Time) int
}

type blockList interface {
	IsBlocked(identifier string) (bool, time.Time)
	Block(identifier string, d time.Duration) time.Time
	Sweep(now time.Time) int
}

type auditLog interface {
	Append(e entity.AuditLogEntry) entity.AuditLogEntry
	Recent(n int) []entity.AuditLogEntry
	Stats() entity.Stats
}

type Usecase struct {
	sessions      sessionStore
	limiter       rateLimiter
	blocks        blockList
	audit         auditLog
	repoMessaging repoMessaging
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	digester      hash.Digester
	otp           otp.Generator
	token         uid.StringID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	enforcer      *casbin.Enforcer
	goroutine     *goroutine.Manager
	metrics       *metrics
}

type Dependency struct {
	Sessions      sessionStore
	RateLimiter   rateLimiter
	BlockList     blockList
	AuditLog      auditLog
	RepoMessaging repoMessaging
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	Digester      hash.Digester
	OTP           otp.Generator
	Token         uid.StringID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Enforcer      *casbin.Enforcer
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		sessions:      dep.Sessions,
		limiter:       dep.RateLimiter,
		blocks:        dep.BlockList,
		audit:         dep.AuditLog,
		repoMessaging: dep.RepoMessaging,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		digester:      dep.Digester,
		otp:           dep.OTP,
		token:         dep.Token,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
		goroutine:     dep.Goroutine,
		metrics:       newMetrics(dep.Instrument),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.usecase").Start(ctx, name)
}

func (s *Usecase) maxAttempts() int {
	return config.IntOr(s.cfg, "modules.verification.max_attempts", defaultMaxAttempts)
}

func (s *Usecase) codeExpiry() time.Duration {
	return config.SecondOr(s.cfg, "modules.verification.code_expiry_seconds", defaultCodeExpiry)
}

func (s *Usecase) blockDuration() time.Duration {
	return config.MinuteOr(s.cfg, "modules.verification.block_minutes", defaultBlockDuration)
}

func (s *Usecase) sessionRetention() time.Duration {
	return config.MinuteOr(s.cfg, "modules.verification.session_retention_minutes", defaultSessionRetention)
}

func (s *Usecase) record(ctx context.Context, sess entity.Session, status entity.Status, metadata string) {
	e := s.audit.Append(entity.AuditLogEntry{
		Identifier: sess.Identifier,
		Purpose:    sess.Purpose,
		Channel:    sess.Channel,
		Status:     status,
		Metadata:   metadata,
	})
	s.metrics.outcome(ctx, status, sess.Purpose, sess.Channel)

	slog.DebugContext(ctx, "audit entry recorded", "audit_id", e.ID, "status", status.String(), "purpose", sess.Purpose.String())
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	ok, err := s.enforcer.Enforce(clm.Subject, obj, act)
	if err == nil && !ok && clm.Role != "" {
		ok, err = s.enforcer.Enforce(clm.Role, obj, act)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "subject", clm.Subject, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}
