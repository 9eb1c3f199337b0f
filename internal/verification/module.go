package verification

import (
	"context"
	"log/slog"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/shandysiswandi/otpguard/internal/pkg/clock"
	"github.com/shandysiswandi/otpguard/internal/pkg/config"
	"github.com/shandysiswandi/otpguard/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpguard/internal/pkg/hash"
	"github.com/shandysiswandi/otpguard/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpguard/internal/pkg/instrument"
	"github.com/shandysiswandi/otpguard/internal/pkg/messaging"
	"github.com/shandysiswandi/otpguard/internal/pkg/otp"
	"github.com/shandysiswandi/otpguard/internal/pkg/router"
	"github.com/shandysiswandi/otpguard/internal/pkg/uid"
	"github.com/shandysiswandi/otpguard/internal/pkg/validator"
	"github.com/shandysiswandi/otpguard/internal/verification/inbound"
	"github.com/shandysiswandi/otpguard/internal/verification/outbound/memory"
	"github.com/shandysiswandi/otpguard/internal/verification/outbound/mq"
	"github.com/shandysiswandi/otpguard/internal/verification/usecase"
)

const defaultSweepInterval = time.Minute

type Dependency struct {
	Ctx         context.Context            `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Enforcer    *casbin.Enforcer           `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	Token       uid.StringID               `validate:"required"`
	Digester    hash.Digester              `validate:"required"`
	OTP         otp.Generator              `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	cfg := dep.Config
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument,
		cfg.GetString("modules.verification.delivery_destination"))

	uc := usecase.New(usecase.Dependency{
		Sessions: memory.NewSessionStore(),
		RateLimiter: memory.NewRateLimiter(dep.Clock,
			config.IntOr(cfg, "modules.verification.rate_limit_per_hour", memory.DefaultRateLimit),
			config.MinuteOr(cfg, "modules.verification.rate_limit_window_minutes", memory.DefaultRateWindow),
		),
		BlockList:     memory.NewBlockList(dep.Clock),
		AuditLog:      memory.NewAuditLog(dep.Clock, dep.UID, cfg.GetInt("modules.verification.audit_capacity")),
		RepoMessaging: repoMsg,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        cfg,
		Digester:      dep.Digester,
		OTP:           dep.OTP,
		Token:         dep.Token,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	interval := config.SecondOr(cfg, "modules.verification.sweep_interval_seconds", defaultSweepInterval)
	started := dep.Goroutine.Every(dep.Ctx, "verification.sweep", interval, func(ctx context.Context) error {
		_, err := uc.Sweep(ctx)
		return err
	})
	if !started {
		slog.WarnContext(dep.Ctx, "expired session sweep not started", "interval", interval.String())
	}

	return nil
}
