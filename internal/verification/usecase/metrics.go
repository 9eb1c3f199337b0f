package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpguard/internal/pkg/instrument"
	"github.com/shandysiswandi/otpguard/internal/verification/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	issued      metric.Int64Counter
	verified    metric.Int64Counter
	failed      metric.Int64Counter
	blocked     metric.Int64Counter
	expired     metric.Int64Counter
	rateLimited metric.Int64Counter
}

func newMetrics(ins instrument.Instrumentation) *metrics {
	meter := ins.Meter("verification.usecase")
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			slog.Error("failed to create counter", "name", name, "error", err)
			return nil
		}
		return c
	}

	return &metrics{
		issued:      counter("otp.issued", "Number of OTP sessions issued"),
		verified:    counter("otp.verified", "Number of successful verifications"),
		failed:      counter("otp.failed", "Number of wrong-code attempts with attempts left"),
		blocked:     counter("otp.blocked", "Number of blocked issuances and lockouts"),
		expired:     counter("otp.expired", "Number of verifications against expired sessions"),
		rateLimited: counter("otp.rate_limited", "Number of issuances refused by the rate limiter"),
	}
}

func (m *metrics) outcome(ctx context.Context, status entity.Status, p entity.Purpose, c entity.Channel) {
	var counter metric.Int64Counter
	switch status {
	case entity.StatusSent:
		counter = m.issued
	case entity.StatusVerified:
		counter = m.verified
	case entity.StatusFailed:
		counter = m.failed
	case entity.StatusBlocked:
		counter = m.blocked
	case entity.StatusExpired:
		counter = m.expired
	case entity.StatusUnknown:
		return
	default:
		return
	}
	add(ctx, counter, p, c)
}

func (m *metrics) limited(ctx context.Context, p entity.Purpose, c entity.Channel) {
	add(ctx, m.rateLimited, p, c)
}

func add(ctx context.Context, counter metric.Int64Counter, p entity.Purpose, c entity.Channel) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("otp.purpose", p.String()),
		attribute.String("otp.channel", c.String()),
	))
}
