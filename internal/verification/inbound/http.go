package inbound

import (
	"context"

	"github.com/shandysiswandi/otpguard/internal/pkg/router"
	"github.com/shandysiswandi/otpguard/internal/verification/entity"
	"github.com/shandysiswandi/otpguard/internal/verification/usecase"
)

type uc interface {
	SendCode(ctx context.Context, in usecase.SendCodeInput) (*usecase.SendCodeOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)

	Logs(ctx context.Context, in usecase.LogsInput) ([]entity.AuditLogEntry, error)
	Stats(ctx context.Context) (*entity.Stats, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Public
	r.POST("/api/v1/otp/send", end.SendCode)
	r.POST("/api/v1/otp/verify", end.Verify)

	// Audit (need authenticated & authorization)
	r.GET("/api/v1/otp/logs", end.Logs, r.Protected())
	r.GET("/api/v1/otp/stats", end.Stats, r.Protected())
}
