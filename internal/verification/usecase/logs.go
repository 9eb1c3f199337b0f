package usecase

import (
	"context"

	"github.com/shandysiswandi/otpguard/internal/pkg/goerror"
	"github.com/shandysiswandi/otpguard/internal/verification/entity"
)

const (
	authzObjectAudit = "otp.audit"
	authzActionRead  = "read"
)

type LogsInput struct {
	// Limit caps the number of newest entries returned; zero returns all.
	Limit int `validate:"gte=0,lte=500"`
}

// Logs returns audit entries newest first.
func (s *Usecase) Logs(ctx context.Context, in LogsInput) ([]entity.AuditLogEntry, error) {
	ctx, span := s.startSpan(ctx, "Logs")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, authzObjectAudit, authzActionRead); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	return s.audit.Recent(in.Limit), nil
}
