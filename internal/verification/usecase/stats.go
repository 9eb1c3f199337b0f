package usecase

import (
	"context"

	"github.com/shandysiswandi/otpguard/internal/verification/entity"
)

func (s *Usecase) Stats(ctx context.Context) (*entity.Stats, error) {
	ctx, span := s.startSpan(ctx, "Stats")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, authzObjectAudit, authzActionRead); err != nil {
		return nil, err
	}

	st := s.audit.Stats()
	return &st, nil
}
