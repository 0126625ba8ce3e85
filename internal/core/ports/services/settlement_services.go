package services

import (
	"context"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
)

// SettlementReaderSvc reads settlement cases.
type SettlementReaderSvc interface {
	// GetLatestCase returns the subject's most recently started case.
	GetLatestCase(ctx context.Context, subjectID string) (*domain.SettlementCase, error)
}

// SettlementWriterSvc opens and moves settlement cases.
type SettlementWriterSvc interface {
	// CreateCase opens a case. It fails with ErrValidation when the debt is
	// below the minimum or the subject already has a case that is not closed.
	CreateCase(ctx context.Context, req dto.SettlementIntakeRequest, clientIP string) (*domain.SettlementCase, error)

	// TransitionCase applies a status change. Concurrent changes to the same
	// case fail with ErrConflict rather than overwrite each other.
	TransitionCase(ctx context.Context, caseID string, req dto.TransitionCaseRequest, actor string) (*domain.SettlementCase, error)
}

// SettlementSvcFacade combines the settlement service interfaces.
type SettlementSvcFacade interface {
	SettlementReaderSvc
	SettlementWriterSvc
}
