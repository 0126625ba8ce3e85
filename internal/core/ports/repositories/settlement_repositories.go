package repositories

import (
	"context"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
)

// SettlementReader defines read operations for settlement cases.
type SettlementReader interface {
	// FindCaseByID retrieves a settlement case by its ID.
	FindCaseByID(ctx context.Context, caseID string) (*domain.SettlementCase, error)

	// FindOpenCaseBySubject returns the subject's non-closed case, or ErrNotFound.
	FindOpenCaseBySubject(ctx context.Context, subjectID string) (*domain.SettlementCase, error)

	// FindLatestCaseBySubject returns the most recently started case, or ErrNotFound.
	FindLatestCaseBySubject(ctx context.Context, subjectID string) (*domain.SettlementCase, error)
}

// SettlementWriter defines write operations for settlement cases.
type SettlementWriter interface {
	// SaveCase persists a new case. A second open case for the same subject
	// fails with ErrDuplicate.
	SaveCase(ctx context.Context, settlementCase domain.SettlementCase) error

	// UpdateCase writes c if the stored version still equals expectedVersion,
	// otherwise it fails with ErrConflict.
	UpdateCase(ctx context.Context, settlementCase domain.SettlementCase, expectedVersion int64) error
}

// SettlementRepositoryFacade combines all settlement repository interfaces.
type SettlementRepositoryFacade interface {
	SettlementReader
	SettlementWriter
}
