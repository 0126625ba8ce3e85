package repositories

import (
	"context"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
)

// HealthCheckSnapshot is everything a single health check persists.
type HealthCheckSnapshot struct {
	Report   *domain.StoredBureauReport
	Accounts []domain.DebtAccount
	Record   domain.HealthScoreRecord
}

// HistoryCursor positions keyset pagination over score history.
type HistoryCursor struct {
	CreatedAt time.Time
	ID        string
}

// HealthScoreRepository persists scoring runs. Runs are append-only.
type HealthScoreRepository interface {
	// SaveHealthCheck stores the report, account snapshot and score atomically.
	SaveHealthCheck(ctx context.Context, snapshot HealthCheckSnapshot) error

	// FindHealthScoreByID retrieves a single scoring run.
	FindHealthScoreByID(ctx context.Context, id string) (*domain.HealthScoreRecord, error)

	// FindLatestBureauReport returns the subject's newest stored report, or ErrNotFound.
	FindLatestBureauReport(ctx context.Context, subjectID string) (*domain.StoredBureauReport, error)

	// ListHealthScores returns up to limit records newest first, strictly
	// older than after when it is set.
	ListHealthScores(ctx context.Context, subjectID string, limit int, after *HistoryCursor) ([]domain.HealthScoreRecord, error)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	SaveAuditEvent(ctx context.Context, event domain.AuditEvent) error
}
