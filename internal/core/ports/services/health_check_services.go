package services

import (
	"context"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
)

// HealthCheckRunnerSvc runs scoring flows end to end.
type HealthCheckRunnerSvc interface {
	// RunBureauCheck pulls a bureau report, scores it and stores the result.
	// It fails with ErrRateLimited when the phone has used its pulls for the window.
	RunBureauCheck(ctx context.Context, req dto.HealthCheckRequest, clientIP string) (*domain.HealthCheckOutcome, error)

	// RunAggregatorCheck scores the accounts behind an approved aggregator consent.
	RunAggregatorCheck(ctx context.Context, req dto.AggregatorHealthCheckRequest, clientIP string) (*domain.HealthCheckOutcome, error)
}

// HealthCheckReaderSvc reads stored scoring runs.
type HealthCheckReaderSvc interface {
	GetHealthScore(ctx context.Context, id string) (*domain.HealthScoreRecord, error)

	// ListHealthScores pages through a subject's history newest first.
	ListHealthScores(ctx context.Context, subjectID string, params dto.ListHealthScoresParams) ([]domain.HealthScoreRecord, *string, error)
}

// HealthCheckSvcFacade combines the health check service interfaces.
type HealthCheckSvcFacade interface {
	HealthCheckRunnerSvc
	HealthCheckReaderSvc
}
