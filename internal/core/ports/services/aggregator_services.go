package services

import (
	"context"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
)

// AggregatorSvcFacade drives the account-aggregator consent flow.
type AggregatorSvcFacade interface {
	CreateConsent(ctx context.Context, req dto.CreateConsentRequest, clientIP string) (*domain.AggregatorConsent, error)
	GetConsent(ctx context.Context, consentID string) (*domain.AggregatorConsent, error)
	ApproveConsent(ctx context.Context, consentID string) (*domain.AggregatorConsent, error)

	// FetchAccounts returns the raw FI data for an approved consent and the
	// debt accounts normalized from it.
	FetchAccounts(ctx context.Context, consentID string) (*domain.FIData, []domain.DebtAccount, error)
}
