package services

import (
	"context"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
)

// SubscriptionReaderSvc reads subscription state.
type SubscriptionReaderSvc interface {
	// GetOrCreate returns the subject's authoritative subscription, expiring a
	// lapsed trial on the way, or starts a new trial when there is none.
	GetOrCreate(ctx context.Context, subjectID string) (*domain.Subscription, error)

	HasShieldConsent(ctx context.Context, subjectID string) (bool, error)
}

// SubscriptionWriterSvc changes subscription state.
type SubscriptionWriterSvc interface {
	Upgrade(ctx context.Context, req dto.UpgradeSubscriptionRequest, clientIP string) (*domain.Subscription, error)
	RecordShieldConsent(ctx context.Context, subjectID, clientIP string) (*domain.ShieldConsent, error)

	// ExpireLapsedTrials expires every lapsed trial in one pass.
	ExpireLapsedTrials(ctx context.Context) (int64, error)
}

// SubscriptionSvcFacade combines the subscription service interfaces.
type SubscriptionSvcFacade interface {
	SubscriptionReaderSvc
	SubscriptionWriterSvc
}
