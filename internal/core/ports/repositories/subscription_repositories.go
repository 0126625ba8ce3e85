package repositories

import (
	"context"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
)

// SubscriptionReader defines read operations for subscriptions.
type SubscriptionReader interface {
	// FindLatestSubscription returns the subject's most recently created subscription, or ErrNotFound.
	FindLatestSubscription(ctx context.Context, subjectID string) (*domain.Subscription, error)
}

// SubscriptionWriter defines write operations for subscriptions.
type SubscriptionWriter interface {
	// SaveSubscription persists a new subscription.
	SaveSubscription(ctx context.Context, subscription domain.Subscription) error

	// UpdateSubscription writes s if the stored version still equals
	// expectedVersion, otherwise it fails with ErrConflict.
	UpdateSubscription(ctx context.Context, subscription domain.Subscription, expectedVersion int64) error

	// ExpireLapsedTrials moves every trial whose window ended before now to
	// expired and returns how many rows changed.
	ExpireLapsedTrials(ctx context.Context, now time.Time) (int64, error)
}

// ShieldConsentRepository persists Shield consent records.
type ShieldConsentRepository interface {
	SaveShieldConsent(ctx context.Context, consent domain.ShieldConsent) error

	// FindLatestShieldConsent returns the newest consent for a subject, or ErrNotFound.
	FindLatestShieldConsent(ctx context.Context, subjectID string) (*domain.ShieldConsent, error)
}

// SubscriptionRepositoryFacade combines all subscription repository interfaces.
type SubscriptionRepositoryFacade interface {
	SubscriptionReader
	SubscriptionWriter
}
