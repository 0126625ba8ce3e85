package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	"github.com/exitdebt/exitdebt_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSubscriptionRepository struct {
	db *pgxpool.Pool
}

func newPgxSubscriptionRepository(db *pgxpool.Pool) portsrepo.SubscriptionRepositoryFacade {
	return &PgxSubscriptionRepository{db: db}
}

var _ portsrepo.SubscriptionRepositoryFacade = (*PgxSubscriptionRepository)(nil)

func toModelSubscription(d domain.Subscription) (models.Subscription, error) {
	history := d.UpgradeHistory
	if history == nil {
		history = []domain.UpgradeEntry{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("failed to encode upgrade history: %w", err)
	}
	return models.Subscription{
		SubscriptionID:         d.ID,
		SubjectID:              d.SubjectID,
		Tier:                   nullableString(string(d.Tier)),
		BillingPeriod:          nullableString(string(d.BillingPeriod)),
		Status:                 string(d.Status),
		AmountPaid:             d.AmountPaid,
		PaymentRef:             nullableString(d.PaymentRef),
		TrialEndsAt:            d.TrialEndsAt,
		ExpiresAt:              d.ExpiresAt,
		UpgradeHistory:         historyJSON,
		ShieldConsentTimestamp: d.ShieldConsentTimestamp,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			LastUpdatedAt: d.LastUpdatedAt,
			Version:       d.Version,
		},
	}, nil
}

func toDomainSubscription(m models.Subscription) (domain.Subscription, error) {
	var history []domain.UpgradeEntry
	if len(m.UpgradeHistory) > 0 {
		if err := json.Unmarshal(m.UpgradeHistory, &history); err != nil {
			return domain.Subscription{}, fmt.Errorf("failed to decode upgrade history for %s: %w", m.SubscriptionID, err)
		}
	}
	period := domain.BillingPeriod(stringValue(m.BillingPeriod))
	if period == "" {
		period = domain.Monthly
	}
	return domain.Subscription{
		ID:                     m.SubscriptionID,
		SubjectID:              m.SubjectID,
		Tier:                   domain.Tier(stringValue(m.Tier)),
		BillingPeriod:          period,
		Status:                 domain.SubscriptionStatus(m.Status),
		AmountPaid:             m.AmountPaid,
		PaymentRef:             stringValue(m.PaymentRef),
		TrialEndsAt:            m.TrialEndsAt,
		ExpiresAt:              m.ExpiresAt,
		UpgradeHistory:         history,
		ShieldConsentTimestamp: m.ShieldConsentTimestamp,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
			Version:       m.Version,
		},
	}, nil
}

const subscriptionColumns = `subscription_id, subject_id, tier, billing_period, status, amount_paid, payment_ref,
	trial_ends_at, expires_at, upgrade_history, shield_consent_timestamp, created_at, last_updated_at, version`

func (r *PgxSubscriptionRepository) SaveSubscription(ctx context.Context, subscription domain.Subscription) error {
	m, err := toModelSubscription(subscription)
	if err != nil {
		return err
	}
	query := `INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`
	_, err = r.db.Exec(ctx, query,
		m.SubscriptionID,
		m.SubjectID,
		m.Tier,
		m.BillingPeriod,
		m.Status,
		m.AmountPaid,
		m.PaymentRef,
		m.TrialEndsAt,
		m.ExpiresAt,
		m.UpgradeHistory,
		m.ShieldConsentTimestamp,
		m.CreatedAt,
		m.LastUpdatedAt,
		m.Version,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: subscription %s", apperrors.ErrDuplicate, m.SubscriptionID)
		}
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

func (r *PgxSubscriptionRepository) UpdateSubscription(ctx context.Context, subscription domain.Subscription, expectedVersion int64) error {
	m, err := toModelSubscription(subscription)
	if err != nil {
		return err
	}
	query := `
		UPDATE subscriptions
		SET tier = $3,
			billing_period = $4,
			status = $5,
			amount_paid = $6,
			payment_ref = $7,
			trial_ends_at = $8,
			expires_at = $9,
			upgrade_history = $10,
			shield_consent_timestamp = $11,
			last_updated_at = $12,
			version = $13
		WHERE subscription_id = $1 AND version = $2;
	`
	tag, err := r.db.Exec(ctx, query,
		m.SubscriptionID,
		expectedVersion,
		m.Tier,
		m.BillingPeriod,
		m.Status,
		m.AmountPaid,
		m.PaymentRef,
		m.TrialEndsAt,
		m.ExpiresAt,
		m.UpgradeHistory,
		m.ShieldConsentTimestamp,
		m.LastUpdatedAt,
		m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription %s: %w", m.SubscriptionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: subscription %s changed since version %d", apperrors.ErrConflict, m.SubscriptionID, expectedVersion)
	}
	return nil
}

// ExpireLapsedTrials uses the same whole-day rule as domain.DaysRemaining: a
// trial with less than a full day left has lapsed.
func (r *PgxSubscriptionRepository) ExpireLapsedTrials(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE subscriptions
		SET status = 'expired', last_updated_at = $1, version = version + 1
		WHERE status = 'trial' AND trial_ends_at < $2;
	`
	tag, err := r.db.Exec(ctx, query, now, now.Add(24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("failed to expire lapsed trials: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgxSubscriptionRepository) FindLatestSubscription(ctx context.Context, subjectID string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE subject_id = $1
		ORDER BY created_at DESC, subscription_id DESC
		LIMIT 1;`
	var m models.Subscription
	err := r.db.QueryRow(ctx, query, subjectID).Scan(
		&m.SubscriptionID,
		&m.SubjectID,
		&m.Tier,
		&m.BillingPeriod,
		&m.Status,
		&m.AmountPaid,
		&m.PaymentRef,
		&m.TrialEndsAt,
		&m.ExpiresAt,
		&m.UpgradeHistory,
		&m.ShieldConsentTimestamp,
		&m.CreatedAt,
		&m.LastUpdatedAt,
		&m.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find subscription for subject %s: %w", subjectID, err)
	}
	d, err := toDomainSubscription(m)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type PgxShieldConsentRepository struct {
	db *pgxpool.Pool
}

func newPgxShieldConsentRepository(db *pgxpool.Pool) portsrepo.ShieldConsentRepository {
	return &PgxShieldConsentRepository{db: db}
}

var _ portsrepo.ShieldConsentRepository = (*PgxShieldConsentRepository)(nil)

func (r *PgxShieldConsentRepository) SaveShieldConsent(ctx context.Context, consent domain.ShieldConsent) error {
	m := models.ShieldConsent{
		ConsentID:          consent.ID,
		SubjectID:          consent.SubjectID,
		ConsentTextVersion: consent.ConsentTextVersion,
		IPAddress:          consent.IPAddress,
		ConsentedAt:        consent.Timestamp,
	}
	query := `
		INSERT INTO shield_consents (consent_id, subject_id, consent_text_version, ip_address, consented_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := r.db.Exec(ctx, query, m.ConsentID, m.SubjectID, m.ConsentTextVersion, m.IPAddress, m.ConsentedAt); err != nil {
		return fmt.Errorf("failed to save shield consent: %w", err)
	}
	return nil
}

func (r *PgxShieldConsentRepository) FindLatestShieldConsent(ctx context.Context, subjectID string) (*domain.ShieldConsent, error) {
	query := `
		SELECT consent_id, subject_id, consent_text_version, ip_address, consented_at
		FROM shield_consents
		WHERE subject_id = $1
		ORDER BY consented_at DESC
		LIMIT 1;
	`
	var m models.ShieldConsent
	err := r.db.QueryRow(ctx, query, subjectID).Scan(
		&m.ConsentID,
		&m.SubjectID,
		&m.ConsentTextVersion,
		&m.IPAddress,
		&m.ConsentedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find shield consent for subject %s: %w", subjectID, err)
	}
	return &domain.ShieldConsent{
		ID:                 m.ConsentID,
		SubjectID:          m.SubjectID,
		ConsentTextVersion: m.ConsentTextVersion,
		IPAddress:          m.IPAddress,
		Timestamp:          m.ConsentedAt,
	}, nil
}
