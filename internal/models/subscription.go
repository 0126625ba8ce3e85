package models

import "time"

// Subscription is the database row for a subscription. Upgrade history is JSONB.
type Subscription struct {
	SubscriptionID         string     `db:"subscription_id"`
	SubjectID              string     `db:"subject_id"`
	Tier                   *string    `db:"tier"`
	BillingPeriod          *string    `db:"billing_period"`
	Status                 string     `db:"status"`
	AmountPaid             int64      `db:"amount_paid"`
	PaymentRef             *string    `db:"payment_ref"`
	TrialEndsAt            time.Time  `db:"trial_ends_at"`
	ExpiresAt              *time.Time `db:"expires_at"`
	UpgradeHistory         []byte     `db:"upgrade_history"`
	ShieldConsentTimestamp *time.Time `db:"shield_consent_timestamp"`
	AuditFields
}

// ShieldConsent is the database row for a Shield consent record.
type ShieldConsent struct {
	ConsentID          string    `db:"consent_id"`
	SubjectID          string    `db:"subject_id"`
	ConsentTextVersion string    `db:"consent_text_version"`
	IPAddress          string    `db:"ip_address"`
	ConsentedAt        time.Time `db:"consented_at"`
}
