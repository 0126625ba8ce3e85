package domain

import "time"

// AuditEventType names something worth keeping a trail of.
type AuditEventType string

const (
	EventCibilPull            AuditEventType = "cibil_pull"
	EventCibilPullRateLimited AuditEventType = "cibil_pull_rate_limited"
	EventCibilPullError       AuditEventType = "cibil_pull_error"
	EventAggregatorFetch      AuditEventType = "aa_fetch"
	EventAggregatorConsent    AuditEventType = "aa_consent"
	EventSettlementIntake     AuditEventType = "settlement_intake"
	EventSettlementTransition AuditEventType = "settlement_transition"
	EventSubscriptionUpgrade  AuditEventType = "subscription_upgrade"
	EventShieldConsent        AuditEventType = "shield_consent"
	EventTrialExpired         AuditEventType = "trial_expired"
	EventCallbackRequest      AuditEventType = "callback_request"
	EventServiceRequest       AuditEventType = "service_request_created"
	EventAdvisoryPurchase     AuditEventType = "advisory_purchase"
)

// AuditEvent is an append-only audit log entry.
type AuditEvent struct {
	ID        string
	Type      AuditEventType
	SubjectID string
	Phone     string
	IPAddress string
	Metadata  map[string]any
	CreatedAt time.Time
}
