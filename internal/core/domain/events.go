package domain

import "time"

// Routing keys for domain events.
const (
	RoutingHealthScoreComputed     = "health_score.computed"
	RoutingSettlementCaseOpened    = "settlement.case_opened"
	RoutingSettlementCaseMoved     = "settlement.case_transitioned"
	RoutingSubscriptionUpgraded    = "subscription.upgraded"
	RoutingSubscriptionTrialsSwept = "subscription.trials_expired"
	RoutingCRMLead                 = "crm.lead"
	RoutingCallbackRequested       = "callback.requested"
	RoutingServiceRequestOpened    = "service_request.opened"
	RoutingAdvisoryPurchased       = "advisory.purchase_started"
)

// HealthScoreComputedEvent is published after a scoring run is stored.
type HealthScoreComputedEvent struct {
	HealthScoreID    string            `json:"health_score_id"`
	SubjectID        string            `json:"subject_id"`
	Source           DebtAccountSource `json:"source"`
	Score            int               `json:"score"`
	Category         HealthCategory    `json:"category"`
	TotalOutstanding string            `json:"total_outstanding"`
	ComputedAt       time.Time         `json:"computed_at"`
}

// SettlementCaseEvent is published when a case opens or changes status.
type SettlementCaseEvent struct {
	CaseID        string           `json:"case_id"`
	SubjectID     string           `json:"subject_id"`
	FromStatus    SettlementStatus `json:"from_status,omitempty"`
	Status        SettlementStatus `json:"status"`
	TotalDebt     int64            `json:"total_debt"`
	SettledAmount *int64           `json:"settled_amount,omitempty"`
	FeeAmount     *int64           `json:"fee_amount,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// SubscriptionUpgradedEvent is published after an upgrade is stored.
type SubscriptionUpgradedEvent struct {
	SubscriptionID string        `json:"subscription_id"`
	SubjectID      string        `json:"subject_id"`
	Tier           Tier          `json:"tier"`
	BillingPeriod  BillingPeriod `json:"billing_period"`
	Charge         int64         `json:"charge"`
	ProrateCredit  int64         `json:"prorate_credit"`
	OccurredAt     time.Time     `json:"occurred_at"`
}
