package dto

import (
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
)

// PlansResponse lists every plan with its pricing.
type PlansResponse struct {
	Lite       domain.PlanPricing `json:"lite"`
	Shield     domain.PlanPricing `json:"shield"`
	Settlement SettlementPricing  `json:"settlement"`
}

// NewPlansResponse builds the published price list.
func NewPlansResponse() PlansResponse {
	return PlansResponse{
		Lite:       domain.Plans[domain.TierLite],
		Shield:     domain.Plans[domain.TierShield],
		Settlement: DefaultSettlementPricing(),
	}
}

// UpgradeSubscriptionRequest moves a subject onto a paid plan.
type UpgradeSubscriptionRequest struct {
	SubjectID     string               `json:"subject_id" binding:"required,uuid"`
	Tier          domain.Tier          `json:"tier" binding:"required"`
	BillingPeriod domain.BillingPeriod `json:"billing_period" binding:"required"`
}

// ShieldConsentRequest records Shield consent for a subject.
type ShieldConsentRequest struct {
	SubjectID string `json:"subject_id" binding:"required,uuid"`
}

// SubscriptionStatusResponse is the current entitlement of a subject.
type SubscriptionStatusResponse struct {
	ID               string     `json:"id"`
	SubjectID        string     `json:"subject_id"`
	Tier             *string    `json:"tier"`
	Status           string     `json:"status"`
	BillingPeriod    string     `json:"billing_period"`
	TrialEndsAt      time.Time  `json:"trial_ends_at"`
	ExpiresAt        *time.Time `json:"expires_at"`
	DaysRemaining    int        `json:"days_remaining"`
	IsTrial          bool       `json:"is_trial"`
	HasShieldConsent bool       `json:"has_shield_consent"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ToSubscriptionStatusResponse converts a subscription as seen at now.
func ToSubscriptionStatusResponse(s *domain.Subscription, hasConsent bool, now time.Time) SubscriptionStatusResponse {
	var tier *string
	if s.Tier != domain.TierNone {
		t := string(s.Tier)
		tier = &t
	}
	return SubscriptionStatusResponse{
		ID:               s.ID,
		SubjectID:        s.SubjectID,
		Tier:             tier,
		Status:           string(s.Status),
		BillingPeriod:    string(s.BillingPeriod),
		TrialEndsAt:      s.TrialEndsAt,
		ExpiresAt:        s.ExpiresAt,
		DaysRemaining:    s.DaysLeft(now),
		IsTrial:          s.Status == domain.SubscriptionTrial,
		HasShieldConsent: hasConsent || s.ShieldConsentTimestamp != nil,
		CreatedAt:        s.CreatedAt,
	}
}

// UpgradeSubscriptionResponse confirms an upgrade.
type UpgradeSubscriptionResponse struct {
	ID             string                `json:"id"`
	SubjectID      string                `json:"subject_id"`
	Tier           string                `json:"tier"`
	Status         string                `json:"status"`
	BillingPeriod  string                `json:"billing_period"`
	AmountPaid     int64                 `json:"amount_paid"`
	PaymentRef     string                `json:"payment_ref,omitempty"`
	ExpiresAt      *time.Time            `json:"expires_at"`
	UpgradeHistory []domain.UpgradeEntry `json:"upgrade_history"`
	Message        string                `json:"message"`
}

// ToUpgradeSubscriptionResponse converts an upgraded subscription.
func ToUpgradeSubscriptionResponse(s *domain.Subscription, message string) UpgradeSubscriptionResponse {
	return UpgradeSubscriptionResponse{
		ID:             s.ID,
		SubjectID:      s.SubjectID,
		Tier:           string(s.Tier),
		Status:         string(s.Status),
		BillingPeriod:  string(s.BillingPeriod),
		AmountPaid:     s.AmountPaid,
		PaymentRef:     s.PaymentRef,
		ExpiresAt:      s.ExpiresAt,
		UpgradeHistory: s.UpgradeHistory,
		Message:        message,
	}
}

// ShieldConsentResponse confirms a recorded consent.
type ShieldConsentResponse struct {
	Message   string    `json:"message"`
	ConsentID string    `json:"consent_id"`
	Timestamp time.Time `json:"timestamp"`
}
