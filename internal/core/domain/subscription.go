package domain

import (
	"strings"
	"time"
)

// Tier is a paid plan. The empty tier marks a subscription still on trial.
type Tier string

const (
	TierNone   Tier = ""
	TierLite   Tier = "lite"
	TierShield Tier = "shield"
)

// BillingPeriod is how often a plan is billed.
type BillingPeriod string

const (
	Monthly BillingPeriod = "monthly"
	Annual  BillingPeriod = "annual"
)

// SubscriptionStatus is the entitlement state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

const (
	// DefaultTrialLength is how long a new subject gets before paying.
	DefaultTrialLength = 90 * 24 * time.Hour
	// ShieldConsentTextVersion is the consent wording version users agree to.
	ShieldConsentTextVersion = "1.0"
)

// PlanPricing is the price of one tier in rupees.
type PlanPricing struct {
	Monthly          int64 `json:"monthly"`
	Annual           int64 `json:"annual"`
	AnnualSavingsPct int   `json:"annual_savings_pct"`
}

// Plans is the versioned price table.
var Plans = map[Tier]PlanPricing{
	TierLite:   {Monthly: 499, Annual: 4999, AnnualSavingsPct: 17},
	TierShield: {Monthly: 1999, Annual: 14999, AnnualSavingsPct: 37},
}

// IsValid reports whether t is a purchasable tier.
func (t Tier) IsValid() bool {
	_, ok := Plans[t]
	return ok
}

// DisplayName returns the tier name as shown to customers.
func (t Tier) DisplayName() string {
	if t == TierNone {
		return "Trial"
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// IsValid reports whether p is a known billing period.
func (p BillingPeriod) IsValid() bool {
	return p == Monthly || p == Annual
}

// Length returns the full length of one billing period. Anything that is not
// annual is billed monthly.
func (p BillingPeriod) Length() time.Duration {
	if p == Annual {
		return 365 * 24 * time.Hour
	}
	return 30 * 24 * time.Hour
}

// PlanPrice looks up the price of tier billed per period. Unknown combinations cost 0.
func PlanPrice(tier Tier, period BillingPeriod) int64 {
	plan, ok := Plans[tier]
	if !ok {
		return 0
	}
	switch period {
	case Monthly:
		return plan.Monthly
	case Annual:
		return plan.Annual
	default:
		return 0
	}
}

// ComputeExpiry returns when a period bought at now runs out.
func ComputeExpiry(period BillingPeriod, now time.Time) time.Time {
	return now.Add(period.Length())
}

// DaysRemaining returns the whole days left until until, never negative.
func DaysRemaining(until, now time.Time) int {
	diff := until.Sub(now)
	if diff <= 0 {
		return 0
	}
	return int(diff / (24 * time.Hour))
}

// UpgradeEntry records one plan change.
type UpgradeEntry struct {
	FromTier      Tier          `json:"from_tier"`
	ToTier        Tier          `json:"to_tier"`
	FromPeriod    BillingPeriod `json:"from_period"`
	ToPeriod      BillingPeriod `json:"to_period"`
	Date          time.Time     `json:"date"`
	Charge        int64         `json:"charge"`
	ProrateCredit int64         `json:"prorate_credit"`
}

// Subscription governs a subject's entitlement. The most recently created
// subscription for a subject is authoritative.
type Subscription struct {
	ID                     string
	SubjectID              string
	Tier                   Tier
	BillingPeriod          BillingPeriod
	Status                 SubscriptionStatus
	AmountPaid             int64
	PaymentRef             string
	TrialEndsAt            time.Time
	ExpiresAt              *time.Time
	UpgradeHistory         []UpgradeEntry
	ShieldConsentTimestamp *time.Time
	AuditFields
}

// NewTrialSubscription builds a fresh trial starting at now. A non-positive
// length uses DefaultTrialLength.
func NewTrialSubscription(id, subjectID string, now time.Time, length time.Duration) Subscription {
	if length <= 0 {
		length = DefaultTrialLength
	}
	return Subscription{
		ID:            id,
		SubjectID:     subjectID,
		Tier:          TierNone,
		BillingPeriod: Monthly,
		Status:        SubscriptionTrial,
		TrialEndsAt:   now.Add(length),
		AuditFields: AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
			Version:       1,
		},
	}
}

// TrialLapsed reports whether a trial subscription has run out at now.
func (s Subscription) TrialLapsed(now time.Time) bool {
	return s.Status == SubscriptionTrial && DaysRemaining(s.TrialEndsAt, now) == 0
}

// ProrateCredit returns the unused value of the current paid period, truncated
// to whole rupees. It is priced from the subscription's own tier and period.
func (s Subscription) ProrateCredit(now time.Time) int64 {
	if s.Status != SubscriptionActive || s.ExpiresAt == nil {
		return 0
	}
	remaining := s.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	price := PlanPrice(s.Tier, s.BillingPeriod)
	return price * remaining.Milliseconds() / s.BillingPeriod.Length().Milliseconds()
}

// DaysLeft returns the status-appropriate days remaining: trial days for a
// trial, days to expiry for an active plan, zero otherwise.
func (s Subscription) DaysLeft(now time.Time) int {
	switch s.Status {
	case SubscriptionTrial:
		return DaysRemaining(s.TrialEndsAt, now)
	case SubscriptionActive:
		if s.ExpiresAt == nil {
			return 0
		}
		return DaysRemaining(*s.ExpiresAt, now)
	default:
		return 0
	}
}

// UpgradeQuote is the price breakdown for moving to a new plan.
type UpgradeQuote struct {
	Price         int64
	ProrateCredit int64
	Charge        int64
}

// QuoteUpgrade prices a move to tier/period. Credit applies only when an
// active plan changes tier; leftover credit beyond the price is dropped.
func (s Subscription) QuoteUpgrade(tier Tier, period BillingPeriod, now time.Time) UpgradeQuote {
	price := PlanPrice(tier, period)
	var credit int64
	if s.Status == SubscriptionActive && s.Tier != tier {
		credit = s.ProrateCredit(now)
	}
	charge := price - credit
	if charge < 0 {
		charge = 0
	}
	return UpgradeQuote{Price: price, ProrateCredit: credit, Charge: charge}
}

// ApplyUpgrade returns a copy of s moved onto tier/period with the history
// entry appended. The receiver's history slice is never modified.
func (s Subscription) ApplyUpgrade(tier Tier, period BillingPeriod, quote UpgradeQuote, now time.Time) Subscription {
	updated := s
	history := make([]UpgradeEntry, 0, len(s.UpgradeHistory)+1)
	history = append(history, s.UpgradeHistory...)
	history = append(history, UpgradeEntry{
		FromTier:      s.Tier,
		ToTier:        tier,
		FromPeriod:    s.BillingPeriod,
		ToPeriod:      period,
		Date:          now,
		Charge:        quote.Charge,
		ProrateCredit: quote.ProrateCredit,
	})
	expires := ComputeExpiry(period, now)

	updated.UpgradeHistory = history
	updated.Tier = tier
	updated.BillingPeriod = period
	updated.Status = SubscriptionActive
	updated.AmountPaid = quote.Charge
	updated.ExpiresAt = &expires
	updated.LastUpdatedAt = now
	return updated
}

// ShieldConsent is a subject's agreement to creditor-communication protection.
type ShieldConsent struct {
	ID                 string
	SubjectID          string
	ConsentTextVersion string
	IPAddress          string
	Timestamp          time.Time
}
