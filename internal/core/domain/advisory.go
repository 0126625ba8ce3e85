package domain

import (
	"slices"
	"time"
)

// AdvisoryTier is a one-off advisory package.
type AdvisoryTier string

const (
	AdvisoryBasic    AdvisoryTier = "basic"
	AdvisoryStandard AdvisoryTier = "standard"
	AdvisoryPremium  AdvisoryTier = "premium"
)

// AdvisoryPackage describes what a tier costs and includes.
type AdvisoryPackage struct {
	Price       int64    `json:"price"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// AdvisoryPackages is the advisory price list in rupees.
var AdvisoryPackages = map[AdvisoryTier]AdvisoryPackage{
	AdvisoryBasic: {
		Price:       499,
		Description: "Basic Debt Analysis Report",
		Features: []string{
			"Detailed debt breakdown",
			"Savings opportunities",
			"Basic restructuring plan",
		},
	},
	AdvisoryStandard: {
		Price:       1499,
		Description: "Standard Advisory Package",
		Features: []string{
			"Everything in Basic",
			"1-on-1 advisor consultation (30 min)",
			"Custom restructuring strategy",
			"Lender negotiation guidance",
		},
	},
	AdvisoryPremium: {
		Price:       2999,
		Description: "Premium Advisory Package",
		Features: []string{
			"Everything in Standard",
			"3 advisor consultations (30 min each)",
			"Active lender negotiation support",
			"Settlement tracking dashboard",
			"Priority support for 3 months",
		},
	},
}

// LookupAdvisoryPackage returns a copy of the package for tier.
func LookupAdvisoryPackage(tier AdvisoryTier) (AdvisoryPackage, bool) {
	pkg, ok := AdvisoryPackages[tier]
	if !ok {
		return AdvisoryPackage{}, false
	}
	pkg.Features = slices.Clone(pkg.Features)
	return pkg, true
}

// AdvisoryStatus is the payment state of an advisory purchase.
type AdvisoryStatus string

const (
	AdvisoryPending       AdvisoryStatus = "pending"
	AdvisoryPaid          AdvisoryStatus = "paid"
	AdvisoryActive        AdvisoryStatus = "active"
	AdvisoryExpired       AdvisoryStatus = "expired"
	AdvisoryPaymentFailed AdvisoryStatus = "payment_failed"
)

// AdvisoryPlan is a purchased (or pending) advisory package.
type AdvisoryPlan struct {
	ID          string         `json:"id"`
	SubjectID   string         `json:"subject_id"`
	Tier        AdvisoryTier   `json:"tier"`
	Price       int64          `json:"price"`
	Status      AdvisoryStatus `json:"status"`
	OrderID     string         `json:"order_id,omitempty"`
	PaymentURL  string         `json:"payment_url,omitempty"`
	Description string         `json:"description"`
	Features    []string       `json:"features"`
	AuditFields
}

// NewAdvisoryPlan returns a pending plan for pkg.
func NewAdvisoryPlan(id, subjectID string, tier AdvisoryTier, pkg AdvisoryPackage, now time.Time) AdvisoryPlan {
	return AdvisoryPlan{
		ID:          id,
		SubjectID:   subjectID,
		Tier:        tier,
		Price:       pkg.Price,
		Status:      AdvisoryPending,
		Description: pkg.Description,
		Features:    pkg.Features,
		AuditFields: AuditFields{CreatedAt: now, LastUpdatedAt: now, Version: 1},
	}
}
