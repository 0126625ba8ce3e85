package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HealthCategory is the band a score falls into.
type HealthCategory string

const (
	CategoryHealthy        HealthCategory = "Healthy"
	CategoryFair           HealthCategory = "Fair"
	CategoryNeedsAttention HealthCategory = "Needs Attention"
	CategoryCritical       HealthCategory = "Critical"
)

// FlaggedAccount is an account that needs the user's attention.
type FlaggedAccount struct {
	LenderName  string          `json:"lender_name"`
	AccountType AccountType     `json:"account_type"`
	Reason      string          `json:"reason"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// HealthScoreResult is the immutable output of a scoring run.
type HealthScoreResult struct {
	Score            int              `json:"score"`
	Category         HealthCategory   `json:"category"`
	TotalOutstanding decimal.Decimal  `json:"total_outstanding"`
	TotalEMI         decimal.Decimal  `json:"total_emi"`
	AvgRate          decimal.Decimal  `json:"avg_rate"`
	DTIRatio         decimal.Decimal  `json:"dti_ratio"`
	SavingsEst       decimal.Decimal  `json:"savings_est"`
	FlaggedAccounts  []FlaggedAccount `json:"flagged_accounts"`
}

// HealthScoreRecord is a persisted scoring run. Records are never updated;
// a new run for the same subject adds another record.
type HealthScoreRecord struct {
	ID            string
	SubjectID     string
	Source        DebtAccountSource
	MonthlyIncome *decimal.Decimal
	Result        HealthScoreResult
	CreatedAt     time.Time
}

// HealthCheckOutcome is what a completed health check hands back to the caller.
type HealthCheckOutcome struct {
	Record         HealthScoreRecord
	Subject        Subject
	Accounts       []DebtAccount
	CreditScore    *int
	RemainingPulls int
	ShareLink      string
}
