package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BureauReport is a stored bureau pull. Raw data is kept encrypted.
type BureauReport struct {
	ReportID         string    `db:"report_id"`
	SubjectID        string    `db:"subject_id"`
	CreditScore      int       `db:"credit_score"`
	EncryptedRawData string    `db:"encrypted_raw_data"`
	PulledAt         time.Time `db:"pulled_at"`
}

// DebtAccount is one normalized account captured with a scoring run.
type DebtAccount struct {
	AccountID      string           `db:"account_id"`
	SubjectID      string           `db:"subject_id"`
	HealthScoreID  string           `db:"health_score_id"`
	LenderName     string           `db:"lender_name"`
	AccountType    string           `db:"account_type"`
	Outstanding    decimal.Decimal  `db:"outstanding"`
	InterestRate   *decimal.Decimal `db:"interest_rate"`
	EMIAmount      *decimal.Decimal `db:"emi_amount"`
	Status         string           `db:"status"`
	Utilization    *decimal.Decimal `db:"utilization"`
	PaymentHistory *decimal.Decimal `db:"payment_history"`
	DueDay         int              `db:"due_day"`
}

// HealthScore is an append-only scoring run. Flagged accounts are stored as JSONB.
type HealthScore struct {
	HealthScoreID    string           `db:"health_score_id"`
	SubjectID        string           `db:"subject_id"`
	Source           string           `db:"source"`
	Score            int              `db:"score"`
	Category         string           `db:"category"`
	TotalOutstanding decimal.Decimal  `db:"total_outstanding"`
	TotalEMI         decimal.Decimal  `db:"total_emi"`
	AvgRate          decimal.Decimal  `db:"avg_rate"`
	DTIRatio         decimal.Decimal  `db:"dti_ratio"`
	SavingsEst       decimal.Decimal  `db:"savings_est"`
	MonthlyIncome    *decimal.Decimal `db:"monthly_income"`
	FlaggedAccounts  []byte           `db:"flagged_accounts"`
	CreatedAt        time.Time        `db:"created_at"`
}

// AuditLog is an append-only audit trail row.
type AuditLog struct {
	AuditLogID string    `db:"audit_log_id"`
	EventType  string    `db:"event_type"`
	SubjectID  *string   `db:"subject_id"`
	Phone      *string   `db:"phone"`
	IPAddress  *string   `db:"ip_address"`
	Metadata   []byte    `db:"metadata"`
	CreatedAt  time.Time `db:"created_at"`
}
