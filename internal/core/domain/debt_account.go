package domain

import "github.com/shopspring/decimal"

// AccountStatus is the lifecycle status reported for a debt account.
type AccountStatus string

const (
	AccountActive     AccountStatus = "active"
	AccountOverdue    AccountStatus = "overdue"
	AccountClosed     AccountStatus = "closed"
	AccountWrittenOff AccountStatus = "written_off"
)

// AccountType classifies a debt account. It is an open set; providers may
// report types not listed here.
type AccountType string

const (
	PersonalLoan AccountType = "personal_loan"
	CreditCard   AccountType = "credit_card"
	HomeLoan     AccountType = "home_loan"
	Loan         AccountType = "loan"
	OtherDebt    AccountType = "other"
)

// DebtAccount is the canonical account shape consumed by the health score calculator.
// Optional numeric fields are pointers so that "absent" stays distinguishable from zero.
type DebtAccount struct {
	LenderName     string           `json:"lender_name"`
	AccountType    AccountType      `json:"account_type"`
	Outstanding    decimal.Decimal  `json:"outstanding"`
	InterestRate   *decimal.Decimal `json:"interest_rate,omitempty"`
	EMIAmount      *decimal.Decimal `json:"emi_amount,omitempty"`
	Status         AccountStatus    `json:"status"`
	Utilization    *decimal.Decimal `json:"utilization,omitempty"`
	PaymentHistory *decimal.Decimal `json:"payment_history,omitempty"`
	DueDay         int              `json:"due_day,omitempty"`
}

// IsActive reports whether the account counts towards aggregate debt.
func (a DebtAccount) IsActive() bool {
	return a.Status == AccountActive || a.Status == AccountOverdue
}

// Rate returns the interest rate, or zero if absent.
func (a DebtAccount) Rate() decimal.Decimal {
	return valueOr(a.InterestRate, decimal.Zero)
}

// EMI returns the installment amount, or zero if absent.
func (a DebtAccount) EMI() decimal.Decimal {
	return valueOr(a.EMIAmount, decimal.Zero)
}

// UtilizationOrZero returns the revolving utilization, or zero if absent.
func (a DebtAccount) UtilizationOrZero() decimal.Decimal {
	return valueOr(a.Utilization, decimal.Zero)
}

// History returns the payment history fraction, defaulting to a perfect 1.0.
func (a DebtAccount) History() decimal.Decimal {
	return valueOr(a.PaymentHistory, decimal.NewFromInt(1))
}

func valueOr(d *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if d == nil {
		return fallback
	}
	return *d
}

// DebtAccountSource identifies where a snapshot of accounts came from.
type DebtAccountSource string

const (
	SourceBureau     DebtAccountSource = "bureau"
	SourceAggregator DebtAccountSource = "aggregator"
)
