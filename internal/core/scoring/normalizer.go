package scoring

import (
	"strconv"
	"strings"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	// DefaultDueDay is used when a provider gives no usable due date.
	DefaultDueDay = 5
	emiMarker     = "EMI"
)

var (
	// AssumedCardRate is the annual rate assumed for aggregator-reported credit cards.
	AssumedCardRate = decimal.NewFromInt(36)
	// MinimumDueShare estimates a card's monthly payment as a share of its current due.
	MinimumDueShare = decimal.RequireFromString("0.05")
)

// NormalizeBureauAccounts maps bureau tradelines onto the canonical shape.
// Bureau data is already canonical, so this only cleans values: malformed
// numbers become zero or absent and fractions are clamped into [0,1].
func NormalizeBureauAccounts(raw []domain.BureauAccount) []domain.DebtAccount {
	accounts := make([]domain.DebtAccount, 0, len(raw))
	for _, r := range raw {
		outstanding := r.Outstanding.Decimal
		if outstanding.IsNegative() {
			outstanding = decimal.Zero
		}
		accounts = append(accounts, domain.DebtAccount{
			LenderName:     strings.TrimSpace(r.LenderName),
			AccountType:    domain.AccountType(strings.ToLower(strings.TrimSpace(r.AccountType))),
			Outstanding:    outstanding,
			InterestRate:   r.InterestRate.Ptr(),
			EMIAmount:      r.EMIAmount.Ptr(),
			Status:         domain.AccountStatus(strings.ToLower(strings.TrimSpace(r.Status))),
			Utilization:    clampFraction(r.Utilization.Ptr()),
			PaymentHistory: clampFraction(r.PaymentHistory.Ptr()),
		})
	}
	return accounts
}

// NormalizeAggregatorData derives debt accounts from aggregator FI data.
// EMI debits on deposit statements become loans of unknown outstanding, credit
// cards become revolving accounts, and everything else (term deposits and
// unknown FI types) is skipped.
func NormalizeAggregatorData(data domain.FIData) []domain.DebtAccount {
	accounts := make([]domain.DebtAccount, 0)
	for _, fip := range data.FIPs {
		for _, item := range fip.Data {
			switch item.FIType {
			case domain.FITypeDeposit:
				accounts = append(accounts, loansFromStatement(item.Account.Transactions.Transaction)...)
			case domain.FITypeCreditCard:
				accounts = append(accounts, creditCardFromSummary(item))
			}
		}
	}
	return accounts
}

func loansFromStatement(txns []domain.FITransaction) []domain.DebtAccount {
	var loans []domain.DebtAccount
	for _, txn := range txns {
		if !strings.Contains(strings.ToUpper(txn.Narration), emiMarker) || txn.Type != "DEBIT" {
			continue
		}
		lender := strings.ReplaceAll(txn.Narration, "EMI - ", "")
		lender = strings.ReplaceAll(lender, "EMI ", "")
		emi := txn.Amount.Decimal
		zero := decimal.Zero
		loans = append(loans, domain.DebtAccount{
			LenderName:   lender,
			AccountType:  domain.Loan,
			Outstanding:  decimal.Zero,
			InterestRate: &zero,
			EMIAmount:    &emi,
			Status:       domain.AccountActive,
			DueDay:       DefaultDueDay,
		})
	}
	return loans
}

func creditCardFromSummary(item domain.FIItem) domain.DebtAccount {
	masked := item.MaskedAccNumber
	if masked == "" {
		masked = "XXXX"
	}
	due := item.Account.Summary.CurrentDue.Decimal
	rate := AssumedCardRate
	emi := due.Mul(MinimumDueShare)
	return domain.DebtAccount{
		LenderName:   "Credit Card (" + masked + ")",
		AccountType:  domain.CreditCard,
		Outstanding:  due,
		InterestRate: &rate,
		EMIAmount:    &emi,
		Status:       domain.AccountActive,
		DueDay:       parseDueDay(item.Account.Summary.DueDate),
	}
}

// parseDueDay extracts the day from a YYYY-MM-DD date.
func parseDueDay(date string) int {
	parts := strings.Split(strings.TrimSpace(date), "-")
	if len(parts) != 3 {
		return DefaultDueDay
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return DefaultDueDay
	}
	return day
}

func clampFraction(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	c := clampDecimal(*v, decimal.Zero, one)
	return &c
}
