// Package scoring turns a snapshot of debt accounts into a debt health score.
//
// Scoring model weights:
//   - Debt-to-income ratio: 30%
//   - Average interest rate: 25%
//   - Active account count: 15%
//   - Credit utilization: 15%
//   - Payment history: 15%
//
// All arithmetic is decimal so that band edges and the final truncation are exact.
package scoring

import (
	"fmt"
	"strings"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Weights of each component in the final score. They sum to 1.
var (
	WeightDTI            = decimal.RequireFromString("0.30")
	WeightRate           = decimal.RequireFromString("0.25")
	WeightAccountCount   = decimal.RequireFromString("0.15")
	WeightUtilization    = decimal.RequireFromString("0.15")
	WeightPaymentHistory = decimal.RequireFromString("0.15")
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)

	// assumedEMIShare is the fraction of income EMIs are assumed to consume
	// when income is unknown.
	assumedEMIShare = decimal.RequireFromString("0.4")

	// OptimalConsolidationRate is the midpoint of the 10-14% band debts
	// could be refinanced at.
	OptimalConsolidationRate = decimal.NewFromInt(12)

	highRateThreshold        = decimal.NewFromInt(24)
	highUtilizationThreshold = decimal.RequireFromString("0.75")
	poorHistoryThreshold     = decimal.RequireFromString("0.7")
)

type band struct {
	upTo  decimal.Decimal
	score int
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Each table is inclusive at the upper bound; values past the last band get
// the fallback score.
var (
	dtiBands         = []band{{dec("0.20"), 100}, {dec("0.35"), 80}, {dec("0.50"), 60}, {dec("0.70"), 35}}
	rateBands        = []band{{dec("10"), 100}, {dec("14"), 85}, {dec("20"), 60}, {dec("30"), 35}}
	countBands       = []band{{dec("2"), 100}, {dec("4"), 75}, {dec("6"), 50}, {dec("8"), 30}}
	utilizationBands = []band{{dec("0.30"), 100}, {dec("0.50"), 75}, {dec("0.70"), 45}, {dec("0.90"), 20}}
)

func scoreBands(v decimal.Decimal, bands []band, fallback int) int {
	for _, b := range bands {
		if v.LessThanOrEqual(b.upTo) {
			return b.score
		}
	}
	return fallback
}

// DTIScore scores a debt-to-income ratio; lower is better.
func DTIScore(dti decimal.Decimal) int {
	return scoreBands(dti, dtiBands, 10)
}

// RateScore scores an average interest rate in percent; lower is better.
func RateScore(avgRate decimal.Decimal) int {
	return scoreBands(avgRate, rateBands, 10)
}

// AccountCountScore scores the number of active accounts; fewer is better.
func AccountCountScore(count int) int {
	return scoreBands(decimal.NewFromInt(int64(count)), countBands, 10)
}

// UtilizationScore scores average revolving utilization; lower is better.
func UtilizationScore(avgUtilization decimal.Decimal) int {
	return scoreBands(avgUtilization, utilizationBands, 5)
}

// PaymentHistoryScore maps a history fraction onto 0-100.
func PaymentHistoryScore(avgHistory decimal.Decimal) decimal.Decimal {
	return clampDecimal(avgHistory.Mul(hundred), decimal.Zero, hundred)
}

// CategoryFor returns the band a final score falls into.
func CategoryFor(score int) domain.HealthCategory {
	switch {
	case score >= 85:
		return domain.CategoryHealthy
	case score >= 65:
		return domain.CategoryFair
	case score >= 40:
		return domain.CategoryNeedsAttention
	default:
		return domain.CategoryCritical
	}
}

// Calculate scores a snapshot of accounts. monthlyIncome is optional; when it
// is nil or not positive, income is estimated from the EMI total. Calculate
// never fails: absent numeric fields fall back to neutral values.
func Calculate(accounts []domain.DebtAccount, monthlyIncome *decimal.Decimal) domain.HealthScoreResult {
	if len(accounts) == 0 {
		return domain.HealthScoreResult{
			Score:            100,
			Category:         domain.CategoryHealthy,
			TotalOutstanding: decimal.Zero,
			TotalEMI:         decimal.Zero,
			AvgRate:          decimal.Zero,
			DTIRatio:         decimal.Zero,
			SavingsEst:       decimal.Zero,
			FlaggedAccounts:  []domain.FlaggedAccount{},
		}
	}

	active := make([]domain.DebtAccount, 0, len(accounts))
	for _, acc := range accounts {
		if acc.IsActive() {
			active = append(active, acc)
		}
	}

	totalOutstanding := decimal.Zero
	totalEMI := decimal.Zero
	weightedRates := decimal.Zero
	for _, acc := range active {
		totalOutstanding = totalOutstanding.Add(acc.Outstanding)
		totalEMI = totalEMI.Add(acc.EMI())
		weightedRates = weightedRates.Add(acc.Rate().Mul(acc.Outstanding))
	}

	avgRate := decimal.Zero
	if totalOutstanding.IsPositive() {
		avgRate = weightedRates.Div(totalOutstanding)
	}

	dti := debtToIncome(totalEMI, monthlyIncome)
	avgUtilization := averageUtilization(active)
	avgHistory := averagePaymentHistory(active)

	weighted := WeightDTI.Mul(decimal.NewFromInt(int64(DTIScore(dti)))).
		Add(WeightRate.Mul(decimal.NewFromInt(int64(RateScore(avgRate))))).
		Add(WeightAccountCount.Mul(decimal.NewFromInt(int64(AccountCountScore(len(active)))))).
		Add(WeightUtilization.Mul(decimal.NewFromInt(int64(UtilizationScore(avgUtilization))))).
		Add(WeightPaymentHistory.Mul(PaymentHistoryScore(avgHistory)))

	score := clampInt(int(weighted.IntPart()), 0, 100)

	return domain.HealthScoreResult{
		Score:            score,
		Category:         CategoryFor(score),
		TotalOutstanding: totalOutstanding.Round(2),
		TotalEMI:         totalEMI.Round(2),
		AvgRate:          avgRate.Round(2),
		DTIRatio:         dti.Round(4),
		SavingsEst:       EstimateSavings(accounts),
		FlaggedAccounts:  FlagAccounts(accounts),
	}
}

func debtToIncome(totalEMI decimal.Decimal, monthlyIncome *decimal.Decimal) decimal.Decimal {
	if monthlyIncome != nil && monthlyIncome.IsPositive() {
		return totalEMI.Div(*monthlyIncome)
	}
	estimatedIncome := one
	if totalEMI.IsPositive() {
		estimatedIncome = totalEMI.Div(assumedEMIShare)
	}
	return totalEMI.Div(estimatedIncome)
}

// averageUtilization averages only revolving accounts, i.e. those with a
// positive utilization.
func averageUtilization(active []domain.DebtAccount) decimal.Decimal {
	sum := decimal.Zero
	n := 0
	for _, acc := range active {
		u := acc.UtilizationOrZero()
		if u.IsPositive() {
			sum = sum.Add(u)
			n++
		}
	}
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

func averagePaymentHistory(active []domain.DebtAccount) decimal.Decimal {
	if len(active) == 0 {
		return one
	}
	sum := decimal.Zero
	for _, acc := range active {
		sum = sum.Add(acc.History())
	}
	return sum.Div(decimal.NewFromInt(int64(len(active))))
}

// EstimateSavings approximates the annual interest saved by refinancing every
// account priced above OptimalConsolidationRate at that rate. Closed accounts
// are included.
func EstimateSavings(accounts []domain.DebtAccount) decimal.Decimal {
	savings := decimal.Zero
	for _, acc := range accounts {
		rate := acc.Rate()
		if rate.GreaterThan(OptimalConsolidationRate) && acc.Outstanding.IsPositive() {
			savings = savings.Add(acc.Outstanding.Mul(rate.Sub(OptimalConsolidationRate)).Div(hundred))
		}
	}
	return savings.Round(2)
}

// FlagAccounts returns one entry per account needing attention, in input order.
func FlagAccounts(accounts []domain.DebtAccount) []domain.FlaggedAccount {
	flagged := make([]domain.FlaggedAccount, 0)
	for _, acc := range accounts {
		var reasons []string
		if acc.Status == domain.AccountOverdue {
			reasons = append(reasons, "Account is overdue")
		}
		if rate := acc.Rate(); rate.GreaterThan(highRateThreshold) {
			reasons = append(reasons, fmt.Sprintf("High interest rate (%s%%)", rate.String()))
		}
		if u := acc.UtilizationOrZero(); u.GreaterThan(highUtilizationThreshold) {
			reasons = append(reasons, fmt.Sprintf("High utilization (%s%%)", u.Mul(hundred).StringFixedBank(0)))
		}
		if acc.History().LessThan(poorHistoryThreshold) {
			reasons = append(reasons, "Poor payment history")
		}
		if len(reasons) == 0 {
			continue
		}

		lender := acc.LenderName
		if lender == "" {
			lender = "Unknown"
		}
		accountType := acc.AccountType
		if accountType == "" {
			accountType = "unknown"
		}
		flagged = append(flagged, domain.FlaggedAccount{
			LenderName:  lender,
			AccountType: accountType,
			Reason:      strings.Join(reasons, "; "),
			Outstanding: acc.Outstanding,
		})
	}
	return flagged
}

func clampDecimal(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
