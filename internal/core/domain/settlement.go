package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus is the lifecycle state of a settlement case.
type SettlementStatus string

const (
	SettlementIntake      SettlementStatus = "intake"
	SettlementNegotiating SettlementStatus = "negotiating"
	SettlementSettled     SettlementStatus = "settled"
	SettlementClosed      SettlementStatus = "closed"
)

const (
	// MinSettlementDebt is the smallest total debt, in rupees, accepted at intake.
	MinSettlementDebt int64 = 100000
	// SettlementFeeLabel describes the fee to customers.
	SettlementFeeLabel = "10% + GST"
)

var (
	settlementFeeRate = decimal.RequireFromString("0.10")
	settlementGSTRate = decimal.RequireFromString("0.18")
)

// settlementTransitions lists the allowed next states, in display order.
var settlementTransitions = map[SettlementStatus][]SettlementStatus{
	SettlementIntake:      {SettlementNegotiating, SettlementClosed},
	SettlementNegotiating: {SettlementSettled, SettlementClosed},
	SettlementSettled:     {SettlementClosed},
	SettlementClosed:      {},
}

// IsValid reports whether s is a known status.
func (s SettlementStatus) IsValid() bool {
	_, ok := settlementTransitions[s]
	return ok
}

// AllowedTransitions returns the states reachable from s.
func (s SettlementStatus) AllowedTransitions() []SettlementStatus {
	next := settlementTransitions[s]
	out := make([]SettlementStatus, len(next))
	copy(out, next)
	return out
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s SettlementStatus) CanTransitionTo(next SettlementStatus) bool {
	for _, allowed := range settlementTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SettlementCase tracks a negotiated settlement for one subject.
type SettlementCase struct {
	ID            string
	SubjectID     string
	TotalDebt     int64
	TargetAmount  *int64
	Status        SettlementStatus
	SettledAmount *int64
	FeeAmount     *int64
	AssignedTo    string
	StartedAt     time.Time
	SettledAt     *time.Time
	AuditFields
}

// ValidateDebtThreshold rejects debts below MinSettlementDebt.
func ValidateDebtThreshold(totalDebt int64) error {
	if totalDebt < MinSettlementDebt {
		return fmt.Errorf("Minimum debt for settlement is ₹%s. Provided: ₹%s",
			GroupThousands(MinSettlementDebt), GroupThousands(totalDebt))
	}
	return nil
}

// ComputeSettlementFee returns the 10% fee plus 18% GST on that fee, rounded up
// to the next whole rupee.
func ComputeSettlementFee(settledAmount int64) int64 {
	base := decimal.NewFromInt(settledAmount).Mul(settlementFeeRate)
	gst := base.Mul(settlementGSTRate)
	return base.Add(gst).Ceil().IntPart()
}

// Transition returns a copy of c moved to next. The receiver is not modified.
func (c SettlementCase) Transition(next SettlementStatus, settledAmount *int64, assignedTo string, now time.Time) (SettlementCase, error) {
	if !c.Status.CanTransitionTo(next) {
		return c, fmt.Errorf("Invalid transition: %s → %s. Valid: {%s}", c.Status, next, joinStatuses(c.Status.AllowedTransitions()))
	}

	updated := c
	if next == SettlementSettled {
		if settledAmount == nil || *settledAmount <= 0 {
			return c, errors.New("settled_amount is required and must be > 0 for settlement.")
		}
		amount := *settledAmount
		fee := ComputeSettlementFee(amount)
		settledAt := now
		updated.SettledAmount = &amount
		updated.FeeAmount = &fee
		updated.SettledAt = &settledAt
	}
	if assignedTo != "" {
		updated.AssignedTo = assignedTo
	}
	updated.Status = next
	updated.LastUpdatedAt = now
	return updated, nil
}

func joinStatuses(statuses []SettlementStatus) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// GroupThousands formats n with comma separators, e.g. 100000 -> "100,000".
func GroupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}
