package dto

import (
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
)

// SettlementIntakeRequest opens a settlement case.
type SettlementIntakeRequest struct {
	SubjectID    string `json:"subject_id" binding:"required,uuid"`
	TotalDebt    int64  `json:"total_debt"`
	TargetAmount *int64 `json:"target_amount,omitempty" binding:"omitempty,gt=0"`
}

// TransitionCaseRequest moves a case to a new status.
type TransitionCaseRequest struct {
	Status        domain.SettlementStatus `json:"status" binding:"required"`
	SettledAmount *int64                  `json:"settled_amount,omitempty"`
	AssignedTo    string                  `json:"assigned_to,omitempty" binding:"max=255"`
}

// SettlementCaseResponse is the public view of a settlement case.
type SettlementCaseResponse struct {
	ID            string     `json:"id"`
	SubjectID     string     `json:"subject_id"`
	TotalDebt     int64      `json:"total_debt"`
	TargetAmount  *int64     `json:"target_amount"`
	Status        string     `json:"status"`
	SettledAmount *int64     `json:"settled_amount"`
	FeeAmount     *int64     `json:"fee_amount"`
	AssignedTo    *string    `json:"assigned_to"`
	StartedAt     time.Time  `json:"started_at"`
	SettledAt     *time.Time `json:"settled_at"`
}

// ToSettlementCaseResponse converts a case.
func ToSettlementCaseResponse(c *domain.SettlementCase) SettlementCaseResponse {
	var assigned *string
	if c.AssignedTo != "" {
		a := c.AssignedTo
		assigned = &a
	}
	return SettlementCaseResponse{
		ID:            c.ID,
		SubjectID:     c.SubjectID,
		TotalDebt:     c.TotalDebt,
		TargetAmount:  c.TargetAmount,
		Status:        string(c.Status),
		SettledAmount: c.SettledAmount,
		FeeAmount:     c.FeeAmount,
		AssignedTo:    assigned,
		StartedAt:     c.StartedAt,
		SettledAt:     c.SettledAt,
	}
}

// SettlementIntakeResponse wraps a newly opened case.
type SettlementIntakeResponse struct {
	Case    SettlementCaseResponse `json:"case"`
	Message string                 `json:"message"`
}

// SettlementPricing describes what settlement costs.
type SettlementPricing struct {
	Fee     string `json:"fee"`
	MinDebt int64  `json:"min_debt"`
}

// DefaultSettlementPricing returns the published settlement terms.
func DefaultSettlementPricing() SettlementPricing {
	return SettlementPricing{Fee: domain.SettlementFeeLabel, MinDebt: domain.MinSettlementDebt}
}
