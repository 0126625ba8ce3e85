package dto

import (
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// HealthCheckRequest starts a bureau-backed health check.
type HealthCheckRequest struct {
	PAN           string           `json:"pan" binding:"required,pan" example:"ABCDE1234F"`
	Phone         string           `json:"phone" binding:"required,e164phone"`
	Name          string           `json:"name" binding:"required,min=2,max=255"`
	Consent       bool             `json:"consent"`
	MonthlyIncome *decimal.Decimal `json:"monthly_income,omitempty" swaggertype:"number"`
}

// AggregatorHealthCheckRequest scores a subject from an approved aggregator consent.
type AggregatorHealthCheckRequest struct {
	SubjectID     string           `json:"subject_id" binding:"required,uuid"`
	ConsentID     string           `json:"consent_id" binding:"required"`
	MonthlyIncome *decimal.Decimal `json:"monthly_income,omitempty" swaggertype:"number"`
}

// HealthCheckResponse is the result of a health check run.
type HealthCheckResponse struct {
	ID                string                  `json:"id"`
	SubjectID         string                  `json:"subject_id"`
	Source            string                  `json:"source"`
	Score             int                     `json:"score"`
	Category          string                  `json:"category"`
	CreditScore       *int                    `json:"credit_score,omitempty"`
	PANMasked         string                  `json:"pan_masked,omitempty"`
	TotalOutstanding  decimal.Decimal         `json:"total_outstanding" swaggertype:"string" example:"0"`
	TotalEMI          decimal.Decimal         `json:"total_emi" swaggertype:"string" example:"0"`
	AvgRate           decimal.Decimal         `json:"avg_rate" swaggertype:"string" example:"0"`
	DTIRatio          decimal.Decimal         `json:"dti_ratio" swaggertype:"string" example:"0"`
	SavingsEst        decimal.Decimal         `json:"savings_est" swaggertype:"string" example:"0"`
	DebtAccounts      []domain.DebtAccount    `json:"debt_accounts"`
	FlaggedAccounts   []domain.FlaggedAccount `json:"flagged_accounts"`
	RemainingPulls    *int                    `json:"remaining_pulls,omitempty"`
	WhatsAppShareLink string                  `json:"whatsapp_share_link,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
}

// ToHealthCheckResponse converts a completed health check.
func ToHealthCheckResponse(outcome *domain.HealthCheckOutcome) HealthCheckResponse {
	resp := ToHealthScoreResponse(&outcome.Record)
	resp.CreditScore = outcome.CreditScore
	resp.PANMasked = outcome.Subject.PANMasked
	resp.WhatsAppShareLink = outcome.ShareLink
	resp.DebtAccounts = outcome.Accounts
	if resp.DebtAccounts == nil {
		resp.DebtAccounts = []domain.DebtAccount{}
	}
	remaining := outcome.RemainingPulls
	resp.RemainingPulls = &remaining
	return resp
}

// ToHealthScoreResponse converts a stored scoring run without its account snapshot.
func ToHealthScoreResponse(r *domain.HealthScoreRecord) HealthCheckResponse {
	flagged := r.Result.FlaggedAccounts
	if flagged == nil {
		flagged = []domain.FlaggedAccount{}
	}
	return HealthCheckResponse{
		ID:               r.ID,
		SubjectID:        r.SubjectID,
		Source:           string(r.Source),
		Score:            r.Result.Score,
		Category:         string(r.Result.Category),
		TotalOutstanding: r.Result.TotalOutstanding,
		TotalEMI:         r.Result.TotalEMI,
		AvgRate:          r.Result.AvgRate,
		DTIRatio:         r.Result.DTIRatio,
		SavingsEst:       r.Result.SavingsEst,
		DebtAccounts:     []domain.DebtAccount{},
		FlaggedAccounts:  flagged,
		CreatedAt:        r.CreatedAt,
	}
}

// ListHealthScoresParams holds the query parameters for score history.
type ListHealthScoresParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// HealthScoreSummary is one entry in a subject's score history.
type HealthScoreSummary struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Score     int             `json:"score"`
	Category  string          `json:"category"`
	DTIRatio  decimal.Decimal `json:"dti_ratio" swaggertype:"string" example:"0"`
	AvgRate   decimal.Decimal `json:"avg_rate" swaggertype:"string" example:"0"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListHealthScoresResponse wraps a page of score history.
type ListHealthScoresResponse struct {
	Scores    []HealthScoreSummary `json:"scores"`
	NextToken *string              `json:"next_token,omitempty"`
}

// ToListHealthScoresResponse converts a page of records.
func ToListHealthScoresResponse(records []domain.HealthScoreRecord, nextToken *string) ListHealthScoresResponse {
	list := make([]HealthScoreSummary, len(records))
	for i, r := range records {
		list[i] = HealthScoreSummary{
			ID:        r.ID,
			Source:    string(r.Source),
			Score:     r.Result.Score,
			Category:  string(r.Result.Category),
			DTIRatio:  r.Result.DTIRatio,
			AvgRate:   r.Result.AvgRate,
			CreatedAt: r.CreatedAt,
		}
	}
	return ListHealthScoresResponse{Scores: list, NextToken: nextToken}
}
