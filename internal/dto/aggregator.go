package dto

import "github.com/exitdebt/exitdebt_backend/internal/core/domain"

// CreateConsentRequest asks the aggregator for a data-sharing consent.
type CreateConsentRequest struct {
	Phone   string   `json:"phone" binding:"required,e164phone"`
	FITypes []string `json:"fi_types" binding:"omitempty,dive,oneof=DEPOSIT CREDIT_CARD TERM_DEPOSIT"`
}

// ConsentResponse is the short view returned when a consent is created.
type ConsentResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// ToConsentResponse converts a consent.
func ToConsentResponse(c *domain.AggregatorConsent) ConsentResponse {
	return ConsentResponse{ID: c.ID, URL: c.URL, Status: string(c.Status)}
}

// AggregatorDataResponse is the normalized result of a data fetch.
type AggregatorDataResponse struct {
	ConsentID  string               `json:"consent_id"`
	Status     string               `json:"status"`
	Accounts   []domain.DebtAccount `json:"accounts"`
	RawFICount int                  `json:"raw_fi_count"`
}

// ToAggregatorDataResponse converts fetched FI data and its normalized accounts.
func ToAggregatorDataResponse(data *domain.FIData, accounts []domain.DebtAccount) AggregatorDataResponse {
	status := data.Status
	if status == "" {
		status = "COMPLETED"
	}
	if accounts == nil {
		accounts = []domain.DebtAccount{}
	}
	return AggregatorDataResponse{
		ConsentID:  data.ConsentID,
		Status:     status,
		Accounts:   accounts,
		RawFICount: len(data.FIPs),
	}
}
