// Package aggregator holds account-aggregator clients.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	"github.com/google/uuid"
)

// MockAggregator simulates the consent flow of an account aggregator and
// serves a fixed bank statement for approved consents.
type MockAggregator struct {
	store       providers.ConsentStore
	callbackURL string
	logger      *slog.Logger
	now         func() time.Time
}

// NewMockAggregator creates a MockAggregator whose consent links point back
// at frontendURL.
func NewMockAggregator(store providers.ConsentStore, frontendURL string, logger *slog.Logger) *MockAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockAggregator{
		store:       store,
		callbackURL: strings.TrimRight(frontendURL, "/") + "/aa/callback",
		logger:      logger,
		now:         time.Now,
	}
}

var _ providers.AggregatorClient = (*MockAggregator)(nil)

func (a *MockAggregator) CreateConsent(ctx context.Context, phone string, fiTypes []string) (*domain.AggregatorConsent, error) {
	id := uuid.NewString()
	consent := domain.AggregatorConsent{
		ID:        id,
		URL:       fmt.Sprintf("%s?mock=true&consentId=%s", a.callbackURL, id),
		Status:    domain.ConsentPending,
		VUA:       phone + "@setu-mock",
		FITypes:   slices.Clone(fiTypes),
		CreatedAt: a.now().UTC(),
	}
	if err := a.store.PutConsent(ctx, consent); err != nil {
		return nil, err
	}
	a.logger.Debug("Mock consent created", slog.String("consent_id", id))
	return &consent, nil
}

func (a *MockAggregator) GetConsent(ctx context.Context, consentID string) (*domain.AggregatorConsent, error) {
	return a.store.GetConsent(ctx, consentID)
}

// ApproveConsent stands in for the user approving on the aggregator's screens.
func (a *MockAggregator) ApproveConsent(ctx context.Context, consentID string) (*domain.AggregatorConsent, error) {
	consent, err := a.store.GetConsent(ctx, consentID)
	if err != nil {
		return nil, err
	}
	approvedAt := a.now().UTC()
	consent.Status = domain.ConsentApproved
	consent.ApprovedAt = &approvedAt
	if err := a.store.PutConsent(ctx, *consent); err != nil {
		return nil, err
	}
	return consent, nil
}

func (a *MockAggregator) FetchFIData(ctx context.Context, consentID string) (*domain.FIData, error) {
	if _, err := a.store.GetConsent(ctx, consentID); err != nil {
		return nil, err
	}
	var data domain.FIData
	if err := json.Unmarshal([]byte(mockFIData), &data); err != nil {
		return nil, fmt.Errorf("failed to decode mock FI data: %w", err)
	}
	data.ConsentID = consentID
	return &data, nil
}

// mockFIData mirrors the aggregator's FI schema: one savings account with a
// month of statement lines and one credit card.
const mockFIData = `{
  "status": "COMPLETED",
  "fi_data": [
    {
      "fipId": "SETU-FIP-MOCK",
      "data": [
        {
          "linkRefNumber": "MOCK-SAVINGS-001",
          "maskedAccNumber": "XXXX1234",
          "fiType": "DEPOSIT",
          "account": {
            "summary": {
              "type": "SAVINGS",
              "currentBalance": "125000.00",
              "currency": "INR"
            },
            "transactions": {
              "transaction": [
                {"txnId": "TXN001", "type": "DEBIT", "mode": "UPI", "amount": "15000.00", "narration": "EMI - HDFC Personal Loan", "transactionTimestamp": "2026-02-05T10:00:00Z"},
                {"txnId": "TXN002", "type": "DEBIT", "mode": "AUTO_DEBIT", "amount": "8400.00", "narration": "EMI - Bajaj Finserv", "transactionTimestamp": "2026-02-07T10:00:00Z"},
                {"txnId": "TXN003", "type": "DEBIT", "mode": "AUTO_DEBIT", "amount": "5000.00", "narration": "CC Min Payment - ICICI", "transactionTimestamp": "2026-02-15T10:00:00Z"},
                {"txnId": "TXN004", "type": "CREDIT", "mode": "NEFT", "amount": "60000.00", "narration": "Salary Credit - Employer", "transactionTimestamp": "2026-02-01T10:00:00Z"}
              ]
            }
          }
        },
        {
          "linkRefNumber": "MOCK-CC-001",
          "maskedAccNumber": "XXXX5678",
          "fiType": "CREDIT_CARD",
          "account": {
            "summary": {
              "type": "CREDIT_CARD",
              "currentDue": "42000.00",
              "totalLimit": "200000.00",
              "dueDate": "2026-03-05",
              "currency": "INR"
            }
          }
        }
      ]
    }
  ]
}`
