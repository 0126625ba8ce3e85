// Package providers declares the external collaborators the services call.
// Implementations are injected through constructors; there is no global
// provider registry.
package providers

import (
	"context"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
)

// BureauClient pulls credit reports.
type BureauClient interface {
	PullReport(ctx context.Context, pan, name, phone string) (*domain.BureauReport, error)
}

// AggregatorClient runs the account-aggregator consent and data-fetch flow.
type AggregatorClient interface {
	CreateConsent(ctx context.Context, phone string, fiTypes []string) (*domain.AggregatorConsent, error)
	GetConsent(ctx context.Context, consentID string) (*domain.AggregatorConsent, error)
	ApproveConsent(ctx context.Context, consentID string) (*domain.AggregatorConsent, error)
	FetchFIData(ctx context.Context, consentID string) (*domain.FIData, error)
}

// ConsentStore keeps aggregator consents for the life of the process.
type ConsentStore interface {
	PutConsent(ctx context.Context, consent domain.AggregatorConsent) error
	// GetConsent returns ErrNotFound for unknown ids.
	GetConsent(ctx context.Context, consentID string) (*domain.AggregatorConsent, error)
}

// PaymentOrder is a payment request handed to a provider.
type PaymentOrder struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
	Status     string `json:"status"`
}

// PaymentClient creates and verifies payments.
type PaymentClient interface {
	CreateOrder(ctx context.Context, amount int64, subjectID, description string) (*PaymentOrder, error)
	VerifyPayment(ctx context.Context, orderID string) (*PaymentOrder, error)
}

// Lead is what the CRM receives when a subject asks for help.
type Lead struct {
	SubjectID        string `json:"subject_id"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Source           string `json:"source"`
	Score            *int   `json:"score,omitempty"`
	TotalOutstanding string `json:"total_outstanding,omitempty"`
	TotalDebt        int64  `json:"total_debt,omitempty"`
	// PreferredTime is set for callback requests.
	PreferredTime *time.Time `json:"preferred_time,omitempty"`
	// RequestID links a lead back to a Shield service request.
	RequestID string `json:"request_id,omitempty"`
}

// CRMClient creates leads.
type CRMClient interface {
	CreateLead(ctx context.Context, lead Lead) (string, error)
}

// Messenger sends WhatsApp messages and builds share links.
type Messenger interface {
	SendMessage(ctx context.Context, phone, message string) error
	ShareLink(text string) string
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
}

// Locker serialises work on a key across goroutines and, with a shared
// backend, across processes.
type Locker interface {
	// Lock blocks until the key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string) (func(), error)
}

// AttemptDecision is the result of trying to take an attempt slot.
type AttemptDecision struct {
	Allowed   bool
	Remaining int
	At        time.Time
}

// AttemptLimiter caps attempts per key over a rolling window.
type AttemptLimiter interface {
	Acquire(ctx context.Context, key string) (AttemptDecision, error)
	Release(ctx context.Context, key string, at time.Time) error
	Remaining(ctx context.Context, key string) (int, error)
}

// Clock returns the current time. Services take one so tests can pin time.
type Clock func() time.Time

// Encrypter seals sensitive payloads before they are stored.
type Encrypter interface {
	Encrypt(plaintext string) (string, error)
}
