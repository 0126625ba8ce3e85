// Package payment holds payment gateway clients.
package payment

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"net/url"
	"sync"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
)

const (
	OrderCreated = "created"
	OrderPaid    = "paid"
)

// MockPayment issues UPI deep links and treats every verified order as paid.
type MockPayment struct {
	mu     sync.Mutex
	orders map[string]providers.PaymentOrder
	logger *slog.Logger
}

// NewMockPayment creates a MockPayment. A nil logger uses slog.Default().
func NewMockPayment(logger *slog.Logger) *MockPayment {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockPayment{orders: make(map[string]providers.PaymentOrder), logger: logger}
}

var _ providers.PaymentClient = (*MockPayment)(nil)

func (p *MockPayment) CreateOrder(_ context.Context, amount int64, subjectID, description string) (*providers.PaymentOrder, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1e10))
	if err != nil {
		return nil, fmt.Errorf("failed to generate order id: %w", err)
	}
	order := providers.PaymentOrder{
		OrderID:    fmt.Sprintf("MOCK_ORDER_%010d", n.Int64()),
		PaymentURL: fmt.Sprintf("upi://pay?pa=exitdebt@ybl&pn=ExitDebt&am=%d&tn=%s", amount, url.QueryEscape(description)),
		Status:     OrderCreated,
	}

	p.mu.Lock()
	p.orders[order.OrderID] = order
	p.mu.Unlock()

	p.logger.Info("Mock payment order created",
		slog.String("order_id", order.OrderID),
		slog.String("subject_id", subjectID),
		slog.Int64("amount", amount))
	return &order, nil
}

func (p *MockPayment) VerifyPayment(_ context.Context, orderID string) (*providers.PaymentOrder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	order, ok := p.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", apperrors.ErrNotFound, orderID)
	}
	order.Status = OrderPaid
	p.orders[orderID] = order
	return &order, nil
}
