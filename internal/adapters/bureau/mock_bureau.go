// Package bureau holds credit bureau clients.
package bureau

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	"github.com/shopspring/decimal"
)

// MockBureau returns a plausible credit profile derived from the PAN, so the
// same PAN always gets the same report.
type MockBureau struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewMockBureau creates a MockBureau. A nil logger uses slog.Default().
func NewMockBureau(logger *slog.Logger) *MockBureau {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockBureau{logger: logger, now: time.Now}
}

var _ providers.BureauClient = (*MockBureau)(nil)

type mockReport struct {
	Score      int                    `json:"score"`
	Accounts   []domain.BureauAccount `json:"accounts"`
	ReportDate time.Time              `json:"report_date"`
	PANRef     string                 `json:"pan_ref"`
}

func (b *MockBureau) PullReport(ctx context.Context, pan, name, phone string) (*domain.BureauReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pan = strings.ToUpper(strings.TrimSpace(pan))
	sum := sha256.Sum256([]byte(pan))
	rng := rand.New(rand.NewPCG(binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])))

	uniform := func(lo, hi float64) domain.LenientDecimal {
		v := decimal.NewFromFloat(lo + rng.Float64()*(hi-lo)).Round(2)
		return domain.LenientDecimal{Decimal: v, Valid: true}
	}
	zero := domain.LenientDecimal{Decimal: decimal.Zero, Valid: true}

	bajajStatus := "active"
	if rng.IntN(2) == 1 {
		bajajStatus = "overdue"
	}

	score := 550 + rng.IntN(301)
	accounts := []domain.BureauAccount{
		{
			LenderName:     "HDFC Bank",
			AccountType:    "personal_loan",
			Outstanding:    uniform(50000, 500000),
			InterestRate:   uniform(12, 24),
			EMIAmount:      uniform(5000, 25000),
			Status:         "active",
			Utilization:    zero,
			PaymentHistory: uniform(0.7, 1.0),
		},
		{
			LenderName:     "ICICI Bank",
			AccountType:    "credit_card",
			Outstanding:    uniform(10000, 200000),
			InterestRate:   uniform(30, 42),
			EMIAmount:      zero,
			Status:         "active",
			Utilization:    uniform(0.3, 0.95),
			PaymentHistory: uniform(0.5, 1.0),
		},
		{
			LenderName:     "SBI",
			AccountType:    "home_loan",
			Outstanding:    uniform(1000000, 5000000),
			InterestRate:   uniform(8.5, 11),
			EMIAmount:      uniform(15000, 50000),
			Status:         "active",
			Utilization:    zero,
			PaymentHistory: uniform(0.8, 1.0),
		},
		{
			LenderName:     "Bajaj Finserv",
			AccountType:    "personal_loan",
			Outstanding:    uniform(20000, 300000),
			InterestRate:   uniform(16, 28),
			EMIAmount:      uniform(3000, 15000),
			Status:         bajajStatus,
			Utilization:    zero,
			PaymentHistory: uniform(0.4, 0.9),
		},
	}

	panRef := "****"
	if len(pan) >= 4 {
		panRef = pan[:2] + "****" + pan[len(pan)-2:]
	}
	raw, err := json.Marshal(mockReport{
		Score:      score,
		Accounts:   accounts,
		ReportDate: b.now().UTC(),
		PANRef:     panRef,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode mock bureau report: %w", err)
	}

	b.logger.Debug("Mock bureau report generated", slog.String("pan_ref", panRef), slog.Int("score", score))
	return &domain.BureauReport{
		CreditScore: score,
		Accounts:    accounts,
		RawData:     string(raw),
	}, nil
}
