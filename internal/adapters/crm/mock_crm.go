// Package crm holds lead-capture clients.
package crm

import (
	"context"
	"crypto/rand"
	"log/slog"

	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
)

const leadIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// LoggingCRM only logs leads. It is used when no CRM is configured.
type LoggingCRM struct {
	logger *slog.Logger
}

// NewLoggingCRM creates a LoggingCRM. A nil logger uses slog.Default().
func NewLoggingCRM(logger *slog.Logger) *LoggingCRM {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingCRM{logger: logger}
}

var _ providers.CRMClient = (*LoggingCRM)(nil)

func (c *LoggingCRM) CreateLead(_ context.Context, lead providers.Lead) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = leadIDAlphabet[int(b)%len(leadIDAlphabet)]
	}
	leadID := "MOCK_LEAD_" + string(buf)
	c.logger.Info("Lead captured",
		slog.String("lead_id", leadID),
		slog.String("subject_id", lead.SubjectID),
		slog.String("source", lead.Source))
	return leadID, nil
}
