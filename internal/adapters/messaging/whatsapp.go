// Package messaging holds outbound messaging clients.
package messaging

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
)

// WhatsApp builds click-to-share links. Direct sends are only logged until a
// business API account is configured.
type WhatsApp struct {
	logger *slog.Logger
}

// NewWhatsApp creates a WhatsApp messenger. A nil logger uses slog.Default().
func NewWhatsApp(logger *slog.Logger) *WhatsApp {
	if logger == nil {
		logger = slog.Default()
	}
	return &WhatsApp{logger: logger}
}

var _ providers.Messenger = (*WhatsApp)(nil)

func (w *WhatsApp) SendMessage(_ context.Context, phone, message string) error {
	w.logger.Info("WhatsApp message queued", slog.String("phone", phone), slog.Int("length", len(message)))
	return nil
}

// ShareLink returns a wa.me link that opens WhatsApp with text prefilled.
func (w *WhatsApp) ShareLink(text string) string {
	return "https://wa.me/?text=" + url.QueryEscape(text)
}
