package services

import (
	"context"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
)

// AuditSvc records audit events. Failures are logged, never returned, so an
// audit outage cannot block the flow that triggered it.
type AuditSvc interface {
	LogEvent(ctx context.Context, event domain.AuditEvent)
}
