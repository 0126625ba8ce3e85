package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Clock     providers.Clock
	Locker    providers.Locker
	Auditor   portssvc.AuditSvc
	Publisher providers.EventPublisher
}

// ServiceOption is a functional option for configuring the shared parts of a service
type ServiceOption func(*BaseService)

// WithClock overrides the time source
func WithClock(clock providers.Clock) ServiceOption {
	return func(s *BaseService) {
		s.Clock = clock
	}
}

// WithLocker adds per-subject mutual exclusion
func WithLocker(locker providers.Locker) ServiceOption {
	return func(s *BaseService) {
		s.Locker = locker
	}
}

// WithAuditor adds audit logging
func WithAuditor(auditor portssvc.AuditSvc) ServiceOption {
	return func(s *BaseService) {
		s.Auditor = auditor
	}
}

// WithPublisher adds domain event publishing
func WithPublisher(publisher providers.EventPublisher) ServiceOption {
	return func(s *BaseService) {
		s.Publisher = publisher
	}
}

func (s *BaseService) apply(options []ServiceOption) {
	for _, option := range options {
		option(s)
	}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		// Return a default logger if not found in context
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// Now returns the current time in UTC
func (s *BaseService) Now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}

// WithLock runs fn while holding key. Without a locker fn runs unguarded and
// the repositories' version checks are the only protection.
func (s *BaseService) WithLock(ctx context.Context, key string, fn func() error) error {
	if s.Locker == nil {
		return fn()
	}
	unlock, err := s.Locker.Lock(ctx, key)
	if err != nil {
		s.LogError(ctx, err, "Failed to acquire lock", slog.String("key", key))
		return err
	}
	defer unlock()
	return fn()
}

// Audit records an event when an auditor is configured
func (s *BaseService) Audit(ctx context.Context, event domain.AuditEvent) {
	if s.Auditor == nil {
		return
	}
	s.Auditor.LogEvent(ctx, event)
}

// Publish sends a domain event. Failures are logged and swallowed.
func (s *BaseService) Publish(ctx context.Context, routingKey string, body any) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, routingKey, body); err != nil {
		s.LogError(ctx, err, "Failed to publish event", slog.String("routing_key", routingKey))
	}
}

// SubmitLead hands a lead to crm. Failures are logged and swallowed so the
// request that produced the lead still completes.
func (s *BaseService) SubmitLead(ctx context.Context, crm providers.CRMClient, lead providers.Lead) {
	if crm == nil {
		return
	}
	leadID, err := crm.CreateLead(ctx, lead)
	if err != nil {
		s.LogError(ctx, err, "Failed to create CRM lead",
			slog.String("subject_id", lead.SubjectID),
			slog.String("source", lead.Source))
		return
	}
	s.LogDebug(ctx, "CRM lead created", slog.String("lead_id", leadID), slog.String("source", lead.Source))
}
