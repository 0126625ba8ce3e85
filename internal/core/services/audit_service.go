package services

import (
	"context"
	"log/slog"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/google/uuid"
)

type auditService struct {
	BaseService
	repo portsrepo.AuditRepository
}

// NewAuditService creates an audit logger backed by repo.
func NewAuditService(repo portsrepo.AuditRepository, options ...ServiceOption) portssvc.AuditSvc {
	svc := &auditService{repo: repo}
	svc.apply(options)
	return svc
}

var _ portssvc.AuditSvc = (*auditService)(nil)

func (s *auditService) LogEvent(ctx context.Context, event domain.AuditEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.Now()
	}
	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := s.repo.SaveAuditEvent(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to write audit event",
			slog.String("event_type", string(event.Type)),
			slog.String("subject_id", event.SubjectID))
		return
	}
	s.LogDebug(ctx, "Audit event recorded", slog.String("event_type", string(event.Type)))
}
