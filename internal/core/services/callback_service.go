package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/google/uuid"
)

const callbackLeadSource = "callback_request"

type callbackService struct {
	BaseService
	subjects  portsrepo.SubjectReader
	callbacks portsrepo.CallbackRepository
	scores    portsrepo.HealthScoreRepository
	crm       providers.CRMClient
}

// NewCallbackService creates the callback scheduling service. crm may be nil.
func NewCallbackService(subjects portsrepo.SubjectReader, callbacks portsrepo.CallbackRepository, scores portsrepo.HealthScoreRepository, crm providers.CRMClient, options ...ServiceOption) portssvc.CallbackSvc {
	svc := &callbackService{subjects: subjects, callbacks: callbacks, scores: scores, crm: crm}
	svc.apply(options)
	return svc
}

var _ portssvc.CallbackSvc = (*callbackService)(nil)

func (s *callbackService) ScheduleCallback(ctx context.Context, req dto.CallbackRequest, clientIP string) (*domain.Callback, error) {
	subject, err := s.subjects.FindSubjectByID(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}

	callback, err := domain.NewCallback(uuid.NewString(), subject.ID, req.PreferredTime, req.Reason, s.Now())
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrValidation, "%s", err.Error())
	}
	if err := s.callbacks.SaveCallback(ctx, callback); err != nil {
		s.LogError(ctx, err, "Failed to save callback", slog.String("subject_id", subject.ID))
		return nil, err
	}
	s.LogInfo(ctx, "Callback scheduled",
		slog.String("callback_id", callback.ID),
		slog.String("subject_id", subject.ID),
		slog.Time("preferred_time", callback.PreferredTime))

	preferred := callback.PreferredTime
	lead := providers.Lead{
		SubjectID:     subject.ID,
		Name:          subject.Name,
		Phone:         subject.Phone,
		Source:        callbackLeadSource,
		PreferredTime: &preferred,
	}
	s.attachLatestScore(ctx, subject.ID, &lead)
	s.SubmitLead(ctx, s.crm, lead)

	s.Audit(ctx, domain.AuditEvent{
		Type:      domain.EventCallbackRequest,
		SubjectID: subject.ID,
		Phone:     subject.Phone,
		IPAddress: clientIP,
		Metadata:  map[string]any{"callback_id": callback.ID, "preferred_time": preferred.Format(time.RFC3339)},
	})
	s.Publish(ctx, domain.RoutingCallbackRequested, callback)
	return &callback, nil
}

// attachLatestScore adds the newest health score to the lead when there is one.
func (s *callbackService) attachLatestScore(ctx context.Context, subjectID string, lead *providers.Lead) {
	if s.scores == nil {
		return
	}
	records, err := s.scores.ListHealthScores(ctx, subjectID, 1, nil)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to read latest health score for lead", slog.String("subject_id", subjectID))
		}
		return
	}
	if len(records) == 0 {
		return
	}
	score := records[0].Result.Score
	lead.Score = &score
	lead.TotalOutstanding = records[0].Result.TotalOutstanding.String()
}
