package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/google/uuid"
)

type serviceRequestService struct {
	BaseService
	subjects      portsrepo.SubjectReader
	subscriptions portsrepo.SubscriptionReader
	requests      portsrepo.ServiceRequestRepository
	crm           providers.CRMClient
}

// NewServiceRequestService creates the Shield service request service. crm may be nil.
func NewServiceRequestService(subjects portsrepo.SubjectReader, subscriptions portsrepo.SubscriptionReader, requests portsrepo.ServiceRequestRepository, crm providers.CRMClient, options ...ServiceOption) portssvc.ServiceRequestSvc {
	svc := &serviceRequestService{subjects: subjects, subscriptions: subscriptions, requests: requests, crm: crm}
	svc.apply(options)
	return svc
}

var _ portssvc.ServiceRequestSvc = (*serviceRequestService)(nil)

func (s *serviceRequestService) CreateServiceRequest(ctx context.Context, req dto.CreateServiceRequest, clientIP string) (*domain.ServiceRequest, error) {
	subject, err := s.subjects.FindSubjectByID(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}

	sub, err := s.subscriptions.FindLatestSubscription(ctx, subject.ID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to find subscription", slog.String("subject_id", subject.ID))
		return nil, err
	}
	if sub == nil || !sub.AllowsServiceRequests() {
		return nil, apperrors.Newf(apperrors.ErrForbidden, "Service requests require an active Shield subscription.")
	}

	if !req.Type.IsValid() {
		return nil, apperrors.Newf(apperrors.ErrValidation,
			"Invalid type: %s. Must be one of {harassment, creditor_comms}", req.Type)
	}

	request := domain.ServiceRequest{
		ID:        uuid.NewString(),
		SubjectID: subject.ID,
		Type:      req.Type,
		Status:    domain.ServiceRequestOpen,
		Details:   req.Details,
		CreatedAt: s.Now(),
	}
	if err := s.requests.SaveServiceRequest(ctx, request); err != nil {
		s.LogError(ctx, err, "Failed to save service request", slog.String("subject_id", subject.ID))
		return nil, err
	}
	s.LogInfo(ctx, "Service request created",
		slog.String("request_id", request.ID),
		slog.String("subject_id", subject.ID),
		slog.String("type", string(request.Type)))

	s.SubmitLead(ctx, s.crm, providers.Lead{
		SubjectID: subject.ID,
		Name:      subject.Name,
		Phone:     subject.Phone,
		Source:    "service_request_" + string(request.Type),
		RequestID: request.ID,
	})
	s.Audit(ctx, domain.AuditEvent{
		Type:      domain.EventServiceRequest,
		SubjectID: subject.ID,
		Phone:     subject.Phone,
		IPAddress: clientIP,
		Metadata:  map[string]any{"type": string(request.Type), "request_id": request.ID},
	})
	s.Publish(ctx, domain.RoutingServiceRequestOpened, request)
	return &request, nil
}

func (s *serviceRequestService) ListServiceRequests(ctx context.Context, subjectID string) ([]domain.ServiceRequest, error) {
	requests, err := s.requests.ListServiceRequestsBySubject(ctx, subjectID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list service requests", slog.String("subject_id", subjectID))
		return nil, err
	}
	return requests, nil
}
