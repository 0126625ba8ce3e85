package services

import (
	"context"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
)

// CallbackSvc schedules advisor callbacks.
type CallbackSvc interface {
	// ScheduleCallback stores a pending callback and passes it to the CRM.
	// A CRM failure does not fail the call.
	ScheduleCallback(ctx context.Context, req dto.CallbackRequest, clientIP string) (*domain.Callback, error)
}

// ServiceRequestSvc handles Shield service requests.
type ServiceRequestSvc interface {
	// CreateServiceRequest fails with ErrForbidden unless the subject holds an
	// active Shield subscription.
	CreateServiceRequest(ctx context.Context, req dto.CreateServiceRequest, clientIP string) (*domain.ServiceRequest, error)

	ListServiceRequests(ctx context.Context, subjectID string) ([]domain.ServiceRequest, error)
}

// AdvisorySvc sells one-off advisory packages.
type AdvisorySvc interface {
	PurchaseAdvisory(ctx context.Context, req dto.AdvisoryPurchaseRequest, clientIP string) (*domain.AdvisoryPlan, error)
	GetAdvisoryPlan(ctx context.Context, id string) (*domain.AdvisoryPlan, error)
}
