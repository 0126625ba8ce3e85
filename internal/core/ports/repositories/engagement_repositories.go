package repositories

import (
	"context"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
)

// CallbackRepository persists callback requests.
type CallbackRepository interface {
	SaveCallback(ctx context.Context, callback domain.Callback) error

	// ListCallbacksBySubject returns the subject's callbacks, newest first.
	ListCallbacksBySubject(ctx context.Context, subjectID string) ([]domain.Callback, error)
}

// ServiceRequestRepository persists Shield service requests.
type ServiceRequestRepository interface {
	SaveServiceRequest(ctx context.Context, request domain.ServiceRequest) error

	// ListServiceRequestsBySubject returns the subject's requests, newest first.
	ListServiceRequestsBySubject(ctx context.Context, subjectID string) ([]domain.ServiceRequest, error)
}

// AdvisoryRepository persists advisory purchases.
type AdvisoryRepository interface {
	SaveAdvisoryPlan(ctx context.Context, plan domain.AdvisoryPlan) error

	// UpdateAdvisoryPlan writes plan if the stored version still equals
	// expectedVersion, otherwise it fails with ErrConflict.
	UpdateAdvisoryPlan(ctx context.Context, plan domain.AdvisoryPlan, expectedVersion int64) error

	// FindAdvisoryPlanByID retrieves a plan, or ErrNotFound.
	FindAdvisoryPlanByID(ctx context.Context, id string) (*domain.AdvisoryPlan, error)
}
