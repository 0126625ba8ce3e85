package handlers_test

import (
	"context"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock HealthCheckService ---
type MockHealthCheckService struct {
	mock.Mock
}

func (m *MockHealthCheckService) RunBureauCheck(ctx context.Context, req dto.HealthCheckRequest, clientIP string) (*domain.HealthCheckOutcome, error) {
	args := m.Called(ctx, req, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HealthCheckOutcome), args.Error(1)
}

func (m *MockHealthCheckService) RunAggregatorCheck(ctx context.Context, req dto.AggregatorHealthCheckRequest, clientIP string) (*domain.HealthCheckOutcome, error) {
	args := m.Called(ctx, req, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HealthCheckOutcome), args.Error(1)
}

func (m *MockHealthCheckService) GetHealthScore(ctx context.Context, id string) (*domain.HealthScoreRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HealthScoreRecord), args.Error(1)
}

func (m *MockHealthCheckService) ListHealthScores(ctx context.Context, subjectID string, params dto.ListHealthScoresParams) ([]domain.HealthScoreRecord, *string, error) {
	args := m.Called(ctx, subjectID, params)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.HealthScoreRecord), next, args.Error(2)
}

var _ portssvc.HealthCheckSvcFacade = (*MockHealthCheckService)(nil)

// --- Mock AggregatorService ---
type MockAggregatorService struct {
	mock.Mock
}

func (m *MockAggregatorService) CreateConsent(ctx context.Context, req dto.CreateConsentRequest, clientIP string) (*domain.AggregatorConsent, error) {
	args := m.Called(ctx, req, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AggregatorConsent), args.Error(1)
}

func (m *MockAggregatorService) GetConsent(ctx context.Context, consentID string) (*domain.AggregatorConsent, error) {
	args := m.Called(ctx, consentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AggregatorConsent), args.Error(1)
}

func (m *MockAggregatorService) ApproveConsent(ctx context.Context, consentID string) (*domain.AggregatorConsent, error) {
	args := m.Called(ctx, consentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AggregatorConsent), args.Error(1)
}

func (m *MockAggregatorService) FetchAccounts(ctx context.Context, consentID string) (*domain.FIData, []domain.DebtAccount, error) {
	args := m.Called(ctx, consentID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.FIData), args.Get(1).([]domain.DebtAccount), args.Error(2)
}

var _ portssvc.AggregatorSvcFacade = (*MockAggregatorService)(nil)

// --- Mock SettlementService ---
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) GetLatestCase(ctx context.Context, subjectID string) (*domain.SettlementCase, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementCase), args.Error(1)
}

func (m *MockSettlementService) CreateCase(ctx context.Context, req dto.SettlementIntakeRequest, clientIP string) (*domain.SettlementCase, error) {
	args := m.Called(ctx, req, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementCase), args.Error(1)
}

func (m *MockSettlementService) TransitionCase(ctx context.Context, caseID string, req dto.TransitionCaseRequest, actor string) (*domain.SettlementCase, error) {
	args := m.Called(ctx, caseID, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementCase), args.Error(1)
}

var _ portssvc.SettlementSvcFacade = (*MockSettlementService)(nil)

// --- Mock SubscriptionService ---
type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) GetOrCreate(ctx context.Context, subjectID string) (*domain.Subscription, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) HasShieldConsent(ctx context.Context, subjectID string) (bool, error) {
	args := m.Called(ctx, subjectID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionService) Upgrade(ctx context.Context, req dto.UpgradeSubscriptionRequest, clientIP string) (*domain.Subscription, error) {
	args := m.Called(ctx, req, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) RecordShieldConsent(ctx context.Context, subjectID, clientIP string) (*domain.ShieldConsent, error) {
	args := m.Called(ctx, subjectID, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShieldConsent), args.Error(1)
}

func (m *MockSubscriptionService) ExpireLapsedTrials(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var _ portssvc.SubscriptionSvcFacade = (*MockSubscriptionService)(nil)

// --- Mock CallbackService ---
type MockCallbackService struct {
	mock.Mock
}

func (m *MockCallbackService) ScheduleCallback(ctx context.Context, req dto.CallbackRequest, clientIP string) (*domain.Callback, error) {
	args := m.Called(ctx, req, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Callback), args.Error(1)
}

var _ portssvc.CallbackSvc = (*MockCallbackService)(nil)

// --- Mock ServiceRequestService ---
type MockServiceRequestService struct {
	mock.Mock
}

func (m *MockServiceRequestService) CreateServiceRequest(ctx context.Context, req dto.CreateServiceRequest, clientIP string) (*domain.ServiceRequest, error) {
	args := m.Called(ctx, req, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceRequest), args.Error(1)
}

func (m *MockServiceRequestService) ListServiceRequests(ctx context.Context, subjectID string) ([]domain.ServiceRequest, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ServiceRequest), args.Error(1)
}

var _ portssvc.ServiceRequestSvc = (*MockServiceRequestService)(nil)

// --- Mock AdvisoryService ---
type MockAdvisoryService struct {
	mock.Mock
}

func (m *MockAdvisoryService) PurchaseAdvisory(ctx context.Context, req dto.AdvisoryPurchaseRequest, clientIP string) (*domain.AdvisoryPlan, error) {
	args := m.Called(ctx, req, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdvisoryPlan), args.Error(1)
}

func (m *MockAdvisoryService) GetAdvisoryPlan(ctx context.Context, id string) (*domain.AdvisoryPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdvisoryPlan), args.Error(1)
}

var _ portssvc.AdvisorySvc = (*MockAdvisoryService)(nil)
