package services_test

import (
	"context"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Repository mocks ---

type MockSubjectRepository struct {
	mock.Mock
}

func (m *MockSubjectRepository) FindSubjectByID(ctx context.Context, subjectID string) (*domain.Subject, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subject), args.Error(1)
}

func (m *MockSubjectRepository) FindSubjectByIdentity(ctx context.Context, panHash, phone string) (*domain.Subject, error) {
	args := m.Called(ctx, panHash, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subject), args.Error(1)
}

func (m *MockSubjectRepository) SaveSubject(ctx context.Context, subject domain.Subject) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

type MockHealthScoreRepository struct {
	mock.Mock
}

func (m *MockHealthScoreRepository) SaveHealthCheck(ctx context.Context, snapshot portsrepo.HealthCheckSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockHealthScoreRepository) FindHealthScoreByID(ctx context.Context, id string) (*domain.HealthScoreRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HealthScoreRecord), args.Error(1)
}

func (m *MockHealthScoreRepository) FindLatestBureauReport(ctx context.Context, subjectID string) (*domain.StoredBureauReport, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoredBureauReport), args.Error(1)
}

func (m *MockHealthScoreRepository) ListHealthScores(ctx context.Context, subjectID string, limit int, after *portsrepo.HistoryCursor) ([]domain.HealthScoreRecord, error) {
	args := m.Called(ctx, subjectID, limit, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HealthScoreRecord), args.Error(1)
}

type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) FindCaseByID(ctx context.Context, caseID string) (*domain.SettlementCase, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementCase), args.Error(1)
}

func (m *MockSettlementRepository) FindOpenCaseBySubject(ctx context.Context, subjectID string) (*domain.SettlementCase, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementCase), args.Error(1)
}

func (m *MockSettlementRepository) FindLatestCaseBySubject(ctx context.Context, subjectID string) (*domain.SettlementCase, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementCase), args.Error(1)
}

func (m *MockSettlementRepository) SaveCase(ctx context.Context, settlementCase domain.SettlementCase) error {
	args := m.Called(ctx, settlementCase)
	return args.Error(0)
}

func (m *MockSettlementRepository) UpdateCase(ctx context.Context, settlementCase domain.SettlementCase, expectedVersion int64) error {
	args := m.Called(ctx, settlementCase, expectedVersion)
	return args.Error(0)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) FindLatestSubscription(ctx context.Context, subjectID string) (*domain.Subscription, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) SaveSubscription(ctx context.Context, subscription domain.Subscription) error {
	args := m.Called(ctx, subscription)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) UpdateSubscription(ctx context.Context, subscription domain.Subscription, expectedVersion int64) error {
	args := m.Called(ctx, subscription, expectedVersion)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) ExpireLapsedTrials(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockShieldConsentRepository struct {
	mock.Mock
}

func (m *MockShieldConsentRepository) SaveShieldConsent(ctx context.Context, consent domain.ShieldConsent) error {
	args := m.Called(ctx, consent)
	return args.Error(0)
}

func (m *MockShieldConsentRepository) FindLatestShieldConsent(ctx context.Context, subjectID string) (*domain.ShieldConsent, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShieldConsent), args.Error(1)
}

type MockCallbackRepository struct {
	mock.Mock
}

func (m *MockCallbackRepository) SaveCallback(ctx context.Context, callback domain.Callback) error {
	args := m.Called(ctx, callback)
	return args.Error(0)
}

func (m *MockCallbackRepository) ListCallbacksBySubject(ctx context.Context, subjectID string) ([]domain.Callback, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Callback), args.Error(1)
}

type MockServiceRequestRepository struct {
	mock.Mock
}

func (m *MockServiceRequestRepository) SaveServiceRequest(ctx context.Context, request domain.ServiceRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockServiceRequestRepository) ListServiceRequestsBySubject(ctx context.Context, subjectID string) ([]domain.ServiceRequest, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ServiceRequest), args.Error(1)
}

type MockAdvisoryRepository struct {
	mock.Mock
}

func (m *MockAdvisoryRepository) SaveAdvisoryPlan(ctx context.Context, plan domain.AdvisoryPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockAdvisoryRepository) UpdateAdvisoryPlan(ctx context.Context, plan domain.AdvisoryPlan, expectedVersion int64) error {
	args := m.Called(ctx, plan, expectedVersion)
	return args.Error(0)
}

func (m *MockAdvisoryRepository) FindAdvisoryPlanByID(ctx context.Context, id string) (*domain.AdvisoryPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdvisoryPlan), args.Error(1)
}

var (
	_ portsrepo.CallbackRepository       = (*MockCallbackRepository)(nil)
	_ portsrepo.ServiceRequestRepository = (*MockServiceRequestRepository)(nil)
	_ portsrepo.AdvisoryRepository       = (*MockAdvisoryRepository)(nil)
)

// --- Provider mocks ---

type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) LogEvent(ctx context.Context, event domain.AuditEvent) {
	m.Called(ctx, event)
}

type MockBureauClient struct {
	mock.Mock
}

func (m *MockBureauClient) PullReport(ctx context.Context, pan, name, phone string) (*domain.BureauReport, error) {
	args := m.Called(ctx, pan, name, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BureauReport), args.Error(1)
}

type MockAggregatorClient struct {
	mock.Mock
}

func (m *MockAggregatorClient) CreateConsent(ctx context.Context, phone string, fiTypes []string) (*domain.AggregatorConsent, error) {
	args := m.Called(ctx, phone, fiTypes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AggregatorConsent), args.Error(1)
}

func (m *MockAggregatorClient) GetConsent(ctx context.Context, consentID string) (*domain.AggregatorConsent, error) {
	args := m.Called(ctx, consentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AggregatorConsent), args.Error(1)
}

func (m *MockAggregatorClient) ApproveConsent(ctx context.Context, consentID string) (*domain.AggregatorConsent, error) {
	args := m.Called(ctx, consentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AggregatorConsent), args.Error(1)
}

func (m *MockAggregatorClient) FetchFIData(ctx context.Context, consentID string) (*domain.FIData, error) {
	args := m.Called(ctx, consentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FIData), args.Error(1)
}

type MockPaymentClient struct {
	mock.Mock
}

func (m *MockPaymentClient) CreateOrder(ctx context.Context, amount int64, subjectID, description string) (*providers.PaymentOrder, error) {
	args := m.Called(ctx, amount, subjectID, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.PaymentOrder), args.Error(1)
}

func (m *MockPaymentClient) VerifyPayment(ctx context.Context, orderID string) (*providers.PaymentOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.PaymentOrder), args.Error(1)
}

type MockCRMClient struct {
	mock.Mock
}

func (m *MockCRMClient) CreateLead(ctx context.Context, lead providers.Lead) (string, error) {
	args := m.Called(ctx, lead)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, body any) error {
	args := m.Called(ctx, routingKey, body)
	return args.Error(0)
}

type stubMessenger struct{}

func (stubMessenger) SendMessage(context.Context, string, string) error { return nil }

func (stubMessenger) ShareLink(text string) string { return "https://wa.me/?text=" + text }

type plainEncrypter struct{}

func (plainEncrypter) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }

func fixedClock(t time.Time) providers.Clock {
	return func() time.Time { return t }
}
