package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/core/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ServiceRequestServiceTestSuite struct {
	suite.Suite
	subjects      *MockSubjectRepository
	subscriptions *MockSubscriptionRepository
	requests      *MockServiceRequestRepository
	crm           *MockCRMClient
	auditor       *MockAuditor
	publisher     *MockPublisher
	now           time.Time
	subject       *domain.Subject
	service       portssvc.ServiceRequestSvc
}

func (suite *ServiceRequestServiceTestSuite) SetupTest() {
	suite.subjects = new(MockSubjectRepository)
	suite.subscriptions = new(MockSubscriptionRepository)
	suite.requests = new(MockServiceRequestRepository)
	suite.crm = new(MockCRMClient)
	suite.auditor = new(MockAuditor)
	suite.publisher = new(MockPublisher)
	suite.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	suite.subject = &domain.Subject{ID: uuid.NewString(), Name: "Asha Rao", Phone: "+919876543210"}
	suite.service = services.NewServiceRequestService(suite.subjects, suite.subscriptions, suite.requests, suite.crm,
		services.WithClock(fixedClock(suite.now)),
		services.WithAuditor(suite.auditor),
		services.WithPublisher(suite.publisher),
	)
}

func (suite *ServiceRequestServiceTestSuite) TearDownTest() {
	suite.subjects.AssertExpectations(suite.T())
	suite.subscriptions.AssertExpectations(suite.T())
	suite.requests.AssertExpectations(suite.T())
	suite.crm.AssertExpectations(suite.T())
	suite.auditor.AssertExpectations(suite.T())
	suite.publisher.AssertExpectations(suite.T())
}

func (suite *ServiceRequestServiceTestSuite) subscription(tier domain.Tier, status domain.SubscriptionStatus) *domain.Subscription {
	return &domain.Subscription{ID: uuid.NewString(), SubjectID: suite.subject.ID, Tier: tier, Status: status}
}

func (suite *ServiceRequestServiceTestSuite) TestCreateServiceRequest_ActiveShield() {
	ctx := context.Background()
	req := dto.CreateServiceRequest{SubjectID: suite.subject.ID, Type: domain.ServiceRequestHarassment, Details: "Agent calls after 9pm"}

	suite.subjects.On("FindSubjectByID", ctx, suite.subject.ID).Return(suite.subject, nil).Once()
	suite.subscriptions.On("FindLatestSubscription", ctx, suite.subject.ID).
		Return(suite.subscription(domain.TierShield, domain.SubscriptionActive), nil).Once()
	suite.requests.On("SaveServiceRequest", ctx, mock.MatchedBy(func(r domain.ServiceRequest) bool {
		return r.SubjectID == suite.subject.ID && r.Type == domain.ServiceRequestHarassment &&
			r.Status == domain.ServiceRequestOpen && r.Details == req.Details && r.CreatedAt.Equal(suite.now)
	})).Return(nil).Once()
	suite.crm.On("CreateLead", ctx, mock.MatchedBy(func(l providers.Lead) bool {
		return l.Source == "service_request_harassment" && l.RequestID != ""
	})).Return("lead-9", nil).Once()
	suite.auditor.On("LogEvent", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.Type == domain.EventServiceRequest && e.Metadata["type"] == "harassment"
	})).Once()
	suite.publisher.On("Publish", ctx, domain.RoutingServiceRequestOpened, mock.AnythingOfType("domain.ServiceRequest")).Return(nil).Once()

	created, err := suite.service.CreateServiceRequest(ctx, req, "10.0.0.1")

	suite.Require().NoError(err)
	suite.NotEmpty(created.ID)
	suite.Equal(domain.ServiceRequestOpen, created.Status)
}

func (suite *ServiceRequestServiceTestSuite) TestCreateServiceRequest_RequiresActiveShield() {
	ctx := context.Background()
	req := dto.CreateServiceRequest{SubjectID: suite.subject.ID, Type: domain.ServiceRequestCreditorComms}

	cases := map[string]struct {
		sub *domain.Subscription
		err error
	}{
		"no subscription": {nil, apperrors.ErrNotFound},
		"lite":            {suite.subscription(domain.TierLite, domain.SubscriptionActive), nil},
		"trial":           {suite.subscription(domain.TierShield, domain.SubscriptionTrial), nil},
		"expired shield":  {suite.subscription(domain.TierShield, domain.SubscriptionExpired), nil},
	}
	for name, tc := range cases {
		suite.Run(name, func() {
			suite.subjects.On("FindSubjectByID", ctx, suite.subject.ID).Return(suite.subject, nil).Once()
			if tc.sub == nil {
				suite.subscriptions.On("FindLatestSubscription", ctx, suite.subject.ID).Return(nil, tc.err).Once()
			} else {
				suite.subscriptions.On("FindLatestSubscription", ctx, suite.subject.ID).Return(tc.sub, nil).Once()
			}

			created, err := suite.service.CreateServiceRequest(ctx, req, "")

			suite.Require().Error(err)
			suite.Nil(created)
			suite.True(errors.Is(err, apperrors.ErrForbidden))
			suite.Equal("Service requests require an active Shield subscription.", err.Error())
		})
	}
	suite.requests.AssertNotCalled(suite.T(), "SaveServiceRequest", mock.Anything, mock.Anything)
}

func (suite *ServiceRequestServiceTestSuite) TestCreateServiceRequest_InvalidType() {
	ctx := context.Background()
	req := dto.CreateServiceRequest{SubjectID: suite.subject.ID, Type: "refund"}

	suite.subjects.On("FindSubjectByID", ctx, suite.subject.ID).Return(suite.subject, nil).Once()
	suite.subscriptions.On("FindLatestSubscription", ctx, suite.subject.ID).
		Return(suite.subscription(domain.TierShield, domain.SubscriptionActive), nil).Once()

	_, err := suite.service.CreateServiceRequest(ctx, req, "")

	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Equal("Invalid type: refund. Must be one of {harassment, creditor_comms}", err.Error())
}

func (suite *ServiceRequestServiceTestSuite) TestCreateServiceRequest_CRMFailureDoesNotBlock() {
	ctx := context.Background()
	req := dto.CreateServiceRequest{SubjectID: suite.subject.ID, Type: domain.ServiceRequestCreditorComms}

	suite.subjects.On("FindSubjectByID", ctx, suite.subject.ID).Return(suite.subject, nil).Once()
	suite.subscriptions.On("FindLatestSubscription", ctx, suite.subject.ID).
		Return(suite.subscription(domain.TierShield, domain.SubscriptionActive), nil).Once()
	suite.requests.On("SaveServiceRequest", ctx, mock.Anything).Return(nil).Once()
	suite.crm.On("CreateLead", ctx, mock.Anything).Return("", errors.New("crm down")).Once()
	suite.auditor.On("LogEvent", ctx, mock.Anything).Once()
	suite.publisher.On("Publish", ctx, domain.RoutingServiceRequestOpened, mock.Anything).Return(nil).Once()

	created, err := suite.service.CreateServiceRequest(ctx, req, "")

	suite.Require().NoError(err)
	suite.Equal(domain.ServiceRequestCreditorComms, created.Type)
}

func (suite *ServiceRequestServiceTestSuite) TestListServiceRequests() {
	ctx := context.Background()
	listed := []domain.ServiceRequest{{ID: "sr-1", SubjectID: suite.subject.ID}}
	suite.requests.On("ListServiceRequestsBySubject", ctx, suite.subject.ID).Return(listed, nil).Once()

	got, err := suite.service.ListServiceRequests(ctx, suite.subject.ID)

	suite.Require().NoError(err)
	suite.Equal(listed, got)
}

func TestServiceRequestService(t *testing.T) {
	suite.Run(t, new(ServiceRequestServiceTestSuite))
}
