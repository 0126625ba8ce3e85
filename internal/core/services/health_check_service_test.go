package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/core/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/exitdebt/exitdebt_backend/internal/ratelimit"
	"github.com/exitdebt/exitdebt_backend/internal/utils"
	"github.com/exitdebt/exitdebt_backend/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testPhone = "+919876543210"

type HealthCheckServiceTestSuite struct {
	suite.Suite
	subjects   *MockSubjectRepository
	scores     *MockHealthScoreRepository
	bureau     *MockBureauClient
	aggregator *MockAggregatorClient
	auditor    *MockAuditor
	publisher  *MockPublisher
	limiter    *ratelimit.Limiter
	now        time.Time
	subject    *domain.Subject
	service    portssvc.HealthCheckSvcFacade
}

func (suite *HealthCheckServiceTestSuite) SetupTest() {
	suite.subjects = new(MockSubjectRepository)
	suite.scores = new(MockHealthScoreRepository)
	suite.bureau = new(MockBureauClient)
	suite.aggregator = new(MockAggregatorClient)
	suite.auditor = new(MockAuditor)
	suite.publisher = new(MockPublisher)
	suite.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	suite.limiter = ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.WithClock(func() time.Time { return suite.now }))
	suite.subject = &domain.Subject{
		ID:      uuid.NewString(),
		PANHash: utils.HashPAN("ABCDE1234F"),
		Phone:   testPhone,
		Name:    "Asha Rao",
	}
	suite.service = services.NewHealthCheckService(services.HealthCheckDeps{
		Subjects:   suite.subjects,
		Scores:     suite.scores,
		Bureau:     suite.bureau,
		Aggregator: suite.aggregator,
		Limiter:    suite.limiter,
		Vault:      plainEncrypter{},
		Messenger:  stubMessenger{},
		PullLimit:  ratelimit.DefaultLimit,
		ShareURL:   "https://exitdebt.in/check",
	},
		services.WithClock(fixedClock(suite.now)),
		services.WithAuditor(suite.auditor),
		services.WithPublisher(suite.publisher),
	)

	suite.auditor.On("LogEvent", mock.Anything, mock.Anything).Maybe()
	suite.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (suite *HealthCheckServiceTestSuite) request() dto.HealthCheckRequest {
	income := decimal.NewFromInt(100000)
	return dto.HealthCheckRequest{
		PAN:           "abcde1234f",
		Phone:         "98765 43210",
		Name:          "Asha Rao",
		Consent:       true,
		MonthlyIncome: &income,
	}
}

func (suite *HealthCheckServiceTestSuite) report() *domain.BureauReport {
	return &domain.BureauReport{
		CreditScore: 742,
		RawData:     `{"score":742}`,
		Accounts: []domain.BureauAccount{
			{
				LenderName:   "HDFC Bank",
				AccountType:  "personal_loan",
				Outstanding:  domain.LenientDecimal{Decimal: decimal.NewFromInt(300000), Valid: true},
				InterestRate: domain.LenientDecimal{Decimal: decimal.NewFromInt(14), Valid: true},
				EMIAmount:    domain.LenientDecimal{Decimal: decimal.NewFromInt(12000), Valid: true},
				Status:       "active",
			},
		},
	}
}

func (suite *HealthCheckServiceTestSuite) TestRunBureauCheck_Success() {
	ctx := context.Background()
	suite.subjects.On("FindSubjectByIdentity", ctx, suite.subject.PANHash, testPhone).Return(suite.subject, nil).Once()
	suite.bureau.On("PullReport", ctx, "ABCDE1234F", "Asha Rao", testPhone).Return(suite.report(), nil).Once()
	suite.scores.On("SaveHealthCheck", ctx, mock.MatchedBy(func(s portsrepo.HealthCheckSnapshot) bool {
		return s.Report != nil &&
			s.Report.EncryptedRawData == `enc:{"score":742}` &&
			s.Report.CreditScore == 742 &&
			len(s.Accounts) == 1 &&
			s.Record.Source == domain.SourceBureau
	})).Return(nil).Once()

	outcome, err := suite.service.RunBureauCheck(ctx, suite.request(), "10.0.0.1")

	suite.Require().NoError(err)
	suite.Equal(suite.subject.ID, outcome.Record.SubjectID)
	suite.Require().NotNil(outcome.CreditScore)
	suite.Equal(742, *outcome.CreditScore)
	suite.Equal(2, outcome.RemainingPulls)
	suite.GreaterOrEqual(outcome.Record.Result.Score, 0)
	suite.LessOrEqual(outcome.Record.Result.Score, 100)
	suite.Contains(outcome.ShareLink, "https://wa.me/?text=")
	suite.Contains(outcome.ShareLink, "https://exitdebt.in/check")
	suite.scores.AssertExpectations(suite.T())
	suite.auditor.AssertCalled(suite.T(), "LogEvent", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.Type == domain.EventCibilPull && e.IPAddress == "10.0.0.1"
	}))
}

func (suite *HealthCheckServiceTestSuite) TestRunBureauCheck_CreatesSubjectOnFirstCheck() {
	ctx := context.Background()
	suite.subjects.On("FindSubjectByIdentity", ctx, suite.subject.PANHash, testPhone).Return(nil, apperrors.ErrNotFound).Once()
	suite.subjects.On("SaveSubject", ctx, mock.MatchedBy(func(s domain.Subject) bool {
		return s.PANMasked == "A****1234F" && s.Phone == testPhone && s.PANHash == suite.subject.PANHash
	})).Return(nil).Once()
	suite.bureau.On("PullReport", ctx, mock.Anything, mock.Anything, mock.Anything).Return(suite.report(), nil).Once()
	suite.scores.On("SaveHealthCheck", ctx, mock.Anything).Return(nil).Once()

	outcome, err := suite.service.RunBureauCheck(ctx, suite.request(), "")

	suite.Require().NoError(err)
	suite.NotEmpty(outcome.Subject.ID)
	suite.Equal("A****1234F", outcome.Subject.PANMasked)
	suite.subjects.AssertExpectations(suite.T())
}

func (suite *HealthCheckServiceTestSuite) TestRunBureauCheck_RateLimitedAfterThreePulls() {
	ctx := context.Background()
	suite.subjects.On("FindSubjectByIdentity", ctx, mock.Anything, mock.Anything).Return(suite.subject, nil)
	suite.bureau.On("PullReport", ctx, mock.Anything, mock.Anything, mock.Anything).Return(suite.report(), nil).Times(3)
	suite.scores.On("SaveHealthCheck", ctx, mock.Anything).Return(nil).Times(3)

	for i := 0; i < 3; i++ {
		outcome, err := suite.service.RunBureauCheck(ctx, suite.request(), "")
		suite.Require().NoError(err)
		suite.Equal(2-i, outcome.RemainingPulls)
	}

	_, err := suite.service.RunBureauCheck(ctx, suite.request(), "")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrRateLimited))
	suite.Equal("Rate limit exceeded. Maximum 3 credit checks per 24 hours. Remaining: 0", err.Error())
	suite.bureau.AssertNumberOfCalls(suite.T(), "PullReport", 3)
	suite.auditor.AssertCalled(suite.T(), "LogEvent", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.Type == domain.EventCibilPullRateLimited && e.Phone == testPhone
	}))
}

func (suite *HealthCheckServiceTestSuite) TestRunBureauCheck_WindowSlides() {
	ctx := context.Background()
	suite.subjects.On("FindSubjectByIdentity", ctx, mock.Anything, mock.Anything).Return(suite.subject, nil)
	suite.bureau.On("PullReport", ctx, mock.Anything, mock.Anything, mock.Anything).Return(suite.report(), nil)
	suite.scores.On("SaveHealthCheck", ctx, mock.Anything).Return(nil)

	for i := 0; i < 3; i++ {
		_, err := suite.service.RunBureauCheck(ctx, suite.request(), "")
		suite.Require().NoError(err)
	}
	suite.now = suite.now.Add(24 * time.Hour)

	_, err := suite.service.RunBureauCheck(ctx, suite.request(), "")
	suite.NoError(err)
}

func (suite *HealthCheckServiceTestSuite) TestRunBureauCheck_UpstreamFailureReleasesSlot() {
	ctx := context.Background()
	suite.subjects.On("FindSubjectByIdentity", ctx, mock.Anything, mock.Anything).Return(suite.subject, nil)
	suite.bureau.On("PullReport", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("bureau timeout")).Once()

	_, err := suite.service.RunBureauCheck(ctx, suite.request(), "")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrUpstream))
	suite.Equal("Failed to fetch credit report. Please try again later.", err.Error())
	remaining, err := suite.limiter.Remaining(ctx, "cibil_pull:"+testPhone)
	suite.Require().NoError(err)
	suite.Equal(3, remaining)
	suite.auditor.AssertCalled(suite.T(), "LogEvent", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.Type == domain.EventCibilPullError
	}))
	suite.scores.AssertNotCalled(suite.T(), "SaveHealthCheck", mock.Anything, mock.Anything)
}

func (suite *HealthCheckServiceTestSuite) TestRunBureauCheck_ValidationFailures() {
	ctx := context.Background()

	badPAN := suite.request()
	badPAN.PAN = "ABCD1234F"
	_, err := suite.service.RunBureauCheck(ctx, badPAN, "")
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Equal("Invalid PAN format. Expected: ABCDE1234F", err.Error())

	noConsent := suite.request()
	noConsent.Consent = false
	_, err = suite.service.RunBureauCheck(ctx, noConsent, "")
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Equal("Consent is required to perform a credit check.", err.Error())

	remaining, err := suite.limiter.Remaining(ctx, "cibil_pull:"+testPhone)
	suite.Require().NoError(err)
	suite.Equal(3, remaining, "rejected requests must not consume a pull")
	suite.bureau.AssertNotCalled(suite.T(), "PullReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HealthCheckServiceTestSuite) TestRunAggregatorCheck_Success() {
	ctx := context.Background()
	consentID := uuid.NewString()
	data := &domain.FIData{
		ConsentID: consentID,
		FIPs: []domain.FIPAccounts{{
			FIPID: "SETU-FIP-MOCK",
			Data: []domain.FIItem{{
				MaskedAccNumber: "XXXX5678",
				FIType:          domain.FITypeCreditCard,
				Account: domain.FIAccount{Summary: domain.FISummary{
					CurrentDue: domain.LenientDecimal{Decimal: decimal.NewFromInt(42000), Valid: true},
					DueDate:    "2026-03-05",
				}},
			}},
		}},
	}

	suite.subjects.On("FindSubjectByID", ctx, suite.subject.ID).Return(suite.subject, nil).Once()
	suite.aggregator.On("GetConsent", ctx, consentID).Return(&domain.AggregatorConsent{ID: consentID, Status: domain.ConsentApproved, VUA: testPhone + "@setu-mock"}, nil).Once()
	suite.aggregator.On("FetchFIData", ctx, consentID).Return(data, nil).Once()
	suite.scores.On("SaveHealthCheck", ctx, mock.MatchedBy(func(s portsrepo.HealthCheckSnapshot) bool {
		return s.Report == nil && s.Record.Source == domain.SourceAggregator && len(s.Accounts) == 1
	})).Return(nil).Once()

	outcome, err := suite.service.RunAggregatorCheck(ctx, dto.AggregatorHealthCheckRequest{SubjectID: suite.subject.ID, ConsentID: consentID}, "")

	suite.Require().NoError(err)
	suite.Nil(outcome.CreditScore)
	suite.Equal(3, outcome.RemainingPulls)
	suite.Require().Len(outcome.Accounts, 1)
	suite.Equal(domain.CreditCard, outcome.Accounts[0].AccountType)
	suite.scores.AssertExpectations(suite.T())
}

func (suite *HealthCheckServiceTestSuite) TestRunAggregatorCheck_ConsentNotApproved() {
	ctx := context.Background()
	consentID := uuid.NewString()
	suite.subjects.On("FindSubjectByID", ctx, suite.subject.ID).Return(suite.subject, nil).Once()
	suite.aggregator.On("GetConsent", ctx, consentID).Return(&domain.AggregatorConsent{ID: consentID, Status: domain.ConsentPending, VUA: testPhone + "@setu-mock"}, nil).Once()

	_, err := suite.service.RunAggregatorCheck(ctx, dto.AggregatorHealthCheckRequest{SubjectID: suite.subject.ID, ConsentID: consentID}, "")

	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Equal("Consent not approved. Current status: PENDING", err.Error())
	suite.aggregator.AssertNotCalled(suite.T(), "FetchFIData", mock.Anything, mock.Anything)
}

func (suite *HealthCheckServiceTestSuite) TestRunAggregatorCheck_ConsentOfAnotherPhone() {
	ctx := context.Background()
	consentID := uuid.NewString()
	suite.subjects.On("FindSubjectByID", ctx, suite.subject.ID).Return(suite.subject, nil).Once()
	suite.aggregator.On("GetConsent", ctx, consentID).Return(&domain.AggregatorConsent{
		ID:     consentID,
		Status: domain.ConsentApproved,
		VUA:    "+919999999999@setu-mock",
	}, nil).Once()

	_, err := suite.service.RunAggregatorCheck(ctx, dto.AggregatorHealthCheckRequest{SubjectID: suite.subject.ID, ConsentID: consentID}, "")

	suite.True(errors.Is(err, apperrors.ErrNotFound))
	suite.aggregator.AssertNotCalled(suite.T(), "FetchFIData", mock.Anything, mock.Anything)
	suite.scores.AssertNotCalled(suite.T(), "SaveHealthCheck", mock.Anything, mock.Anything)
}

func (suite *HealthCheckServiceTestSuite) TestListHealthScores_Paginates() {
	ctx := context.Background()
	records := make([]domain.HealthScoreRecord, 3)
	for i := range records {
		records[i] = domain.HealthScoreRecord{
			ID:        uuid.NewString(),
			SubjectID: suite.subject.ID,
			CreatedAt: suite.now.Add(-time.Duration(i) * time.Hour),
		}
	}
	suite.scores.On("ListHealthScores", ctx, suite.subject.ID, 3, (*portsrepo.HistoryCursor)(nil)).Return(records, nil).Once()

	page, next, err := suite.service.ListHealthScores(ctx, suite.subject.ID, dto.ListHealthScoresParams{Limit: 2})

	suite.Require().NoError(err)
	suite.Len(page, 2)
	suite.Require().NotNil(next)
	createdAt, id, err := pagination.DecodeToken(*next)
	suite.Require().NoError(err)
	suite.Equal(records[1].ID, id)
	suite.True(records[1].CreatedAt.Equal(createdAt))

	suite.scores.On("ListHealthScores", ctx, suite.subject.ID, 3, &portsrepo.HistoryCursor{CreatedAt: createdAt, ID: id}).Return(records[2:], nil).Once()

	page, next, err = suite.service.ListHealthScores(ctx, suite.subject.ID, dto.ListHealthScoresParams{Limit: 2, NextToken: next})

	suite.Require().NoError(err)
	suite.Len(page, 1)
	suite.Nil(next)
}

func (suite *HealthCheckServiceTestSuite) TestListHealthScores_BadToken() {
	bad := "not-a-token"
	_, _, err := suite.service.ListHealthScores(context.Background(), suite.subject.ID, dto.ListHealthScoresParams{NextToken: &bad})
	suite.True(errors.Is(err, apperrors.ErrValidation))
}

func (suite *HealthCheckServiceTestSuite) TestGetHealthScore_NotFound() {
	ctx := context.Background()
	suite.scores.On("FindHealthScoreByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetHealthScore(ctx, "missing")

	suite.True(errors.Is(err, apperrors.ErrNotFound))
}

func TestHealthCheckServiceTestSuite(t *testing.T) {
	suite.Run(t, new(HealthCheckServiceTestSuite))
}
