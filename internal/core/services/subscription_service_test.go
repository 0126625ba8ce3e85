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
	"github.com/exitdebt/exitdebt_backend/internal/platform/locker"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceTestSuite struct {
	suite.Suite
	subjects  *MockSubjectRepository
	repo      *MockSubscriptionRepository
	consents  *MockShieldConsentRepository
	payments  *MockPaymentClient
	auditor   *MockAuditor
	publisher *MockPublisher
	now       time.Time
	subject   *domain.Subject
	service   portssvc.SubscriptionSvcFacade
}

func (suite *SubscriptionServiceTestSuite) SetupTest() {
	suite.subjects = new(MockSubjectRepository)
	suite.repo = new(MockSubscriptionRepository)
	suite.consents = new(MockShieldConsentRepository)
	suite.payments = new(MockPaymentClient)
	suite.auditor = new(MockAuditor)
	suite.publisher = new(MockPublisher)
	suite.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	suite.subject = &domain.Subject{ID: uuid.NewString(), Name: "Asha Rao", Phone: "+919876543210"}
	suite.service = services.NewSubscriptionService(suite.subjects, suite.repo, suite.consents, suite.payments,
		services.WithBaseOptions(
			services.WithClock(fixedClock(suite.now)),
			services.WithLocker(locker.NewKeyedMutex()),
			services.WithAuditor(suite.auditor),
			services.WithPublisher(suite.publisher),
		),
	)
	suite.subjects.On("FindSubjectByID", mock.Anything, suite.subject.ID).Return(suite.subject, nil).Maybe()
}

func (suite *SubscriptionServiceTestSuite) trial(endsIn time.Duration) *domain.Subscription {
	sub := domain.NewTrialSubscription(uuid.NewString(), suite.subject.ID, suite.now.Add(endsIn-domain.DefaultTrialLength), 0)
	return &sub
}

func (suite *SubscriptionServiceTestSuite) active(tier domain.Tier, period domain.BillingPeriod, expiresIn time.Duration) *domain.Subscription {
	expires := suite.now.Add(expiresIn)
	return &domain.Subscription{
		ID:            uuid.NewString(),
		SubjectID:     suite.subject.ID,
		Tier:          tier,
		BillingPeriod: period,
		Status:        domain.SubscriptionActive,
		AmountPaid:    domain.PlanPrice(tier, period),
		ExpiresAt:     &expires,
		AuditFields:   domain.AuditFields{Version: 2},
	}
}

func (suite *SubscriptionServiceTestSuite) TestGetOrCreate_CreatesTrial() {
	ctx := context.Background()
	suite.repo.On("FindLatestSubscription", ctx, suite.subject.ID).Return(nil, apperrors.ErrNotFound).Once()
	suite.repo.On("SaveSubscription", ctx, mock.MatchedBy(func(s domain.Subscription) bool {
		return s.Status == domain.SubscriptionTrial && s.Tier == domain.TierNone
	})).Return(nil).Once()

	sub, err := suite.service.GetOrCreate(ctx, suite.subject.ID)

	suite.Require().NoError(err)
	suite.Equal(domain.SubscriptionTrial, sub.Status)
	suite.Equal(suite.now.Add(domain.DefaultTrialLength), sub.TrialEndsAt)
	suite.Equal(90, sub.DaysLeft(suite.now))
	suite.repo.AssertExpectations(suite.T())
}

func (suite *SubscriptionServiceTestSuite) TestGetOrCreate_ReturnsExisting() {
	ctx := context.Background()
	existing := suite.trial(10 * 24 * time.Hour)
	suite.repo.On("FindLatestSubscription", ctx, suite.subject.ID).Return(existing, nil).Twice()

	first, err := suite.service.GetOrCreate(ctx, suite.subject.ID)
	suite.Require().NoError(err)
	second, err := suite.service.GetOrCreate(ctx, suite.subject.ID)
	suite.Require().NoError(err)

	suite.Equal(existing.ID, first.ID)
	suite.Equal(first.ID, second.ID)
	suite.repo.AssertNotCalled(suite.T(), "SaveSubscription", mock.Anything, mock.Anything)
}

func (suite *SubscriptionServiceTestSuite) TestGetOrCreate_ExpiresLapsedTrial() {
	ctx := context.Background()
	lapsed := suite.trial(-time.Hour)
	suite.repo.On("FindLatestSubscription", ctx, suite.subject.ID).Return(lapsed, nil).Once()
	suite.repo.On("UpdateSubscription", ctx, mock.MatchedBy(func(s domain.Subscription) bool {
		return s.Status == domain.SubscriptionExpired && s.Version == lapsed.Version+1
	}), lapsed.Version).Return(nil).Once()
	suite.auditor.On("LogEvent", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.Type == domain.EventTrialExpired
	})).Once()

	sub, err := suite.service.GetOrCreate(ctx, suite.subject.ID)

	suite.Require().NoError(err)
	suite.Equal(domain.SubscriptionExpired, sub.Status)
	suite.Equal(0, sub.DaysLeft(suite.now))
	suite.repo.AssertExpectations(suite.T())
	suite.auditor.AssertExpectations(suite.T())
}

func (suite *SubscriptionServiceTestSuite) TestUpgrade_FromTrialChargesFullPrice() {
	ctx := context.Background()
	current := suite.trial(30 * 24 * time.Hour)
	req := dto.UpgradeSubscriptionRequest{SubjectID: suite.subject.ID, Tier: domain.TierLite, BillingPeriod: domain.Monthly}

	suite.repo.On("FindLatestSubscription", ctx, suite.subject.ID).Return(current, nil).Once()
	suite.payments.On("CreateOrder", ctx, int64(499), suite.subject.ID, "ExitDebt Lite (monthly)").
		Return(&providers.PaymentOrder{OrderID: "MOCK_ORDER_1", Status: "created"}, nil).Once()
	suite.repo.On("UpdateSubscription", ctx, mock.MatchedBy(func(s domain.Subscription) bool {
		return s.Tier == domain.TierLite && s.PaymentRef == ""
	}), current.Version).Return(nil).Once()
	suite.repo.On("UpdateSubscription", ctx, mock.MatchedBy(func(s domain.Subscription) bool {
		return s.Tier == domain.TierLite && s.PaymentRef == "MOCK_ORDER_1"
	}), current.Version+1).Return(nil).Once()
	suite.auditor.On("LogEvent", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.Type == domain.EventSubscriptionUpgrade && e.Metadata["prorate_credit"] == int64(0)
	})).Once()
	suite.publisher.On("Publish", ctx, domain.RoutingSubscriptionUpgraded, mock.AnythingOfType("domain.SubscriptionUpgradedEvent")).Return(nil).Once()

	sub, err := suite.service.Upgrade(ctx, req, "10.0.0.1")

	suite.Require().NoError(err)
	suite.Equal(domain.SubscriptionActive, sub.Status)
	suite.Equal(int64(499), sub.AmountPaid)
	suite.Equal("MOCK_ORDER_1", sub.PaymentRef)
	suite.Require().NotNil(sub.ExpiresAt)
	suite.Equal(suite.now.Add(30*24*time.Hour), *sub.ExpiresAt)
	suite.Require().Len(sub.UpgradeHistory, 1)
	suite.Equal(domain.TierNone, sub.UpgradeHistory[0].FromTier)
	suite.Equal(domain.TierLite, sub.UpgradeHistory[0].ToTier)
	suite.Empty(current.UpgradeHistory, "stored subscription must not be mutated")
	suite.payments.AssertExpectations(suite.T())
	suite.repo.AssertExpectations(suite.T())
}

func (suite *SubscriptionServiceTestSuite) TestUpgrade_AppliesProrationCredit() {
	ctx := context.Background()
	current := suite.active(domain.TierLite, domain.Monthly, 15*24*time.Hour)
	suite.consents.On("FindLatestShieldConsent", ctx, suite.subject.ID).
		Return(&domain.ShieldConsent{ID: "c1", SubjectID: suite.subject.ID}, nil).Once()
	req := dto.UpgradeSubscriptionRequest{SubjectID: suite.subject.ID, Tier: domain.TierShield, BillingPeriod: domain.Monthly}

	// Half of a ₹499 month left: credit 249, charge 1999-249.
	suite.repo.On("FindLatestSubscription", ctx, suite.subject.ID).Return(current, nil).Once()
	suite.payments.On("CreateOrder", ctx, int64(1750), suite.subject.ID, mock.Anything).
		Return(&providers.PaymentOrder{OrderID: "MOCK_ORDER_2"}, nil).Once()
	suite.repo.On("UpdateSubscription", ctx, mock.Anything, int64(2)).Return(nil).Once()
	suite.repo.On("UpdateSubscription", ctx, mock.Anything, int64(3)).Return(nil).Once()
	suite.auditor.On("LogEvent", ctx, mock.Anything).Once()
	suite.publisher.On("Publish", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	sub, err := suite.service.Upgrade(ctx, req, "")

	suite.Require().NoError(err)
	suite.Equal(domain.TierShield, sub.Tier)
	suite.Equal(int64(1750), sub.AmountPaid)
	suite.Equal(int64(4), sub.Version)
	suite.Equal("MOCK_ORDER_2", sub.PaymentRef)
	suite.Require().Len(sub.UpgradeHistory, 1)
	suite.Equal(int64(249), sub.UpgradeHistory[0].ProrateCredit)
}

func (suite *SubscriptionServiceTestSuite) TestUpgrade_ShieldWithoutConsent() {
	ctx := context.Background()
	suite.consents.On("FindLatestShieldConsent", ctx, suite.subject.ID).Return(nil, apperrors.ErrNotFound).Once()
	req := dto.UpgradeSubscriptionRequest{SubjectID: suite.subject.ID, Tier: domain.TierShield, BillingPeriod: domain.Annual}

	_, err := suite.service.Upgrade(ctx, req, "")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Equal("Shield consent required before activation.", err.Error())
	suite.repo.AssertNotCalled(suite.T(), "UpdateSubscription", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SubscriptionServiceTestSuite) TestUpgrade_InvalidTierAndPeriod() {
	ctx := context.Background()

	_, err := suite.service.Upgrade(ctx, dto.UpgradeSubscriptionRequest{SubjectID: suite.subject.ID, Tier: "gold", BillingPeriod: domain.Monthly}, "")
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Equal("Invalid tier: gold. Must be one of {lite, shield}", err.Error())

	_, err = suite.service.Upgrade(ctx, dto.UpgradeSubscriptionRequest{SubjectID: suite.subject.ID, Tier: domain.TierLite, BillingPeriod: "weekly"}, "")
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Equal("Invalid period: weekly. Must be one of {monthly, annual}", err.Error())
}

func (suite *SubscriptionServiceTestSuite) TestUpgrade_PaymentFailureStillUpgrades() {
	ctx := context.Background()
	current := suite.trial(30 * 24 * time.Hour)
	req := dto.UpgradeSubscriptionRequest{SubjectID: suite.subject.ID, Tier: domain.TierLite, BillingPeriod: domain.Annual}

	suite.repo.On("FindLatestSubscription", ctx, suite.subject.ID).Return(current, nil).Once()
	suite.payments.On("CreateOrder", ctx, int64(4999), suite.subject.ID, mock.Anything).Return(nil, errors.New("gateway timeout")).Once()
	suite.repo.On("UpdateSubscription", ctx, mock.MatchedBy(func(s domain.Subscription) bool {
		return s.PaymentRef == ""
	}), current.Version).Return(nil).Once()
	suite.auditor.On("LogEvent", ctx, mock.Anything).Once()
	suite.publisher.On("Publish", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	sub, err := suite.service.Upgrade(ctx, req, "")

	suite.Require().NoError(err)
	suite.Equal(domain.Annual, sub.BillingPeriod)
	suite.Equal(int64(4999), sub.AmountPaid)
	suite.repo.AssertNumberOfCalls(suite.T(), "UpdateSubscription", 1)
}

func (suite *SubscriptionServiceTestSuite) TestUpgrade_PaymentRefWriteFailureKeepsUpgrade() {
	ctx := context.Background()
	current := suite.trial(30 * 24 * time.Hour)
	req := dto.UpgradeSubscriptionRequest{SubjectID: suite.subject.ID, Tier: domain.TierLite, BillingPeriod: domain.Monthly}

	suite.repo.On("FindLatestSubscription", ctx, suite.subject.ID).Return(current, nil).Once()
	suite.repo.On("UpdateSubscription", ctx, mock.Anything, current.Version).Return(nil).Once()
	suite.payments.On("CreateOrder", ctx, int64(499), suite.subject.ID, mock.Anything).
		Return(&providers.PaymentOrder{OrderID: "MOCK_ORDER_3"}, nil).Once()
	suite.repo.On("UpdateSubscription", ctx, mock.Anything, current.Version+1).Return(errors.New("db down")).Once()
	suite.auditor.On("LogEvent", ctx, mock.Anything).Once()
	suite.publisher.On("Publish", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	sub, err := suite.service.Upgrade(ctx, req, "")

	suite.Require().NoError(err)
	suite.Equal(domain.TierLite, sub.Tier)
	suite.Empty(sub.PaymentRef)
	suite.Equal(current.Version+1, sub.Version)
}

func (suite *SubscriptionServiceTestSuite) TestUpgrade_ConflictPropagates() {
	ctx := context.Background()
	current := suite.trial(30 * 24 * time.Hour)
	req := dto.UpgradeSubscriptionRequest{SubjectID: suite.subject.ID, Tier: domain.TierLite, BillingPeriod: domain.Monthly}

	suite.repo.On("FindLatestSubscription", ctx, suite.subject.ID).Return(current, nil).Once()
	suite.repo.On("UpdateSubscription", ctx, mock.Anything, current.Version).Return(apperrors.ErrConflict).Once()

	_, err := suite.service.Upgrade(ctx, req, "")

	suite.True(errors.Is(err, apperrors.ErrConflict))
	suite.payments.AssertNotCalled(suite.T(), "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.auditor.AssertNotCalled(suite.T(), "LogEvent", mock.Anything, mock.Anything)
}

func (suite *SubscriptionServiceTestSuite) TestRecordShieldConsent() {
	ctx := context.Background()
	current := suite.trial(30 * 24 * time.Hour)

	suite.consents.On("SaveShieldConsent", ctx, mock.MatchedBy(func(c domain.ShieldConsent) bool {
		return c.IPAddress == "unknown" && c.ConsentTextVersion == domain.ShieldConsentTextVersion
	})).Return(nil).Once()
	suite.repo.On("FindLatestSubscription", ctx, suite.subject.ID).Return(current, nil).Once()
	suite.repo.On("UpdateSubscription", ctx, mock.MatchedBy(func(s domain.Subscription) bool {
		return s.ShieldConsentTimestamp != nil && s.ShieldConsentTimestamp.Equal(suite.now)
	}), current.Version).Return(nil).Once()
	suite.auditor.On("LogEvent", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.Type == domain.EventShieldConsent
	})).Once()

	consent, err := suite.service.RecordShieldConsent(ctx, suite.subject.ID, "")

	suite.Require().NoError(err)
	suite.Equal(suite.subject.ID, consent.SubjectID)
	suite.Equal(suite.now, consent.Timestamp)
	suite.consents.AssertExpectations(suite.T())
	suite.repo.AssertExpectations(suite.T())
}

func (suite *SubscriptionServiceTestSuite) TestRecordShieldConsent_RetriesStampOnConflict() {
	ctx := context.Background()
	stale := suite.trial(30 * 24 * time.Hour)
	fresh := *stale
	fresh.Version = stale.Version + 1

	suite.consents.On("SaveShieldConsent", ctx, mock.Anything).Return(nil).Once()
	suite.repo.On("FindLatestSubscription", ctx, suite.subject.ID).Return(stale, nil).Once()
	suite.repo.On("UpdateSubscription", ctx, mock.Anything, stale.Version).Return(apperrors.ErrConflict).Once()
	suite.repo.On("FindLatestSubscription", ctx, suite.subject.ID).Return(&fresh, nil).Once()
	suite.repo.On("UpdateSubscription", ctx, mock.MatchedBy(func(s domain.Subscription) bool {
		return s.ShieldConsentTimestamp != nil
	}), fresh.Version).Return(nil).Once()
	suite.auditor.On("LogEvent", ctx, mock.Anything).Once()

	_, err := suite.service.RecordShieldConsent(ctx, suite.subject.ID, "10.0.0.1")

	suite.Require().NoError(err)
	suite.repo.AssertExpectations(suite.T())
}

func (suite *SubscriptionServiceTestSuite) TestRecordShieldConsent_KeepsConsentAfterRepeatedConflicts() {
	ctx := context.Background()
	current := suite.trial(30 * 24 * time.Hour)

	suite.consents.On("SaveShieldConsent", ctx, mock.Anything).Return(nil).Once()
	suite.repo.On("FindLatestSubscription", ctx, suite.subject.ID).Return(current, nil).Times(3)
	suite.repo.On("UpdateSubscription", ctx, mock.Anything, current.Version).Return(apperrors.ErrConflict).Times(3)
	suite.auditor.On("LogEvent", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.Type == domain.EventShieldConsent
	})).Once()

	consent, err := suite.service.RecordShieldConsent(ctx, suite.subject.ID, "")

	suite.Require().NoError(err)
	suite.Equal(suite.subject.ID, consent.SubjectID)
	suite.repo.AssertNumberOfCalls(suite.T(), "UpdateSubscription", 3)
	suite.consents.AssertExpectations(suite.T())
	suite.auditor.AssertExpectations(suite.T())
}

func (suite *SubscriptionServiceTestSuite) TestRecordShieldConsent_StampStoreErrorFails() {
	ctx := context.Background()
	current := suite.trial(30 * 24 * time.Hour)

	suite.consents.On("SaveShieldConsent", ctx, mock.Anything).Return(nil).Once()
	suite.repo.On("FindLatestSubscription", ctx, suite.subject.ID).Return(current, nil).Once()
	suite.repo.On("UpdateSubscription", ctx, mock.Anything, current.Version).Return(errors.New("db down")).Once()

	_, err := suite.service.RecordShieldConsent(ctx, suite.subject.ID, "")

	suite.Require().Error(err)
	suite.auditor.AssertNotCalled(suite.T(), "LogEvent", mock.Anything, mock.Anything)
}

func (suite *SubscriptionServiceTestSuite) TestHasShieldConsent() {
	ctx := context.Background()
	suite.consents.On("FindLatestShieldConsent", ctx, "yes").Return(&domain.ShieldConsent{ID: "c"}, nil).Once()
	suite.consents.On("FindLatestShieldConsent", ctx, "no").Return(nil, apperrors.ErrNotFound).Once()
	suite.consents.On("FindLatestShieldConsent", ctx, "broken").Return(nil, errors.New("db down")).Once()

	ok, err := suite.service.HasShieldConsent(ctx, "yes")
	suite.NoError(err)
	suite.True(ok)

	ok, err = suite.service.HasShieldConsent(ctx, "no")
	suite.NoError(err)
	suite.False(ok)

	_, err = suite.service.HasShieldConsent(ctx, "broken")
	suite.Error(err)
}

func (suite *SubscriptionServiceTestSuite) TestExpireLapsedTrials() {
	ctx := context.Background()
	suite.repo.On("ExpireLapsedTrials", ctx, suite.now).Return(int64(4), nil).Once()
	suite.publisher.On("Publish", ctx, domain.RoutingSubscriptionTrialsSwept, mock.Anything).Return(nil).Once()

	count, err := suite.service.ExpireLapsedTrials(ctx)

	suite.Require().NoError(err)
	suite.Equal(int64(4), count)
	suite.publisher.AssertExpectations(suite.T())
}

func (suite *SubscriptionServiceTestSuite) TestExpireLapsedTrials_NothingToDo() {
	ctx := context.Background()
	suite.repo.On("ExpireLapsedTrials", ctx, suite.now).Return(int64(0), nil).Once()

	count, err := suite.service.ExpireLapsedTrials(ctx)

	suite.Require().NoError(err)
	suite.Zero(count)
	suite.publisher.AssertNotCalled(suite.T(), "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscriptionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceTestSuite))
}
