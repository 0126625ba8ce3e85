package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/exitdebt/exitdebt_backend/internal/handlers"
	"github.com/exitdebt/exitdebt_backend/internal/middleware"
	"github.com/exitdebt/exitdebt_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	testSubjectID = "7f1c2d7e-3f4b-4f4e-9a51-8f6f0b0f2a11"
	testCaseID    = "0b5a3f1e-9c2d-4e55-8a7b-1d2e3f4a5b6c"
	testClientIP  = "192.0.2.1"
)

type HandlersTestSuite struct {
	suite.Suite
	router       *gin.Engine
	jwtSecret    string
	apiKey       string
	now          time.Time
	healthChecks *MockHealthCheckService
	aggregator   *MockAggregatorService
	settlement   *MockSettlementService
	subscription *MockSubscriptionService
	callbacks    *MockCallbackService
	requests     *MockServiceRequestService
	advisory     *MockAdvisoryService
}

func (suite *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(middleware.RegisterValidators())
}

func (suite *HandlersTestSuite) SetupTest() {
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.apiKey = "internal-test-key"
	suite.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	suite.healthChecks = new(MockHealthCheckService)
	suite.aggregator = new(MockAggregatorService)
	suite.settlement = new(MockSettlementService)
	suite.subscription = new(MockSubscriptionService)
	suite.callbacks = new(MockCallbackService)
	suite.requests = new(MockServiceRequestService)
	suite.advisory = new(MockAdvisoryService)

	cfg := &config.Config{
		IsProduction:   true,
		JWTSecret:      suite.jwtSecret,
		InternalAPIKey: suite.apiKey,
	}
	container := &portssvc.ServiceContainer{
		HealthCheck:    suite.healthChecks,
		Aggregator:     suite.aggregator,
		Settlement:     suite.settlement,
		Subscription:   suite.subscription,
		Callback:       suite.callbacks,
		ServiceRequest: suite.requests,
		Advisory:       suite.advisory,
	}

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, container, handlers.RouteOptions{
		Now: func() time.Time { return suite.now },
	})
}

func (suite *HandlersTestSuite) TearDownTest() {
	suite.healthChecks.AssertExpectations(suite.T())
	suite.aggregator.AssertExpectations(suite.T())
	suite.settlement.AssertExpectations(suite.T())
	suite.subscription.AssertExpectations(suite.T())
	suite.callbacks.AssertExpectations(suite.T())
	suite.requests.AssertExpectations(suite.T())
	suite.advisory.AssertExpectations(suite.T())
}

// generateTestToken creates a signed JWT for internal routes.
func (suite *HandlersTestSuite) generateTestToken(subject string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "exitdebt-test",
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *HandlersTestSuite) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = testClientIP + ":43210"
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (suite *HandlersTestSuite) TestHealthEndpoint() {
	w := suite.do(http.MethodGet, "/health", nil, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestRunBureauCheck_Success() {
	req := dto.HealthCheckRequest{PAN: "ABCDE1234F", Phone: "+919876543210", Name: "Asha Verma", Consent: true}
	creditScore := 742
	outcome := &domain.HealthCheckOutcome{
		Record: domain.HealthScoreRecord{
			ID:        "hs-1",
			SubjectID: testSubjectID,
			Source:    domain.SourceBureau,
			Result: domain.HealthScoreResult{
				Score:            64,
				Category:         domain.CategoryFair,
				TotalOutstanding: decimal.NewFromInt(350000),
			},
			CreatedAt: suite.now,
		},
		Subject:        domain.Subject{ID: testSubjectID, PANMasked: "A****1234F"},
		CreditScore:    &creditScore,
		RemainingPulls: 2,
		ShareLink:      "https://wa.me/?text=hello",
	}
	suite.healthChecks.On("RunBureauCheck", mock.Anything, req, testClientIP).Return(outcome, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/health-check", req, nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	body := suite.decode(w)
	suite.Equal(float64(64), body["score"])
	suite.Equal("Fair", body["category"])
	suite.Equal("A****1234F", body["pan_masked"])
	suite.Equal(float64(742), body["credit_score"])
	suite.Equal(float64(2), body["remaining_pulls"])
	suite.Equal("https://wa.me/?text=hello", body["whatsapp_share_link"])
	suite.Equal([]any{}, body["debt_accounts"])
}

func (suite *HandlersTestSuite) TestRunBureauCheck_InvalidPAN() {
	req := dto.HealthCheckRequest{PAN: "12345ABCDE", Phone: "+919876543210", Name: "Asha Verma", Consent: true}

	w := suite.do(http.MethodPost, "/api/v1/health-check", req, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Invalid PAN format. Expected: ABCDE1234F", suite.decode(w)["error"])
	suite.healthChecks.AssertNotCalled(suite.T(), "RunBureauCheck", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestRunBureauCheck_InvalidPhone() {
	req := dto.HealthCheckRequest{PAN: "ABCDE1234F", Phone: "12", Name: "Asha Verma", Consent: true}

	w := suite.do(http.MethodPost, "/api/v1/health-check", req, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Invalid phone number.", suite.decode(w)["error"])
}

func (suite *HandlersTestSuite) TestRunBureauCheck_RateLimited() {
	req := dto.HealthCheckRequest{PAN: "ABCDE1234F", Phone: "+919876543210", Name: "Asha Verma", Consent: true}
	limitErr := apperrors.Newf(apperrors.ErrRateLimited, "Rate limit exceeded. Maximum 3 credit checks per 24 hours. Remaining: 0")
	suite.healthChecks.On("RunBureauCheck", mock.Anything, req, testClientIP).Return(nil, limitErr).Once()

	w := suite.do(http.MethodPost, "/api/v1/health-check", req, nil)

	suite.Equal(http.StatusTooManyRequests, w.Code)
	body := suite.decode(w)
	suite.Equal("Rate limit exceeded. Maximum 3 credit checks per 24 hours. Remaining: 0", body["error"])
	suite.Equal(float64(0), body["remaining"])
}

func (suite *HandlersTestSuite) TestRunBureauCheck_UpstreamFailure() {
	req := dto.HealthCheckRequest{PAN: "ABCDE1234F", Phone: "+919876543210", Name: "Asha Verma", Consent: true}
	upstreamErr := apperrors.Newf(apperrors.ErrUpstream, "Failed to fetch credit report. Please try again later.")
	suite.healthChecks.On("RunBureauCheck", mock.Anything, req, testClientIP).Return(nil, upstreamErr).Once()

	w := suite.do(http.MethodPost, "/api/v1/health-check", req, nil)

	suite.Equal(http.StatusBadGateway, w.Code)
	suite.Equal("Failed to fetch credit report. Please try again later.", suite.decode(w)["error"])
}

func (suite *HandlersTestSuite) TestListHealthScores_PassesToken() {
	token := "abc"
	next := "def"
	params := dto.ListHealthScoresParams{Limit: 5, NextToken: &token}
	records := []domain.HealthScoreRecord{{ID: "hs-2", Result: domain.HealthScoreResult{Score: 70, Category: domain.CategoryFair}}}
	suite.healthChecks.On("ListHealthScores", mock.Anything, testSubjectID, params).Return(records, &next, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/health-check/"+testSubjectID+"/history?limit=5&nextToken=abc", nil, nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	body := suite.decode(w)
	suite.Equal("def", body["next_token"])
	suite.Len(body["scores"], 1)
}

func (suite *HandlersTestSuite) TestListHealthScores_LimitTooLarge() {
	w := suite.do(http.MethodGet, "/api/v1/health-check/"+testSubjectID+"/history?limit=1000", nil, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetHealthScore_NotFound() {
	suite.healthChecks.On("GetHealthScore", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/health-score/missing", nil, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Health score not found.", suite.decode(w)["error"])
}

func (suite *HandlersTestSuite) TestCreateConsent() {
	req := dto.CreateConsentRequest{Phone: "+919876543210"}
	consent := &domain.AggregatorConsent{ID: "c-1", URL: "http://localhost:3000/aa/callback?mock=true&consentId=c-1", Status: domain.ConsentPending}
	suite.aggregator.On("CreateConsent", mock.Anything, req, testClientIP).Return(consent, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/aa/consents", req, nil)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	body := suite.decode(w)
	suite.Equal("c-1", body["id"])
	suite.Equal("PENDING", body["status"])
}

func (suite *HandlersTestSuite) TestFetchData_NotApproved() {
	err := apperrors.Newf(apperrors.ErrValidation, "Consent not approved. Current status: PENDING")
	suite.aggregator.On("FetchAccounts", mock.Anything, "c-1").Return(nil, nil, err).Once()

	w := suite.do(http.MethodGet, "/api/v1/aa/consents/c-1/data", nil, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Consent not approved. Current status: PENDING", suite.decode(w)["error"])
}

func (suite *HandlersTestSuite) TestSettlementIntake_Created() {
	req := dto.SettlementIntakeRequest{SubjectID: testSubjectID, TotalDebt: 250000}
	created := &domain.SettlementCase{ID: testCaseID, SubjectID: testSubjectID, TotalDebt: 250000, Status: domain.SettlementIntake, StartedAt: suite.now}
	suite.settlement.On("CreateCase", mock.Anything, req, testClientIP).Return(created, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/settlement/intake", req, nil)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	body := suite.decode(w)
	suite.Equal("Settlement case created. Our team will contact you within 24 hours.", body["message"])
	suite.Equal("intake", body["case"].(map[string]any)["status"])
}

func (suite *HandlersTestSuite) TestSettlementIntake_BelowThreshold() {
	req := dto.SettlementIntakeRequest{SubjectID: testSubjectID, TotalDebt: 99999}
	err := apperrors.Newf(apperrors.ErrValidation, "Minimum debt for settlement is ₹100,000. Provided: ₹99,999")
	suite.settlement.On("CreateCase", mock.Anything, req, testClientIP).Return(nil, err).Once()

	w := suite.do(http.MethodPost, "/api/v1/settlement/intake", req, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Minimum debt for settlement is ₹100,000. Provided: ₹99,999", suite.decode(w)["error"])
}

func (suite *HandlersTestSuite) TestSettlementIntake_InvalidSubjectID() {
	w := suite.do(http.MethodPost, "/api/v1/settlement/intake", map[string]any{"subject_id": "nope", "total_debt": 200000}, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetLatestCase_NotFound() {
	suite.settlement.On("GetLatestCase", mock.Anything, testSubjectID).Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/settlement/"+testSubjectID, nil, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("No settlement case found for this user.", suite.decode(w)["error"])
}

func (suite *HandlersTestSuite) TestSettlementPricing() {
	w := suite.do(http.MethodGet, "/api/v1/settlement/pricing", nil, nil)

	suite.Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	suite.Equal("10% + GST", body["fee"])
	suite.Equal(float64(100000), body["min_debt"])
}

func (suite *HandlersTestSuite) TestTransitionCase_RequiresAuth() {
	req := dto.TransitionCaseRequest{Status: domain.SettlementNegotiating}

	w := suite.do(http.MethodPost, "/api/v1/internal/settlement/cases/"+testCaseID+"/transition", req, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.do(http.MethodPost, "/api/v1/internal/settlement/cases/"+testCaseID+"/transition", req,
		map[string]string{"X-API-Key": "wrong-key"})
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestTransitionCase_WithJWT() {
	settled := int64(200000)
	fee := int64(23600)
	req := dto.TransitionCaseRequest{Status: domain.SettlementSettled, SettledAmount: &settled}
	updated := &domain.SettlementCase{
		ID:            testCaseID,
		SubjectID:     testSubjectID,
		Status:        domain.SettlementSettled,
		SettledAmount: &settled,
		FeeAmount:     &fee,
	}
	suite.settlement.On("TransitionCase", mock.Anything, testCaseID, req, "ops-user-1").Return(updated, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/internal/settlement/cases/"+testCaseID+"/transition", req,
		map[string]string{"Authorization": "Bearer " + suite.generateTestToken("ops-user-1")})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	body := suite.decode(w)
	suite.Equal("settled", body["status"])
	suite.Equal(float64(23600), body["fee_amount"])
}

func (suite *HandlersTestSuite) TestTransitionCase_WithAPIKey() {
	req := dto.TransitionCaseRequest{Status: domain.SettlementClosed}
	updated := &domain.SettlementCase{ID: testCaseID, Status: domain.SettlementClosed}
	suite.settlement.On("TransitionCase", mock.Anything, testCaseID, req, middleware.APIKeyActor).Return(updated, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/internal/settlement/cases/"+testCaseID+"/transition", req,
		map[string]string{"X-API-Key": suite.apiKey})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (suite *HandlersTestSuite) TestTransitionCase_InvalidAndConflict() {
	req := dto.TransitionCaseRequest{Status: domain.SettlementSettled}
	invalid := apperrors.Newf(apperrors.ErrValidation, "Invalid transition: intake → settled. Valid: {negotiating, closed}")
	suite.settlement.On("TransitionCase", mock.Anything, testCaseID, req, "ops-user-1").Return(nil, invalid).Once()

	w := suite.do(http.MethodPost, "/api/v1/internal/settlement/cases/"+testCaseID+"/transition", req,
		map[string]string{"Authorization": "Bearer " + suite.generateTestToken("ops-user-1")})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Invalid transition: intake → settled. Valid: {negotiating, closed}", suite.decode(w)["error"])

	closeReq := dto.TransitionCaseRequest{Status: domain.SettlementClosed}
	suite.settlement.On("TransitionCase", mock.Anything, testCaseID, closeReq, "ops-user-1").Return(nil, apperrors.ErrConflict).Once()

	w = suite.do(http.MethodPost, "/api/v1/internal/settlement/cases/"+testCaseID+"/transition", closeReq,
		map[string]string{"Authorization": "Bearer " + suite.generateTestToken("ops-user-1")})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestListPlans() {
	w := suite.do(http.MethodGet, "/api/v1/subscription/plans", nil, nil)

	suite.Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	lite := body["lite"].(map[string]any)
	shield := body["shield"].(map[string]any)
	suite.Equal(float64(499), lite["monthly"])
	suite.Equal(float64(4999), lite["annual"])
	suite.Equal(float64(17), lite["annual_savings_pct"])
	suite.Equal(float64(1999), shield["monthly"])
	suite.Equal(float64(37), shield["annual_savings_pct"])
}

func (suite *HandlersTestSuite) TestGetSubscriptionStatus_Trial() {
	trial := domain.NewTrialSubscription("sub-1", testSubjectID, suite.now.Add(-10*24*time.Hour), 0)
	suite.subscription.On("GetOrCreate", mock.Anything, testSubjectID).Return(&trial, nil).Once()
	suite.subscription.On("HasShieldConsent", mock.Anything, testSubjectID).Return(false, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/subscription/"+testSubjectID, nil, nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	body := suite.decode(w)
	suite.Equal("trial", body["status"])
	suite.Equal(true, body["is_trial"])
	suite.Nil(body["tier"])
	suite.Equal(float64(80), body["days_remaining"])
	suite.Equal(false, body["has_shield_consent"])
}

func (suite *HandlersTestSuite) TestGetSubscriptionStatus_UnknownSubject() {
	suite.subscription.On("GetOrCreate", mock.Anything, testSubjectID).Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/subscription/"+testSubjectID, nil, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("User not found.", suite.decode(w)["error"])
}

func (suite *HandlersTestSuite) TestUpgrade() {
	req := dto.UpgradeSubscriptionRequest{SubjectID: testSubjectID, Tier: domain.TierLite, BillingPeriod: domain.Monthly}
	expires := suite.now.Add(30 * 24 * time.Hour)
	upgraded := &domain.Subscription{
		ID:            "sub-1",
		SubjectID:     testSubjectID,
		Tier:          domain.TierLite,
		BillingPeriod: domain.Monthly,
		Status:        domain.SubscriptionActive,
		AmountPaid:    499,
		ExpiresAt:     &expires,
	}
	suite.subscription.On("Upgrade", mock.Anything, req, testClientIP).Return(upgraded, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/subscription/upgrade", req, nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	body := suite.decode(w)
	suite.Equal("Successfully upgraded to Lite (monthly).", body["message"])
	suite.Equal(float64(499), body["amount_paid"])
}

func (suite *HandlersTestSuite) TestUpgrade_ShieldNeedsConsent() {
	req := dto.UpgradeSubscriptionRequest{SubjectID: testSubjectID, Tier: domain.TierShield, BillingPeriod: domain.Annual}
	err := apperrors.Newf(apperrors.ErrValidation, "Shield consent required before activation.")
	suite.subscription.On("Upgrade", mock.Anything, req, testClientIP).Return(nil, err).Once()

	w := suite.do(http.MethodPost, "/api/v1/subscription/upgrade", req, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Shield consent required before activation.", suite.decode(w)["error"])
}

func (suite *HandlersTestSuite) TestRecordShieldConsent() {
	consent := &domain.ShieldConsent{ID: "consent-1", SubjectID: testSubjectID, ConsentTextVersion: "1.0", IPAddress: testClientIP, Timestamp: suite.now}
	suite.subscription.On("RecordShieldConsent", mock.Anything, testSubjectID, testClientIP).Return(consent, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/subscription/shield-consent", dto.ShieldConsentRequest{SubjectID: testSubjectID}, nil)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	body := suite.decode(w)
	suite.Equal("Shield consent recorded.", body["message"])
	suite.Equal("consent-1", body["consent_id"])
}

func (suite *HandlersTestSuite) TestExpireTrials_Internal() {
	suite.subscription.On("ExpireLapsedTrials", mock.Anything).Return(int64(3), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/internal/subscription/expire-trials", nil,
		map[string]string{"X-API-Key": suite.apiKey})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(float64(3), suite.decode(w)["expired"])
}

func (suite *HandlersTestSuite) TestScheduleCallback_Created() {
	preferred := suite.now.Add(26 * time.Hour)
	req := dto.CallbackRequest{SubjectID: testSubjectID, PreferredTime: preferred, Reason: "Need help with EMIs"}
	scheduled := &domain.Callback{ID: "cb-1", SubjectID: testSubjectID, PreferredTime: preferred, Status: domain.CallbackPending}
	suite.callbacks.On("ScheduleCallback", mock.Anything, mock.MatchedBy(func(got dto.CallbackRequest) bool {
		return got.SubjectID == testSubjectID && got.PreferredTime.Equal(preferred) && got.Reason == req.Reason
	}), testClientIP).Return(scheduled, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/callback", req, nil)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	body := suite.decode(w)
	suite.Equal("cb-1", body["id"])
	suite.Equal("pending", body["status"])
	suite.Equal(dto.CallbackScheduledMessage, body["message"])
}

func (suite *HandlersTestSuite) TestScheduleCallback_PastTime() {
	err := apperrors.Newf(apperrors.ErrValidation, "Preferred callback time must be in the future.")
	suite.callbacks.On("ScheduleCallback", mock.Anything, mock.Anything, testClientIP).Return(nil, err).Once()

	w := suite.do(http.MethodPost, "/api/v1/callback",
		dto.CallbackRequest{SubjectID: testSubjectID, PreferredTime: suite.now.Add(-time.Hour)}, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Preferred callback time must be in the future.", suite.decode(w)["error"])
}

func (suite *HandlersTestSuite) TestScheduleCallback_MissingTime() {
	w := suite.do(http.MethodPost, "/api/v1/callback", map[string]any{"subject_id": testSubjectID}, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestCreateServiceRequest_Created() {
	req := dto.CreateServiceRequest{SubjectID: testSubjectID, Type: domain.ServiceRequestHarassment, Details: "Recovery agent calls at night"}
	created := &domain.ServiceRequest{
		ID:        "sr-1",
		SubjectID: testSubjectID,
		Type:      domain.ServiceRequestHarassment,
		Status:    domain.ServiceRequestOpen,
		Details:   req.Details,
		CreatedAt: suite.now,
	}
	suite.requests.On("CreateServiceRequest", mock.Anything, req, testClientIP).Return(created, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/service-request", req, nil)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	body := suite.decode(w)
	suite.Equal("sr-1", body["id"])
	suite.Equal("open", body["status"])
	suite.Nil(body["assigned_to"])
}

func (suite *HandlersTestSuite) TestCreateServiceRequest_NeedsShield() {
	req := dto.CreateServiceRequest{SubjectID: testSubjectID, Type: domain.ServiceRequestCreditorComms}
	err := apperrors.Newf(apperrors.ErrForbidden, "Service requests require an active Shield subscription.")
	suite.requests.On("CreateServiceRequest", mock.Anything, req, testClientIP).Return(nil, err).Once()

	w := suite.do(http.MethodPost, "/api/v1/service-request", req, nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("Service requests require an active Shield subscription.", suite.decode(w)["error"])
}

func (suite *HandlersTestSuite) TestListServiceRequests() {
	listed := []domain.ServiceRequest{
		{ID: "sr-2", SubjectID: testSubjectID, Type: domain.ServiceRequestCreditorComms, Status: domain.ServiceRequestActive, CreatedAt: suite.now},
		{ID: "sr-1", SubjectID: testSubjectID, Type: domain.ServiceRequestHarassment, Status: domain.ServiceRequestResolved, CreatedAt: suite.now.Add(-time.Hour)},
	}
	suite.requests.On("ListServiceRequests", mock.Anything, testSubjectID).Return(listed, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/service-request/"+testSubjectID, nil, nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	body := suite.decode(w)
	suite.Equal(float64(2), body["total"])
	suite.Len(body["requests"], 2)
}

func (suite *HandlersTestSuite) TestPurchaseAdvisory_Created() {
	req := dto.AdvisoryPurchaseRequest{SubjectID: testSubjectID, Tier: domain.AdvisoryStandard}
	pkg, _ := domain.LookupAdvisoryPackage(domain.AdvisoryStandard)
	plan := domain.NewAdvisoryPlan("adv-1", testSubjectID, domain.AdvisoryStandard, pkg, suite.now)
	plan.OrderID = "MOCK_ORDER_1"
	plan.PaymentURL = "https://pay.example/MOCK_ORDER_1"
	suite.advisory.On("PurchaseAdvisory", mock.Anything, req, testClientIP).Return(&plan, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/advisory/purchase", req, nil)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	body := suite.decode(w)
	suite.Equal(float64(1499), body["price"])
	suite.Equal("Advisory plan (standard) created. Complete payment to activate.", body["message"])
	suite.Equal("https://pay.example/MOCK_ORDER_1", body["payment_url"])
	planData := body["plan_data"].(map[string]any)
	suite.Equal("MOCK_ORDER_1", planData["order_id"])
}

func (suite *HandlersTestSuite) TestPurchaseAdvisory_PaymentUnavailable() {
	req := dto.AdvisoryPurchaseRequest{SubjectID: testSubjectID, Tier: domain.AdvisoryBasic}
	err := apperrors.Newf(apperrors.ErrUpstream, "Payment service unavailable. Please try again.")
	suite.advisory.On("PurchaseAdvisory", mock.Anything, req, testClientIP).Return(nil, err).Once()

	w := suite.do(http.MethodPost, "/api/v1/advisory/purchase", req, nil)

	suite.Equal(http.StatusBadGateway, w.Code)
	suite.Equal("Payment service unavailable. Please try again.", suite.decode(w)["error"])
}

func (suite *HandlersTestSuite) TestGetAdvisoryPlan() {
	pkg, _ := domain.LookupAdvisoryPackage(domain.AdvisoryPremium)
	plan := domain.NewAdvisoryPlan("adv-2", testSubjectID, domain.AdvisoryPremium, pkg, suite.now)
	suite.advisory.On("GetAdvisoryPlan", mock.Anything, "adv-2").Return(&plan, nil).Once()
	suite.advisory.On("GetAdvisoryPlan", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/advisory/adv-2", nil, nil)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal("Advisory plan (premium) - Status: pending", suite.decode(w)["message"])

	w = suite.do(http.MethodGet, "/api/v1/advisory/missing", nil, nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Advisory plan not found.", suite.decode(w)["error"])
}

func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
