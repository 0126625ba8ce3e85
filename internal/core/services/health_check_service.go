package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/core/scoring"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/exitdebt/exitdebt_backend/internal/utils"
	"github.com/exitdebt/exitdebt_backend/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	bureauPullAction        = "cibil_pull"
	defaultHistoryPageLimit = 20
)

// HealthCheckDeps are the collaborators of the health check service.
type HealthCheckDeps struct {
	Subjects   portsrepo.SubjectRepositoryFacade
	Scores     portsrepo.HealthScoreRepository
	Bureau     providers.BureauClient
	Aggregator providers.AggregatorClient
	Limiter    providers.AttemptLimiter
	Vault      providers.Encrypter
	Messenger  providers.Messenger
	// PullLimit is only used in the rate-limit message.
	PullLimit int
	// ShareURL is linked from the WhatsApp share text.
	ShareURL string
}

type healthCheckService struct {
	BaseService
	HealthCheckDeps
}

// NewHealthCheckService creates the health check service.
func NewHealthCheckService(deps HealthCheckDeps, options ...ServiceOption) portssvc.HealthCheckSvcFacade {
	svc := &healthCheckService{HealthCheckDeps: deps}
	svc.apply(options)
	return svc
}

var _ portssvc.HealthCheckSvcFacade = (*healthCheckService)(nil)

func pullKey(phone string) string {
	return bureauPullAction + ":" + phone
}

func (s *healthCheckService) RunBureauCheck(ctx context.Context, req dto.HealthCheckRequest, clientIP string) (*domain.HealthCheckOutcome, error) {
	pan := strings.ToUpper(strings.TrimSpace(req.PAN))
	if !utils.IsValidPAN(pan) {
		return nil, apperrors.Newf(apperrors.ErrValidation, "Invalid PAN format. Expected: ABCDE1234F")
	}
	if !req.Consent {
		return nil, apperrors.Newf(apperrors.ErrValidation, "Consent is required to perform a credit check.")
	}
	phone, err := utils.NormalizePhone(req.Phone)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrValidation, "Invalid phone number.")
	}

	key := pullKey(phone)
	decision, err := s.Limiter.Acquire(ctx, key)
	if err != nil {
		s.LogError(ctx, err, "Failed to check bureau pull limit", slog.String("key", key))
		return nil, err
	}
	if !decision.Allowed {
		s.Audit(ctx, domain.AuditEvent{Type: domain.EventCibilPullRateLimited, Phone: phone, IPAddress: clientIP})
		s.LogInfo(ctx, "Bureau pull rate limited", slog.String("key", key))
		return nil, apperrors.Newf(apperrors.ErrRateLimited,
			"Rate limit exceeded. Maximum %d credit checks per 24 hours. Remaining: %d", s.PullLimit, decision.Remaining)
	}

	// Only a successful pull keeps its slot.
	pulled := false
	defer func() {
		if pulled {
			return
		}
		if releaseErr := s.Limiter.Release(context.WithoutCancel(ctx), key, decision.At); releaseErr != nil {
			s.LogError(ctx, releaseErr, "Failed to release bureau pull slot", slog.String("key", key))
		}
	}()

	subject, err := s.findOrCreateSubject(ctx, pan, phone, req.Name)
	if err != nil {
		return nil, err
	}

	report, err := s.Bureau.PullReport(ctx, pan, req.Name, phone)
	if err != nil {
		s.LogError(ctx, err, "Bureau pull failed", slog.String("subject_id", subject.ID))
		s.Audit(ctx, domain.AuditEvent{
			Type:      domain.EventCibilPullError,
			SubjectID: subject.ID,
			Phone:     phone,
			IPAddress: clientIP,
			Metadata:  map[string]any{"status": "error", "error": err.Error()},
		})
		return nil, apperrors.Newf(apperrors.ErrUpstream, "Failed to fetch credit report. Please try again later.")
	}
	pulled = true

	raw := report.RawData
	if raw == "" {
		raw = "{}"
	}
	encrypted, err := s.Vault.Encrypt(raw)
	if err != nil {
		s.LogError(ctx, err, "Failed to encrypt bureau report", slog.String("subject_id", subject.ID))
		return nil, fmt.Errorf("failed to encrypt bureau report: %w", err)
	}

	now := s.Now()
	stored := &domain.StoredBureauReport{
		ID:               uuid.NewString(),
		SubjectID:        subject.ID,
		CreditScore:      report.CreditScore,
		EncryptedRawData: encrypted,
		PulledAt:         now,
	}
	accounts := scoring.NormalizeBureauAccounts(report.Accounts)

	record, err := s.scoreAndStore(ctx, subject, domain.SourceBureau, accounts, req.MonthlyIncome, stored, now)
	if err != nil {
		return nil, err
	}

	s.Audit(ctx, domain.AuditEvent{
		Type:      domain.EventCibilPull,
		SubjectID: subject.ID,
		Phone:     phone,
		IPAddress: clientIP,
		Metadata:  map[string]any{"status": "success", "score": record.Result.Score},
	})

	creditScore := report.CreditScore
	return &domain.HealthCheckOutcome{
		Record:         *record,
		Subject:        *subject,
		Accounts:       accounts,
		CreditScore:    &creditScore,
		RemainingPulls: decision.Remaining,
		ShareLink:      s.shareLink(record.Result),
	}, nil
}

func (s *healthCheckService) RunAggregatorCheck(ctx context.Context, req dto.AggregatorHealthCheckRequest, clientIP string) (*domain.HealthCheckOutcome, error) {
	subject, err := s.Subjects.FindSubjectByID(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}

	consent, err := s.Aggregator.GetConsent(ctx, req.ConsentID)
	if err != nil {
		return nil, err
	}
	if consent.Phone() != subject.Phone {
		s.LogInfo(ctx, "Aggregator consent does not belong to subject",
			slog.String("subject_id", subject.ID), slog.String("consent_id", req.ConsentID))
		return nil, apperrors.Newf(apperrors.ErrNotFound, "Consent not found for this user.")
	}
	if consent.Status != domain.ConsentApproved {
		return nil, apperrors.Newf(apperrors.ErrValidation, "Consent not approved. Current status: %s", consent.Status)
	}

	data, err := s.Aggregator.FetchFIData(ctx, req.ConsentID)
	if err != nil {
		s.LogError(ctx, err, "Aggregator fetch failed", slog.String("consent_id", req.ConsentID))
		return nil, apperrors.Newf(apperrors.ErrUpstream, "Failed to fetch account aggregator data. Please try again later.")
	}
	accounts := scoring.NormalizeAggregatorData(*data)

	record, err := s.scoreAndStore(ctx, subject, domain.SourceAggregator, accounts, req.MonthlyIncome, nil, s.Now())
	if err != nil {
		return nil, err
	}

	s.Audit(ctx, domain.AuditEvent{
		Type:      domain.EventAggregatorFetch,
		SubjectID: subject.ID,
		Phone:     subject.Phone,
		IPAddress: clientIP,
		Metadata: map[string]any{
			"consent_id": req.ConsentID,
			"accounts":   len(accounts),
			"score":      record.Result.Score,
		},
	})

	remaining, err := s.Limiter.Remaining(ctx, pullKey(subject.Phone))
	if err != nil {
		s.LogError(ctx, err, "Failed to read remaining bureau pulls", slog.String("subject_id", subject.ID))
	}
	return &domain.HealthCheckOutcome{
		Record:         *record,
		Subject:        *subject,
		Accounts:       accounts,
		RemainingPulls: remaining,
		ShareLink:      s.shareLink(record.Result),
	}, nil
}

func (s *healthCheckService) GetHealthScore(ctx context.Context, id string) (*domain.HealthScoreRecord, error) {
	record, err := s.Scores.FindHealthScoreByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find health score", slog.String("health_score_id", id))
		}
		return nil, err
	}
	return record, nil
}

func (s *healthCheckService) ListHealthScores(ctx context.Context, subjectID string, params dto.ListHealthScoresParams) ([]domain.HealthScoreRecord, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultHistoryPageLimit
	}

	var after *portsrepo.HistoryCursor
	if params.NextToken != nil && *params.NextToken != "" {
		createdAt, id, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, nil, apperrors.Newf(apperrors.ErrValidation, "Invalid nextToken.")
		}
		after = &portsrepo.HistoryCursor{CreatedAt: createdAt, ID: id}
	}

	// Fetch one extra row to know whether another page exists.
	records, err := s.Scores.ListHealthScores(ctx, subjectID, limit+1, after)
	if err != nil {
		s.LogError(ctx, err, "Failed to list health scores", slog.String("subject_id", subjectID))
		return nil, nil, err
	}

	var nextToken *string
	if len(records) > limit {
		records = records[:limit]
		last := records[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.ID)
		nextToken = &token
	}
	return records, nextToken, nil
}

func (s *healthCheckService) findOrCreateSubject(ctx context.Context, pan, phone, name string) (*domain.Subject, error) {
	panHash := utils.HashPAN(pan)
	subject, err := s.Subjects.FindSubjectByIdentity(ctx, panHash, phone)
	if err == nil {
		return subject, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up subject")
		return nil, err
	}

	created := domain.Subject{
		ID:        uuid.NewString(),
		PANHash:   panHash,
		PANMasked: utils.MaskPAN(pan),
		Phone:     phone,
		Name:      strings.TrimSpace(name),
		CreatedAt: s.Now(),
	}
	if err := s.Subjects.SaveSubject(ctx, created); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a race with a concurrent first check for the same identity.
			return s.Subjects.FindSubjectByIdentity(ctx, panHash, phone)
		}
		s.LogError(ctx, err, "Failed to save subject")
		return nil, err
	}
	s.LogInfo(ctx, "Subject created", slog.String("subject_id", created.ID))
	return &created, nil
}

func (s *healthCheckService) scoreAndStore(ctx context.Context, subject *domain.Subject, source domain.DebtAccountSource, accounts []domain.DebtAccount, monthlyIncome *decimal.Decimal, report *domain.StoredBureauReport, now time.Time) (*domain.HealthScoreRecord, error) {
	result := scoring.Calculate(accounts, monthlyIncome)
	record := domain.HealthScoreRecord{
		ID:            uuid.NewString(),
		SubjectID:     subject.ID,
		Source:        source,
		MonthlyIncome: monthlyIncome,
		Result:        result,
		CreatedAt:     now,
	}

	err := s.Scores.SaveHealthCheck(ctx, portsrepo.HealthCheckSnapshot{
		Report:   report,
		Accounts: accounts,
		Record:   record,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to store health check", slog.String("subject_id", subject.ID))
		return nil, err
	}

	s.LogInfo(ctx, "Health score computed",
		slog.String("subject_id", subject.ID),
		slog.String("health_score_id", record.ID),
		slog.Int("score", result.Score))
	s.Publish(ctx, domain.RoutingHealthScoreComputed, domain.HealthScoreComputedEvent{
		HealthScoreID:    record.ID,
		SubjectID:        subject.ID,
		Source:           source,
		Score:            result.Score,
		Category:         result.Category,
		TotalOutstanding: result.TotalOutstanding.String(),
		ComputedAt:       now,
	})
	return &record, nil
}

func (s *healthCheckService) shareLink(result domain.HealthScoreResult) string {
	if s.Messenger == nil {
		return ""
	}
	text := fmt.Sprintf("I checked my Debt Health Score on ExitDebt and scored %d/100 (%s). Check yours: %s",
		result.Score, result.Category, s.ShareURL)
	return s.Messenger.ShareLink(text)
}
