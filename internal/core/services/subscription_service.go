package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/google/uuid"
)

type subscriptionService struct {
	BaseService
	subjects    portsrepo.SubjectReader
	repo        portsrepo.SubscriptionRepositoryFacade
	consents    portsrepo.ShieldConsentRepository
	payments    providers.PaymentClient
	trialLength time.Duration
}

// SubscriptionOption configures subscription-specific behaviour
type SubscriptionOption func(*subscriptionService)

// WithTrialLength overrides the default trial length
func WithTrialLength(length time.Duration) SubscriptionOption {
	return func(s *subscriptionService) {
		s.trialLength = length
	}
}

// WithBaseOptions applies shared service options
func WithBaseOptions(options ...ServiceOption) SubscriptionOption {
	return func(s *subscriptionService) {
		s.apply(options)
	}
}

// NewSubscriptionService creates the subscription service. payments may be nil.
func NewSubscriptionService(subjects portsrepo.SubjectReader, repo portsrepo.SubscriptionRepositoryFacade, consents portsrepo.ShieldConsentRepository, payments providers.PaymentClient, options ...SubscriptionOption) portssvc.SubscriptionSvcFacade {
	svc := &subscriptionService{
		subjects:    subjects,
		repo:        repo,
		consents:    consents,
		payments:    payments,
		trialLength: domain.DefaultTrialLength,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.SubscriptionSvcFacade = (*subscriptionService)(nil)

const maxStampAttempts = 3

func subscriptionLockKey(subjectID string) string {
	return "subscription:" + subjectID
}

func (s *subscriptionService) GetOrCreate(ctx context.Context, subjectID string) (*domain.Subscription, error) {
	if _, err := s.subjects.FindSubjectByID(ctx, subjectID); err != nil {
		return nil, err
	}

	var sub *domain.Subscription
	err := s.WithLock(ctx, subscriptionLockKey(subjectID), func() error {
		var err error
		sub, err = s.getOrCreateLocked(ctx, subjectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// getOrCreateLocked must run under the subject's subscription lock.
func (s *subscriptionService) getOrCreateLocked(ctx context.Context, subjectID string) (*domain.Subscription, error) {
	now := s.Now()
	sub, err := s.repo.FindLatestSubscription(ctx, subjectID)
	if err == nil {
		if !sub.TrialLapsed(now) {
			return sub, nil
		}
		expired := *sub
		expired.Status = domain.SubscriptionExpired
		expired.LastUpdatedAt = now
		expired.Version = sub.Version + 1
		if err := s.repo.UpdateSubscription(ctx, expired, sub.Version); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				// Someone else moved it first; their write wins.
				return s.repo.FindLatestSubscription(ctx, subjectID)
			}
			s.LogError(ctx, err, "Failed to expire trial", slog.String("subscription_id", sub.ID))
			return nil, err
		}
		s.LogInfo(ctx, "Trial expired", slog.String("subscription_id", sub.ID))
		s.Audit(ctx, domain.AuditEvent{
			Type:      domain.EventTrialExpired,
			SubjectID: subjectID,
			Metadata:  map[string]any{"subscription_id": sub.ID},
		})
		return &expired, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to find subscription", slog.String("subject_id", subjectID))
		return nil, err
	}

	trial := domain.NewTrialSubscription(uuid.NewString(), subjectID, now, s.trialLength)
	if err := s.repo.SaveSubscription(ctx, trial); err != nil {
		s.LogError(ctx, err, "Failed to create trial subscription", slog.String("subject_id", subjectID))
		return nil, err
	}
	s.LogInfo(ctx, "Trial subscription created",
		slog.String("subscription_id", trial.ID),
		slog.String("subject_id", subjectID))
	return &trial, nil
}

func (s *subscriptionService) HasShieldConsent(ctx context.Context, subjectID string) (bool, error) {
	_, err := s.consents.FindLatestShieldConsent(ctx, subjectID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	s.LogError(ctx, err, "Failed to find shield consent", slog.String("subject_id", subjectID))
	return false, err
}

func (s *subscriptionService) Upgrade(ctx context.Context, req dto.UpgradeSubscriptionRequest, clientIP string) (*domain.Subscription, error) {
	if !req.Tier.IsValid() {
		return nil, apperrors.Newf(apperrors.ErrValidation, "Invalid tier: %s. Must be one of {lite, shield}", req.Tier)
	}
	if !req.BillingPeriod.IsValid() {
		return nil, apperrors.Newf(apperrors.ErrValidation, "Invalid period: %s. Must be one of {monthly, annual}", req.BillingPeriod)
	}

	subject, err := s.subjects.FindSubjectByID(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}

	if req.Tier == domain.TierShield {
		hasConsent, err := s.HasShieldConsent(ctx, subject.ID)
		if err != nil {
			return nil, err
		}
		if !hasConsent {
			return nil, apperrors.Newf(apperrors.ErrValidation, "Shield consent required before activation.")
		}
	}

	var (
		upgraded domain.Subscription
		quote    domain.UpgradeQuote
	)
	err = s.WithLock(ctx, subscriptionLockKey(subject.ID), func() error {
		current, err := s.getOrCreateLocked(ctx, subject.ID)
		if err != nil {
			return err
		}

		now := s.Now()
		quote = current.QuoteUpgrade(req.Tier, req.BillingPeriod, now)
		next := current.ApplyUpgrade(req.Tier, req.BillingPeriod, quote, now)
		next.Version = current.Version + 1
		if err := s.repo.UpdateSubscription(ctx, next, current.Version); err != nil {
			return err
		}
		upgraded = next

		// The order is only requested once the upgrade is stored.
		ref := s.requestPayment(ctx, subject.ID, req.Tier, req.BillingPeriod, quote.Charge)
		if ref == "" {
			return nil
		}
		withRef := next
		withRef.PaymentRef = ref
		withRef.Version = next.Version + 1
		if err := s.repo.UpdateSubscription(ctx, withRef, next.Version); err != nil {
			s.LogError(ctx, err, "Failed to store payment reference",
				slog.String("subscription_id", next.ID),
				slog.String("payment_ref", ref))
			return nil
		}
		upgraded = withRef
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to upgrade subscription", slog.String("subject_id", subject.ID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Subscription upgraded",
		slog.String("subscription_id", upgraded.ID),
		slog.String("tier", string(upgraded.Tier)),
		slog.String("period", string(upgraded.BillingPeriod)),
		slog.Int64("charge", quote.Charge),
		slog.Int64("prorate_credit", quote.ProrateCredit))
	s.Audit(ctx, domain.AuditEvent{
		Type:      domain.EventSubscriptionUpgrade,
		SubjectID: subject.ID,
		Phone:     subject.Phone,
		IPAddress: clientIP,
		Metadata: map[string]any{
			"tier":           string(upgraded.Tier),
			"period":         string(upgraded.BillingPeriod),
			"amount":         upgraded.AmountPaid,
			"prorate_credit": quote.ProrateCredit,
		},
	})
	s.Publish(ctx, domain.RoutingSubscriptionUpgraded, domain.SubscriptionUpgradedEvent{
		SubscriptionID: upgraded.ID,
		SubjectID:      subject.ID,
		Tier:           upgraded.Tier,
		BillingPeriod:  upgraded.BillingPeriod,
		Charge:         quote.Charge,
		ProrateCredit:  quote.ProrateCredit,
		OccurredAt:     upgraded.LastUpdatedAt,
	})
	return &upgraded, nil
}

// requestPayment asks the provider for an order and returns its reference.
// Payment failures never block the upgrade.
func (s *subscriptionService) requestPayment(ctx context.Context, subjectID string, tier domain.Tier, period domain.BillingPeriod, charge int64) string {
	if s.payments == nil || charge <= 0 {
		return ""
	}
	description := fmt.Sprintf("ExitDebt %s (%s)", tier.DisplayName(), period)
	order, err := s.payments.CreateOrder(ctx, charge, subjectID, description)
	if err != nil {
		s.LogError(ctx, err, "Payment order failed; continuing with upgrade",
			slog.String("subject_id", subjectID),
			slog.Int64("charge", charge))
		return ""
	}
	return order.OrderID
}

func (s *subscriptionService) RecordShieldConsent(ctx context.Context, subjectID, clientIP string) (*domain.ShieldConsent, error) {
	subject, err := s.subjects.FindSubjectByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if clientIP == "" {
		clientIP = "unknown"
	}

	consent := domain.ShieldConsent{
		ID:                 uuid.NewString(),
		SubjectID:          subject.ID,
		ConsentTextVersion: domain.ShieldConsentTextVersion,
		IPAddress:          clientIP,
		Timestamp:          s.Now(),
	}
	if err := s.consents.SaveShieldConsent(ctx, consent); err != nil {
		s.LogError(ctx, err, "Failed to save shield consent", slog.String("subject_id", subject.ID))
		return nil, err
	}

	// The consent row is authoritative; the subscription only carries a copy
	// of its timestamp, so a stamp that keeps conflicting does not undo it.
	err = s.WithLock(ctx, subscriptionLockKey(subject.ID), func() error {
		return s.stampShieldConsentLocked(ctx, subject.ID, consent.Timestamp)
	})
	switch {
	case errors.Is(err, apperrors.ErrConflict):
		s.LogError(ctx, err, "Shield consent recorded but subscription stamp kept conflicting",
			slog.String("subject_id", subject.ID),
			slog.String("consent_id", consent.ID))
	case err != nil:
		s.LogError(ctx, err, "Failed to stamp shield consent on subscription", slog.String("subject_id", subject.ID))
		return nil, err
	}

	s.Audit(ctx, domain.AuditEvent{
		Type:      domain.EventShieldConsent,
		SubjectID: subject.ID,
		Phone:     subject.Phone,
		IPAddress: clientIP,
		Metadata:  map[string]any{"consent_version": domain.ShieldConsentTextVersion},
	})
	return &consent, nil
}

// stampShieldConsentLocked retries on ErrConflict since writers outside the
// lock, such as the trial sweep, can still bump the version.
func (s *subscriptionService) stampShieldConsentLocked(ctx context.Context, subjectID string, ts time.Time) error {
	var err error
	for attempt := 0; attempt < maxStampAttempts; attempt++ {
		var current *domain.Subscription
		current, err = s.getOrCreateLocked(ctx, subjectID)
		if err != nil {
			return err
		}
		stamped := *current
		stamped.ShieldConsentTimestamp = &ts
		stamped.LastUpdatedAt = ts
		stamped.Version = current.Version + 1
		err = s.repo.UpdateSubscription(ctx, stamped, current.Version)
		if !errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		s.LogDebug(ctx, "Shield consent stamp conflicted, retrying",
			slog.String("subject_id", subjectID), slog.Int("attempt", attempt+1))
	}
	return err
}

func (s *subscriptionService) ExpireLapsedTrials(ctx context.Context) (int64, error) {
	count, err := s.repo.ExpireLapsedTrials(ctx, s.Now())
	if err != nil {
		s.LogError(ctx, err, "Failed to expire lapsed trials")
		return 0, err
	}
	if count > 0 {
		s.LogInfo(ctx, "Expired lapsed trials", slog.Int64("count", count))
		s.Publish(ctx, domain.RoutingSubscriptionTrialsSwept, map[string]any{"count": count})
	}
	return count, nil
}
