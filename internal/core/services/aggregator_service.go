package services

import (
	"context"
	"log/slog"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/core/scoring"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/exitdebt/exitdebt_backend/internal/utils"
)

type aggregatorService struct {
	BaseService
	client providers.AggregatorClient
}

// NewAggregatorService creates the account-aggregator consent service.
func NewAggregatorService(client providers.AggregatorClient, options ...ServiceOption) portssvc.AggregatorSvcFacade {
	svc := &aggregatorService{client: client}
	svc.apply(options)
	return svc
}

var _ portssvc.AggregatorSvcFacade = (*aggregatorService)(nil)

func (s *aggregatorService) CreateConsent(ctx context.Context, req dto.CreateConsentRequest, clientIP string) (*domain.AggregatorConsent, error) {
	phone, err := utils.NormalizePhone(req.Phone)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrValidation, "Invalid phone number.")
	}
	fiTypes := req.FITypes
	if len(fiTypes) == 0 {
		fiTypes = domain.DefaultFITypes
	}

	consent, err := s.client.CreateConsent(ctx, phone, fiTypes)
	if err != nil {
		s.LogError(ctx, err, "Failed to create aggregator consent")
		return nil, apperrors.Newf(apperrors.ErrUpstream, "Failed to create account aggregator consent.")
	}

	s.Audit(ctx, domain.AuditEvent{
		Type:      domain.EventAggregatorConsent,
		Phone:     phone,
		IPAddress: clientIP,
		Metadata:  map[string]any{"consent_id": consent.ID, "fi_types": fiTypes},
	})
	s.LogInfo(ctx, "Aggregator consent created", slog.String("consent_id", consent.ID))
	return consent, nil
}

func (s *aggregatorService) GetConsent(ctx context.Context, consentID string) (*domain.AggregatorConsent, error) {
	return s.client.GetConsent(ctx, consentID)
}

func (s *aggregatorService) ApproveConsent(ctx context.Context, consentID string) (*domain.AggregatorConsent, error) {
	consent, err := s.client.ApproveConsent(ctx, consentID)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Aggregator consent approved", slog.String("consent_id", consentID))
	return consent, nil
}

func (s *aggregatorService) FetchAccounts(ctx context.Context, consentID string) (*domain.FIData, []domain.DebtAccount, error) {
	consent, err := s.client.GetConsent(ctx, consentID)
	if err != nil {
		return nil, nil, err
	}
	if consent.Status != domain.ConsentApproved {
		return nil, nil, apperrors.Newf(apperrors.ErrValidation, "Consent not approved. Current status: %s", consent.Status)
	}

	data, err := s.client.FetchFIData(ctx, consentID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch aggregator data", slog.String("consent_id", consentID))
		return nil, nil, apperrors.Newf(apperrors.ErrUpstream, "Failed to fetch account aggregator data.")
	}
	return data, scoring.NormalizeAggregatorData(*data), nil
}
