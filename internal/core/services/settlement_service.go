package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/google/uuid"
)

type settlementService struct {
	BaseService
	subjects portsrepo.SubjectReader
	repo     portsrepo.SettlementRepositoryFacade
	crm      providers.CRMClient
}

// NewSettlementService creates the settlement case service. crm may be nil.
func NewSettlementService(subjects portsrepo.SubjectReader, repo portsrepo.SettlementRepositoryFacade, crm providers.CRMClient, options ...ServiceOption) portssvc.SettlementSvcFacade {
	svc := &settlementService{subjects: subjects, repo: repo, crm: crm}
	svc.apply(options)
	return svc
}

var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

func settlementLockKey(subjectID string) string {
	return "settlement:" + subjectID
}

func (s *settlementService) CreateCase(ctx context.Context, req dto.SettlementIntakeRequest, clientIP string) (*domain.SettlementCase, error) {
	subject, err := s.subjects.FindSubjectByID(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateDebtThreshold(req.TotalDebt); err != nil {
		return nil, apperrors.Newf(apperrors.ErrValidation, "%s", err.Error())
	}

	var created domain.SettlementCase
	err = s.WithLock(ctx, settlementLockKey(subject.ID), func() error {
		existing, err := s.repo.FindOpenCaseBySubject(ctx, subject.ID)
		if err == nil {
			return apperrors.Newf(apperrors.ErrValidation,
				"User already has an active settlement case (ID: %s, status: %s). Close the existing case first.",
				existing.ID, existing.Status)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		now := s.Now()
		created = domain.SettlementCase{
			ID:           uuid.NewString(),
			SubjectID:    subject.ID,
			TotalDebt:    req.TotalDebt,
			TargetAmount: req.TargetAmount,
			Status:       domain.SettlementIntake,
			StartedAt:    now,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				LastUpdatedAt: now,
				Version:       1,
			},
		}
		if err := s.repo.SaveCase(ctx, created); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return apperrors.Newf(apperrors.ErrValidation,
					"User already has an active settlement case. Close the existing case first.")
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to create settlement case", slog.String("subject_id", subject.ID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Settlement case created",
		slog.String("case_id", created.ID),
		slog.String("subject_id", subject.ID),
		slog.Int64("total_debt", created.TotalDebt))

	s.SubmitLead(ctx, s.crm, providers.Lead{
		SubjectID: subject.ID,
		Name:      subject.Name,
		Phone:     subject.Phone,
		Source:    "settlement_intake",
		TotalDebt: created.TotalDebt,
	})

	s.Audit(ctx, domain.AuditEvent{
		Type:      domain.EventSettlementIntake,
		SubjectID: subject.ID,
		Phone:     subject.Phone,
		IPAddress: clientIP,
		Metadata:  map[string]any{"case_id": created.ID, "total_debt": created.TotalDebt},
	})
	s.Publish(ctx, domain.RoutingSettlementCaseOpened, domain.SettlementCaseEvent{
		CaseID:     created.ID,
		SubjectID:  subject.ID,
		Status:     created.Status,
		TotalDebt:  created.TotalDebt,
		OccurredAt: created.StartedAt,
	})
	return &created, nil
}

func (s *settlementService) TransitionCase(ctx context.Context, caseID string, req dto.TransitionCaseRequest, actor string) (*domain.SettlementCase, error) {
	current, err := s.repo.FindCaseByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	var updated domain.SettlementCase
	var from domain.SettlementStatus
	err = s.WithLock(ctx, settlementLockKey(current.SubjectID), func() error {
		// Re-read under the lock so the transition starts from the latest state.
		fresh, err := s.repo.FindCaseByID(ctx, caseID)
		if err != nil {
			return err
		}
		from = fresh.Status

		next, err := fresh.Transition(req.Status, req.SettledAmount, req.AssignedTo, s.Now())
		if err != nil {
			return apperrors.Newf(apperrors.ErrValidation, "%s", err.Error())
		}
		next.Version = fresh.Version + 1
		if err := s.repo.UpdateCase(ctx, next, fresh.Version); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to transition settlement case", slog.String("case_id", caseID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Settlement case transitioned",
		slog.String("case_id", caseID),
		slog.String("from", string(from)),
		slog.String("to", string(updated.Status)))

	metadata := map[string]any{
		"case_id": caseID,
		"from":    string(from),
		"to":      string(updated.Status),
		"actor":   actor,
	}
	if updated.SettledAmount != nil {
		metadata["settled_amount"] = *updated.SettledAmount
		metadata["fee_amount"] = *updated.FeeAmount
	}
	s.Audit(ctx, domain.AuditEvent{
		Type:      domain.EventSettlementTransition,
		SubjectID: updated.SubjectID,
		Metadata:  metadata,
	})
	s.Publish(ctx, domain.RoutingSettlementCaseMoved, domain.SettlementCaseEvent{
		CaseID:        updated.ID,
		SubjectID:     updated.SubjectID,
		FromStatus:    from,
		Status:        updated.Status,
		TotalDebt:     updated.TotalDebt,
		SettledAmount: updated.SettledAmount,
		FeeAmount:     updated.FeeAmount,
		OccurredAt:    updated.LastUpdatedAt,
	})
	return &updated, nil
}

func (s *settlementService) GetLatestCase(ctx context.Context, subjectID string) (*domain.SettlementCase, error) {
	c, err := s.repo.FindLatestCaseBySubject(ctx, subjectID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find settlement case", slog.String("subject_id", subjectID))
		}
		return nil, err
	}
	return c, nil
}
