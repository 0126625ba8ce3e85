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

type advisoryService struct {
	BaseService
	subjects portsrepo.SubjectReader
	plans    portsrepo.AdvisoryRepository
	payments providers.PaymentClient
}

// NewAdvisoryService creates the advisory purchase service.
func NewAdvisoryService(subjects portsrepo.SubjectReader, plans portsrepo.AdvisoryRepository, payments providers.PaymentClient, options ...ServiceOption) portssvc.AdvisorySvc {
	svc := &advisoryService{subjects: subjects, plans: plans, payments: payments}
	svc.apply(options)
	return svc
}

var _ portssvc.AdvisorySvc = (*advisoryService)(nil)

func (s *advisoryService) PurchaseAdvisory(ctx context.Context, req dto.AdvisoryPurchaseRequest, clientIP string) (*domain.AdvisoryPlan, error) {
	subject, err := s.subjects.FindSubjectByID(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}
	pkg, ok := domain.LookupAdvisoryPackage(req.Tier)
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrValidation,
			"Invalid tier '%s'. Available tiers: basic, standard, premium", req.Tier)
	}
	if s.payments == nil {
		return nil, apperrors.Newf(apperrors.ErrUpstream, "Payment service unavailable. Please try again.")
	}

	// The plan is stored before the order so an order never exists without one.
	plan := domain.NewAdvisoryPlan(uuid.NewString(), subject.ID, req.Tier, pkg, s.Now())
	if err := s.plans.SaveAdvisoryPlan(ctx, plan); err != nil {
		s.LogError(ctx, err, "Failed to save advisory plan", slog.String("subject_id", subject.ID))
		return nil, err
	}

	order, err := s.payments.CreateOrder(ctx, plan.Price, subject.ID, pkg.Description)
	if err != nil {
		s.LogError(ctx, err, "Payment order failed for advisory plan", slog.String("advisory_id", plan.ID))
		failed := plan
		failed.Status = domain.AdvisoryPaymentFailed
		failed.LastUpdatedAt = s.Now()
		failed.Version = plan.Version + 1
		if updateErr := s.plans.UpdateAdvisoryPlan(ctx, failed, plan.Version); updateErr != nil {
			s.LogError(ctx, updateErr, "Failed to mark advisory plan as failed", slog.String("advisory_id", plan.ID))
		}
		return nil, apperrors.Newf(apperrors.ErrUpstream, "Payment service unavailable. Please try again.")
	}

	withOrder := plan
	withOrder.OrderID = order.OrderID
	withOrder.PaymentURL = order.PaymentURL
	withOrder.LastUpdatedAt = s.Now()
	withOrder.Version = plan.Version + 1
	if err := s.plans.UpdateAdvisoryPlan(ctx, withOrder, plan.Version); err != nil {
		// The client still needs the payment link; the order id is in the log.
		s.LogError(ctx, err, "Failed to store advisory order reference",
			slog.String("advisory_id", plan.ID),
			slog.String("order_id", order.OrderID))
	}

	s.LogInfo(ctx, "Advisory purchase started",
		slog.String("advisory_id", plan.ID),
		slog.String("tier", string(plan.Tier)),
		slog.String("order_id", order.OrderID))
	s.Audit(ctx, domain.AuditEvent{
		Type:      domain.EventAdvisoryPurchase,
		SubjectID: subject.ID,
		Phone:     subject.Phone,
		IPAddress: clientIP,
		Metadata:  map[string]any{"tier": string(plan.Tier), "price": plan.Price, "order_id": order.OrderID},
	})
	s.Publish(ctx, domain.RoutingAdvisoryPurchased, withOrder)
	return &withOrder, nil
}

func (s *advisoryService) GetAdvisoryPlan(ctx context.Context, id string) (*domain.AdvisoryPlan, error) {
	plan, err := s.plans.FindAdvisoryPlanByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find advisory plan", slog.String("advisory_id", id))
		}
		return nil, err
	}
	return plan, nil
}
