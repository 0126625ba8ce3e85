package dto

import (
	"fmt"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
)

// CallbackRequest asks for an advisor to call a subject.
type CallbackRequest struct {
	SubjectID     string    `json:"subject_id" binding:"required,uuid"`
	PreferredTime time.Time `json:"preferred_time" binding:"required"`
	Reason        string    `json:"reason,omitempty" binding:"max=255"`
}

// CallbackResponse confirms a scheduled callback.
type CallbackResponse struct {
	ID            string    `json:"id"`
	SubjectID     string    `json:"subject_id"`
	PreferredTime time.Time `json:"preferred_time"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
}

// CallbackScheduledMessage is returned with every new callback.
const CallbackScheduledMessage = "Callback scheduled successfully. Our advisor will call you at the selected time."

// ToCallbackResponse converts a callback.
func ToCallbackResponse(c *domain.Callback) CallbackResponse {
	return CallbackResponse{
		ID:            c.ID,
		SubjectID:     c.SubjectID,
		PreferredTime: c.PreferredTime,
		Status:        string(c.Status),
		Message:       CallbackScheduledMessage,
	}
}

// CreateServiceRequest raises a Shield service request.
type CreateServiceRequest struct {
	SubjectID string                    `json:"subject_id" binding:"required,uuid"`
	Type      domain.ServiceRequestType `json:"type" binding:"required"`
	Details   string                    `json:"details,omitempty" binding:"max=2000"`
}

// ServiceRequestResponse is the public view of a service request.
type ServiceRequestResponse struct {
	ID         string     `json:"id"`
	SubjectID  string     `json:"subject_id"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	Details    *string    `json:"details"`
	AssignedTo *string    `json:"assigned_to"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at"`
}

// ServiceRequestListResponse lists a subject's service requests.
type ServiceRequestListResponse struct {
	Requests []ServiceRequestResponse `json:"requests"`
	Total    int                      `json:"total"`
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ToServiceRequestResponse converts a service request.
func ToServiceRequestResponse(r *domain.ServiceRequest) ServiceRequestResponse {
	return ServiceRequestResponse{
		ID:         r.ID,
		SubjectID:  r.SubjectID,
		Type:       string(r.Type),
		Status:     string(r.Status),
		Details:    optionalString(r.Details),
		AssignedTo: optionalString(r.AssignedTo),
		CreatedAt:  r.CreatedAt,
		ResolvedAt: r.ResolvedAt,
	}
}

// ToServiceRequestListResponse converts a list of service requests.
func ToServiceRequestListResponse(requests []domain.ServiceRequest) ServiceRequestListResponse {
	out := make([]ServiceRequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, ToServiceRequestResponse(&requests[i]))
	}
	return ServiceRequestListResponse{Requests: out, Total: len(out)}
}

// AdvisoryPurchaseRequest starts buying an advisory package.
type AdvisoryPurchaseRequest struct {
	SubjectID string              `json:"subject_id" binding:"required,uuid"`
	Tier      domain.AdvisoryTier `json:"tier" binding:"required"`
}

// AdvisoryPlanData is what the package includes plus its payment order.
type AdvisoryPlanData struct {
	OrderID     string   `json:"order_id,omitempty"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// AdvisoryResponse is the public view of an advisory plan.
type AdvisoryResponse struct {
	ID         string           `json:"id"`
	SubjectID  string           `json:"subject_id"`
	Tier       string           `json:"tier"`
	Price      int64            `json:"price"`
	Status     string           `json:"status"`
	PlanData   AdvisoryPlanData `json:"plan_data"`
	PaymentURL *string          `json:"payment_url"`
	Message    string           `json:"message"`
}

// ToAdvisoryResponse converts a plan. created selects the purchase message
// over the status message.
func ToAdvisoryResponse(p *domain.AdvisoryPlan, created bool) AdvisoryResponse {
	message := fmt.Sprintf("Advisory plan (%s) - Status: %s", p.Tier, p.Status)
	if created {
		message = fmt.Sprintf("Advisory plan (%s) created. Complete payment to activate.", p.Tier)
	}
	return AdvisoryResponse{
		ID:        p.ID,
		SubjectID: p.SubjectID,
		Tier:      string(p.Tier),
		Price:     p.Price,
		Status:    string(p.Status),
		PlanData: AdvisoryPlanData{
			OrderID:     p.OrderID,
			Description: p.Description,
			Features:    p.Features,
		},
		PaymentURL: optionalString(p.PaymentURL),
		Message:    message,
	}
}
