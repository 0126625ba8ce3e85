package domain

import "time"

// ServiceRequestType is the kind of help a Shield subscriber asks for.
type ServiceRequestType string

const (
	ServiceRequestHarassment    ServiceRequestType = "harassment"
	ServiceRequestCreditorComms ServiceRequestType = "creditor_comms"
)

// IsValid reports whether t is a known request type.
func (t ServiceRequestType) IsValid() bool {
	return t == ServiceRequestHarassment || t == ServiceRequestCreditorComms
}

// ServiceRequestStatus is the handling state of a service request.
type ServiceRequestStatus string

const (
	ServiceRequestOpen     ServiceRequestStatus = "open"
	ServiceRequestActive   ServiceRequestStatus = "active"
	ServiceRequestResolved ServiceRequestStatus = "resolved"
)

// ServiceRequest is a Shield subscriber asking ExitDebt to deal with a lender.
type ServiceRequest struct {
	ID         string               `json:"id"`
	SubjectID  string               `json:"subject_id"`
	Type       ServiceRequestType   `json:"type"`
	Status     ServiceRequestStatus `json:"status"`
	Details    string               `json:"details,omitempty"`
	AssignedTo string               `json:"assigned_to,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	ResolvedAt *time.Time           `json:"resolved_at,omitempty"`
}

// AllowsServiceRequests reports whether the subscription entitles its holder
// to raise service requests.
func (s Subscription) AllowsServiceRequests() bool {
	return s.Tier == TierShield && s.Status == SubscriptionActive
}
