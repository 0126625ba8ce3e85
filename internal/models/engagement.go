package models

import "time"

// Callback is the database row for a callback request.
type Callback struct {
	CallbackID    string    `db:"callback_id"`
	SubjectID     string    `db:"subject_id"`
	PreferredTime time.Time `db:"preferred_time"`
	Reason        *string   `db:"reason"`
	Status        string    `db:"status"`
	AssignedTo    *string   `db:"assigned_to"`
	CreatedAt     time.Time `db:"created_at"`
}

// ServiceRequest is the database row for a Shield service request.
type ServiceRequest struct {
	RequestID   string     `db:"request_id"`
	SubjectID   string     `db:"subject_id"`
	RequestType string     `db:"request_type"`
	Status      string     `db:"status"`
	Details     *string    `db:"details"`
	AssignedTo  *string    `db:"assigned_to"`
	CreatedAt   time.Time  `db:"created_at"`
	ResolvedAt  *time.Time `db:"resolved_at"`
}

// AdvisoryPlan is the database row for an advisory purchase. PlanData holds
// the package description and features as JSONB.
type AdvisoryPlan struct {
	AdvisoryID string  `db:"advisory_id"`
	SubjectID  string  `db:"subject_id"`
	Tier       string  `db:"tier"`
	Price      int64   `db:"price"`
	Status     string  `db:"status"`
	OrderID    *string `db:"order_id"`
	PaymentURL *string `db:"payment_url"`
	PlanData   []byte  `db:"plan_data"`
	AuditFields
}
