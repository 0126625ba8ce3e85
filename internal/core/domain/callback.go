package domain

import (
	"errors"
	"time"
)

// CallbackStatus tracks an advisor callback from request to outcome.
type CallbackStatus string

const (
	CallbackPending   CallbackStatus = "pending"
	CallbackConfirmed CallbackStatus = "confirmed"
	CallbackCompleted CallbackStatus = "completed"
	CallbackCancelled CallbackStatus = "cancelled"
)

// ErrCallbackInPast rejects callback times that are not in the future.
var ErrCallbackInPast = errors.New("Preferred callback time must be in the future.")

// Callback is a request for an advisor to phone a subject.
type Callback struct {
	ID            string         `json:"id"`
	SubjectID     string         `json:"subject_id"`
	PreferredTime time.Time      `json:"preferred_time"`
	Reason        string         `json:"reason,omitempty"`
	Status        CallbackStatus `json:"status"`
	AssignedTo    string         `json:"assigned_to,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewCallback returns a pending callback. preferred must be after now.
func NewCallback(id, subjectID string, preferred time.Time, reason string, now time.Time) (Callback, error) {
	if !preferred.After(now) {
		return Callback{}, ErrCallbackInPast
	}
	return Callback{
		ID:            id,
		SubjectID:     subjectID,
		PreferredTime: preferred.UTC(),
		Reason:        reason,
		Status:        CallbackPending,
		CreatedAt:     now,
	}, nil
}
