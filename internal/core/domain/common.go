package domain

import "time"

// AuditFields holds standard audit information for domain entities.
// Version is bumped on every update and used for optimistic concurrency.
type AuditFields struct {
	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
	Version       int64     `json:"version"`
}
