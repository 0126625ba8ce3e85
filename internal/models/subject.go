package models

import "time"

// Subject is the database row for an end user.
type Subject struct {
	SubjectID string    `db:"subject_id"`
	PANHash   string    `db:"pan_hash"`
	PANMasked string    `db:"pan_masked"`
	Phone     string    `db:"phone"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}
