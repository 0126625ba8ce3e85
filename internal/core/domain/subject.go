package domain

import "time"

// Subject is the end user a score, settlement case or subscription belongs to.
type Subject struct {
	ID        string
	PANHash   string
	PANMasked string
	Phone     string
	Name      string
	CreatedAt time.Time
}
