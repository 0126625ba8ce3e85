package models

import "time"

// SettlementCase is the database row for a settlement case. Amounts are whole rupees.
type SettlementCase struct {
	CaseID        string     `db:"case_id"`
	SubjectID     string     `db:"subject_id"`
	TotalDebt     int64      `db:"total_debt"`
	TargetAmount  *int64     `db:"target_amount"`
	Status        string     `db:"status"`
	SettledAmount *int64     `db:"settled_amount"`
	FeeAmount     *int64     `db:"fee_amount"`
	AssignedTo    *string    `db:"assigned_to"`
	StartedAt     time.Time  `db:"started_at"`
	SettledAt     *time.Time `db:"settled_at"`
	AuditFields
}
