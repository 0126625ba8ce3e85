package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	"github.com/exitdebt/exitdebt_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// openCaseIndex enforces at most one non-closed case per subject.
const openCaseIndex = "settlement_cases_one_open_per_subject"

type PgxSettlementRepository struct {
	db *pgxpool.Pool
}

func newPgxSettlementRepository(db *pgxpool.Pool) portsrepo.SettlementRepositoryFacade {
	return &PgxSettlementRepository{db: db}
}

var _ portsrepo.SettlementRepositoryFacade = (*PgxSettlementRepository)(nil)

func toModelSettlementCase(d domain.SettlementCase) models.SettlementCase {
	return models.SettlementCase{
		CaseID:        d.ID,
		SubjectID:     d.SubjectID,
		TotalDebt:     d.TotalDebt,
		TargetAmount:  d.TargetAmount,
		Status:        string(d.Status),
		SettledAmount: d.SettledAmount,
		FeeAmount:     d.FeeAmount,
		AssignedTo:    nullableString(d.AssignedTo),
		StartedAt:     d.StartedAt,
		SettledAt:     d.SettledAt,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			LastUpdatedAt: d.LastUpdatedAt,
			Version:       d.Version,
		},
	}
}

func toDomainSettlementCase(m models.SettlementCase) domain.SettlementCase {
	return domain.SettlementCase{
		ID:            m.CaseID,
		SubjectID:     m.SubjectID,
		TotalDebt:     m.TotalDebt,
		TargetAmount:  m.TargetAmount,
		Status:        domain.SettlementStatus(m.Status),
		SettledAmount: m.SettledAmount,
		FeeAmount:     m.FeeAmount,
		AssignedTo:    stringValue(m.AssignedTo),
		StartedAt:     m.StartedAt,
		SettledAt:     m.SettledAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
			Version:       m.Version,
		},
	}
}

const settlementColumns = `case_id, subject_id, total_debt, target_amount, status, settled_amount, fee_amount,
	assigned_to, started_at, settled_at, created_at, last_updated_at, version`

func (r *PgxSettlementRepository) SaveCase(ctx context.Context, settlementCase domain.SettlementCase) error {
	m := toModelSettlementCase(settlementCase)
	query := `INSERT INTO settlement_cases (` + settlementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`
	_, err := r.db.Exec(ctx, query,
		m.CaseID,
		m.SubjectID,
		m.TotalDebt,
		m.TargetAmount,
		m.Status,
		m.SettledAmount,
		m.FeeAmount,
		m.AssignedTo,
		m.StartedAt,
		m.SettledAt,
		m.CreatedAt,
		m.LastUpdatedAt,
		m.Version,
	)
	if err != nil {
		if isUniqueViolation(err, openCaseIndex) {
			return fmt.Errorf("%w: subject %s already has an open settlement case", apperrors.ErrDuplicate, m.SubjectID)
		}
		return fmt.Errorf("failed to save settlement case: %w", err)
	}
	return nil
}

func (r *PgxSettlementRepository) UpdateCase(ctx context.Context, settlementCase domain.SettlementCase, expectedVersion int64) error {
	m := toModelSettlementCase(settlementCase)
	query := `
		UPDATE settlement_cases
		SET target_amount = $3,
			status = $4,
			settled_amount = $5,
			fee_amount = $6,
			assigned_to = $7,
			settled_at = $8,
			last_updated_at = $9,
			version = $10
		WHERE case_id = $1 AND version = $2;
	`
	tag, err := r.db.Exec(ctx, query,
		m.CaseID,
		expectedVersion,
		m.TargetAmount,
		m.Status,
		m.SettledAmount,
		m.FeeAmount,
		m.AssignedTo,
		m.SettledAt,
		m.LastUpdatedAt,
		m.Version,
	)
	if err != nil {
		if isUniqueViolation(err, openCaseIndex) {
			return fmt.Errorf("%w: subject %s already has an open settlement case", apperrors.ErrDuplicate, m.SubjectID)
		}
		return fmt.Errorf("failed to update settlement case %s: %w", m.CaseID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: settlement case %s changed since version %d", apperrors.ErrConflict, m.CaseID, expectedVersion)
	}
	return nil
}

func (r *PgxSettlementRepository) FindCaseByID(ctx context.Context, caseID string) (*domain.SettlementCase, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlement_cases WHERE case_id = $1;`
	return r.findOne(ctx, query, caseID)
}

func (r *PgxSettlementRepository) FindOpenCaseBySubject(ctx context.Context, subjectID string) (*domain.SettlementCase, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlement_cases
		WHERE subject_id = $1 AND status <> 'closed'
		ORDER BY started_at DESC
		LIMIT 1;`
	return r.findOne(ctx, query, subjectID)
}

func (r *PgxSettlementRepository) FindLatestCaseBySubject(ctx context.Context, subjectID string) (*domain.SettlementCase, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlement_cases
		WHERE subject_id = $1
		ORDER BY started_at DESC, case_id DESC
		LIMIT 1;`
	return r.findOne(ctx, query, subjectID)
}

func (r *PgxSettlementRepository) findOne(ctx context.Context, query string, args ...any) (*domain.SettlementCase, error) {
	var m models.SettlementCase
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&m.CaseID,
		&m.SubjectID,
		&m.TotalDebt,
		&m.TargetAmount,
		&m.Status,
		&m.SettledAmount,
		&m.FeeAmount,
		&m.AssignedTo,
		&m.StartedAt,
		&m.SettledAt,
		&m.CreatedAt,
		&m.LastUpdatedAt,
		&m.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find settlement case: %w", err)
	}
	d := toDomainSettlementCase(m)
	return &d, nil
}
