package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	"github.com/exitdebt/exitdebt_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAdvisoryRepository struct {
	db *pgxpool.Pool
}

func newPgxAdvisoryRepository(db *pgxpool.Pool) portsrepo.AdvisoryRepository {
	return &PgxAdvisoryRepository{db: db}
}

var _ portsrepo.AdvisoryRepository = (*PgxAdvisoryRepository)(nil)

// advisoryPlanData is the JSONB shape of advisory_plans.plan_data.
type advisoryPlanData struct {
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

func toModelAdvisoryPlan(d domain.AdvisoryPlan) (models.AdvisoryPlan, error) {
	features := d.Features
	if features == nil {
		features = []string{}
	}
	data, err := json.Marshal(advisoryPlanData{Description: d.Description, Features: features})
	if err != nil {
		return models.AdvisoryPlan{}, fmt.Errorf("failed to encode advisory plan data: %w", err)
	}
	return models.AdvisoryPlan{
		AdvisoryID: d.ID,
		SubjectID:  d.SubjectID,
		Tier:       string(d.Tier),
		Price:      d.Price,
		Status:     string(d.Status),
		OrderID:    nullableString(d.OrderID),
		PaymentURL: nullableString(d.PaymentURL),
		PlanData:   data,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			LastUpdatedAt: d.LastUpdatedAt,
			Version:       d.Version,
		},
	}, nil
}

func toDomainAdvisoryPlan(m models.AdvisoryPlan) (domain.AdvisoryPlan, error) {
	var data advisoryPlanData
	if len(m.PlanData) > 0 {
		if err := json.Unmarshal(m.PlanData, &data); err != nil {
			return domain.AdvisoryPlan{}, fmt.Errorf("failed to decode plan data for %s: %w", m.AdvisoryID, err)
		}
	}
	return domain.AdvisoryPlan{
		ID:          m.AdvisoryID,
		SubjectID:   m.SubjectID,
		Tier:        domain.AdvisoryTier(m.Tier),
		Price:       m.Price,
		Status:      domain.AdvisoryStatus(m.Status),
		OrderID:     stringValue(m.OrderID),
		PaymentURL:  stringValue(m.PaymentURL),
		Description: data.Description,
		Features:    data.Features,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
			Version:       m.Version,
		},
	}, nil
}

func (r *PgxAdvisoryRepository) SaveAdvisoryPlan(ctx context.Context, plan domain.AdvisoryPlan) error {
	m, err := toModelAdvisoryPlan(plan)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO advisory_plans (advisory_id, subject_id, tier, price, status, order_id, payment_url, plan_data,
			created_at, last_updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = r.db.Exec(ctx, query,
		m.AdvisoryID,
		m.SubjectID,
		m.Tier,
		m.Price,
		m.Status,
		m.OrderID,
		m.PaymentURL,
		m.PlanData,
		m.CreatedAt,
		m.LastUpdatedAt,
		m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save advisory plan: %w", err)
	}
	return nil
}

func (r *PgxAdvisoryRepository) UpdateAdvisoryPlan(ctx context.Context, plan domain.AdvisoryPlan, expectedVersion int64) error {
	m, err := toModelAdvisoryPlan(plan)
	if err != nil {
		return err
	}
	query := `
		UPDATE advisory_plans
		SET status = $3,
			order_id = $4,
			payment_url = $5,
			last_updated_at = $6,
			version = $7
		WHERE advisory_id = $1 AND version = $2;
	`
	tag, err := r.db.Exec(ctx, query,
		m.AdvisoryID,
		expectedVersion,
		m.Status,
		m.OrderID,
		m.PaymentURL,
		m.LastUpdatedAt,
		m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update advisory plan %s: %w", m.AdvisoryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: advisory plan %s changed since version %d", apperrors.ErrConflict, m.AdvisoryID, expectedVersion)
	}
	return nil
}

func (r *PgxAdvisoryRepository) FindAdvisoryPlanByID(ctx context.Context, id string) (*domain.AdvisoryPlan, error) {
	query := `
		SELECT advisory_id, subject_id, tier, price, status, order_id, payment_url, plan_data,
			created_at, last_updated_at, version
		FROM advisory_plans
		WHERE advisory_id = $1;
	`
	var m models.AdvisoryPlan
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.AdvisoryID,
		&m.SubjectID,
		&m.Tier,
		&m.Price,
		&m.Status,
		&m.OrderID,
		&m.PaymentURL,
		&m.PlanData,
		&m.CreatedAt,
		&m.LastUpdatedAt,
		&m.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find advisory plan: %w", err)
	}
	d, err := toDomainAdvisoryPlan(m)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
