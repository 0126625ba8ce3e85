package pgsql

import (
	"context"
	"fmt"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	"github.com/exitdebt/exitdebt_backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCallbackRepository struct {
	db *pgxpool.Pool
}

func newPgxCallbackRepository(db *pgxpool.Pool) portsrepo.CallbackRepository {
	return &PgxCallbackRepository{db: db}
}

var _ portsrepo.CallbackRepository = (*PgxCallbackRepository)(nil)

func (r *PgxCallbackRepository) SaveCallback(ctx context.Context, callback domain.Callback) error {
	query := `
		INSERT INTO callbacks (callback_id, subject_id, preferred_time, reason, status, assigned_to, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db.Exec(ctx, query,
		callback.ID,
		callback.SubjectID,
		callback.PreferredTime,
		nullableString(callback.Reason),
		string(callback.Status),
		nullableString(callback.AssignedTo),
		callback.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save callback: %w", err)
	}
	return nil
}

func (r *PgxCallbackRepository) ListCallbacksBySubject(ctx context.Context, subjectID string) ([]domain.Callback, error) {
	query := `
		SELECT callback_id, subject_id, preferred_time, reason, status, assigned_to, created_at
		FROM callbacks
		WHERE subject_id = $1
		ORDER BY created_at DESC, callback_id DESC;
	`
	rows, err := r.db.Query(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list callbacks: %w", err)
	}
	defer rows.Close()

	var callbacks []domain.Callback
	for rows.Next() {
		var m models.Callback
		if err := rows.Scan(&m.CallbackID, &m.SubjectID, &m.PreferredTime, &m.Reason, &m.Status, &m.AssignedTo, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan callback: %w", err)
		}
		callbacks = append(callbacks, domain.Callback{
			ID:            m.CallbackID,
			SubjectID:     m.SubjectID,
			PreferredTime: m.PreferredTime,
			Reason:        stringValue(m.Reason),
			Status:        domain.CallbackStatus(m.Status),
			AssignedTo:    stringValue(m.AssignedTo),
			CreatedAt:     m.CreatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate callbacks: %w", err)
	}
	return callbacks, nil
}
