package pgsql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	"github.com/exitdebt/exitdebt_backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAuditRepository struct {
	db *pgxpool.Pool
}

func newPgxAuditRepository(db *pgxpool.Pool) portsrepo.AuditRepository {
	return &PgxAuditRepository{db: db}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

func (r *PgxAuditRepository) SaveAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	var metadata []byte
	if len(event.Metadata) > 0 {
		encoded, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode audit metadata: %w", err)
		}
		metadata = encoded
	}
	m := models.AuditLog{
		AuditLogID: event.ID,
		EventType:  string(event.Type),
		SubjectID:  nullableString(event.SubjectID),
		Phone:      nullableString(event.Phone),
		IPAddress:  nullableString(event.IPAddress),
		Metadata:   metadata,
		CreatedAt:  event.CreatedAt,
	}
	query := `
		INSERT INTO audit_logs (audit_log_id, event_type, subject_id, phone, ip_address, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	if _, err := r.db.Exec(ctx, query, m.AuditLogID, m.EventType, m.SubjectID, m.Phone, m.IPAddress, m.Metadata, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to save audit event %s: %w", m.EventType, err)
	}
	return nil
}
