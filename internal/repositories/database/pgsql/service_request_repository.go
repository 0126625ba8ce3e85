package pgsql

import (
	"context"
	"fmt"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	"github.com/exitdebt/exitdebt_backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxServiceRequestRepository struct {
	db *pgxpool.Pool
}

func newPgxServiceRequestRepository(db *pgxpool.Pool) portsrepo.ServiceRequestRepository {
	return &PgxServiceRequestRepository{db: db}
}

var _ portsrepo.ServiceRequestRepository = (*PgxServiceRequestRepository)(nil)

func (r *PgxServiceRequestRepository) SaveServiceRequest(ctx context.Context, request domain.ServiceRequest) error {
	query := `
		INSERT INTO service_requests (request_id, subject_id, request_type, status, details, assigned_to, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db.Exec(ctx, query,
		request.ID,
		request.SubjectID,
		string(request.Type),
		string(request.Status),
		nullableString(request.Details),
		nullableString(request.AssignedTo),
		request.CreatedAt,
		request.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save service request: %w", err)
	}
	return nil
}

func (r *PgxServiceRequestRepository) ListServiceRequestsBySubject(ctx context.Context, subjectID string) ([]domain.ServiceRequest, error) {
	query := `
		SELECT request_id, subject_id, request_type, status, details, assigned_to, created_at, resolved_at
		FROM service_requests
		WHERE subject_id = $1
		ORDER BY created_at DESC, request_id DESC;
	`
	rows, err := r.db.Query(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list service requests: %w", err)
	}
	defer rows.Close()

	requests := []domain.ServiceRequest{}
	for rows.Next() {
		var m models.ServiceRequest
		if err := rows.Scan(&m.RequestID, &m.SubjectID, &m.RequestType, &m.Status, &m.Details, &m.AssignedTo, &m.CreatedAt, &m.ResolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service request: %w", err)
		}
		requests = append(requests, domain.ServiceRequest{
			ID:         m.RequestID,
			SubjectID:  m.SubjectID,
			Type:       domain.ServiceRequestType(m.RequestType),
			Status:     domain.ServiceRequestStatus(m.Status),
			Details:    stringValue(m.Details),
			AssignedTo: stringValue(m.AssignedTo),
			CreatedAt:  m.CreatedAt,
			ResolvedAt: m.ResolvedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate service requests: %w", err)
	}
	return requests, nil
}
