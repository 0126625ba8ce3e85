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

type PgxSubjectRepository struct {
	db *pgxpool.Pool
}

func newPgxSubjectRepository(db *pgxpool.Pool) portsrepo.SubjectRepositoryFacade {
	return &PgxSubjectRepository{db: db}
}

var _ portsrepo.SubjectRepositoryFacade = (*PgxSubjectRepository)(nil)

func toModelSubject(d domain.Subject) models.Subject {
	return models.Subject{
		SubjectID: d.ID,
		PANHash:   d.PANHash,
		PANMasked: d.PANMasked,
		Phone:     d.Phone,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
	}
}

func toDomainSubject(m models.Subject) domain.Subject {
	return domain.Subject{
		ID:        m.SubjectID,
		PANHash:   m.PANHash,
		PANMasked: m.PANMasked,
		Phone:     m.Phone,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

const subjectColumns = `subject_id, pan_hash, pan_masked, phone, name, created_at`

func (r *PgxSubjectRepository) SaveSubject(ctx context.Context, subject domain.Subject) error {
	m := toModelSubject(subject)
	query := `INSERT INTO subjects (` + subjectColumns + `) VALUES ($1, $2, $3, $4, $5, $6);`
	_, err := r.db.Exec(ctx, query, m.SubjectID, m.PANHash, m.PANMasked, m.Phone, m.Name, m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: subject with this PAN and phone already exists", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save subject: %w", err)
	}
	return nil
}

func (r *PgxSubjectRepository) FindSubjectByID(ctx context.Context, subjectID string) (*domain.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE subject_id = $1;`
	return r.findOne(ctx, query, subjectID)
}

func (r *PgxSubjectRepository) FindSubjectByIdentity(ctx context.Context, panHash, phone string) (*domain.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE pan_hash = $1 AND phone = $2;`
	return r.findOne(ctx, query, panHash, phone)
}

func (r *PgxSubjectRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Subject, error) {
	var m models.Subject
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&m.SubjectID,
		&m.PANHash,
		&m.PANMasked,
		&m.Phone,
		&m.Name,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find subject: %w", err)
	}
	d := toDomainSubject(m)
	return &d, nil
}
