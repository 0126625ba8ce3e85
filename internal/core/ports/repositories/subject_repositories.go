package repositories

import (
	"context"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
)

// SubjectReader defines read operations for subjects.
type SubjectReader interface {
	// FindSubjectByID retrieves a subject by its unique identifier.
	FindSubjectByID(ctx context.Context, subjectID string) (*domain.Subject, error)

	// FindSubjectByIdentity retrieves the subject registered with a PAN hash and phone.
	FindSubjectByIdentity(ctx context.Context, panHash, phone string) (*domain.Subject, error)
}

// SubjectWriter defines write operations for subjects.
type SubjectWriter interface {
	// SaveSubject persists a new subject.
	SaveSubject(ctx context.Context, subject domain.Subject) error
}

// SubjectRepositoryFacade combines all subject repository interfaces.
type SubjectRepositoryFacade interface {
	SubjectReader
	SubjectWriter
}
