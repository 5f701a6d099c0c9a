package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("patient not found")
	// ErrInUse is returned when deleting a patient that still has appointments.
	ErrInUse = errors.New("patient has appointments")
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error)
	// ListByIDs returns the patients among ids; unknown ids are ignored.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Patient, error)
}
