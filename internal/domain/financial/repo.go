package financial

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("financial entry not found")

type EntryRepository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Entry, int, error)
	// ListByRange returns the entries dated within [start, end], both inclusive.
	ListByRange(ctx context.Context, start, end time.Time) ([]Entry, error)
	ListByCategory(ctx context.Context, t EntryType, category string) ([]Entry, error)
	// SetCategories persists the Category field of each entry.
	SetCategories(ctx context.Context, entries []Entry) error
}

// CategoryRepository stores the category registry. Get returns an empty
// registry when nothing has been saved yet.
type CategoryRepository interface {
	Get(ctx context.Context) (Registry, error)
	Save(ctx context.Context, r Registry) error
}
