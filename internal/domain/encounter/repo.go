package encounter

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/platform/access"
)

type SearchQuery struct {
	Filter       access.Filter
	Status       string
	Practitioner string
	Sort         []access.SortField
	Limit        int
	Offset       int
}

type Repository interface {
	Create(ctx context.Context, e *Encounter) error
	GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error)
	Search(ctx context.Context, q SearchQuery) ([]Encounter, int, error)
	Update(ctx context.Context, e *Encounter) error
	Delete(ctx context.Context, id uuid.UUID) error
}
