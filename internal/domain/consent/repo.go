package consent

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/platform/access"
)

// SearchQuery carries the access filter plus caller-supplied refinements.
// The filter always comes from the enforcement engine; the repository never
// decides visibility on its own.
type SearchQuery struct {
	Filter access.Filter
	Status string
	Sort   []access.SortField
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, c *Consent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Consent, error)
	Search(ctx context.Context, q SearchQuery) ([]Consent, int, error)
	Update(ctx context.Context, c *Consent) error
	Delete(ctx context.Context, id uuid.UUID) error
}
