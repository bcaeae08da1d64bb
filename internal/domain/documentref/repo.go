package documentref

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/platform/access"
)

type SearchQuery struct {
	Filter   access.Filter
	Status   string
	TypeCode string
	Sort     []access.SortField
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, d *DocumentReference) error
	GetByID(ctx context.Context, id uuid.UUID) (*DocumentReference, error)
	Search(ctx context.Context, q SearchQuery) ([]DocumentReference, int, error)
	Update(ctx context.Context, d *DocumentReference) error
	Delete(ctx context.Context, id uuid.UUID) error
}
