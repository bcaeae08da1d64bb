package auditevent

import (
	"context"
	"time"
)

// SearchQuery filters the audit trail. All fields are optional.
type SearchQuery struct {
	Action       string
	ResourceType string
	ResourceID   string
	IdentityID   string
	Since        time.Time
	Until        time.Time
	Limit        int
	Offset       int
}

type Repository interface {
	Insert(ctx context.Context, e *Event) error
	Search(ctx context.Context, q SearchQuery) ([]Event, int, error)
}
