package patientlink

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists account-to-patient ownership links. All reads exclude
// soft-deleted links; FindPatientIDsByAccount satisfies the enforcement
// engine's OwnershipLookup contract.
type Repository interface {
	Create(ctx context.Context, link *Link) error
	FindByAccount(ctx context.Context, accountID string) ([]Link, error)
	FindPatientIDsByAccount(ctx context.Context, accountID string) ([]string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
