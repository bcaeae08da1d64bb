package patientlink

import (
	"time"

	"github.com/google/uuid"
)

// Link ties an identity-provider account to a patient record it owns. One
// account may own several patients (a guardian with dependents); ownership
// checks treat the owned patients as a set.
type Link struct {
	ID        uuid.UUID  `json:"id"`
	PatientID uuid.UUID  `json:"patient_id"`
	AccountID string     `json:"account_id"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
