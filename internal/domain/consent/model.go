package consent

import (
	"time"

	"github.com/google/uuid"
)

// Consent records a patient's grant or refusal of data sharing. Status
// matters for enforcement: only active consents are visible through the
// role-grant path.
type Consent struct {
	ID               uuid.UUID  `json:"id"`
	SubjectReference string     `json:"subject_reference"`
	Status           string     `json:"status"`
	Category         string     `json:"category,omitempty"`
	GrantedTo        string     `json:"granted_to,omitempty"`
	ProvisionType    string     `json:"provision_type,omitempty"`
	PeriodStart      *time.Time `json:"period_start,omitempty"`
	PeriodEnd        *time.Time `json:"period_end,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}

func (c *Consent) SubjectRef() string      { return c.SubjectReference }
func (c *Consent) LifecycleStatus() string { return c.Status }
func (c *Consent) Deleted() bool           { return c.DeletedAt != nil }
