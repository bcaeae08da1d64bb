package encounter

import (
	"time"

	"github.com/google/uuid"
)

type Encounter struct {
	ID                    uuid.UUID  `json:"id"`
	SubjectReference      string     `json:"subject_reference"`
	Status                string     `json:"status"`
	ClassCode             string     `json:"class_code"`
	TypeCode              string     `json:"type_code,omitempty"`
	PractitionerReference string     `json:"practitioner_reference,omitempty"`
	PeriodStart           time.Time  `json:"period_start"`
	PeriodEnd             *time.Time `json:"period_end,omitempty"`
	ReasonText            string     `json:"reason_text,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	DeletedAt             *time.Time `json:"deleted_at,omitempty"`
}

func (e *Encounter) SubjectRef() string      { return e.SubjectReference }
func (e *Encounter) LifecycleStatus() string { return e.Status }
func (e *Encounter) Deleted() bool           { return e.DeletedAt != nil }
