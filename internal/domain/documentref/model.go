package documentref

import (
	"time"

	"github.com/google/uuid"
)

// DocumentReference points at a clinical document stored elsewhere. The
// record carries the pointer and its metadata, never the document content.
type DocumentReference struct {
	ID               uuid.UUID  `json:"id"`
	SubjectReference string     `json:"subject_reference"`
	Status           string     `json:"status"`
	TypeCode         string     `json:"type_code,omitempty"`
	TypeDisplay      string     `json:"type_display,omitempty"`
	Description      string     `json:"description,omitempty"`
	ContentURL       string     `json:"content_url"`
	ContentType      string     `json:"content_type,omitempty"`
	AuthorReference  string     `json:"author_reference,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}

func (d *DocumentReference) SubjectRef() string      { return d.SubjectReference }
func (d *DocumentReference) LifecycleStatus() string { return d.Status }
func (d *DocumentReference) Deleted() bool           { return d.DeletedAt != nil }
