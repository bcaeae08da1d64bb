package auditevent

import (
	"time"

	"github.com/google/uuid"
)

// Event is a persisted audit entry. Rows are append-only: no update or
// delete path exists in this package.
type Event struct {
	ID           uuid.UUID `json:"id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id,omitempty"`
	IdentityID   string    `json:"identity_id,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	Patient      string    `json:"patient,omitempty"`
	FHIRUser     string    `json:"fhir_user,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	Method       string    `json:"method,omitempty"`
	Path         string    `json:"path,omitempty"`
	StatusCode   int       `json:"status_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
