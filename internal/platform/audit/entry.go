package audit

import "time"

// Action values recorded in audit entries.
const (
	ActionRead   = "read"
	ActionSearch = "search"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Entry is one append-only audit record. Entries are created once per logged
// request and never mutated afterwards.
type Entry struct {
	Action       string
	ResourceType string
	ResourceID   string

	// IdentityID is the verified subject. ClientID, Patient, FHIRUser and
	// Scopes come from TokenMetadata and are telemetry, not trust.
	IdentityID string
	ClientID   string
	Patient    string
	FHIRUser   string
	Scopes     []string

	IPAddress  string
	UserAgent  string
	Method     string
	Path       string
	StatusCode int

	ErrorMessage string
	CreatedAt    time.Time
}
