package auditevent

import (
	"context"

	"github.com/clinrec/clinrec/internal/platform/access"
	"github.com/clinrec/clinrec/internal/platform/audit"
	"github.com/clinrec/clinrec/internal/platform/auth"
)

// Service is the audit sink. It satisfies the audit middleware's Recorder
// interface and exposes the admin-only query surface.
type Service struct {
	repo       Repository
	maxResults int
}

func NewService(repo Repository, maxResults int) *Service {
	if maxResults <= 0 {
		maxResults = 100
	}
	return &Service{repo: repo, maxResults: maxResults}
}

// Record persists one audit entry. The caller (audit.Emit) swallows and
// counts failures; this method just reports them.
func (s *Service) Record(ctx context.Context, entry audit.Entry) error {
	return s.repo.Insert(ctx, &Event{
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		IdentityID:   entry.IdentityID,
		ClientID:     entry.ClientID,
		Patient:      entry.Patient,
		FHIRUser:     entry.FHIRUser,
		Scopes:       entry.Scopes,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		Method:       entry.Method,
		Path:         entry.Path,
		StatusCode:   entry.StatusCode,
		ErrorMessage: entry.ErrorMessage,
		CreatedAt:    entry.CreatedAt,
	})
}

// Search queries the audit trail. Admin only: the trail exposes activity
// across every patient.
func (s *Service) Search(ctx context.Context, ident auth.Identity, q SearchQuery) ([]Event, int, error) {
	if !ident.HasRole(auth.RoleAdmin) {
		return nil, 0, &access.ForbiddenError{Class: access.ReasonRole}
	}
	if q.Limit <= 0 || q.Limit > s.maxResults {
		q.Limit = s.maxResults
	}
	return s.repo.Search(ctx, q)
}
