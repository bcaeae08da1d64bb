package consent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/platform/access"
	"github.com/clinrec/clinrec/internal/platform/audit"
	"github.com/clinrec/clinrec/internal/platform/auth"
)

const resourceKind = "consent"

// Valid consent statuses per FHIR R4.
var validStatuses = map[string]bool{
	"draft":            true,
	"proposed":         true,
	"active":           true,
	"rejected":         true,
	"inactive":         true,
	"entered-in-error": true,
}

type Service struct {
	repo     Repository
	engine   *access.Engine
	recorder audit.Recorder
}

func NewService(repo Repository, engine *access.Engine, recorder audit.Recorder) *Service {
	return &Service{repo: repo, engine: engine, recorder: recorder}
}

// Get fetches one consent by id with the record guard applied. Existence is
// checked first so not-found and forbidden stay distinct error kinds.
func (s *Service) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Consent, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := s.engine.CanAccess(ctx, ident, resourceKind, c, "read")
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		return nil, d.Forbidden()
	}
	return c, nil
}

// Search lists consents visible to the identity. An explicit subject
// parameter can only narrow the engine's filter, never widen it.
func (s *Service) Search(ctx context.Context, ident auth.Identity, subject, status string, sort []access.SortField, limit, offset int) ([]Consent, int, error) {
	f, err := s.engine.BuildFilter(ctx, ident, resourceKind, "read")
	if err != nil {
		return nil, 0, err
	}
	if subject != "" {
		f = f.Narrow(access.SubjectRef(subject))
	}
	if f.Kind == access.FilterMatchNone {
		return []Consent{}, 0, nil
	}
	return s.repo.Search(ctx, SearchQuery{
		Filter: f,
		Status: status,
		Sort:   sort,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Service) Create(ctx context.Context, ident auth.Identity, c *Consent) error {
	if c.SubjectReference == "" {
		return fmt.Errorf("subject_reference is required")
	}
	c.SubjectReference = access.SubjectRef(c.SubjectReference)
	if c.Status == "" {
		c.Status = "proposed"
	}
	if !validStatuses[c.Status] {
		return fmt.Errorf("invalid status: %s", c.Status)
	}

	d, err := s.engine.CanAccess(ctx, ident, resourceKind, c, "write")
	if err != nil {
		return err
	}
	if !d.Allowed {
		return d.Forbidden()
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	s.auditWrite(ctx, ident, audit.ActionCreate, c.ID.String())
	return nil
}

func (s *Service) Update(ctx context.Context, ident auth.Identity, c *Consent) error {
	existing, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	d, err := s.engine.CanAccess(ctx, ident, resourceKind, existing, "write")
	if err != nil {
		return err
	}
	if !d.Allowed {
		return d.Forbidden()
	}

	if c.Status != "" && !validStatuses[c.Status] {
		return fmt.Errorf("invalid status: %s", c.Status)
	}
	// The subject of a consent is immutable once created.
	c.SubjectReference = existing.SubjectReference

	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}
	s.auditWrite(ctx, ident, audit.ActionUpdate, c.ID.String())
	return nil
}

func (s *Service) Delete(ctx context.Context, ident auth.Identity, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	d, err := s.engine.CanAccess(ctx, ident, resourceKind, existing, "write")
	if err != nil {
		return err
	}
	if !d.Allowed {
		return d.Forbidden()
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditWrite(ctx, ident, audit.ActionDelete, id.String())
	return nil
}

// auditWrite emits the service-authored entry for a mutation. Read auditing
// is handled by the request interceptor; writes are logged here where the
// resource id and outcome are exact.
func (s *Service) auditWrite(ctx context.Context, ident auth.Identity, action, id string) {
	audit.Emit(ctx, s.recorder, audit.Entry{
		Action:       action,
		ResourceType: "Consent",
		ResourceID:   id,
		IdentityID:   ident.ID,
		Patient:      ident.Patient,
		FHIRUser:     ident.FHIRUser,
		Scopes:       ident.Scopes,
	})
}
