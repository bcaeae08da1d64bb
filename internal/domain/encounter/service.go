package encounter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/platform/access"
	"github.com/clinrec/clinrec/internal/platform/audit"
	"github.com/clinrec/clinrec/internal/platform/auth"
)

const resourceKind = "encounter"

// Valid encounter statuses per FHIR R4.
var validStatuses = map[string]bool{
	"planned":          true,
	"arrived":          true,
	"triaged":          true,
	"in-progress":      true,
	"onleave":          true,
	"finished":         true,
	"cancelled":        true,
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

func (s *Service) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Encounter, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := s.engine.CanAccess(ctx, ident, resourceKind, e, "read")
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		return nil, d.Forbidden()
	}
	return e, nil
}

func (s *Service) Search(ctx context.Context, ident auth.Identity, subject, status, practitioner string, sort []access.SortField, limit, offset int) ([]Encounter, int, error) {
	f, err := s.engine.BuildFilter(ctx, ident, resourceKind, "read")
	if err != nil {
		return nil, 0, err
	}
	if subject != "" {
		f = f.Narrow(access.SubjectRef(subject))
	}
	if f.Kind == access.FilterMatchNone {
		return []Encounter{}, 0, nil
	}
	return s.repo.Search(ctx, SearchQuery{
		Filter:       f,
		Status:       status,
		Practitioner: practitioner,
		Sort:         sort,
		Limit:        limit,
		Offset:       offset,
	})
}

func (s *Service) Create(ctx context.Context, ident auth.Identity, e *Encounter) error {
	if e.SubjectReference == "" {
		return fmt.Errorf("subject_reference is required")
	}
	if e.ClassCode == "" {
		return fmt.Errorf("class_code is required")
	}
	e.SubjectReference = access.SubjectRef(e.SubjectReference)
	if e.Status == "" {
		e.Status = "planned"
	}
	if !validStatuses[e.Status] {
		return fmt.Errorf("invalid status: %s", e.Status)
	}
	if e.PeriodStart.IsZero() {
		e.PeriodStart = time.Now().UTC()
	}

	d, err := s.engine.CanAccess(ctx, ident, resourceKind, e, "write")
	if err != nil {
		return err
	}
	if !d.Allowed {
		return d.Forbidden()
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return err
	}
	s.auditWrite(ctx, ident, audit.ActionCreate, e.ID.String())
	return nil
}

func (s *Service) Update(ctx context.Context, ident auth.Identity, e *Encounter) error {
	existing, err := s.repo.GetByID(ctx, e.ID)
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

	if e.Status != "" && !validStatuses[e.Status] {
		return fmt.Errorf("invalid status: %s", e.Status)
	}
	e.SubjectReference = existing.SubjectReference

	if err := s.repo.Update(ctx, e); err != nil {
		return err
	}
	s.auditWrite(ctx, ident, audit.ActionUpdate, e.ID.String())
	return nil
}

// UpdateStatus moves an encounter through its lifecycle without touching
// any other field.
func (s *Service) UpdateStatus(ctx context.Context, ident auth.Identity, id uuid.UUID, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("invalid status: %s", status)
	}
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

	existing.Status = status
	if status == "finished" && existing.PeriodEnd == nil {
		now := time.Now().UTC()
		existing.PeriodEnd = &now
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return err
	}
	s.auditWrite(ctx, ident, audit.ActionUpdate, id.String())
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

func (s *Service) auditWrite(ctx context.Context, ident auth.Identity, action, id string) {
	audit.Emit(ctx, s.recorder, audit.Entry{
		Action:       action,
		ResourceType: "Encounter",
		ResourceID:   id,
		IdentityID:   ident.ID,
		Patient:      ident.Patient,
		FHIRUser:     ident.FHIRUser,
		Scopes:       ident.Scopes,
	})
}
