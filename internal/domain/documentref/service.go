package documentref

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/platform/access"
	"github.com/clinrec/clinrec/internal/platform/audit"
	"github.com/clinrec/clinrec/internal/platform/auth"
)

const resourceKind = "document"

var validStatuses = map[string]bool{
	"current":          true,
	"superseded":       true,
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

func (s *Service) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*DocumentReference, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dec, err := s.engine.CanAccess(ctx, ident, resourceKind, d, "read")
	if err != nil {
		return nil, err
	}
	if !dec.Allowed {
		return nil, dec.Forbidden()
	}
	return d, nil
}

func (s *Service) Search(ctx context.Context, ident auth.Identity, subject, status, typeCode string, sort []access.SortField, limit, offset int) ([]DocumentReference, int, error) {
	f, err := s.engine.BuildFilter(ctx, ident, resourceKind, "read")
	if err != nil {
		return nil, 0, err
	}
	if subject != "" {
		f = f.Narrow(access.SubjectRef(subject))
	}
	if f.Kind == access.FilterMatchNone {
		return []DocumentReference{}, 0, nil
	}
	return s.repo.Search(ctx, SearchQuery{
		Filter:   f,
		Status:   status,
		TypeCode: typeCode,
		Sort:     sort,
		Limit:    limit,
		Offset:   offset,
	})
}

func (s *Service) Create(ctx context.Context, ident auth.Identity, d *DocumentReference) error {
	if d.SubjectReference == "" {
		return fmt.Errorf("subject_reference is required")
	}
	if d.ContentURL == "" {
		return fmt.Errorf("content_url is required")
	}
	d.SubjectReference = access.SubjectRef(d.SubjectReference)
	if d.Status == "" {
		d.Status = "current"
	}
	if !validStatuses[d.Status] {
		return fmt.Errorf("invalid status: %s", d.Status)
	}

	dec, err := s.engine.CanAccess(ctx, ident, resourceKind, d, "write")
	if err != nil {
		return err
	}
	if !dec.Allowed {
		return dec.Forbidden()
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return err
	}
	s.auditWrite(ctx, ident, audit.ActionCreate, d.ID.String())
	return nil
}

func (s *Service) Update(ctx context.Context, ident auth.Identity, d *DocumentReference) error {
	existing, err := s.repo.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}
	dec, err := s.engine.CanAccess(ctx, ident, resourceKind, existing, "write")
	if err != nil {
		return err
	}
	if !dec.Allowed {
		return dec.Forbidden()
	}

	if d.Status != "" && !validStatuses[d.Status] {
		return fmt.Errorf("invalid status: %s", d.Status)
	}
	d.SubjectReference = existing.SubjectReference

	if err := s.repo.Update(ctx, d); err != nil {
		return err
	}
	s.auditWrite(ctx, ident, audit.ActionUpdate, d.ID.String())
	return nil
}

func (s *Service) Delete(ctx context.Context, ident auth.Identity, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	dec, err := s.engine.CanAccess(ctx, ident, resourceKind, existing, "write")
	if err != nil {
		return err
	}
	if !dec.Allowed {
		return dec.Forbidden()
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
		ResourceType: "DocumentReference",
		ResourceID:   id,
		IdentityID:   ident.ID,
		Patient:      ident.Patient,
		FHIRUser:     ident.FHIRUser,
		Scopes:       ident.Scopes,
	})
}
