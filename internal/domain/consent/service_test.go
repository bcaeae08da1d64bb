package consent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/platform/access"
	"github.com/clinrec/clinrec/internal/platform/audit"
	"github.com/clinrec/clinrec/internal/platform/auth"
)

type mockRepo struct {
	consents map[uuid.UUID]*Consent
}

func newMockRepo() *mockRepo {
	return &mockRepo{consents: make(map[uuid.UUID]*Consent)}
}

func (m *mockRepo) Create(ctx context.Context, c *Consent) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	cp := *c
	m.consents[c.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Consent, error) {
	c, ok := m.consents[id]
	if !ok || c.DeletedAt != nil {
		return nil, access.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockRepo) Search(ctx context.Context, q SearchQuery) ([]Consent, int, error) {
	var out []Consent
	for _, c := range m.consents {
		if c.DeletedAt != nil {
			continue
		}
		if !q.Filter.Matches(c) {
			continue
		}
		if q.Status != "" && c.Status != q.Status {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockRepo) Update(ctx context.Context, c *Consent) error {
	existing, ok := m.consents[c.ID]
	if !ok || existing.DeletedAt != nil {
		return access.ErrNotFound
	}
	cp := *c
	cp.CreatedAt = existing.CreatedAt
	m.consents[c.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	c, ok := m.consents[id]
	if !ok || c.DeletedAt != nil {
		return access.ErrNotFound
	}
	now := time.Now()
	c.DeletedAt = &now
	return nil
}

type mockOwners struct {
	byAccount map[string][]string
}

func (m *mockOwners) FindPatientIDsByAccount(ctx context.Context, accountID string) ([]string, error) {
	return m.byAccount[accountID], nil
}

type mockRecorder struct {
	entries []audit.Entry
}

func (m *mockRecorder) Record(ctx context.Context, e audit.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func newTestService(owners map[string][]string) (*Service, *mockRepo, *mockRecorder) {
	repo := newMockRepo()
	recorder := &mockRecorder{}
	engine := access.NewEngine(&mockOwners{byAccount: owners}, time.Second)
	return NewService(repo, engine, recorder), repo, recorder
}

func seed(t *testing.T, repo *mockRepo, subject, status string) uuid.UUID {
	t.Helper()
	c := &Consent{SubjectReference: subject, Status: status}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return c.ID
}

func TestGetOwnConsent(t *testing.T) {
	svc, repo, _ := newTestService(map[string][]string{"acct-1": {"p1"}})
	id := seed(t, repo, "Patient/p1", "active")

	ident := auth.NewIdentity("acct-1", []string{auth.RolePatient}, nil, "", "")
	got, err := svc.Get(context.Background(), ident, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SubjectReference != "Patient/p1" {
		t.Errorf("got %+v", got)
	}
}

func TestGetForeignConsentForbidden(t *testing.T) {
	svc, repo, _ := newTestService(map[string][]string{"acct-1": {"p1"}})
	id := seed(t, repo, "Patient/p2", "active")

	ident := auth.NewIdentity("acct-1", []string{auth.RolePatient}, nil, "", "")
	_, err := svc.Get(context.Background(), ident, id)
	if !errors.Is(err, access.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestGetMissingConsentNotFound(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ident := auth.NewIdentity("acct-1", []string{auth.RolePatient}, nil, "", "")
	_, err := svc.Get(context.Background(), ident, uuid.New())
	if !errors.Is(err, access.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestGetDeletedConsentNotFound(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	id := seed(t, repo, "Patient/p1", "active")
	if err := repo.Delete(context.Background(), id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	admin := auth.NewIdentity("admin-1", []string{auth.RoleAdmin}, nil, "", "")
	_, err := svc.Get(context.Background(), admin, id)
	if !errors.Is(err, access.ErrNotFound) {
		t.Errorf("deleted record must be not-found even for admin, got %v", err)
	}
}

func TestSearchScopedToOwnedPatients(t *testing.T) {
	svc, repo, _ := newTestService(map[string][]string{"acct-1": {"p1", "p2"}})
	seed(t, repo, "Patient/p1", "active")
	seed(t, repo, "Patient/p2", "active")
	seed(t, repo, "Patient/p3", "active")

	ident := auth.NewIdentity("acct-1", []string{auth.RolePatient}, nil, "", "")
	items, total, err := svc.Search(context.Background(), ident, "", "", nil, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected the two owned patients' consents, got %d", total)
	}
	for _, c := range items {
		if c.SubjectReference == "Patient/p3" {
			t.Error("foreign consent leaked into results")
		}
	}
}

func TestSearchNoOwnershipMatchesNothing(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	seed(t, repo, "Patient/p1", "active")

	ident := auth.NewIdentity("acct-z", []string{auth.RolePatient},
		[]string{"consent:read"}, "", "")
	items, total, err := svc.Search(context.Background(), ident, "", "", nil, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("expected empty result, got %d items", len(items))
	}
}

func TestSearchSubjectParamOnlyNarrows(t *testing.T) {
	svc, repo, _ := newTestService(map[string][]string{"acct-1": {"p1", "p2"}})
	seed(t, repo, "Patient/p1", "active")
	seed(t, repo, "Patient/p2", "active")
	seed(t, repo, "Patient/p3", "active")

	ident := auth.NewIdentity("acct-1", []string{auth.RolePatient}, nil, "", "")

	// Narrowing to an owned patient works, with or without the prefix.
	items, _, err := svc.Search(context.Background(), ident, "p2", "", nil, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].SubjectReference != "Patient/p2" {
		t.Errorf("expected p2 only, got %+v", items)
	}

	// Asking for a patient outside the owned set yields nothing, not an
	// escalation.
	items, total, err := svc.Search(context.Background(), ident, "Patient/p3", "", nil, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("subject param must not widen access, got %d items", len(items))
	}
}

func TestCreateValidationAndAudit(t *testing.T) {
	svc, _, recorder := newTestService(map[string][]string{"acct-1": {"p1"}})
	ident := auth.NewIdentity("acct-1", []string{auth.RolePatient}, nil, "", "")

	if err := svc.Create(context.Background(), ident, &Consent{Status: "active"}); err == nil {
		t.Error("missing subject should fail validation")
	}
	if err := svc.Create(context.Background(), ident, &Consent{
		SubjectReference: "p1", Status: "bogus",
	}); err == nil {
		t.Error("unknown status should fail validation")
	}

	c := &Consent{SubjectReference: "p1", Status: "active"}
	if err := svc.Create(context.Background(), ident, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.SubjectReference != "Patient/p1" {
		t.Errorf("subject not normalized: %q", c.SubjectReference)
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != audit.ActionCreate {
		t.Errorf("create must be audited, got %+v", recorder.entries)
	}
	if recorder.entries[0].ResourceID != c.ID.String() {
		t.Errorf("audit entry should carry the new id")
	}
}

func TestCreateForeignSubjectForbidden(t *testing.T) {
	svc, _, recorder := newTestService(map[string][]string{"acct-1": {"p1"}})
	ident := auth.NewIdentity("acct-1", []string{auth.RolePatient}, nil, "", "")

	err := svc.Create(context.Background(), ident, &Consent{
		SubjectReference: "Patient/p2", Status: "active",
	})
	if !errors.Is(err, access.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
	if len(recorder.entries) != 0 {
		t.Error("denied create must not be audited as a write")
	}
}

func TestUpdateKeepsSubjectImmutable(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	id := seed(t, repo, "Patient/p1", "active")

	admin := auth.NewIdentity("admin-1", []string{auth.RoleAdmin}, nil, "", "")
	upd := &Consent{ID: id, SubjectReference: "Patient/p9", Status: "inactive"}
	if err := svc.Update(context.Background(), admin, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SubjectReference != "Patient/p1" {
		t.Errorf("subject must be immutable, got %q", got.SubjectReference)
	}
	if got.Status != "inactive" {
		t.Errorf("status not updated: %q", got.Status)
	}
}

func TestDeleteAuditsAndHides(t *testing.T) {
	svc, repo, recorder := newTestService(nil)
	id := seed(t, repo, "Patient/p1", "active")

	admin := auth.NewIdentity("admin-1", []string{auth.RoleAdmin}, nil, "", "")
	if err := svc.Delete(context.Background(), admin, id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != audit.ActionDelete {
		t.Errorf("delete must be audited, got %+v", recorder.entries)
	}
	if _, err := svc.Get(context.Background(), admin, id); !errors.Is(err, access.ErrNotFound) {
		t.Errorf("deleted consent should be gone, got %v", err)
	}
}
