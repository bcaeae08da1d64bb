package encounter

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
	encounters map[uuid.UUID]*Encounter
}

func newMockRepo() *mockRepo {
	return &mockRepo{encounters: make(map[uuid.UUID]*Encounter)}
}

func (m *mockRepo) Create(ctx context.Context, e *Encounter) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	cp := *e
	m.encounters[e.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	e, ok := m.encounters[id]
	if !ok || e.DeletedAt != nil {
		return nil, access.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *mockRepo) Search(ctx context.Context, q SearchQuery) ([]Encounter, int, error) {
	var out []Encounter
	for _, e := range m.encounters {
		if e.DeletedAt != nil || !q.Filter.Matches(e) {
			continue
		}
		if q.Status != "" && e.Status != q.Status {
			continue
		}
		if q.Practitioner != "" && e.PractitionerReference != q.Practitioner {
			continue
		}
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (m *mockRepo) Update(ctx context.Context, e *Encounter) error {
	existing, ok := m.encounters[e.ID]
	if !ok || existing.DeletedAt != nil {
		return access.ErrNotFound
	}
	cp := *e
	cp.CreatedAt = existing.CreatedAt
	m.encounters[e.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	e, ok := m.encounters[id]
	if !ok || e.DeletedAt != nil {
		return access.ErrNotFound
	}
	now := time.Now()
	e.DeletedAt = &now
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

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(nil)
	prac := auth.NewIdentity("prac-1", []string{auth.RolePractitioner}, nil, "", "")
	ctx := context.Background()

	if err := svc.Create(ctx, prac, &Encounter{ClassCode: "AMB"}); err == nil {
		t.Error("missing subject should fail")
	}
	if err := svc.Create(ctx, prac, &Encounter{SubjectReference: "p1"}); err == nil {
		t.Error("missing class_code should fail")
	}

	e := &Encounter{SubjectReference: "p1", ClassCode: "AMB"}
	if err := svc.Create(ctx, prac, e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status != "planned" {
		t.Errorf("status should default to planned, got %q", e.Status)
	}
	if e.SubjectReference != "Patient/p1" {
		t.Errorf("subject not normalized: %q", e.SubjectReference)
	}
	if e.PeriodStart.IsZero() {
		t.Error("period_start should default to now")
	}
}

func TestPatientCreateScopedToOwnedSubject(t *testing.T) {
	svc, _, _ := newTestService(map[string][]string{"acct-1": {"p1"}})
	ident := auth.NewIdentity("acct-1", []string{auth.RolePatient}, nil, "", "")

	// A patient owns the record's subject, so the ownership path grants it.
	// Patients file their own appointment-like encounters through this path.
	err := svc.Create(context.Background(), ident, &Encounter{
		SubjectReference: "p1", ClassCode: "AMB",
	})
	if err != nil {
		t.Fatalf("owner create: %v", err)
	}

	// But not for someone else's chart.
	err = svc.Create(context.Background(), ident, &Encounter{
		SubjectReference: "p2", ClassCode: "AMB",
	})
	if !errors.Is(err, access.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestUpdateStatusLifecycle(t *testing.T) {
	svc, repo, recorder := newTestService(nil)
	prac := auth.NewIdentity("prac-1", []string{auth.RolePractitioner}, nil, "", "")
	ctx := context.Background()

	e := &Encounter{SubjectReference: "Patient/p1", ClassCode: "AMB", Status: "in-progress"}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.UpdateStatus(ctx, prac, e.ID, "bogus"); err == nil {
		t.Error("unknown status should fail")
	}
	if err := svc.UpdateStatus(ctx, prac, e.ID, "finished"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "finished" {
		t.Errorf("status = %q", got.Status)
	}
	if got.PeriodEnd == nil {
		t.Error("finishing should stamp period_end")
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != audit.ActionUpdate {
		t.Errorf("status change must be audited, got %+v", recorder.entries)
	}
}

func TestSearchPractitionerSeesAll(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	ctx := context.Background()
	for _, subject := range []string{"Patient/p1", "Patient/p2", "Patient/p3"} {
		e := &Encounter{SubjectReference: subject, ClassCode: "AMB", Status: "finished"}
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	prac := auth.NewIdentity("prac-1", []string{auth.RolePractitioner}, nil, "", "")
	_, total, err := svc.Search(ctx, prac, "", "", "", nil, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Errorf("practitioner role grants blanket encounter read, got %d", total)
	}
}

func TestSearchOwnerScoped(t *testing.T) {
	svc, repo, _ := newTestService(map[string][]string{"acct-1": {"p1"}})
	ctx := context.Background()
	for _, subject := range []string{"Patient/p1", "Patient/p2"} {
		e := &Encounter{SubjectReference: subject, ClassCode: "AMB", Status: "finished"}
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	ident := auth.NewIdentity("acct-1", []string{auth.RolePatient}, nil, "", "")
	items, total, err := svc.Search(ctx, ident, "", "", "", nil, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || items[0].SubjectReference != "Patient/p1" {
		t.Errorf("owner should see only their encounters, got %+v", items)
	}
}
