package auditevent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clinrec/clinrec/internal/platform/access"
	"github.com/clinrec/clinrec/internal/platform/audit"
	"github.com/clinrec/clinrec/internal/platform/auth"
)

type mockRepo struct {
	events []Event
}

func (m *mockRepo) Insert(ctx context.Context, e *Event) error {
	m.events = append(m.events, *e)
	return nil
}

func (m *mockRepo) Search(ctx context.Context, q SearchQuery) ([]Event, int, error) {
	var out []Event
	for _, e := range m.events {
		if q.Action != "" && e.Action != q.Action {
			continue
		}
		if q.ResourceType != "" && e.ResourceType != q.ResourceType {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func TestRecordMapsEntry(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, 100)

	err := svc.Record(context.Background(), audit.Entry{
		Action:       audit.ActionRead,
		ResourceType: "Consent",
		ResourceID:   "c-1",
		IdentityID:   "user-1",
		ClientID:     "app-1",
		Scopes:       []string{"consent:read"},
		StatusCode:   200,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected one event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if e.Action != "read" || e.ResourceType != "Consent" || e.ClientID != "app-1" {
		t.Errorf("entry not mapped: %+v", e)
	}
}

func TestSearchAdminOnly(t *testing.T) {
	repo := &mockRepo{events: []Event{{Action: "read", ResourceType: "Consent"}}}
	svc := NewService(repo, 100)

	prac := auth.NewIdentity("prac-1", []string{auth.RolePractitioner}, nil, "", "")
	_, _, err := svc.Search(context.Background(), prac, SearchQuery{})
	if !errors.Is(err, access.ErrForbidden) {
		t.Errorf("non-admin must be forbidden, got %v", err)
	}

	admin := auth.NewIdentity("admin-1", []string{auth.RoleAdmin}, nil, "", "")
	_, total, err := svc.Search(context.Background(), admin, SearchQuery{})
	if err != nil || total != 1 {
		t.Errorf("admin search failed: total=%d err=%v", total, err)
	}
}

func TestSearchClampsLimit(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, 50)
	admin := auth.NewIdentity("admin-1", []string{auth.RoleAdmin}, nil, "", "")

	var seen SearchQuery
	svc.repo = searchSpy{repo: repo, seen: &seen}

	if _, _, err := svc.Search(context.Background(), admin, SearchQuery{Limit: 9999}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.Limit != 50 {
		t.Errorf("limit should clamp to 50, got %d", seen.Limit)
	}
}

type searchSpy struct {
	repo Repository
	seen *SearchQuery
}

func (s searchSpy) Insert(ctx context.Context, e *Event) error { return s.repo.Insert(ctx, e) }

func (s searchSpy) Search(ctx context.Context, q SearchQuery) ([]Event, int, error) {
	*s.seen = q
	return s.repo.Search(ctx, q)
}
