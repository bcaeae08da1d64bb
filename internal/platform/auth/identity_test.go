package auth

import (
	"context"
	"testing"
)

func TestNewIdentityNilSlices(t *testing.T) {
	ident := NewIdentity("u1", nil, nil, "", "")
	if ident.Roles == nil || ident.Scopes == nil {
		t.Error("roles and scopes must never be nil")
	}
}

func TestIdentityFromContextMissing(t *testing.T) {
	ident := IdentityFromContext(context.Background())
	if ident.ID != "" {
		t.Errorf("missing identity should be zero, got %q", ident.ID)
	}
	if ident.Roles == nil || ident.Scopes == nil {
		t.Error("zero identity must keep the non-nil slice invariant")
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	in := NewIdentity("u1", []string{RolePatient}, []string{"patient:read"}, "p1", "")
	ctx := WithIdentity(context.Background(), in)
	out := IdentityFromContext(ctx)
	if out.ID != "u1" || !out.HasRole(RolePatient) || len(out.Scopes) != 1 {
		t.Errorf("identity did not round-trip: %+v", out)
	}
}

func TestPatientReference(t *testing.T) {
	tests := []struct {
		claim string
		want  string
	}{
		{"", ""},
		{"p1", "Patient/p1"},
		{"Patient/p1", "Patient/p1"},
	}
	for _, tc := range tests {
		ident := NewIdentity("u", nil, nil, tc.claim, "")
		if got := PatientReference(ident); got != tc.want {
			t.Errorf("PatientReference(%q) = %q, want %q", tc.claim, got, tc.want)
		}
	}

	ident := NewIdentity("u", nil, nil, "Patient/p1", "")
	if got := PatientID(ident); got != "p1" {
		t.Errorf("PatientID = %q, want p1", got)
	}
}

func TestShouldBypassFiltering(t *testing.T) {
	if !ShouldBypassFiltering(NewIdentity("a", []string{RoleAdmin, RolePractitioner}, nil, "", "")) {
		t.Error("admin bypasses filtering")
	}
	if ShouldBypassFiltering(NewIdentity("p", []string{RolePractitioner}, nil, "", "")) {
		t.Error("practitioner does not bypass filtering")
	}
}
