package auth

import (
	"reflect"
	"testing"
)

func TestScopeToPermission(t *testing.T) {
	tests := []struct {
		scope  string
		want   Permission
		wantOK bool
	}{
		{"patient:read", Permission{ResourcePatient, ActionRead}, true},
		{"consent:share", Permission{ResourceConsent, ActionShare}, true},
		{"observation:write", Permission{ResourceObservation, ActionWrite}, true},
		{"patient:delete", Permission{}, false},
		{"unknown:read", Permission{}, false},
		{"patient", Permission{}, false},
		{"patient:read:extra", Permission{}, false},
		{"Patient:read", Permission{}, false},
		{"", Permission{}, false},
		{"patient:", Permission{}, false},
		{":read", Permission{}, false},
	}

	for _, tc := range tests {
		got, ok := ScopeToPermission(tc.scope)
		if ok != tc.wantOK {
			t.Errorf("ScopeToPermission(%q): ok = %v, want %v", tc.scope, ok, tc.wantOK)
			continue
		}
		if got != tc.want {
			t.Errorf("ScopeToPermission(%q) = %+v, want %+v", tc.scope, got, tc.want)
		}
	}
}

func TestScopeCatalogRoundTrip(t *testing.T) {
	// Every catalog scope resolves back to the pair it was built from.
	for _, r := range catalogResources {
		for _, a := range catalogActions {
			s := ScopeFor(r, a)
			p, ok := ScopeToPermission(s)
			if !ok {
				t.Errorf("catalog scope %q did not resolve", s)
				continue
			}
			if p.Resource != r || p.Action != a {
				t.Errorf("scope %q resolved to %+v", s, p)
			}
		}
	}

	if got := len(AllScopes()); got != len(catalogResources)*len(catalogActions) {
		t.Errorf("AllScopes returned %d scopes, want %d", got,
			len(catalogResources)*len(catalogActions))
	}
}

func TestScopesForResource(t *testing.T) {
	got := ScopesForResource(ResourceEncounter)
	want := []string{"encounter:read", "encounter:share", "encounter:write"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ScopesForResource(encounter) = %v, want %v", got, want)
	}
}

func TestRequiredScopes(t *testing.T) {
	if got := RequiredScopes("Patient", "read"); !reflect.DeepEqual(got, []string{"patient:read"}) {
		t.Errorf("RequiredScopes(Patient, read) = %v", got)
	}
	if got := RequiredScopes("DocumentReference", "write"); !reflect.DeepEqual(got, []string{"document:write"}) {
		t.Errorf("RequiredScopes(DocumentReference, write) = %v", got)
	}

	// Unknown pairs require nothing rather than failing; a route for a
	// resource outside the catalog is simply not scope-gated here.
	if got := RequiredScopes("medication", "read"); len(got) != 0 {
		t.Errorf("RequiredScopes for unknown resource = %v, want empty", got)
	}
	if got := RequiredScopes("patient", "delete"); len(got) != 0 {
		t.Errorf("RequiredScopes for unknown action = %v, want empty", got)
	}
}

func TestNormalizeResource(t *testing.T) {
	tests := []struct {
		in     string
		want   Resource
		wantOK bool
	}{
		{"patient", ResourcePatient, true},
		{"Patient", ResourcePatient, true},
		{"patients", ResourcePatient, true},
		{"DocumentReference", ResourceDocument, true},
		{"documents", ResourceDocument, true},
		{"Encounter", ResourceEncounter, true},
		{"consents", ResourceConsent, true},
		{"medication", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		got, ok := NormalizeResource(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("NormalizeResource(%q) = (%q, %v), want (%q, %v)",
				tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}
