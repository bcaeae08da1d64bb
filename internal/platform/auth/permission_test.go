package auth

import "testing"

func TestHasPermission(t *testing.T) {
	if !HasPermission("document:read", "DocumentReference", "read") {
		t.Error("document:read should grant read on DocumentReference")
	}
	if HasPermission("document:read", "DocumentReference", "write") {
		t.Error("read scope must not grant write")
	}
	if HasPermission("document:read", "consent", "read") {
		t.Error("document scope must not grant consent access")
	}
	if HasPermission("bogus", "patient", "read") {
		t.Error("malformed scope grants nothing")
	}
}

func TestHasResourcePermission(t *testing.T) {
	admin := NewIdentity("a", []string{RoleAdmin}, nil, "", "")
	if !HasResourcePermission(admin, "consent", "share") {
		t.Error("admin is granted unconditionally")
	}

	scoped := NewIdentity("s", nil, []string{"encounter:read", "patient:read"}, "", "")
	if !HasResourcePermission(scoped, "encounters", "read") {
		t.Error("encounter:read should grant read on the encounters route")
	}
	if HasResourcePermission(scoped, "encounter", "write") {
		t.Error("no write scope, no write")
	}

	empty := NewIdentity("e", nil, nil, "", "")
	if HasResourcePermission(empty, "patient", "read") {
		t.Error("identity without scopes gets nothing")
	}
}

func TestRoleGrantsPermission(t *testing.T) {
	prac := NewIdentity("p", []string{RolePractitioner}, nil, "", "")

	grants := []struct {
		resource, action string
		want             bool
	}{
		{"patient", "read", true},
		{"patient", "write", false},
		{"encounter", "read", true},
		{"encounter", "write", true},
		{"document", "read", true},
		{"document", "write", true},
		{"consent", "read", false},
		{"consent", "write", false},
		{"observation", "read", false},
		{"patient", "share", false},
	}
	for _, tc := range grants {
		if got := RoleGrantsPermission(prac, tc.resource, tc.action); got != tc.want {
			t.Errorf("practitioner %s %s = %v, want %v", tc.resource, tc.action, got, tc.want)
		}
	}

	patient := NewIdentity("u", []string{RolePatient}, nil, "", "")
	if RoleGrantsPermission(patient, "patient", "read") {
		t.Error("patient role has no table entry, access flows through ownership")
	}

	admin := NewIdentity("a", []string{RoleAdmin}, nil, "", "")
	if !RoleGrantsPermission(admin, "consent", "share") {
		t.Error("admin grants everything")
	}
}

func TestValidateScopes(t *testing.T) {
	have := []string{"patient:read", "encounter:read", "encounter:write"}
	if !ValidateScopes(have, []string{"encounter:read"}) {
		t.Error("containment should pass")
	}
	if !ValidateScopes(have, nil) {
		t.Error("empty requirement always passes")
	}
	if ValidateScopes(have, []string{"consent:read"}) {
		t.Error("missing scope should fail")
	}
}
