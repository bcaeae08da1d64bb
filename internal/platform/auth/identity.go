package auth

import (
	"context"
	"strings"
)

// Role names recognized by the role-grant table.
const (
	RoleAdmin        = "admin"
	RolePractitioner = "practitioner"
	RolePatient      = "patient"
)

// Identity is the verified per-request caller, built by the token-validation
// middleware. It is immutable once set on the request context. Roles and
// Scopes are never nil: the record guard and the filter builder must see the
// same empty set, not one nil and one empty.
type Identity struct {
	// ID is the stable subject identifier (the identity provider's account
	// id, e.g. the Keycloak user id) used for patient-ownership lookups.
	ID string

	Roles  []string
	Scopes []string

	// Patient is the token-asserted launch-context patient reference, set
	// for SMART-style third-party app sessions. When present it is a hard
	// ceiling on what the identity may see.
	Patient string

	// FHIRUser is the token-asserted fhirUser claim, carried for audit
	// context only.
	FHIRUser string
}

// NewIdentity builds an Identity with the nil-slice invariant enforced.
func NewIdentity(id string, roles, scopes []string, patient, fhirUser string) Identity {
	if roles == nil {
		roles = []string{}
	}
	if scopes == nil {
		scopes = []string{}
	}
	return Identity{
		ID:       id,
		Roles:    roles,
		Scopes:   scopes,
		Patient:  patient,
		FHIRUser: fhirUser,
	}
}

// HasRole reports whether the identity carries the given role.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the verified identity.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFromContext returns the verified identity from context. When no
// identity was set (unauthenticated paths), the zero identity is returned
// with the non-nil slice invariant intact.
func IdentityFromContext(ctx context.Context) Identity {
	ident, ok := ctx.Value(identityKey).(Identity)
	if !ok {
		return NewIdentity("", nil, nil, "", "")
	}
	return ident
}

// ShouldBypassFiltering reports whether all patient scoping is bypassed for
// this identity. Only the admin role bypasses; this check is evaluated before
// every other rule and short-circuits them.
func ShouldBypassFiltering(ident Identity) bool {
	return ident.HasRole(RoleAdmin)
}

// PatientReference returns the token-asserted patient reference in
// Patient/{id} form, or "" when the token carries no patient claim. A
// token-asserted context always wins over an ownership lookup: it is an
// explicit, audited launch grant and must not be silently widened.
func PatientReference(ident Identity) string {
	if ident.Patient == "" {
		return ""
	}
	if strings.HasPrefix(ident.Patient, "Patient/") {
		return ident.Patient
	}
	return "Patient/" + ident.Patient
}

// PatientID returns the bare patient id from the token claim, or "".
func PatientID(ident Identity) string {
	ref := PatientReference(ident)
	if ref == "" {
		return ""
	}
	return strings.TrimPrefix(ref, "Patient/")
}

// AccountID returns the identity-provider account id used for ownership
// lookups. Callers consult it only when PatientReference is empty.
func AccountID(ident Identity) string {
	return ident.ID
}
