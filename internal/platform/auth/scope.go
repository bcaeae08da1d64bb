package auth

import (
	"regexp"
	"sort"
	"strings"
)

// Resource is an internal resource name, the left half of a permission scope.
type Resource string

const (
	ResourcePatient      Resource = "patient"
	ResourcePractitioner Resource = "practitioner"
	ResourceEncounter    Resource = "encounter"
	ResourceDocument     Resource = "document"
	ResourceConsent      Resource = "consent"
	ResourceAppointment  Resource = "appointment"
	ResourceObservation  Resource = "observation"
)

// Action is the right half of a permission scope.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
	ActionShare Action = "share"
)

// Permission is a parsed (resource, action) pair.
type Permission struct {
	Resource Resource
	Action   Action
}

var catalogResources = []Resource{
	ResourcePatient,
	ResourcePractitioner,
	ResourceEncounter,
	ResourceDocument,
	ResourceConsent,
	ResourceAppointment,
	ResourceObservation,
}

var catalogActions = []Action{ActionRead, ActionWrite, ActionShare}

// scopeShape validates the wire format before the catalog lookup. The lookup
// table is authoritative; the regexp only rejects malformed strings early.
var scopeShape = regexp.MustCompile(`^[a-z]+:(read|write|share)$`)

// scopeCatalog is the closed, immutable scope table built at process start.
// Every (resource, action) pair the system recognizes has exactly one
// canonical scope string.
var scopeCatalog = buildCatalog()

func buildCatalog() map[string]Permission {
	m := make(map[string]Permission, len(catalogResources)*len(catalogActions))
	for _, r := range catalogResources {
		for _, a := range catalogActions {
			m[string(r)+":"+string(a)] = Permission{Resource: r, Action: a}
		}
	}
	return m
}

// ScopeFor returns the canonical scope string for a (resource, action) pair.
func ScopeFor(r Resource, a Action) string {
	return string(r) + ":" + string(a)
}

// IsValidScope reports whether s is a catalog scope.
func IsValidScope(s string) bool {
	_, ok := ScopeToPermission(s)
	return ok
}

// ScopeToPermission resolves a scope string to its (resource, action) pair.
// Unknown or malformed scopes resolve to nothing: a token carrying them
// simply grants nothing, it never errors.
func ScopeToPermission(s string) (Permission, bool) {
	if !scopeShape.MatchString(s) {
		return Permission{}, false
	}
	p, ok := scopeCatalog[s]
	return p, ok
}

// AllScopes returns every catalog scope string, sorted.
func AllScopes() []string {
	scopes := make([]string, 0, len(scopeCatalog))
	for s := range scopeCatalog {
		scopes = append(scopes, s)
	}
	sort.Strings(scopes)
	return scopes
}

// ScopesForResource returns the catalog scopes for one resource, sorted.
func ScopesForResource(r Resource) []string {
	var scopes []string
	for s, p := range scopeCatalog {
		if p.Resource == r {
			scopes = append(scopes, s)
		}
	}
	sort.Strings(scopes)
	return scopes
}

// RequiredScopes returns the scope list that grants (resource, action), or an
// empty list when the pair is not in the catalog. Resource names are
// normalized first, so both "Patient" and "patient" resolve.
func RequiredScopes(resource, action string) []string {
	r, okR := NormalizeResource(resource)
	a, okA := normalizeAction(action)
	if !okR || !okA {
		return []string{}
	}
	return []string{ScopeFor(r, a)}
}

// resourceAliases maps external identifiers (FHIR resource type names and
// plural route segments) to internal resource names. Normalization lives
// here, once, so the guard path and the filter path cannot disagree about
// what "DocumentReference" means.
var resourceAliases = map[string]Resource{
	"patient":           ResourcePatient,
	"patients":          ResourcePatient,
	"practitioner":      ResourcePractitioner,
	"practitioners":     ResourcePractitioner,
	"encounter":         ResourceEncounter,
	"encounters":        ResourceEncounter,
	"document":          ResourceDocument,
	"documents":         ResourceDocument,
	"documentreference": ResourceDocument,
	"consent":           ResourceConsent,
	"consents":          ResourceConsent,
	"appointment":       ResourceAppointment,
	"appointments":      ResourceAppointment,
	"observation":       ResourceObservation,
	"observations":      ResourceObservation,
}

// NormalizeResource maps an external resource identifier (FHIR type name,
// plural path segment, or internal name) to the internal resource name.
func NormalizeResource(name string) (Resource, bool) {
	r, ok := resourceAliases[strings.ToLower(name)]
	return r, ok
}

func normalizeAction(action string) (Action, bool) {
	switch Action(strings.ToLower(action)) {
	case ActionRead:
		return ActionRead, true
	case ActionWrite:
		return ActionWrite, true
	case ActionShare:
		return ActionShare, true
	}
	return "", false
}
