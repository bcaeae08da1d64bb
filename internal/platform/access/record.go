package access

import "strings"

// SubjectRef normalizes a patient identifier to Patient/{id} form. Both the
// guard path and the filter path compare references through this one
// function, so they cannot disagree about what a bare id means.
func SubjectRef(s string) string {
	if s == "" || strings.HasPrefix(s, "Patient/") {
		return s
	}
	return "Patient/" + s
}

// Record is the minimal view of a resource record the engine decides over.
// Every resource kind the engine guards (Consent, DocumentReference,
// Encounter, ...) implements it.
type Record interface {
	// SubjectRef returns the record's patient reference in Patient/{id} form.
	SubjectRef() string

	// LifecycleStatus returns the record's lifecycle status, consulted only
	// for resource kinds whose role-grant path is restricted to active
	// records.
	LifecycleStatus() string

	// Deleted reports the soft-delete marker. A soft-deleted record is
	// invisible to every access path, including the admin bypass.
	Deleted() bool
}
