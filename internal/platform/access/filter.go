package access

import "fmt"

// FilterKind tags the shape of a query filter.
type FilterKind int

const (
	// FilterUnrestricted places no subject restriction on the query.
	FilterUnrestricted FilterKind = iota
	// FilterMatchNone matches no rows at all.
	FilterMatchNone
	// FilterSubjects restricts rows to an enumerated set of patient
	// references.
	FilterSubjects
)

// Filter is the pre-query dual of the record guard. The same identity must
// get the same verdict from Filter.Matches as from Engine.CanAccess; that
// equivalence is the load-bearing invariant of this package.
type Filter struct {
	Kind     FilterKind
	Subjects []string

	// ActiveOnly narrows the filter to records in an active lifecycle
	// status, mirroring the guard's stricter role-grant policy for
	// status-sensitive resource kinds.
	ActiveOnly bool
}

// Unrestricted returns the no-restriction filter.
func Unrestricted() Filter { return Filter{Kind: FilterUnrestricted} }

// MatchNone returns the filter that excludes every row.
func MatchNone() Filter { return Filter{Kind: FilterMatchNone} }

// SubjectsIn returns the filter restricting rows to the given patient
// references.
func SubjectsIn(refs ...string) Filter {
	return Filter{Kind: FilterSubjects, Subjects: refs}
}

// Matches evaluates the filter against a single record in memory. Soft-deleted
// records never match, mirroring the soft-delete predicate every repository
// query carries.
func (f Filter) Matches(rec Record) bool {
	if rec.Deleted() {
		return false
	}
	if f.ActiveOnly && rec.LifecycleStatus() != StatusActive {
		return false
	}
	switch f.Kind {
	case FilterUnrestricted:
		return true
	case FilterSubjects:
		for _, s := range f.Subjects {
			if rec.SubjectRef() == s {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Narrow combines the filter with an explicit caller-supplied subject
// parameter. The token-derived restriction always wins: a caller parameter
// may only narrow the result set, never widen it. A parameter inconsistent
// with the restriction yields the match-nothing filter.
func (f Filter) Narrow(subjectRef string) Filter {
	if subjectRef == "" {
		return f
	}
	switch f.Kind {
	case FilterUnrestricted:
		return Filter{Kind: FilterSubjects, Subjects: []string{subjectRef}, ActiveOnly: f.ActiveOnly}
	case FilterSubjects:
		for _, s := range f.Subjects {
			if s == subjectRef {
				return Filter{Kind: FilterSubjects, Subjects: []string{subjectRef}, ActiveOnly: f.ActiveOnly}
			}
		}
		return MatchNone()
	default:
		return MatchNone()
	}
}

// SQL renders the filter as a WHERE fragment. subjectCol and statusCol name
// the subject-reference and lifecycle-status columns; argIndex is the
// 1-based index of the first placeholder to emit. The soft-delete predicate
// is not rendered here; repositories append it from the central helper.
func (f Filter) SQL(subjectCol, statusCol string, argIndex int) (string, []any) {
	var clause string
	var args []any

	switch f.Kind {
	case FilterUnrestricted:
		clause = ""
	case FilterMatchNone:
		return "FALSE", nil
	case FilterSubjects:
		clause = fmt.Sprintf("%s = ANY($%d)", subjectCol, argIndex)
		args = append(args, f.Subjects)
		argIndex++
	}

	if f.ActiveOnly {
		active := fmt.Sprintf("%s = $%d", statusCol, argIndex)
		args = append(args, StatusActive)
		if clause == "" {
			clause = active
		} else {
			clause = clause + " AND " + active
		}
	}

	return clause, args
}
