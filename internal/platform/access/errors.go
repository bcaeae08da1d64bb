package access

import "errors"

// ErrNotFound is returned when a record does not exist or is soft-deleted.
// Existence is checked before any access decision so that "not found" and
// "forbidden" are never confused.
var ErrNotFound = errors.New("record not found")

// ErrLookup is returned when the ownership or record-fetch collaborator
// errors or times out. It is retryable and is never converted to Forbidden
// or to a bypass: infrastructure failure must fail closed without masquerading
// as a policy decision.
var ErrLookup = errors.New("ownership lookup failed")

// ReasonClass classifies why access was denied, for logs. The message shown
// to the caller stays generic; the class never travels outward.
type ReasonClass string

const (
	ReasonOwnership ReasonClass = "ownership_mismatch"
	ReasonScope     ReasonClass = "scope_missing"
	ReasonRole      ReasonClass = "role_insufficient"
)

// ForbiddenError carries the internal denial reason. Its Error string is
// deliberately generic so handlers can return it verbatim without leaking
// which check failed.
type ForbiddenError struct {
	Class  ReasonClass
	Detail string
}

func (e *ForbiddenError) Error() string {
	return "access denied"
}

// ErrForbidden is a sentinel usable with errors.Is against any ForbiddenError.
var ErrForbidden = errors.New("access denied")

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}
