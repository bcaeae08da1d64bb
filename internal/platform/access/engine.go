package access

import (
	"context"
	"fmt"
	"time"

	"github.com/clinrec/clinrec/internal/platform/auth"
	"github.com/clinrec/clinrec/internal/platform/metrics"
)

// StatusActive is the lifecycle status required of status-sensitive records
// on the role-grant path.
const StatusActive = "active"

// Outcome names the rule that produced an access decision, so callers and
// tests can assert which rule fired rather than only the boolean.
type Outcome string

const (
	OutcomeAdminBypass  Outcome = "admin_bypass"
	OutcomePatientMatch Outcome = "patient_match"
	OutcomeOwnerMatch   Outcome = "owner_match"
	OutcomeRoleGrant    Outcome = "role_grant"
	OutcomeScopeGrant   Outcome = "scope_grant"
	OutcomeDenied       Outcome = "denied"
)

// Decision is the transient result of one access evaluation. Two decisions
// for the same inputs within a request are identical: nothing here is cached
// or randomized, and the ownership lookup is read-only.
type Decision struct {
	Allowed bool
	Outcome Outcome
	Reason  ReasonClass
}

// Forbidden converts a denying decision into the typed error handlers
// translate to a generic 403.
func (d Decision) Forbidden() error {
	return &ForbiddenError{Class: d.Reason}
}

// OwnershipLookup resolves the patient records owned by an identity-provider
// account. Implementations must exclude soft-deleted links and honor context
// cancellation.
type OwnershipLookup interface {
	FindPatientIDsByAccount(ctx context.Context, accountID string) ([]string, error)
}

// statusSensitive lists the resource kinds whose role-grant path additionally
// requires the record to be active. Non-owner practitioner access to these
// kinds is intentionally stricter.
var statusSensitive = map[auth.Resource]bool{
	auth.ResourceConsent: true,
}

// Engine combines scope resolution and patient-context resolution into the
// two dual operations every resource-owning service applies: the per-record
// guard after a fetch-by-id, and the filter builder before a list query.
type Engine struct {
	owners        OwnershipLookup
	lookupTimeout time.Duration
}

// NewEngine builds an Engine over the given ownership lookup. lookupTimeout
// bounds each ownership query; zero disables the extra deadline.
func NewEngine(owners OwnershipLookup, lookupTimeout time.Duration) *Engine {
	return &Engine{owners: owners, lookupTimeout: lookupTimeout}
}

// ownedPatientRefs resolves the set of Patient/{id} references owned by the
// identity's account. Lookup failure is returned as ErrLookup: it must fail
// closed at the caller, never silently widen or narrow into a policy verdict.
func (e *Engine) ownedPatientRefs(ctx context.Context, accountID string) ([]string, error) {
	if e.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.lookupTimeout)
		defer cancel()
	}
	ids, err := e.owners.FindPatientIDsByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: account %s: %v", ErrLookup, accountID, err)
	}
	refs := make([]string, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, "Patient/"+id)
	}
	return refs, nil
}

// CanAccess is the record guard, applied after a record has been fetched by
// id. The rules run in fixed order; the first that fires decides.
//
//  1. Soft-deleted records are invisible to everyone, admin included.
//  2. Admin bypasses all patient scoping.
//  3. A token-asserted patient context is a hard ceiling: the record's
//     subject must equal it, no other grant can override a mismatch.
//  4. An account that owns patient records sees exactly those patients'
//     records; an identity with the patient role and no owned records sees
//     nothing.
//  5. Role-grant table (practitioner blanket access; status-sensitive kinds
//     additionally require an active record).
//  6. Explicit scope grant.
//  7. Deny.
func (e *Engine) CanAccess(ctx context.Context, ident auth.Identity, resourceKind string, rec Record, action string) (Decision, error) {
	d, err := e.decide(ctx, ident, resourceKind, rec, action)
	if err == nil {
		res, _ := auth.NormalizeResource(resourceKind)
		metrics.ObserveDecision(string(res), string(d.Outcome))
	}
	return d, err
}

func (e *Engine) decide(ctx context.Context, ident auth.Identity, resourceKind string, rec Record, action string) (Decision, error) {
	if rec.Deleted() {
		return Decision{Outcome: OutcomeDenied, Reason: ReasonOwnership}, nil
	}

	if auth.ShouldBypassFiltering(ident) {
		return Decision{Allowed: true, Outcome: OutcomeAdminBypass}, nil
	}

	if ref := auth.PatientReference(ident); ref != "" {
		if rec.SubjectRef() == ref {
			return Decision{Allowed: true, Outcome: OutcomePatientMatch}, nil
		}
		return Decision{Outcome: OutcomeDenied, Reason: ReasonOwnership}, nil
	}

	if acct := auth.AccountID(ident); acct != "" {
		owned, err := e.ownedPatientRefs(ctx, acct)
		if err != nil {
			return Decision{}, err
		}
		if len(owned) > 0 {
			for _, ref := range owned {
				if rec.SubjectRef() == ref {
					return Decision{Allowed: true, Outcome: OutcomeOwnerMatch}, nil
				}
			}
			return Decision{Outcome: OutcomeDenied, Reason: ReasonOwnership}, nil
		}
		if ident.HasRole(auth.RolePatient) {
			// A patient identity with no owned records has no patient data.
			return Decision{Outcome: OutcomeDenied, Reason: ReasonOwnership}, nil
		}
	}

	if auth.RoleGrantsPermission(ident, resourceKind, action) {
		if ok := e.roleGrantStatusOK(resourceKind, rec); ok {
			return Decision{Allowed: true, Outcome: OutcomeRoleGrant}, nil
		}
		return Decision{Outcome: OutcomeDenied, Reason: ReasonRole}, nil
	}

	if auth.HasResourcePermission(ident, resourceKind, action) {
		return Decision{Allowed: true, Outcome: OutcomeScopeGrant}, nil
	}

	return Decision{Outcome: OutcomeDenied, Reason: ReasonScope}, nil
}

func (e *Engine) roleGrantStatusOK(resourceKind string, rec Record) bool {
	r, ok := auth.NormalizeResource(resourceKind)
	if !ok {
		return false
	}
	if !statusSensitive[r] {
		return true
	}
	return rec.LifecycleStatus() == StatusActive
}

// BuildFilter is the query-side dual of CanAccess, applied before a list or
// search executes. For any identity and record, a record satisfies the
// returned filter exactly when CanAccess allows it. Divergence between the
// two is the defect class this package exists to prevent.
func (e *Engine) BuildFilter(ctx context.Context, ident auth.Identity, resourceKind, action string) (Filter, error) {
	if auth.ShouldBypassFiltering(ident) {
		return Unrestricted(), nil
	}

	if ref := auth.PatientReference(ident); ref != "" {
		return SubjectsIn(ref), nil
	}

	if acct := auth.AccountID(ident); acct != "" {
		owned, err := e.ownedPatientRefs(ctx, acct)
		if err != nil {
			return Filter{}, err
		}
		if len(owned) > 0 {
			return SubjectsIn(owned...), nil
		}
		if ident.HasRole(auth.RolePatient) {
			return MatchNone(), nil
		}
	}

	if auth.RoleGrantsPermission(ident, resourceKind, action) {
		f := Unrestricted()
		if r, ok := auth.NormalizeResource(resourceKind); ok && statusSensitive[r] {
			f.ActiveOnly = true
		}
		return f, nil
	}

	if auth.HasResourcePermission(ident, resourceKind, action) {
		return Unrestricted(), nil
	}

	return MatchNone(), nil
}
