package auth

// HasPermission reports whether a single scope string grants the requested
// (resource, action) pair. Pure structural check: no identity involved.
func HasPermission(scope, resource, action string) bool {
	p, ok := ScopeToPermission(scope)
	if !ok {
		return false
	}
	r, okR := NormalizeResource(resource)
	a, okA := normalizeAction(action)
	if !okR || !okA {
		return false
	}
	return p.Resource == r && p.Action == a
}

// HasResourcePermission is the scope-based gate: admin is granted
// unconditionally, otherwise some scope on the identity must grant the pair.
func HasResourcePermission(ident Identity, resource, action string) bool {
	if ident.HasRole(RoleAdmin) {
		return true
	}
	for _, s := range ident.Scopes {
		if HasPermission(s, resource, action) {
			return true
		}
	}
	return false
}

// roleGrants is the role-based override table. It is deliberately small and
// enumerated: role grants are business policy that changes independently of
// the OAuth scope catalog, so nothing here is inferred from scope strings.
// Admin is handled outside the table and grants everything.
var roleGrants = map[string]map[Resource]map[Action]bool{
	RolePractitioner: {
		ResourcePatient:   {ActionRead: true},
		ResourceEncounter: {ActionRead: true, ActionWrite: true},
		ResourceDocument:  {ActionRead: true, ActionWrite: true},
	},
}

// RoleGrantsPermission is the role-based gate, evaluated independently of
// scopes. Callers OR it with HasResourcePermission: a practitioner does not
// need an explicit scope to exercise its blanket grant, and a scoped
// third-party app does not need a role.
func RoleGrantsPermission(ident Identity, resource, action string) bool {
	if ident.HasRole(RoleAdmin) {
		return true
	}
	r, okR := NormalizeResource(resource)
	a, okA := normalizeAction(action)
	if !okR || !okA {
		return false
	}
	for _, role := range ident.Roles {
		if roleGrants[role][r][a] {
			return true
		}
	}
	return false
}

// ValidateScopes reports whether every required scope is present in have.
// Containment, not equality: extra granted scopes are permitted.
func ValidateScopes(have, required []string) bool {
	granted := make(map[string]struct{}, len(have))
	for _, s := range have {
		granted[s] = struct{}{}
	}
	for _, s := range required {
		if _, ok := granted[s]; !ok {
			return false
		}
	}
	return true
}
