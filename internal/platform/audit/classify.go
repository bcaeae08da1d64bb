package audit

import (
	"net/http"
	"strings"
)

// pathAliases maps lowercase module route segments to canonical resource
// type names. The generic tier handles capitalized FHIR-style segments; this
// tier covers the REST-plural routes the API also serves.
var pathAliases = map[string]string{
	"patients":      "Patient",
	"practitioners": "Practitioner",
	"encounters":    "Encounter",
	"documents":     "DocumentReference",
	"consents":      "Consent",
	"appointments":  "Appointment",
	"observations":  "Observation",
}

// Request is the classified shape of one inbound request.
type Request struct {
	Action       string
	ResourceType string
	ResourceID   string
}

// Classify derives (action, resourceType, resourceId) from the request path
// and method. Two tiers: a generic /{ResourceType}/{id?} match on
// capitalized segments, then the module-alias table for plural lowercase
// routes. Unclassifiable paths return ok=false and are not audited.
func Classify(method, path string) (Request, bool) {
	segments := splitPath(path)

	for i, seg := range segments {
		resourceType, ok := classifySegment(seg)
		if !ok {
			continue
		}

		r := Request{ResourceType: resourceType}
		if i+1 < len(segments) && !strings.HasPrefix(segments[i+1], "_") {
			r.ResourceID = segments[i+1]
		}
		r.Action = classifyAction(method, r.ResourceID, segments)
		return r, true
	}
	return Request{}, false
}

func splitPath(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func classifySegment(seg string) (string, bool) {
	if alias, ok := pathAliases[seg]; ok {
		return alias, true
	}
	// Generic tier: a capitalized segment is taken as a FHIR resource type.
	if seg != "" && seg[0] >= 'A' && seg[0] <= 'Z' {
		return seg, true
	}
	return "", false
}

func classifyAction(method, resourceID string, segments []string) string {
	for _, seg := range segments {
		if seg == "_search" || seg == "search" {
			return ActionSearch
		}
	}

	switch method {
	case http.MethodGet:
		// A collection GET is a search whether or not it carries parameters.
		if resourceID == "" {
			return ActionSearch
		}
		return ActionRead
	case http.MethodPost:
		return ActionCreate
	case http.MethodPut, http.MethodPatch:
		return ActionUpdate
	case http.MethodDelete:
		return ActionDelete
	}
	return ActionRead
}
