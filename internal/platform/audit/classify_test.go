package audit

import (
	"net/http"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		method, path string
		want         Request
		wantOK       bool
	}{
		{http.MethodGet, "/fhir/Patient/p1", Request{ActionRead, "Patient", "p1"}, true},
		{http.MethodGet, "/fhir/Patient", Request{ActionSearch, "Patient", ""}, true},
		{http.MethodGet, "/fhir/Patient/_search", Request{ActionSearch, "Patient", ""}, true},
		{http.MethodPost, "/fhir/Encounter/_search", Request{ActionSearch, "Encounter", ""}, true},
		{http.MethodGet, "/api/v1/consents/c-9", Request{ActionRead, "Consent", "c-9"}, true},
		{http.MethodGet, "/api/v1/documents", Request{ActionSearch, "DocumentReference", ""}, true},
		{http.MethodPost, "/api/v1/encounters", Request{ActionCreate, "Encounter", ""}, true},
		{http.MethodPut, "/api/v1/encounters/e1", Request{ActionUpdate, "Encounter", "e1"}, true},
		{http.MethodDelete, "/api/v1/consents/c1", Request{ActionDelete, "Consent", "c1"}, true},
		{http.MethodGet, "/health", Request{}, false},
		{http.MethodGet, "/metrics", Request{}, false},
		{http.MethodGet, "/", Request{}, false},
	}

	for _, tc := range tests {
		got, ok := Classify(tc.method, tc.path)
		if ok != tc.wantOK {
			t.Errorf("Classify(%s %s): ok = %v, want %v", tc.method, tc.path, ok, tc.wantOK)
			continue
		}
		if got != tc.want {
			t.Errorf("Classify(%s %s) = %+v, want %+v", tc.method, tc.path, got, tc.want)
		}
	}
}
