package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return FromContext(e.NewContext(req, httptest.NewRecorder()))
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Limit: DefaultLimit, Offset: 0}},
		{"_count=10&_offset=30", Params{Limit: 10, Offset: 30}},
		{"limit=10&offset=30", Params{Limit: 10, Offset: 30}},
		{"_count=9999", Params{Limit: MaxLimit, Offset: 0}},
		{"_count=-5&_offset=-5", Params{Limit: DefaultLimit, Offset: 0}},
		{"_count=abc", Params{Limit: DefaultLimit, Offset: 0}},
	}
	for _, tc := range tests {
		if got := paramsFor(t, tc.query); got != tc.want {
			t.Errorf("query %q: got %+v, want %+v", tc.query, got, tc.want)
		}
	}
}

func TestResponseHasMore(t *testing.T) {
	r := NewResponse(nil, 50, 20, 0)
	if !r.HasMore {
		t.Error("expected more pages")
	}
	r = NewResponse(nil, 50, 20, 40)
	if r.HasMore {
		t.Error("last page should not report more")
	}
}
