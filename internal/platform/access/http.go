package access

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPError maps the typed access errors onto transport errors. The
// forbidden message stays generic: the reason class is for logs, not for the
// caller.
func HTTPError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	case errors.Is(err, ErrLookup):
		// Transient collaborator failure, retryable by the client.
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	default:
		return err
	}
}
