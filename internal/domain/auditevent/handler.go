package auditevent

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinrec/clinrec/internal/platform/access"
	"github.com/clinrec/clinrec/internal/platform/auth"
	"github.com/clinrec/clinrec/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/audit-events", h.Search)
}

func (h *Handler) Search(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	page := pagination.FromContext(c)

	q := SearchQuery{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
		IdentityID:   c.QueryParam("identity_id"),
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
	if v := c.QueryParam("since"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "since must be RFC3339")
		}
		q.Since = ts
	}
	if v := c.QueryParam("until"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "until must be RFC3339")
		}
		q.Until = ts
	}

	items, total, err := h.svc.Search(c.Request().Context(), ident, q)
	if err != nil {
		return access.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, q.Limit, q.Offset))
}
