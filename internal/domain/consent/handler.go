package consent

import (
	"net/http"

	"github.com/google/uuid"
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
	api.GET("/consents", h.Search)
	api.GET("/consents/:id", h.Get)
	api.POST("/consents", h.Create)
	api.PUT("/consents/:id", h.Update)
	api.DELETE("/consents/:id", h.Delete)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ident := auth.IdentityFromContext(c.Request().Context())

	out, err := h.svc.Get(c.Request().Context(), ident, id)
	if err != nil {
		return access.HTTPError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Search(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	page := pagination.FromContext(c)
	sort := access.ParseSort(c.QueryParam("_sort"))

	items, total, err := h.svc.Search(c.Request().Context(), ident,
		c.QueryParam("subject"), c.QueryParam("status"), sort, page.Limit, page.Offset)
	if err != nil {
		return access.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, page.Limit, page.Offset))
}

func (h *Handler) Create(c echo.Context) error {
	var in Consent
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ident := auth.IdentityFromContext(c.Request().Context())

	if err := h.svc.Create(c.Request().Context(), ident, &in); err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, in)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in Consent
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in.ID = id
	ident := auth.IdentityFromContext(c.Request().Context())

	if err := h.svc.Update(c.Request().Context(), ident, &in); err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, in)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ident := auth.IdentityFromContext(c.Request().Context())

	if err := h.svc.Delete(c.Request().Context(), ident, id); err != nil {
		return access.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// writeError distinguishes validation failures (400) from access errors.
func writeError(err error) error {
	if mapped := access.HTTPError(err); mapped != err {
		return mapped
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
