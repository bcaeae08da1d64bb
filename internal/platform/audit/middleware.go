package audit

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/clinrec/clinrec/internal/platform/auth"
	"github.com/clinrec/clinrec/internal/platform/metrics"
)

// Recorder appends entries to the audit sink. Implementations must tolerate
// being called after the response has been written.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Middleware audits read and search requests on classifiable resource paths.
// Create, update and delete entries are written explicitly by the owning
// service, where the resource id and outcome are known precisely; inferring
// them from the path would audit writes that never happened.
//
// Emission is strictly best-effort: a failing recorder is logged and counted,
// never surfaced to the client.
func Middleware(recorder Recorder, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			req, ok := Classify(c.Request().Method, c.Request().URL.Path)
			if !ok || (req.Action != ActionRead && req.Action != ActionSearch) {
				return err
			}

			ident := auth.IdentityFromContext(c.Request().Context())
			md := ExtractTokenMetadata(c.Request().Header.Get("Authorization"))

			entry := Entry{
				Action:       req.Action,
				ResourceType: req.ResourceType,
				ResourceID:   req.ResourceID,
				IdentityID:   ident.ID,
				ClientID:     md.ClientID,
				Patient:      md.Patient,
				FHIRUser:     md.FHIRUser,
				Scopes:       md.Scopes,
				IPAddress:    c.RealIP(),
				UserAgent:    c.Request().UserAgent(),
				Method:       c.Request().Method,
				Path:         c.Request().URL.Path,
				StatusCode:   statusOf(c, err),
				CreatedAt:    time.Now().UTC(),
			}
			if err != nil {
				entry.ErrorMessage = err.Error()
			}

			emit(c.Request().Context(), recorder, entry, logger)
			return err
		}
	}
}

// emit writes one entry, swallowing failures. Shared by the middleware and
// the services that audit their own writes.
func emit(ctx context.Context, recorder Recorder, entry Entry, logger zerolog.Logger) {
	if recorder == nil {
		return
	}
	if err := recorder.Record(ctx, entry); err != nil {
		metrics.ObserveAuditDropped()
		logger.Error().Err(err).
			Str("action", entry.Action).
			Str("resource_type", entry.ResourceType).
			Str("identity_id", entry.IdentityID).
			Msg("audit emission failed")
		return
	}
	metrics.ObserveAuditEmitted()
}

// Emit records a service-authored entry (create, update, delete) with the
// same never-propagate policy as the middleware.
func Emit(ctx context.Context, recorder Recorder, entry Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	emit(ctx, recorder, entry, log.Logger)
}

func statusOf(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
