package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eventboard/eventboard/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string              `json:"error"`
	Kind   domain.Kind         `json:"kind,omitempty"`
	Code   string              `json:"code,omitempty"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

// statusClientClosedRequest is recorded when the caller hung up before the
// store answered. Nobody reads the body.
const statusClientClosedRequest = 499

var statusByKind = map[domain.Kind]int{
	domain.KindValidation:          http.StatusUnprocessableEntity,
	domain.KindForbidden:           http.StatusForbidden,
	domain.KindUnauthorized:        http.StatusUnauthorized,
	domain.KindNotFound:            http.StatusNotFound,
	domain.KindConflict:            http.StatusConflict,
	domain.KindUpstreamUnavailable: http.StatusServiceUnavailable,
	domain.KindServer:              http.StatusInternalServerError,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Logs server and upstream errors without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error", "kind", "code", "fields"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, 429 from the limiter)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	if errors.Is(err, context.Canceled) || c.Request().Context().Err() != nil {
		log.Debug().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("request cancelled by client")
		return statusClientClosedRequest, errorResponse{Error: "request cancelled"}
	}

	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.ErrServer
	}

	status := statusByKind[de.Kind]
	switch de.Kind {
	case domain.KindServer:
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")
		return status, errorResponse{Error: domain.ErrServer.Message, Kind: domain.KindServer}
	case domain.KindUpstreamUnavailable:
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("store unavailable")
		return status, errorResponse{Error: "service temporarily unavailable", Kind: de.Kind}
	}

	return status, errorResponse{
		Error:  de.Message,
		Kind:   de.Kind,
		Code:   de.Code,
		Fields: de.Fields,
	}
}
