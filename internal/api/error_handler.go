package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/biportal/portal-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Fields is
// only set for validation failures.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
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
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields}
	}
	if field := domain.UniquenessField(err); field != "" {
		return http.StatusBadRequest, errorResponse{
			Error:  "validation failed",
			Fields: map[string]string{field: uniquenessMessage(err)},
		}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, errorResponse{Error: "token is invalid or expired"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "you do not have permission to perform this action"}
	case errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound, errorResponse{Error: "client not found"}
	case errors.Is(err, domain.ErrReportNotFound):
		return http.StatusNotFound, errorResponse{Error: "report not found"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

func uniquenessMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		return "a user with this email already exists"
	case errors.Is(err, domain.ErrClientUsernameTaken):
		return "a client with this username already exists"
	default:
		return "a user with this username already exists"
	}
}
