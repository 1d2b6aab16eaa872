package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biportal/portal-api/internal/core/domain"
)

// CallerKey is the echo context key under which the Auth middleware stores
// the authenticated domain.Caller.
const CallerKey = "caller"

// callerFrom extracts the identity injected by the Auth middleware. A missing
// identity means the route was mounted without authentication; reject with 401.
func callerFrom(c echo.Context) (domain.Caller, error) {
	caller, _ := c.Get(CallerKey).(domain.Caller)
	if caller.IsZero() {
		return domain.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
	}
	return caller, nil
}
