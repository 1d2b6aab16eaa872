package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biportal/portal-api/internal/api/handler"
	"github.com/biportal/portal-api/internal/api/metrics"
	"github.com/biportal/portal-api/internal/core/domain"
)

// RBAC enforces role-based access control. It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, _ := c.Get(handler.CallerKey).(domain.Caller)
			if caller.IsZero() {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
			}
			if _, ok := allowed[caller.Role]; !ok {
				metrics.VisibilityDeniedTotal.WithLabelValues("role").Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"error": "you do not have permission to perform this action"})
			}
			return next(c)
		}
	}
}
