package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biportal/portal-api/internal/api/metrics"
	"github.com/biportal/portal-api/internal/core/domain"
	"github.com/biportal/portal-api/internal/core/ports"
)

// UserHandler serves the account reads and the admin-only user endpoints.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Me handles GET /auth/user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/user [get]
func (h *UserHandler) Me(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	user, err := h.service.Me(c.Request().Context(), caller)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidToken
		}
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// List handles GET /auth/users.
//
// @Summary      List all users
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /auth/users [get]
func (h *UserHandler) List(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	users, err := h.service.List(c.Request().Context(), caller)
	if err != nil {
		return denied(err, "user")
	}
	return c.JSON(http.StatusOK, mapSlice(users, toUserResponse))
}

// Delete handles DELETE /auth/users/:id.
//
// @Summary      Delete a user and everything they created
// @Tags         auth
// @Security     BearerAuth
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /auth/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return denied(err, "user")
	}
	return c.NoContent(http.StatusNoContent)
}

// Counts handles GET /user-counts.
//
// @Summary      User totals per role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.UserCounts
// @Failure      403  {object}  map[string]string
// @Router       /user-counts [get]
func (h *UserHandler) Counts(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	counts, err := h.service.Counts(c.Request().Context(), caller)
	if err != nil {
		return denied(err, "user")
	}
	return c.JSON(http.StatusOK, counts)
}

// denied records refused mutations and passes err through.
func denied(err error, resource string) error {
	if errors.Is(err, domain.ErrForbidden) {
		metrics.VisibilityDeniedTotal.WithLabelValues(resource).Inc()
	}
	return err
}
