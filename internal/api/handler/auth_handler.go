package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/biportal/portal-api/internal/api/metrics"
	"github.com/biportal/portal-api/internal/core/domain"
	"github.com/biportal/portal-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

type registerRequest struct {
	Email        string `json:"email"         validate:"required,email"`
	Password     string `json:"password"      validate:"required,password"`
	FirstName    string `json:"first_name"    validate:"max=150"`
	LastName     string `json:"last_name"     validate:"max=150"`
	PhoneNumber  string `json:"phone_number"  validate:"max=20"`
	CompanyName  string `json:"company_name"  validate:"max=255"`
	BusinessType string `json:"business_type" validate:"max=100"`
}

// loginRequest accepts an email, or the username of a client-role account, in
// the email field.
type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	Refresh string       `json:"refresh"`
	User    userResponse `json:"user"`
}

type accessResponse struct {
	Access string `json:"access"`
}

type logoutResponse struct {
	Success bool `json:"success"`
}

// Register creates a new core user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]any
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), toRegisterInput(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login authenticates a user and returns an access and a refresh token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	pair, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, loginResponse{
		Success: true,
		Token:   pair.Access,
		Refresh: pair.Refresh,
		User:    toUserResponse(user),
	})
}

// Refresh exchanges a refresh token for a new access token.
//
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  accessResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]string
// @Router       /auth/token/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Refresh == "" {
		return domain.NewValidationError("refresh", "this field is required")
	}

	access, err := h.authService.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accessResponse{Access: access})
}

// Logout revokes a refresh token. It never fails with a server error: a
// missing token succeeds, an unusable one is reported as {"success": false}.
//
// @Summary      Logout
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token to revoke"
// @Success      200   {object}  logoutResponse
// @Failure      400   {object}  logoutResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, logoutResponse{Success: false})
	}
	if req.Refresh == "" {
		return c.JSON(http.StatusOK, logoutResponse{Success: true})
	}

	if err := h.authService.Logout(c.Request().Context(), req.Refresh); err != nil {
		if !errors.Is(err, domain.ErrInvalidToken) {
			h.log.Warn().Err(err).Msg("logout failed")
		}
		return c.JSON(http.StatusBadRequest, logoutResponse{Success: false})
	}

	metrics.TokensRevokedTotal.Inc()
	return c.JSON(http.StatusOK, logoutResponse{Success: true})
}
