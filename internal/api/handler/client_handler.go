package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biportal/portal-api/internal/api/metrics"
	"github.com/biportal/portal-api/internal/core/ports"
)

// ClientHandler handles HTTP requests for client operations.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// List handles GET /clients.
//
// @Summary      List visible clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   clientResponse
// @Failure      401  {object}  map[string]string
// @Router       /clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	clients, err := h.service.List(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(clients, toClientResponse))
}

// Create handles POST /clients. The client-role login is provisioned in the
// same request.
//
// @Summary      Create a client and its login
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClientRequest  true  "Client details"
// @Success      201   {object}  clientResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req createClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.service.Create(c.Request().Context(), caller, toCreateClientInput(req))
	if err != nil {
		return denied(err, "client")
	}
	metrics.ClientsProvisionedTotal.Inc()

	return c.JSON(http.StatusCreated, toClientResponse(client))
}

// Get handles GET /clients/:id.
//
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client id"
// @Success      200  {object}  clientResponse
// @Failure      404  {object}  map[string]string
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	client, err := h.service.Get(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// Replace handles PUT /clients/:id.
//
// @Summary      Replace a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Client id"
// @Param        body  body      replaceClientRequest  true  "Client details"
// @Success      200   {object}  clientResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /clients/{id} [put]
func (h *ClientHandler) Replace(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req replaceClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.service.Update(c.Request().Context(), caller, c.Param("id"), toReplaceClientInput(req))
	if err != nil {
		return denied(err, "client")
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// Patch handles PATCH /clients/:id.
//
// @Summary      Partially update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Client id"
// @Param        body  body      patchClientRequest  true  "Fields to change"
// @Success      200   {object}  clientResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /clients/{id} [patch]
func (h *ClientHandler) Patch(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req patchClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.service.Update(c.Request().Context(), caller, c.Param("id"), toPatchClientInput(req))
	if err != nil {
		return denied(err, "client")
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// Delete handles DELETE /clients/:id.
//
// @Summary      Delete a client with its reports and login
// @Tags         clients
// @Security     BearerAuth
// @Param        id   path  string  true  "Client id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return denied(err, "client")
	}
	return c.NoContent(http.StatusNoContent)
}

// ReportCount handles GET /clients/:id/report_count.
//
// @Summary      Count the reports of a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client id"
// @Success      200  {object}  reportCountResponse
// @Failure      404  {object}  map[string]string
// @Router       /clients/{id}/report_count [get]
func (h *ClientHandler) ReportCount(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	n, err := h.service.ReportCount(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reportCountResponse{Count: n})
}
