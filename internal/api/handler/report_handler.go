package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biportal/portal-api/internal/api/metrics"
	"github.com/biportal/portal-api/internal/core/ports"
)

// ReportHandler handles HTTP requests for report operations.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// List handles GET /reports.
//
// @Summary      List visible reports
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        client_id  query     string  false  "Only reports of this client"
// @Success      200        {array}   reportResponse
// @Failure      401        {object}  map[string]string
// @Router       /reports [get]
func (h *ReportHandler) List(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	reports, err := h.service.List(c.Request().Context(), caller, c.QueryParam("client_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(reports, toReportResponse))
}

// Create handles POST /reports.
//
// @Summary      Create a report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createReportRequest  true  "Report details"
// @Success      201   {object}  reportResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]string
// @Router       /reports [post]
func (h *ReportHandler) Create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req createReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	report, err := h.service.Create(c.Request().Context(), caller, toCreateReportInput(req))
	if err != nil {
		return denied(err, "report")
	}
	metrics.ReportsCreatedTotal.WithLabelValues(string(report.Type)).Inc()

	return c.JSON(http.StatusCreated, toReportResponse(report))
}

// Get handles GET /reports/:id.
//
// @Summary      Get a report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Report id"
// @Success      200  {object}  reportResponse
// @Failure      404  {object}  map[string]string
// @Router       /reports/{id} [get]
func (h *ReportHandler) Get(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	report, err := h.service.Get(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReportResponse(report))
}

// Replace handles PUT /reports/:id.
//
// @Summary      Replace a report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Report id"
// @Param        body  body      createReportRequest  true  "Report details"
// @Success      200   {object}  reportResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /reports/{id} [put]
func (h *ReportHandler) Replace(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req createReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	report, err := h.service.Update(c.Request().Context(), caller, c.Param("id"), toReplaceReportInput(req))
	if err != nil {
		return denied(err, "report")
	}
	return c.JSON(http.StatusOK, toReportResponse(report))
}

// Patch handles PATCH /reports/:id.
//
// @Summary      Partially update a report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Report id"
// @Param        body  body      patchReportRequest  true  "Fields to change"
// @Success      200   {object}  reportResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /reports/{id} [patch]
func (h *ReportHandler) Patch(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req patchReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	report, err := h.service.Update(c.Request().Context(), caller, c.Param("id"), toPatchReportInput(req))
	if err != nil {
		return denied(err, "report")
	}
	return c.JSON(http.StatusOK, toReportResponse(report))
}

// Delete handles DELETE /reports/:id.
//
// @Summary      Delete a report
// @Tags         reports
// @Security     BearerAuth
// @Param        id   path  string  true  "Report id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /reports/{id} [delete]
func (h *ReportHandler) Delete(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return denied(err, "report")
	}
	return c.NoContent(http.StatusNoContent)
}
