package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tirefinder/internal/hours"
	"tirefinder/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AdminHoursHandler handles bulk operating hours import and export
type AdminHoursHandler struct {
	hoursService  *hours.Service
	importService *services.HoursImportJobService
}

// NewAdminHoursHandler creates a new admin hours handler
func NewAdminHoursHandler(hoursService *hours.Service, importService *services.HoursImportJobService) *AdminHoursHandler {
	return &AdminHoursHandler{
		hoursService:  hoursService,
		importService: importService,
	}
}

// ImportAsync godoc
// @Summary Start hours import job
// @Description Upload a CSV of weekly operating hours and process it in the background
// @Tags admin-hours
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file to import"
// @Success 202 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/hours/import [post]
func (h *AdminHoursHandler) ImportAsync(c echo.Context) error {
	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "user_id not found"})
	}

	file, header, err := c.Request().FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}
	defer file.Close()

	if header.Header.Get("Content-Type") != "text/csv" && !strings.HasSuffix(header.Filename, ".csv") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "only CSV files are accepted"})
	}

	job, err := h.importService.CreateHoursImportJob(c.Request().Context(), userID, file, header)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"job_id":  job.ID.String(),
		"message": "Import started",
	})
}

// ImportSync godoc
// @Summary Run hours import inline
// @Description Upload a CSV of weekly operating hours and wait for the outcome
// @Tags admin-hours
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file to import"
// @Success 200 {object} hours.ImportOutcome
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/hours/import/sync [post]
func (h *AdminHoursHandler) ImportSync(c echo.Context) error {
	file, header, err := c.Request().FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}
	defer file.Close()

	if header.Header.Get("Content-Type") != "text/csv" && !strings.HasSuffix(header.Filename, ".csv") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "only CSV files are accepted"})
	}

	outcome, err := h.importService.ImportSync(c.Request().Context(), file)
	if err != nil {
		if errors.Is(err, hours.ErrEmptyInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "file has no data rows"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, outcome)
}

// GetJobProgress godoc
// @Summary Get import job progress
// @Description Get the progress and counters of an hours import job
// @Tags admin-hours
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} models.HoursImportJobProgress
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/hours/import/jobs/{id} [get]
func (h *AdminHoursHandler) GetJobProgress(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid job id"})
	}

	progress, err := h.importService.GetJobProgress(c.Request().Context(), jobID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	return c.JSON(http.StatusOK, progress)
}

// ListJobs godoc
// @Summary List import jobs
// @Description List hours import jobs, newest first
// @Tags admin-hours
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.PaginationResult[models.HoursImportJob]
// @Failure 500 {object} map[string]string
// @Router /admin/hours/import/jobs [get]
func (h *AdminHoursHandler) ListJobs(c echo.Context) error {
	limit, offset := parsePagination(c)

	result, err := h.importService.ListJobs(c.Request().Context(), c.QueryParam("status"), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list jobs"})
	}

	return c.JSON(http.StatusOK, result)
}

// Export godoc
// @Summary Export hours to CSV
// @Description Export shop hours as a CSV download, optionally filtered by city or province
// @Tags admin-hours
// @Produce text/csv
// @Param city query string false "Filter by city"
// @Param province query string false "Filter by two-letter province code"
// @Success 200 {string} string "CSV file content"
// @Failure 500 {object} map[string]string
// @Router /admin/hours/export [get]
func (h *AdminHoursHandler) Export(c echo.Context) error {
	sel := hours.Selector{
		City:     c.QueryParam("city"),
		Province: c.QueryParam("province"),
	}

	// Build the full file first so a mid-export read failure
	// never leaves the client with a truncated download.
	var buf bytes.Buffer
	if err := h.hoursService.ExportToTable(c.Request().Context(), &buf, sel); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "export failed"})
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("shop_hours_%s.csv", timestamp)

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
