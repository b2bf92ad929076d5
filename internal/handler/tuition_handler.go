package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-agenda-api/internal/models"
	"github.com/noah-isme/lms-agenda-api/internal/service"
	appErrors "github.com/noah-isme/lms-agenda-api/pkg/errors"
	"github.com/noah-isme/lms-agenda-api/pkg/response"
)

type tuitionService interface {
	List(ctx context.Context, req service.ListTuitionsRequest) ([]models.TuitionDetail, *models.Pagination, error)
	Create(ctx context.Context, req service.CreateTuitionRequest) (*models.Tuition, error)
	MarkPaid(ctx context.Context, id string) (*models.Tuition, error)
	Overdue(ctx context.Context, asOf time.Time, limit int) ([]models.TuitionDetail, error)
	ExportOverdue(ctx context.Context, asOf time.Time) ([]byte, string, error)
}

// TuitionHandler exposes tuition invoice endpoints.
type TuitionHandler struct {
	service  tuitionService
	location *time.Location
}

// NewTuitionHandler constructs the handler. as_of dates are read in location.
func NewTuitionHandler(svc tuitionService, location *time.Location) *TuitionHandler {
	if location == nil {
		location = time.UTC
	}
	return &TuitionHandler{service: svc, location: location}
}

// List godoc
// @Summary List tuitions
// @Tags Tuitions
// @Produce json
// @Param status query string false "all, pending, paid or overdue"
// @Param class_id query string false "Class ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /tuitions [get]
func (h *TuitionHandler) List(c *gin.Context) {
	rows, pagination, err := h.service.List(c.Request.Context(), service.ListTuitionsRequest{
		Status:   c.Query("status"),
		ClassID:  strings.TrimSpace(c.Query("class_id")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 20),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Create godoc
// @Summary Issue a tuition invoice
// @Tags Tuitions
// @Accept json
// @Produce json
// @Param payload body service.CreateTuitionRequest true "Invoice"
// @Success 201 {object} response.Envelope
// @Router /tuitions [post]
func (h *TuitionHandler) Create(c *gin.Context) {
	var req service.CreateTuitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	tuition, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tuition)
}

// MarkPaid godoc
// @Summary Mark a tuition as paid
// @Tags Tuitions
// @Produce json
// @Param id path string true "Tuition ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tuitions/{id}/pay [post]
func (h *TuitionHandler) MarkPaid(c *gin.Context) {
	tuition, err := h.service.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tuition, nil)
}

// Overdue godoc
// @Summary List overdue tuitions
// @Tags Tuitions
// @Produce json
// @Param as_of query string false "Cut-off date (YYYY-MM-DD), today when omitted"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Router /tuitions/overdue [get]
func (h *TuitionHandler) Overdue(c *gin.Context) {
	asOf, err := h.asOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.service.Overdue(c.Request.Context(), asOf, queryInt(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ExportOverdue godoc
// @Summary Download overdue tuitions as CSV
// @Tags Tuitions
// @Produce text/csv
// @Param as_of query string false "Cut-off date (YYYY-MM-DD), today when omitted"
// @Success 200 {file} file
// @Router /tuitions/overdue/export [get]
func (h *TuitionHandler) ExportOverdue(c *gin.Context) {
	asOf, err := h.asOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	content, filename, err := h.service.ExportOverdue(c.Request.Context(), asOf)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, filename, "text/csv; charset=utf-8", content)
}

func (h *TuitionHandler) asOf(c *gin.Context) (time.Time, error) {
	raw := strings.TrimSpace(c.Query("as_of"))
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, h.location)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "as_of must be formatted as YYYY-MM-DD")
	}
	return parsed, nil
}
