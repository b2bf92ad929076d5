package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-agenda-api/internal/models"
	"github.com/noah-isme/lms-agenda-api/internal/service"
	appErrors "github.com/noah-isme/lms-agenda-api/pkg/errors"
	"github.com/noah-isme/lms-agenda-api/pkg/response"
)

type attendanceService interface {
	List(ctx context.Context, classID, studentID, date string) ([]models.AttendanceRecord, error)
	Record(ctx context.Context, req service.RecordAttendanceRequest) ([]models.AttendanceRecord, error)
	Count(ctx context.Context, classID, date string) (*service.AttendanceCount, error)
}

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param class_id query string false "Class ID"
// @Param student_id query string false "Student ID"
// @Param date query string false "Session date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	records, err := h.service.List(c.Request.Context(),
		strings.TrimSpace(c.Query("class_id")),
		strings.TrimSpace(c.Query("student_id")),
		strings.TrimSpace(c.Query("date")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Record godoc
// @Summary Save a class session
// @Description Upserts one mark per student for the class and date.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RecordAttendanceRequest true "Session marks"
// @Success 200 {object} response.Envelope
// @Router /attendance/batch [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	records, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Count godoc
// @Summary Count marks for a class session
// @Tags Attendance
// @Produce json
// @Param class_id query string true "Class ID"
// @Param date query string true "Session date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/count [get]
func (h *AttendanceHandler) Count(c *gin.Context) {
	classID := strings.TrimSpace(c.Query("class_id"))
	date := strings.TrimSpace(c.Query("date"))
	if classID == "" || date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "class_id and date are required"))
		return
	}
	count, err := h.service.Count(c.Request.Context(), classID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, count, nil)
}
