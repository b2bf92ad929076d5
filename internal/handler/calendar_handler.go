package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-agenda-api/internal/dto"
	"github.com/noah-isme/lms-agenda-api/internal/service"
	"github.com/noah-isme/lms-agenda-api/pkg/response"
)

type calendarService interface {
	Week(ctx context.Context, query service.WeekQuery) (*dto.CalendarWeekResponse, bool, error)
	Export(ctx context.Context, query service.WeekQuery, format string) (*service.ExportedFile, error)
}

// CalendarHandler serves the weekly timetable.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc calendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// Week godoc
// @Summary Weekly timetable
// @Description Projects every class schedule onto the Monday-first week containing date, shifted by offset weeks.
// @Tags Calendar
// @Produce json
// @Param date query string false "Reference date (YYYY-MM-DD), today when omitted"
// @Param offset query int false "Week offset relative to date"
// @Success 200 {object} response.Envelope
// @Router /calendar/week [get]
func (h *CalendarHandler) Week(c *gin.Context) {
	week, hit, err := h.service.Week(c.Request.Context(), weekQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil, cacheMeta(c, hit))
}

// Export godoc
// @Summary Download the weekly timetable
// @Tags Calendar
// @Produce application/pdf
// @Produce text/csv
// @Param date query string false "Reference date (YYYY-MM-DD)"
// @Param offset query int false "Week offset"
// @Param format query string false "pdf (default) or csv"
// @Success 200 {file} file
// @Router /calendar/week/export [get]
func (h *CalendarHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), weekQuery(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}

func weekQuery(c *gin.Context) service.WeekQuery {
	return service.WeekQuery{
		Date:   strings.TrimSpace(c.Query("date")),
		Offset: queryInt(c, "offset", 0),
	}
}
