package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-agenda-api/internal/dto"
	appErrors "github.com/noah-isme/lms-agenda-api/pkg/errors"
	"github.com/noah-isme/lms-agenda-api/pkg/response"
)

type todayService interface {
	Today(ctx context.Context) *dto.TodayDashboardResponse
}

type managementService interface {
	Summary(ctx context.Context) (*dto.ManagementSummaryResponse, bool, error)
}

// DashboardHandler wires the agenda and management summaries to HTTP endpoints.
type DashboardHandler struct {
	today      todayService
	management managementService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(today todayService, management managementService) *DashboardHandler {
	return &DashboardHandler{today: today, management: management}
}

// Today godoc
// @Summary Today's agenda and alerts
// @Description Store failures never fail the request; the affected lookups are listed in degraded.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/today [get]
func (h *DashboardHandler) Today(c *gin.Context) {
	if h.today == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	response.JSON(c, http.StatusOK, h.today.Today(c.Request.Context()), nil)
}

// Management godoc
// @Summary Revenue and attendance overview
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/management [get]
func (h *DashboardHandler) Management(c *gin.Context) {
	if h.management == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	summary, hit, err := h.management.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, cacheMeta(c, hit))
}
