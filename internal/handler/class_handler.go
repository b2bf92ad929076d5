package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-agenda-api/internal/models"
	"github.com/noah-isme/lms-agenda-api/internal/service"
	"github.com/noah-isme/lms-agenda-api/pkg/response"
)

type classService interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, ownerID string, req service.CreateClassRequest) (*models.Class, error)
	Update(ctx context.Context, id string, req service.UpdateClassRequest) (*models.Class, error)
	Delete(ctx context.Context, id string) error
	ScheduleDays() []service.DayOption
	FormatSchedule(req service.FormatScheduleRequest) (*service.FormatScheduleResult, error)
}

// ClassHandler exposes class CRUD and schedule form helpers.
type ClassHandler struct {
	service classService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc classService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param level query string false "Filter by level"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort by name, level or created_at"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	filter := models.ClassFilter{
		Level:     strings.TrimSpace(c.Query("level")),
		Search:    strings.TrimSpace(c.Query("search")),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "limit", 20),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	classes, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, pagination)
}

// Get godoc
// @Summary Get class detail
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Create class
// @Description The schedule is stored in canonical form when it parses and verbatim otherwise.
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	class, err := h.service.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update godoc
// @Summary Update class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.UpdateClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req service.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	class, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete class
// @Tags Classes
// @Param id path string true "Class ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ScheduleDays godoc
// @Summary Canonical schedule day codes
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes/schedule-days [get]
func (h *ClassHandler) ScheduleDays(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ScheduleDays(), nil)
}

// FormatSchedule godoc
// @Summary Build a schedule string from selected days and a time
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.FormatScheduleRequest true "Selected days"
// @Success 200 {object} response.Envelope
// @Router /classes/schedule/format [post]
func (h *ClassHandler) FormatSchedule(c *gin.Context) {
	var req service.FormatScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.service.FormatSchedule(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
