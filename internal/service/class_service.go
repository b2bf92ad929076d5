package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-agenda-api/internal/models"
	"github.com/noah-isme/lms-agenda-api/internal/schedule"
	appErrors "github.com/noah-isme/lms-agenda-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	ListAll(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
	CountStudents(ctx context.Context, classID string) (int, error)
}

// CreateClassRequest captures creation payload.
type CreateClassRequest struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Schedule *string `json:"schedule" validate:"omitempty,max=120"`
	Level    *string `json:"level" validate:"omitempty,max=60"`
}

// UpdateClassRequest modifies class fields.
type UpdateClassRequest struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Schedule *string `json:"schedule" validate:"omitempty,max=120"`
	Level    *string `json:"level" validate:"omitempty,max=60"`
}

// FormatScheduleRequest is the class form's day picker state.
type FormatScheduleRequest struct {
	Days   []string `json:"days" validate:"dive,day_code"`
	Time   string   `json:"time" validate:"omitempty,hhmm"`
	Toggle string   `json:"toggle" validate:"omitempty,day_code"`
}

// FormatScheduleResult echoes the ordered days and the rendered schedule string.
type FormatScheduleResult struct {
	Days     []string `json:"days"`
	Time     string   `json:"time"`
	Schedule string   `json:"schedule"`
}

// DayOption is a selectable weekday on the class form.
type DayOption struct {
	Code    string `json:"code"`
	Weekday string `json:"weekday"`
}

// ClassService coordinates class operations.
type ClassService struct {
	repo      classRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, cache: cache, validator: ensureValidator(validate), logger: logger}
}

// List returns classes with pagination metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return classes, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ListAll returns every class; the calendar and dashboard project these.
func (s *ClassService) ListAll(ctx context.Context) ([]models.Class, error) {
	classes, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	return classes, nil
}

// Get returns a class.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Lookup(err, appErrors.Clone(appErrors.ErrNotFound, "class not found"), "failed to load class")
	}
	return class, nil
}

// Create adds a new class owned by ownerID (empty when the caller is anonymous).
func (s *ClassService) Create(ctx context.Context, ownerID string, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class := &models.Class{
		Name:     strings.TrimSpace(req.Name),
		Schedule: s.normalizeSchedule(req.Schedule),
		Level:    trimOptional(req.Level),
	}
	if ownerID != "" {
		class.UserID = &ownerID
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	s.cache.Invalidate(ctx, cacheKeyCalendar)
	return class, nil
}

// Update modifies a class record.
func (s *ClassService) Update(ctx context.Context, id string, req UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	class.Name = strings.TrimSpace(req.Name)
	class.Schedule = s.normalizeSchedule(req.Schedule)
	class.Level = trimOptional(req.Level)
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	s.cache.Invalidate(ctx, cacheKeyCalendar, cacheKeyManagement)
	return class, nil
}

// Delete removes a class that has no students.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountStudents(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class students")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "class still has students")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	s.cache.Invalidate(ctx, cacheKeyCalendar, cacheKeyManagement)
	return nil
}

// ScheduleDays lists the weekday codes offered by the class form, Monday first.
func (s *ClassService) ScheduleDays() []DayOption {
	weekdays := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	options := make([]DayOption, len(schedule.CanonicalDays))
	for i, code := range schedule.CanonicalDays {
		options[i] = DayOption{Code: code, Weekday: weekdays[i]}
	}
	return options
}

// FormatSchedule applies an optional day toggle and renders the schedule string.
func (s *ClassService) FormatSchedule(req FormatScheduleRequest) (*FormatScheduleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule selection")
	}
	days := dedupe(req.Days)
	schedule.SortDays(days)
	if req.Toggle != "" {
		days = schedule.ToggleDay(days, req.Toggle)
	}
	clock := strings.TrimSpace(req.Time)
	return &FormatScheduleResult{Days: days, Time: clock, Schedule: schedule.Format(days, clock)}, nil
}

func (s *ClassService) normalizeSchedule(raw *string) *string {
	value := trimOptional(raw)
	if value == nil {
		return nil
	}
	normalized, ok := schedule.Normalize(*value)
	if !ok {
		s.logger.Warn("class schedule does not parse, storing verbatim", zap.String("schedule", *value))
	}
	return &normalized
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// classSources adapts stored classes to the schedule engine's input.
func classSources(classes []models.Class) []schedule.ClassSource {
	sources := make([]schedule.ClassSource, len(classes))
	for i, c := range classes {
		sources[i] = schedule.ClassSource{ID: c.ID, Name: c.Name, Level: c.Level, Schedule: c.Schedule}
	}
	return sources
}
