package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-agenda-api/internal/models"
	appErrors "github.com/noah-isme/lms-agenda-api/pkg/errors"
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error
	CountForClassOnDate(ctx context.Context, classID string, date time.Time) (int, error)
	Performance(ctx context.Context) ([]models.AttendancePerformance, error)
}

// AttendanceEntry is one student's mark in a session.
type AttendanceEntry struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,attendance_status"`
}

// RecordAttendanceRequest saves a whole class session at once.
type RecordAttendanceRequest struct {
	ClassID string            `json:"class_id" validate:"required"`
	Date    string            `json:"date" validate:"required,datetime=2006-01-02"`
	Records []AttendanceEntry `json:"records" validate:"required,min=1,dive"`
}

// AttendanceCount is the number of marks stored for a class session.
type AttendanceCount struct {
	ClassID string `json:"class_id"`
	Date    string `json:"date"`
	Count   int    `json:"count"`
}

// AttendanceService records and reads class attendance.
type AttendanceService struct {
	repo      attendanceRepository
	classes   classFinder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(repo attendanceRepository, classes classFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, classes: classes, cache: cache, validator: ensureValidator(validate), logger: logger}
}

// List returns attendance for a class, optionally narrowed to a date (YYYY-MM-DD).
func (s *AttendanceService) List(ctx context.Context, classID, studentID, date string) ([]models.AttendanceRecord, error) {
	filter := models.AttendanceFilter{ClassID: classID, StudentID: studentID}
	if date != "" {
		day, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		filter.Date = &day
	}
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// Record upserts every entry of a session; a student marked twice keeps the last status.
func (s *AttendanceService) Record(ctx context.Context, req RecordAttendanceRequest) ([]models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	day, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		return nil, appErrors.Lookup(err, appErrors.Clone(appErrors.ErrNotFound, "class not found"), "failed to verify class")
	}

	index := make(map[string]int, len(req.Records))
	records := make([]models.AttendanceRecord, 0, len(req.Records))
	for _, entry := range req.Records {
		rec := models.AttendanceRecord{
			StudentID: entry.StudentID,
			ClassID:   req.ClassID,
			Date:      day,
			Status:    models.AttendanceStatus(entry.Status),
		}
		if i, ok := index[entry.StudentID]; ok {
			records[i] = rec
			continue
		}
		index[entry.StudentID] = len(records)
		records = append(records, rec)
	}

	if err := s.repo.UpsertBatch(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	s.cache.Invalidate(ctx, cacheKeyManagement)
	s.logger.Info("attendance recorded", zap.String("class_id", req.ClassID), zap.String("date", req.Date), zap.Int("records", len(records)))
	return records, nil
}

// Count returns the number of marks for a class session.
func (s *AttendanceService) Count(ctx context.Context, classID, date string) (*AttendanceCount, error) {
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class_id is required")
	}
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountForClassOnDate(ctx, classID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attendance")
	}
	return &AttendanceCount{ClassID: classID, Date: day.Format(dateLayout), Count: count}, nil
}

func parseDate(raw string) (time.Time, error) {
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}
	return day, nil
}
