package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-agenda-api/internal/models"
	appErrors "github.com/noah-isme/lms-agenda-api/pkg/errors"
	"github.com/noah-isme/lms-agenda-api/pkg/export"
)

type tuitionRepository interface {
	List(ctx context.Context, filter models.TuitionFilter) ([]models.TuitionDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Tuition, error)
	Create(ctx context.Context, tuition *models.Tuition) error
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
	ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]models.TuitionDetail, error)
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// CreateTuitionRequest issues an invoice to a student.
type CreateTuitionRequest struct {
	ClassID   string  `json:"class_id" validate:"required"`
	StudentID string  `json:"student_id" validate:"required"`
	Amount    int64   `json:"amount" validate:"gt=0"`
	Period    string  `json:"period" validate:"required,max=32"`
	DueDate   string  `json:"due_date" validate:"required,datetime=2006-01-02"`
	Note      *string `json:"note"`
}

// ListTuitionsRequest filters the tuition list. Status "all" or empty disables the filter.
type ListTuitionsRequest struct {
	Status   string
	ClassID  string
	Page     int
	PageSize int
}

var overdueExportHeaders = []string{"student", "class", "period", "amount", "due_date"}

// TuitionService manages invoices and overdue reporting.
type TuitionService struct {
	repo      tuitionRepository
	students  studentFinder
	cache     *CacheService
	csv       *export.CSVExporter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	location  *time.Location
}

// TuitionServiceParams groups constructor dependencies.
type TuitionServiceParams struct {
	Repo      tuitionRepository
	Students  studentFinder
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Location  *time.Location
}

// NewTuitionService constructs TuitionService.
func NewTuitionService(params TuitionServiceParams) *TuitionService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &TuitionService{
		repo:      params.Repo,
		students:  params.Students,
		cache:     params.Cache,
		csv:       export.NewCSVExporter(),
		metrics:   params.Metrics,
		validator: ensureValidator(params.Validator),
		logger:    logger,
		now:       time.Now,
		location:  loc,
	}
}

// List returns tuitions with pagination metadata.
func (s *TuitionService) List(ctx context.Context, req ListTuitionsRequest) ([]models.TuitionDetail, *models.Pagination, error) {
	filter := models.TuitionFilter{ClassID: req.ClassID, Page: req.Page, PageSize: req.PageSize}
	if status := strings.ToLower(strings.TrimSpace(req.Status)); status != "" && status != "all" {
		typed := models.TuitionStatus(status)
		if !typed.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "status must be one of all, pending, paid, overdue")
		}
		filter.Status = &typed
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tuitions")
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create issues a pending invoice for a student of the given class.
func (s *TuitionService) Create(ctx context.Context, req CreateTuitionRequest) (*models.Tuition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tuition payload")
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Lookup(err, appErrors.Clone(appErrors.ErrValidation, "student does not exist"), "failed to verify student")
	}
	if student.ClassID != req.ClassID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not enrolled in class")
	}

	tuition := &models.Tuition{
		ClassID:   req.ClassID,
		StudentID: req.StudentID,
		Amount:    req.Amount,
		Period:    strings.TrimSpace(req.Period),
		Status:    models.TuitionStatusPending,
		DueDate:   &due,
		Note:      trimOptional(req.Note),
	}
	if err := s.repo.Create(ctx, tuition); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create tuition")
	}
	s.cache.Invalidate(ctx, cacheKeyManagement)
	return tuition, nil
}

// MarkPaid settles an invoice.
func (s *TuitionService) MarkPaid(ctx context.Context, id string) (*models.Tuition, error) {
	tuition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Lookup(err, appErrors.Clone(appErrors.ErrNotFound, "tuition not found"), "failed to load tuition")
	}
	if tuition.Status == models.TuitionStatusPaid {
		return nil, appErrors.Clone(appErrors.ErrAlreadyPaid, "tuition already paid")
	}
	paidAt := s.now().UTC()
	if err := s.repo.MarkPaid(ctx, id, paidAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark tuition paid")
	}
	tuition.Status = models.TuitionStatusPaid
	tuition.PaidAt = &paidAt
	s.cache.Invalidate(ctx, cacheKeyManagement)
	s.logger.Info("tuition paid", zap.String("tuition_id", id), zap.Int64("amount", tuition.Amount))
	return tuition, nil
}

// Overdue lists pending invoices due on or before asOf (today when zero).
func (s *TuitionService) Overdue(ctx context.Context, asOf time.Time, limit int) ([]models.TuitionDetail, error) {
	if asOf.IsZero() {
		asOf = s.now().In(s.location)
	}
	rows, err := s.repo.ListOverdue(ctx, asOf, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list overdue tuitions")
	}
	return rows, nil
}

// ExportOverdue renders every overdue invoice as CSV and returns the bytes with a filename.
func (s *TuitionService) ExportOverdue(ctx context.Context, asOf time.Time) ([]byte, string, error) {
	if asOf.IsZero() {
		asOf = s.now().In(s.location)
	}
	rows, err := s.Overdue(ctx, asOf, 0)
	if err != nil {
		return nil, "", err
	}
	content, err := s.csv.Render(overdueDataset(rows))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render overdue export")
	}
	s.metrics.RecordExport("overdue_tuitions", "csv")
	return content, export.Filename("overdue-tuitions", asOf, "csv"), nil
}

func overdueDataset(rows []models.TuitionDetail) export.Dataset {
	data := export.Dataset{
		Headers: overdueExportHeaders,
		Labels: map[string]string{
			"student":  "Student",
			"class":    "Class",
			"period":   "Period",
			"amount":   "Amount",
			"due_date": "Due date",
		},
		Rows: make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		due := ""
		if row.DueDate != nil {
			due = row.DueDate.Format(dateLayout)
		}
		data.Rows = append(data.Rows, map[string]string{
			"student":  derefOr(row.StudentName, row.StudentID),
			"class":    derefOr(row.ClassName, row.ClassID),
			"period":   row.Period,
			"amount":   strconv.FormatInt(row.Amount, 10),
			"due_date": due,
		})
	}
	return data
}

func derefOr(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}
