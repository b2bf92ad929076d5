package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-agenda-api/internal/models"
	appErrors "github.com/noah-isme/lms-agenda-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type classFinder interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// StudentPayload is shared by student create and update.
type StudentPayload struct {
	ClassID     string     `json:"class_id" validate:"required"`
	Name        string     `json:"name" validate:"required,max=120"`
	Email       *string    `json:"email" validate:"omitempty,email"`
	AvatarURL   *string    `json:"avatar_url" validate:"omitempty,url"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	ParentName  *string    `json:"parent_name" validate:"omitempty,max=120"`
	Phone       *string    `json:"phone" validate:"omitempty,max=32"`
	Notes       *string    `json:"notes"`
}

// StudentService provides student management.
type StudentService struct {
	repo      studentRepository
	classes   classFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, classes classFinder, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, classes: classes, validator: ensureValidator(validate), logger: logger}
}

// List returns students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Lookup(err, appErrors.Clone(appErrors.ErrNotFound, "student not found"), "failed to load student")
	}
	return student, nil
}

// Create enrols a student into an existing class.
func (s *StudentService) Create(ctx context.Context, req StudentPayload) (*models.Student, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	student := &models.Student{}
	applyStudentPayload(student, req)
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("class_id", student.ClassID))
	return student, nil
}

// Update modifies an existing student.
func (s *StudentService) Update(ctx context.Context, id string, req StudentPayload) (*models.Student, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyStudentPayload(student, req)
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

func (s *StudentService) validate(ctx context.Context, req StudentPayload) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		return appErrors.Lookup(err, appErrors.Clone(appErrors.ErrValidation, "class does not exist"), "failed to verify class")
	}
	return nil
}

func applyStudentPayload(student *models.Student, req StudentPayload) {
	student.ClassID = req.ClassID
	student.Name = strings.TrimSpace(req.Name)
	student.Email = trimOptional(req.Email)
	student.AvatarURL = trimOptional(req.AvatarURL)
	student.DateOfBirth = req.DateOfBirth
	student.ParentName = trimOptional(req.ParentName)
	student.Phone = trimOptional(req.Phone)
	student.Notes = trimOptional(req.Notes)
}
