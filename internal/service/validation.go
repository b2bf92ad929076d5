package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/lms-agenda-api/internal/models"
	"github.com/noah-isme/lms-agenda-api/internal/schedule"
)

// NewValidator returns a validator with the domain tags registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	registerDomainValidations(validate)
	return validate
}

func registerDomainValidations(validate *validator.Validate) {
	_ = validate.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("tuition_status", func(fl validator.FieldLevel) bool {
		return models.TuitionStatus(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("day_code", func(fl validator.FieldLevel) bool {
		return schedule.IsDayCode(fl.Field().String())
	})
	_ = validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return schedule.ValidClock(fl.Field().String())
	})
}

func ensureValidator(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		return NewValidator()
	}
	registerDomainValidations(validate)
	return validate
}
