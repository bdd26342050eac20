package validator

import (
	"errors"
	"fmt"
	"reflect"
	"roomly/internal/conflicts"
	"roomly/pkg/logger"
	"roomly/pkg/model"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	bounds   conflicts.Bounds
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger, bounds conflicts.Bounds) *BookingValidator {
	v := validator.New()

	bv := &BookingValidator{
		validate: v,
		bounds:   bounds,
		logger:   log,
	}

	if err := v.RegisterValidation("booking_duration", bv.validateDuration); err != nil {
		log.Fatal("Failed to register 'booking_duration' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully",
		"min_duration", bounds.Min.String(),
		"max_duration", bounds.Max.String(),
	)

	return bv
}

// validateDuration runs on EndTime and reads StartTime from the same struct.
func (v *BookingValidator) validateDuration(fl validator.FieldLevel) bool {
	end, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	parent := fl.Parent()
	if parent.Kind() == reflect.Pointer {
		parent = parent.Elem()
	}
	startField := parent.FieldByName("StartTime")
	if !startField.IsValid() {
		return false
	}
	start, ok := startField.Interface().(time.Time)
	if !ok {
		return false
	}
	return v.bounds.Validate(conflicts.Interval{Start: start, End: end}) == nil
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.StartTime != nil && update.EndTime != nil && !update.EndTime.After(*update.StartTime) {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: "end_time must be after start_time",
			},
		}
	}

	return nil
}

func (v *BookingValidator) ValidateSuggest(req *model.SuggestRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "booking_duration":
			message = fmt.Sprintf("booking must last between %s and %s", v.bounds.Min, v.bounds.Max)
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
