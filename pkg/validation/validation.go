// Package validation wires go-playground/validator with the custom tags the
// reservation models use and turns its errors into field/message pairs.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"tablebook/pkg/daytime"
	"tablebook/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

const (
	TagTimeOfDay = "hhmm"
	TagDate      = "date"
	TagPhone     = "phone"
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

// Details renders the errors for an AppError details map.
func (v ValidationErrors) Details() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return map[string]any{"fields": fields}
}

// Validator is shared by the domain validators; validator.Validate caches
// struct metadata and is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

func New(log *logger.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation(TagTimeOfDay, validateTimeOfDay); err != nil {
		log.Fatal("Failed to register 'hhmm' validator", "error", err)
	}
	if err := v.RegisterValidation(TagDate, validateDate); err != nil {
		log.Fatal("Failed to register 'date' validator", "error", err)
	}
	if err := v.RegisterValidation(TagPhone, validatePhone); err != nil {
		log.Fatal("Failed to register 'phone' validator", "error", err)
	}

	return &Validator{validate: v}
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	_, err := daytime.ParseTime(fl.Field().String())
	return err == nil
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := daytime.ParseDate(fl.Field().String())
	return err == nil
}

// validatePhone accepts only numbers with a real numbering plan behind
// them, which e164 alone does not check.
func validatePhone(fl validator.FieldLevel) bool {
	parsed, err := phonenumbers.Parse(fl.Field().String(), "ZZ")
	return err == nil && phonenumbers.IsValidNumber(parsed)
}

// Struct validates s and returns ValidationErrors for tag failures.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
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
		case "uuid":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +972501234567)", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "timezone":
			message = fmt.Sprintf("%s must be a valid IANA time zone", err.Field())
		case TagTimeOfDay:
			message = fmt.Sprintf("%s must be in HH:MM format (00:00-23:59)", err.Field())
		case TagPhone:
			message = fmt.Sprintf("%s is not a valid phone number", err.Field())
		case TagDate:
			message = fmt.Sprintf("%s must be in YYYY-MM-DD format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
