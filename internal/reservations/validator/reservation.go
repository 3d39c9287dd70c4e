package validator

import (
	"errors"

	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
	"tablebook/pkg/validation"
)

type ReservationValidator struct {
	validate *validation.Validator
	logger   *logger.Logger
}

func NewReservationValidator(v *validation.Validator, log *logger.Logger) *ReservationValidator {
	return &ReservationValidator{
		validate: v,
		logger:   log,
	}
}

func (v *ReservationValidator) ValidateQuery(q *model.AvailabilityQuery) error {
	return v.check("Invalid availability query", q)
}

func (v *ReservationValidator) ValidateBooking(req *model.BookingRequest) error {
	return v.check("Invalid reservation request", req)
}

func (v *ReservationValidator) ValidateUpdate(u *model.ReservationUpdate) error {
	if u.Status == "" && u.Notes == nil {
		return apperrors.Validation("Nothing to update", map[string]any{
			"fields": map[string]any{"status": "status or notes is required"},
		})
	}
	return v.check("Invalid reservation update", u)
}

func (v *ReservationValidator) check(message string, s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validation.ValidationErrors
	if errors.As(err, &validationErrs) {
		v.logger.Warn(message, "errors", validationErrs.Error())
		return apperrors.Validation(message, validationErrs.Details())
	}
	return apperrors.InvalidInput(err.Error())
}
