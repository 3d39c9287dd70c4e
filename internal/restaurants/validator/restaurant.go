package validator

import (
	"errors"

	"tablebook/pkg/daytime"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
	"tablebook/pkg/validation"
)

type RestaurantValidator struct {
	validate *validation.Validator
	logger   *logger.Logger
}

func NewRestaurantValidator(v *validation.Validator, log *logger.Logger) *RestaurantValidator {
	return &RestaurantValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks a complete restaurant, including that it closes after it
// opens. Overnight hours are not supported.
func (v *RestaurantValidator) Validate(r *model.Restaurant) error {
	if err := v.validate.Struct(r); err != nil {
		return v.translate("Invalid restaurant", err)
	}

	open := daytime.MustParseTime(r.WorkingHoursStart)
	closing := daytime.MustParseTime(r.WorkingHoursEnd)
	if closing <= open {
		v.logger.Warn("Rejected restaurant working hours", "start", r.WorkingHoursStart, "end", r.WorkingHoursEnd)
		return apperrors.Validation("Invalid restaurant", map[string]any{
			"fields": map[string]any{
				"WorkingHoursEnd": "WorkingHoursEnd must be after WorkingHoursStart",
			},
		})
	}
	return nil
}

func (v *RestaurantValidator) ValidateUpdate(u *model.RestaurantUpdate) error {
	if err := v.validate.Struct(u); err != nil {
		return v.translate("Invalid restaurant update", err)
	}
	return nil
}

func (v *RestaurantValidator) translate(message string, err error) error {
	var validationErrs validation.ValidationErrors
	if errors.As(err, &validationErrs) {
		v.logger.Warn(message, "errors", validationErrs.Error())
		return apperrors.Validation(message, validationErrs.Details())
	}
	return apperrors.InvalidInput(err.Error())
}
