package validator

import (
	"errors"

	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
	"tablebook/pkg/validation"
)

type TableValidator struct {
	validate *validation.Validator
	logger   *logger.Logger
}

func NewTableValidator(v *validation.Validator, log *logger.Logger) *TableValidator {
	return &TableValidator{
		validate: v,
		logger:   log,
	}
}

func (v *TableValidator) Validate(t *model.Table) error {
	return v.check("Invalid table", t)
}

func (v *TableValidator) ValidateUpdate(u *model.TableUpdate) error {
	return v.check("Invalid table update", u)
}

func (v *TableValidator) check(message string, s any) error {
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
