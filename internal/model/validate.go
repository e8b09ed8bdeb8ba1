package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("task_status", validateTaskStatus); err != nil {
		panic(fmt.Sprintf("failed to register task_status validator: %v", err))
	}
}

func validateTaskStatus(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).IsValid()
}

// ValidateDraft normalizes d and reports the first rule it breaks.
func ValidateDraft(d Draft) (Draft, error) {
	d = d.Normalized()
	err := validate.Struct(d)
	if err == nil {
		return d, nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "task_status" {
			return d, fmt.Errorf("%w: %q", ErrInvalidStatus, d.Status)
		}
		return d, fmt.Errorf("%w: %s is %s", ErrInvalidDraft, fe.Field(), fe.Tag())
	}
	return d, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
}
