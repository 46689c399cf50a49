package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"busline/pkg/logger"
	"busline/pkg/model"
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

type UserValidator struct {
	validate          *validator.Validate
	minPasswordLength int
	logger            *logger.Logger
}

func NewUserValidator(log *logger.Logger, minPasswordLength int) *UserValidator {
	return &UserValidator{
		validate:          validator.New(),
		minPasswordLength: minPasswordLength,
		logger:            log,
	}
}

func (v *UserValidator) ValidateRegistration(req *model.RegisterRequest) error {
	if err := v.structErrors(req); err != nil {
		return err
	}
	if len(req.Password) < v.minPasswordLength {
		return ValidationErrors{passwordTooShort(v.minPasswordLength)}
	}
	return nil
}

func (v *UserValidator) ValidateLogin(req *model.LoginRequest) error {
	return v.structErrors(req)
}

// ValidateProfileUpdate checks the mutable fields. A nil password is a
// legal "leave unchanged"; a supplied one must meet the minimum length.
func (v *UserValidator) ValidateProfileUpdate(update *model.ProfileUpdate) error {
	if err := v.structErrors(update); err != nil {
		return err
	}
	if update.Password != nil && len(*update.Password) < v.minPasswordLength {
		return ValidationErrors{passwordTooShort(v.minPasswordLength)}
	}
	return nil
}

func passwordTooShort(min int) ValidationError {
	return ValidationError{
		Field:   "Password",
		Message: fmt.Sprintf("password must be at least %d characters", min),
	}
}

func (v *UserValidator) structErrors(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *UserValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
