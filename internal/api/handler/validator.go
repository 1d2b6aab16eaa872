package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/biportal/portal-api/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field errors are keyed by the json tag of the failing field.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return domain.CheckPassword(fl.Field().String()) == ""
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Failures are returned as a
// *domain.ValidationError.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			verr := &domain.ValidationError{}
			for _, fe := range ve {
				verr.Add(fe.Field(), fieldError(fe))
			}
			return verr
		}
		return err
	}
	return nil
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "url":
		return "enter a valid URL"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "excludes":
		return fmt.Sprintf("must not contain %s", fe.Param())
	case "password":
		if reason := domain.CheckPassword(fmt.Sprint(fe.Value())); reason != "" {
			return reason
		}
		return "is not a valid password"
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}
