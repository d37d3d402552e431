package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Fields are reported by their JSON names, and "notblank" rejects
// whitespace-only prompts, names and payment references.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// fieldError turns a validation failure into the message shown to the user.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()

	switch field {
	case "utr":
		if fe.Tag() == "max" {
			return fmt.Sprintf("utr must be at most %s characters", fe.Param())
		}
		return "utr is required: enter the transaction reference from your UPI app"
	case "plan_id":
		return "plan_id is required: choose one of the plans from GET /plans"
	case "aspect_ratio":
		return fmt.Sprintf("aspect_ratio must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "image":
		if fe.Tag() == "base64" {
			return "image must be base64 encoded image bytes"
		}
		return "image is required"
	case "mime_type":
		return "mime_type must be an image type such as image/png"
	case "prompt":
		return "prompt must describe the image you want"
	}

	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
