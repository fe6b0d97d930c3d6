package core

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"fairhour/internal/types"
)

// ValidationError describes a single failed validation rule.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult aggregates validation errors and non-blocking warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
}

// IsValid reports whether the result carries no errors. Warnings alone do not
// make a result invalid.
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Validator wraps go-playground/validator with the domain-specific rules:
//
//	is_timezone - value must be a loadable IANA timezone name
//	is_mode     - value must be one of the known activity modes
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a Validator and registers the custom tags. Field names
// in validation errors come from json tags when present.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration errors only occur for empty tag names; these are compile
	// time constants, so a failure here is a programming error.
	_ = v.RegisterValidation("is_timezone", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		if name == "" {
			return false
		}
		_, err := time.LoadLocation(name)
		return err == nil
	})
	_ = v.RegisterValidation("is_mode", func(fl validator.FieldLevel) bool {
		return types.Mode(fl.Field().String()).Valid()
	})

	return &Validator{
		validate: v,
		logger:   logger,
	}
}

// ValidateStruct validates s against its struct tags. On failure it returns a
// *types.AppError whose code reflects the first failed rule, with the full
// list of failures under the "validation_errors" detail key.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	invalidErr, ok := err.(*validator.InvalidValidationError)
	if ok {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "invalid value passed to validator", invalidErr)
	}

	fieldErrs := err.(validator.ValidationErrors)
	verrs := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		code := codeForTag(fe.Tag())
		verrs = append(verrs, ValidationError{
			Field:   fe.Field(),
			Code:    string(code),
			Message: messageForTag(fe),
		})
	}

	return types.NewAppError(
		codeForTag(fieldErrs[0].Tag()),
		"request validation failed",
		err,
	).WithDetails(map[string]any{
		"validation_errors": verrs,
	})
}

// codeForTag maps a validation tag to the domain error code.
func codeForTag(tag string) types.ErrorCode {
	switch tag {
	case "required":
		return types.ErrCodeValidationMissingField
	case "email":
		return types.ErrCodeValidationInvalidEmail
	case "is_timezone":
		return types.ErrCodeValidationInvalidTimezone
	case "is_mode":
		return types.ErrCodeValidationInvalidMode
	case "latitude":
		return types.ErrCodeValidationInvalidLat
	case "longitude":
		return types.ErrCodeValidationInvalidLon
	default:
		return types.ErrCodeValidationInvalidField
	}
}

// messageForTag builds a human-readable message for a failed rule.
func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "is_timezone":
		return fmt.Sprintf("%s must be a valid IANA timezone name", fe.Field())
	case "is_mode":
		return fmt.Sprintf("%s must be one of the supported activity modes", fe.Field())
	case "latitude":
		return fmt.Sprintf("%s must be between -90 and 90", fe.Field())
	case "longitude":
		return fmt.Sprintf("%s must be between -180 and 180", fe.Field())
	default:
		return fmt.Sprintf("%s failed validation rule %q", fe.Field(), fe.Tag())
	}
}
