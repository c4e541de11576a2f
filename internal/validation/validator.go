// Package validation checks request structs (go-playground/validator tags)
// and scenario documents (JSON schema).
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/roundpool/internal/domain"
)

var assetPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,31}$`)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

var defaultValidator *Validator

// New creates a Validator with the ledger's custom tags registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("asset", validateAsset)
	return &Validator{validate: v}
}

// Default returns the shared validator instance
func Default() *Validator {
	if defaultValidator == nil {
		defaultValidator = New()
	}
	return defaultValidator
}

// ValidateStruct checks s against its tags. Failures wrap
// domain.ErrInvalidArgument.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fields := FormatValidationError(err)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, strings.Join(parts, "; "))
}

// FormatValidationError maps each failing field to a readable message
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request"
		return errs
	}

	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "gt":
			errs[field] = fmt.Sprintf("Must be greater than %s", e.Param())
		case "gte":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "lte":
			errs[field] = fmt.Sprintf("Must be at most %s", e.Param())
		case "asset":
			errs[field] = "Invalid asset identifier"
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}

func validateAsset(fl validator.FieldLevel) bool {
	return assetPattern.MatchString(fl.Field().String())
}
