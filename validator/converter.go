// Package validator runs ozzo-validation rules and reports failures as
// errcode.LayeredError with per-field messages.
package validator

import (
	"errors"
	"net/http"

	"github.com/Vayras/admin-frontend-sub001/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ModuleCode validation module code
const ModuleCode = 10

// ErrValidation is returned for invalid input. Its data holds "fields",
// a map from field path to message.
var ErrValidation = errcode.Register(errcode.New(
	ModuleCode, 1, "validation", "error.validation.failed", "validation failed", http.StatusBadRequest,
))

// Validatable is implemented by request payloads.
type Validatable interface {
	Validate() error
}

// ValidateRequest validates req. Rule failures become ErrValidation; other
// errors, such as a rule's internal error, are returned as they are.
func ValidateRequest(req Validatable) error {
	err := req.Validate()
	if err == nil {
		return nil
	}

	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		return ConvertValidationError(validationErrs)
	}
	var ruleErr validation.Error
	if errors.As(err, &ruleErr) {
		return ErrValidation.WithMsg(ruleErr.Error()).WithData("fields", map[string]string{"": ruleErr.Error()})
	}
	return err
}

// ConvertValidationError flattens nested errors into dotted field paths.
func ConvertValidationError(validationErrs validation.Errors) error {
	fields := make(map[string]string)
	flatten("", validationErrs, fields)
	return ErrValidation.WithMsg(validationErrs.Error()).WithData("fields", fields)
}

func flatten(prefix string, errs validation.Errors, out map[string]string) {
	for field, fieldErr := range errs {
		if fieldErr == nil {
			continue
		}
		path := field
		if prefix != "" {
			path = prefix + "." + field
		}
		var nested validation.Errors
		if errors.As(fieldErr, &nested) {
			flatten(path, nested, out)
			continue
		}
		out[path] = fieldErr.Error()
	}
}

// Fields returns the per-field messages of a validation error.
func Fields(err error) map[string]string {
	le, ok := errcode.As(err)
	if !ok || !errors.Is(le, ErrValidation) {
		return nil
	}
	fields, _ := le.Data()["fields"].(map[string]string)
	return fields
}
