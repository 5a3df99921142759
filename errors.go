package vocabgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/broady/vocabgen/ir"
	"github.com/go-playground/validator/v10"
)

// configurationError converts validation failures into one configuration
// error. Details map each offending field to its message.
func configurationError(err error) error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return ir.Wrap(ir.CodeConfiguration, err, "invalid configuration")
	}
	details := make(map[string]any, len(valErrs))
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		field := fieldPath(ve)
		msg := formatValidationError(ve)
		details[field] = msg
		messages = append(messages, field+": "+msg)
	}
	return &ir.Error{
		Code:    ir.CodeConfiguration,
		Message: strings.Join(messages, "; "),
		Details: details,
	}
}

// fieldPath returns "sourcePackages[0]" for a field inside Options.
func fieldPath(ve validator.FieldError) string {
	ns := ve.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ve.Field()
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "required_if":
		return fmt.Sprintf("required when %s", strings.Replace(ve.Param(), " ", " is ", 1))
	case "min":
		return fmt.Sprintf("must have at least %s entries", ve.Param())
	case "unique":
		return "must not contain duplicates"
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "srcpkg":
		return fmt.Sprintf("%q is not a package name or import path", ve.Value())
	case "pkgname":
		return fmt.Sprintf("%q is not a dotted package name", ve.Value())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
