// Package validate checks request structs with go-playground/validator and reports
// the first failure as an errs.ValidationError.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

// Validator wraps a validator.Validate reporting json field names.
// It satisfies fiber's StructValidator.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return &Validator{validate: v}
}

// Validate checks out and returns a ValidationError naming the first failed field.
func (v *Validator) Validate(out any) error {
	err := v.validate.Struct(out)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return errs.Invalid("", err.Error())
	}

	ve := validationErrors[0]

	field := ve.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	return errs.Invalid(field, fmt.Sprintf("failed validation tag '%s'", ve.Tag()))
}
