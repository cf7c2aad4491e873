// Package validation wraps go-playground/validator for request DTOs.
package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Struct validates a request DTO and returns a caller-readable message for
// the first failing field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		e := errs[0]
		return fmt.Errorf("field %s failed validation on %s", e.Field(), e.Tag())
	}
	return err
}
