package dto

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// RegisterValidators adds the custom binding tags used by the request DTOs:
//   - currency: a 3-letter ISO-4217 style code, any case
//   - positive_decimal: a decimal.Decimal strictly greater than zero
//   - nonnegative_decimal: a decimal.Decimal greater than or equal to zero
//
// decimal.Decimal is read directly from the field; registering a custom type
// func returning the same type would make the validator loop.
func RegisterValidators(v *validator.Validate) error {
	validations := map[string]validator.Func{
		"currency": func(fl validator.FieldLevel) bool {
			return currencyCodePattern.MatchString(fl.Field().String())
		},
		"positive_decimal": func(fl validator.FieldLevel) bool {
			d, ok := fl.Field().Interface().(decimal.Decimal)
			return ok && d.IsPositive()
		},
		"nonnegative_decimal": func(fl validator.FieldLevel) bool {
			d, ok := fl.Field().Interface().(decimal.Decimal)
			return ok && !d.IsNegative()
		},
	}
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %q validation: %w", tag, err)
		}
	}
	return nil
}
