package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iho/creditbook/internal/domain"
)

var validate = newValidator()

// newValidator registers one length alias per text field, taken from the
// domain limits so both layers reject the same input.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	for alias, limit := range map[string]int{
		"name_len":        domain.MaxNameLength,
		"contact_len":     domain.MaxContactLength,
		"address_len":     domain.MaxAddressLength,
		"description_len": domain.MaxDescriptionLength,
		"supplier_len":    domain.MaxSupplierLength,
	} {
		v.RegisterAlias(alias, fmt.Sprintf("max=%d", limit))
	}
	return v
}

// Validate checks struct tags on a request and reports every failing field
// as one domain.ErrValidation.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.ActualTag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// parseDate accepts an empty string as "today".
func parseDate(s string) (domain.Date, error) {
	if s == "" {
		return domain.Date{}, nil
	}
	return domain.ParseDate(s)
}
