package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/Veraticus/brokemate/internal/common"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// AmountPlaces is the currency-unit precision of an amount.
const AmountPlaces = 2

// Draft holds the field values for creating or editing an expense.
type Draft struct {
	Date        Date            `json:"date" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Category    Category        `json:"category" validate:"required,category"`
	Description string          `json:"description" validate:"max=500"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(Date); ok {
			return d.String()
		}
		return nil
	}, Date{})

	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})

	return v
}

// Validate checks the draft invariants: positive amount in whole paise, known category
// and a date.
func (d Draft) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		if !d.Amount.Equal(d.Amount.Round(AmountPlaces)) {
			return common.NewValidationError("amount", "must have at most 2 decimal places")
		}
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "gt":
		return common.NewValidationError(field, "must be greater than zero")
	case "category":
		return common.NewValidationError(field, "must be one of "+categoryList())
	case "required":
		return common.NewValidationError(field, "is required")
	case "max":
		return common.NewValidationError(field, "is too long")
	}
	return common.NewValidationError(field, "is invalid")
}

// MarshalJSON encodes the draft with a numeric amount, as the backend expects.
func (d Draft) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount      json.Number `json:"amount"`
		Category    string      `json:"category"`
		Description string      `json:"description"`
		Date        Date        `json:"date"`
	}{
		Amount:      json.Number(d.Amount.StringFixed(AmountPlaces)),
		Category:    string(d.Category),
		Description: d.Description,
		Date:        d.Date,
	})
}

// ParseAmount parses a user supplied amount and rounds it to currency precision.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, common.NewValidationError("amount", "is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, common.NewValidationError("amount", "must be a decimal number")
	}
	d = d.Round(AmountPlaces)
	if !d.IsPositive() {
		return decimal.Zero, common.NewValidationError("amount", "must be greater than zero")
	}
	return d, nil
}

// ParseDraft builds and validates a draft from raw form values.
// An empty date defaults to today.
func ParseDraft(amount, category, description, date string) (Draft, error) {
	amt, err := ParseAmount(amount)
	if err != nil {
		return Draft{}, err
	}
	cat, err := ParseCategory(category)
	if err != nil {
		return Draft{}, common.NewValidationError("category", "must be one of "+categoryList())
	}
	day := Today()
	if strings.TrimSpace(date) != "" {
		day, err = ParseDate(strings.TrimSpace(date))
		if err != nil {
			return Draft{}, common.NewValidationError("date", "must be YYYY-MM-DD")
		}
	}
	draft := Draft{
		Amount:      amt,
		Category:    cat,
		Description: strings.TrimSpace(description),
		Date:        day,
	}
	if err := draft.Validate(); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

func categoryList() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
