// Package model defines the expense records exchanged with the Brokemate backend.
package model

import (
	"fmt"
	"strings"
)

// Category is one of the fixed expense categories.
type Category string

const (
	// CategoryFood covers groceries and eating out.
	CategoryFood Category = "Food"
	// CategoryTransport covers fares, fuel and commuting.
	CategoryTransport Category = "Transport"
	// CategoryShopping covers discretionary purchases.
	CategoryShopping Category = "Shopping"
	// CategoryUtilities covers bills and recurring services.
	CategoryUtilities Category = "Utilities"
	// CategoryEntertainment covers leisure spending.
	CategoryEntertainment Category = "Entertainment"
	// CategoryHealth covers medical and fitness spending.
	CategoryHealth Category = "Health"
	// CategoryOther is the catch-all category.
	CategoryOther Category = "Other"
)

// Categories lists every valid category in presentation order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryUtilities,
	CategoryEntertainment,
	CategoryHealth,
	CategoryOther,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory resolves a user supplied name to a category, ignoring case.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, known := range Categories {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}
