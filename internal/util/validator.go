package util

import (
	"strings"
	"time"

	"expense-ledger/internal/models"
)

// FieldError is a single validation failure, reported per field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const maxAmount = 10000000 // upper bound on a single amount, in currency units

// ValidateExpense checks an expense's fields before any write and returns
// one entry per failed field.
func ValidateExpense(description string, amount float64, category string, date time.Time) []FieldError {
	var errs []FieldError

	description = strings.TrimSpace(description)
	if description == "" {
		errs = append(errs, FieldError{"description", "description is required"})
	} else if len(description) > 200 {
		errs = append(errs, FieldError{"description", "description must be at most 200 characters"})
	}

	if amount <= 0 {
		errs = append(errs, FieldError{"amount", "amount must be a positive number"})
	} else if amount >= maxAmount {
		errs = append(errs, FieldError{"amount", "amount is too large"})
	}

	if !models.ValidCategory(category) {
		errs = append(errs, FieldError{"category", "category must be one of the known categories"})
	}

	// future dates are rejected at day granularity
	if date.Format("2006-01-02") > time.Now().Format("2006-01-02") {
		errs = append(errs, FieldError{"date", "date must not be in the future"})
	}

	return errs
}

// ValidateBudget checks a budget's fields before any write.
func ValidateBudget(category string, amount float64, month, year int, notes string) []FieldError {
	var errs []FieldError

	if !models.ValidCategory(category) {
		errs = append(errs, FieldError{"category", "category must be one of the known categories"})
	}

	if amount <= 0 {
		errs = append(errs, FieldError{"amount", "amount must be a positive number"})
	} else if amount >= maxAmount {
		errs = append(errs, FieldError{"amount", "amount is too large"})
	}

	if month < 1 || month > 12 {
		errs = append(errs, FieldError{"month", "month must be between 1 and 12"})
	}
	if year < 2000 || year > 2100 {
		errs = append(errs, FieldError{"year", "year must be between 2000 and 2100"})
	}

	if len(notes) > 500 {
		errs = append(errs, FieldError{"notes", "notes must be at most 500 characters"})
	}

	return errs
}

// ParseDate parses a date accepting the formats clients actually send.
func ParseDate(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339,          // 2025-12-03T00:00:00+08:00
		"2006-01-02T15:04:05", // 2025-12-03T00:00:00
		"2006-01-02",          // 2025-12-03
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
