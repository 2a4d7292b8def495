package util

import (
	"strings"
	"testing"
	"time"
)

func hasFieldError(errs []FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidateExpense_Valid(t *testing.T) {
	date := time.Now().AddDate(0, 0, -1)
	errs := ValidateExpense("Lunch with team", 24.50, "dining", date)
	if len(errs) != 0 {
		t.Errorf("ValidateExpense() = %v, want no errors", errs)
	}
}

func TestValidateExpense_Description(t *testing.T) {
	date := time.Now()

	errs := ValidateExpense("", 10, "dining", date)
	if !hasFieldError(errs, "description") {
		t.Error("empty description should fail")
	}

	errs = ValidateExpense(strings.Repeat("x", 201), 10, "dining", date)
	if !hasFieldError(errs, "description") {
		t.Error("201-char description should fail")
	}

	errs = ValidateExpense(strings.Repeat("x", 200), 10, "dining", date)
	if hasFieldError(errs, "description") {
		t.Error("200-char description should pass")
	}
}

func TestValidateExpense_Amount(t *testing.T) {
	date := time.Now()
	for _, amount := range []float64{0, -0.01, -100, 10000000} {
		errs := ValidateExpense("ok", amount, "dining", date)
		if !hasFieldError(errs, "amount") {
			t.Errorf("ValidateExpense(amount=%v) should fail on amount", amount)
		}
	}
}

func TestValidateExpense_Category(t *testing.T) {
	date := time.Now()
	for _, cat := range []string{"", "food", "DINING", "misc"} {
		errs := ValidateExpense("ok", 10, cat, date)
		if !hasFieldError(errs, "category") {
			t.Errorf("ValidateExpense(category=%q) should fail on category", cat)
		}
	}
}

func TestValidateExpense_FutureDate(t *testing.T) {
	errs := ValidateExpense("ok", 10, "dining", time.Now().AddDate(0, 0, 1))
	if !hasFieldError(errs, "date") {
		t.Error("tomorrow should fail")
	}

	// today is allowed, the check is day-granular
	errs = ValidateExpense("ok", 10, "dining", time.Now())
	if hasFieldError(errs, "date") {
		t.Error("today should pass")
	}
}

func TestValidateExpense_MultipleFailures(t *testing.T) {
	errs := ValidateExpense("", -5, "nope", time.Now().AddDate(0, 0, 2))
	if len(errs) != 4 {
		t.Errorf("ValidateExpense() = %d errors, want 4: %v", len(errs), errs)
	}
}

func TestValidateBudget_Valid(t *testing.T) {
	errs := ValidateBudget("groceries", 500, 5, 2024, "monthly food limit")
	if len(errs) != 0 {
		t.Errorf("ValidateBudget() = %v, want no errors", errs)
	}
}

func TestValidateBudget_Month(t *testing.T) {
	for _, month := range []int{0, -1, 13} {
		errs := ValidateBudget("groceries", 500, month, 2024, "")
		if !hasFieldError(errs, "month") {
			t.Errorf("ValidateBudget(month=%d) should fail on month", month)
		}
	}
	for _, month := range []int{1, 12} {
		errs := ValidateBudget("groceries", 500, month, 2024, "")
		if hasFieldError(errs, "month") {
			t.Errorf("ValidateBudget(month=%d) should pass", month)
		}
	}
}

func TestValidateBudget_Year(t *testing.T) {
	for _, year := range []int{1999, 2101} {
		errs := ValidateBudget("groceries", 500, 5, year, "")
		if !hasFieldError(errs, "year") {
			t.Errorf("ValidateBudget(year=%d) should fail on year", year)
		}
	}
	for _, year := range []int{2000, 2100} {
		errs := ValidateBudget("groceries", 500, 5, year, "")
		if hasFieldError(errs, "year") {
			t.Errorf("ValidateBudget(year=%d) should pass", year)
		}
	}
}

func TestValidateBudget_Notes(t *testing.T) {
	errs := ValidateBudget("groceries", 500, 5, 2024, strings.Repeat("n", 501))
	if !hasFieldError(errs, "notes") {
		t.Error("501-char notes should fail")
	}

	errs = ValidateBudget("groceries", 500, 5, 2024, strings.Repeat("n", 500))
	if hasFieldError(errs, "notes") {
		t.Error("500-char notes should pass")
	}
}

func TestParseDate(t *testing.T) {
	valid := []string{
		"2024-05-10",
		"2024-05-10T15:04:05",
		"2024-05-10T15:04:05+08:00",
	}
	for _, s := range valid {
		if _, ok := ParseDate(s); !ok {
			t.Errorf("ParseDate(%q) failed, want success", s)
		}
	}

	invalid := []string{"", "2024/05/10", "10-05-2024", "not-a-date"}
	for _, s := range invalid {
		if _, ok := ParseDate(s); ok {
			t.Errorf("ParseDate(%q) succeeded, want failure", s)
		}
	}
}
