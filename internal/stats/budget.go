package stats

import (
	"math"

	"expense-ledger/internal/util"
)

// Budget utilization status tiers. Boundaries are closed on the lower end:
// exactly 100.00% is exceeded, 90.00% is warning, 75.00% is caution.
const (
	StatusWithinBudget = "within_budget"
	StatusCaution      = "caution"
	StatusWarning      = "warning"
	StatusExceeded     = "exceeded"
)

// Comparison is one budget joined with its matching-period actual spending.
type Comparison struct {
	BudgetCent    int64   `json:"budget_cent"`
	SpentCent     int64   `json:"spent_cent"`
	RemainingCent int64   `json:"remaining_cent"`
	PercentUsed   float64 `json:"percentage_used"`
	Status        string  `json:"status"`
}

// Compare derives remaining amount, percentage used and status tier for a
// single budget. PercentUsed is 0 when the budget amount is 0.
func Compare(budgetCent, spentCent int64) Comparison {
	pct := util.Percentage(spentCent, budgetCent)
	return Comparison{
		BudgetCent:    budgetCent,
		SpentCent:     spentCent,
		RemainingCent: budgetCent - spentCent,
		PercentUsed:   pct,
		Status:        StatusFor(pct),
	}
}

// StatusFor maps percentage used onto a status tier.
func StatusFor(percentUsed float64) string {
	switch {
	case percentUsed >= 100:
		return StatusExceeded
	case percentUsed >= 90:
		return StatusWarning
	case percentUsed >= 75:
		return StatusCaution
	default:
		return StatusWithinBudget
	}
}

// DashboardStatus is the visual variant of a status tier.
type DashboardStatus struct {
	Level    string  `json:"level"` // danger / warning / caution / success
	Color    string  `json:"color"`
	Progress float64 `json:"progress"` // bar width, capped at 100
}

// DashboardFor maps percentage used onto the dashboard display variant used
// by progress bars, with the same thresholds as StatusFor.
func DashboardFor(percentUsed float64) DashboardStatus {
	ds := DashboardStatus{Progress: math.Min(percentUsed, 100)}
	switch {
	case percentUsed >= 100:
		ds.Level = "danger"
		ds.Color = "#dc3545"
	case percentUsed >= 90:
		ds.Level = "warning"
		ds.Color = "#fd7e14"
	case percentUsed >= 75:
		ds.Level = "caution"
		ds.Color = "#ffc107"
	default:
		ds.Level = "success"
		ds.Color = "#28a745"
	}
	return ds
}

// BudgetSummary aggregates a set of comparisons.
type BudgetSummary struct {
	TotalBudgetCent int64 `json:"total_budget_cent"`
	TotalSpentCent  int64 `json:"total_spent_cent"`
	ExceededCount   int   `json:"exceeded_count"`
	WarningCount    int   `json:"warning_count"`
}

// SummarizeComparisons totals budgeted and spent amounts and counts budgets
// in the exceeded and warning tiers.
func SummarizeComparisons(comparisons []Comparison) BudgetSummary {
	var s BudgetSummary
	for _, cmp := range comparisons {
		s.TotalBudgetCent += cmp.BudgetCent
		s.TotalSpentCent += cmp.SpentCent
		switch cmp.Status {
		case StatusExceeded:
			s.ExceededCount++
		case StatusWarning:
			s.WarningCount++
		}
	}
	return s
}
