// Package stats computes spending aggregates, budget comparisons and
// insights over in-memory expense collections. Everything here is pure:
// handlers load the records, stats does the arithmetic.
package stats

import (
	"sort"
	"time"

	"expense-ledger/internal/models"
	"expense-ledger/internal/util"
)

// Summary holds overall figures for a set of expenses.
type Summary struct {
	TotalCent   int64 `json:"total_cent"`
	Count       int   `json:"count"`
	AverageCent int64 `json:"average_cent"`
}

// Summarize computes total, count and average-per-expense. An empty input
// yields a zero-valued summary.
func Summarize(expenses []models.Expense) Summary {
	var s Summary
	for i := range expenses {
		s.TotalCent += expenses[i].AmountCent
	}
	s.Count = len(expenses)
	if s.Count > 0 {
		s.AverageCent = s.TotalCent / int64(s.Count)
	}
	return s
}

// CategoryBreakdown is one category's share of a spending window.
type CategoryBreakdown struct {
	Category    string  `json:"category"`
	TotalCent   int64   `json:"total_cent"`
	Count       int     `json:"count"`
	AverageCent int64   `json:"average_cent"`
	Percentage  float64 `json:"percentage"` // of the window total, two decimals
}

// GroupByCategory buckets expenses per category, sorted by descending total.
// Percentages are relative to the grand total and 0 when it is 0.
func GroupByCategory(expenses []models.Expense) []CategoryBreakdown {
	var grand int64
	byCat := make(map[string]*CategoryBreakdown)
	for i := range expenses {
		e := &expenses[i]
		grand += e.AmountCent

		cb, ok := byCat[e.Category]
		if !ok {
			cb = &CategoryBreakdown{Category: e.Category}
			byCat[e.Category] = cb
		}
		cb.TotalCent += e.AmountCent
		cb.Count++
	}

	out := make([]CategoryBreakdown, 0, len(byCat))
	for _, cb := range byCat {
		cb.AverageCent = cb.TotalCent / int64(cb.Count)
		cb.Percentage = util.Percentage(cb.TotalCent, grand)
		out = append(out, *cb)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCent != out[j].TotalCent {
			return out[i].TotalCent > out[j].TotalCent
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// DayTotal is spending on one calendar day.
type DayTotal struct {
	Date      string `json:"date"` // YYYY-MM-DD
	TotalCent int64  `json:"total_cent"`
	Count     int    `json:"count"`
}

// GroupByDay buckets expenses per calendar day, sorted by date ascending.
func GroupByDay(expenses []models.Expense) []DayTotal {
	byDay := make(map[string]*DayTotal)
	for i := range expenses {
		e := &expenses[i]
		key := e.Date.Format("2006-01-02")
		dt, ok := byDay[key]
		if !ok {
			dt = &DayTotal{Date: key}
			byDay[key] = dt
		}
		dt.TotalCent += e.AmountCent
		dt.Count++
	}

	out := make([]DayTotal, 0, len(byDay))
	for _, dt := range byDay {
		out = append(out, *dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// WeekTotal is spending in one ISO week.
type WeekTotal struct {
	Year      int   `json:"year"` // ISO week-year, may differ at month edges
	Week      int   `json:"week"`
	TotalCent int64 `json:"total_cent"`
	Count     int   `json:"count"`
}

// GroupByISOWeek buckets expenses per ISO week, sorted chronologically.
func GroupByISOWeek(expenses []models.Expense) []WeekTotal {
	type key struct{ year, week int }
	byWeek := make(map[key]*WeekTotal)
	for i := range expenses {
		e := &expenses[i]
		y, w := e.Date.ISOWeek()
		k := key{y, w}
		wt, ok := byWeek[k]
		if !ok {
			wt = &WeekTotal{Year: y, Week: w}
			byWeek[k] = wt
		}
		wt.TotalCent += e.AmountCent
		wt.Count++
	}

	out := make([]WeekTotal, 0, len(byWeek))
	for _, wt := range byWeek {
		out = append(out, *wt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Week < out[j].Week
	})
	return out
}

// MonthTotal is spending in one calendar month of a year window.
type MonthTotal struct {
	Month     int   `json:"month"` // 1-12
	TotalCent int64 `json:"total_cent"`
	Count     int   `json:"count"`
}

// GroupByMonth buckets a year's expenses into twelve slots. Months with no
// spending stay zero-valued so the breakdown is stable for charting.
func GroupByMonth(expenses []models.Expense) []MonthTotal {
	out := make([]MonthTotal, 12)
	for i := range out {
		out[i].Month = i + 1
	}
	for i := range expenses {
		e := &expenses[i]
		m := int(e.Date.Month()) - 1
		out[m].TotalCent += e.AmountCent
		out[m].Count++
	}
	return out
}

// DaysInMonth returns the number of days in the given calendar month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

// MonthWindow describes the month being aggregated relative to now.
type MonthWindow struct {
	Year  int
	Month time.Month
	Now   time.Time
}

// Current reports whether the window is the in-progress month.
func (w MonthWindow) Current() bool {
	return w.Now.Year() == w.Year && w.Now.Month() == w.Month
}

// Days returns the divisor for average-per-day: days elapsed so far for the
// current month, the full month length otherwise.
func (w MonthWindow) Days() int {
	if w.Current() {
		return w.Now.Day()
	}
	return DaysInMonth(w.Year, w.Month)
}

// MonthsElapsed returns the divisor for average-per-month: months elapsed so
// far for the in-progress year, 12 otherwise. Mirrors MonthWindow.Days.
func MonthsElapsed(year int, now time.Time) int {
	if year == now.Year() {
		return int(now.Month())
	}
	return 12
}

// AveragePerDay divides a total by the window's day count, zero-safe.
func AveragePerDay(totalCent int64, days int) int64 {
	if days <= 0 {
		return 0
	}
	return totalCent / int64(days)
}

// MonthOverMonthChange returns the percentage change between two totals,
// two decimals, defined as 0 when the previous total is 0.
func MonthOverMonthChange(currentCent, previousCent int64) float64 {
	if previousCent == 0 {
		return 0
	}
	return util.Round2(float64(currentCent-previousCent) / float64(previousCent) * 100)
}

// TopExpenses returns the n largest expenses by amount, descending.
// The input slice is not modified.
func TopExpenses(expenses []models.Expense, n int) []models.Expense {
	sorted := make([]models.Expense, len(expenses))
	copy(sorted, expenses)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AmountCent > sorted[j].AmountCent })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
