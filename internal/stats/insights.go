package stats

import (
	"fmt"

	"expense-ledger/internal/models"
	"expense-ledger/internal/util"
)

// Insight levels, in increasing severity.
const (
	LevelInfo    = "info"
	LevelCaution = "caution"
	LevelWarning = "warning"
)

// Insight is a derived, human-readable observation about spending behavior.
type Insight struct {
	Type    string  `json:"type"`
	Level   string  `json:"level"`
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Value   float64 `json:"value"`
}

// InsightInput carries the aggregated figures the rules are evaluated over.
type InsightInput struct {
	TotalCent         int64
	DailyAverageCent  int64
	Categories        []CategoryBreakdown // sorted by descending total
	PreviousTotalCent int64
	DaysInPeriod      int
	CurrentDay        int
	CurrentPeriod     bool // window is the in-progress month
	TopExpenses       []models.Expense
}

// GenerateInsights evaluates each rule independently in a fixed order and
// returns the ones that triggered. No spending means no insights.
func GenerateInsights(in InsightInput) []Insight {
	var out []Insight
	if in.TotalCent == 0 {
		return out
	}

	// 1. month-over-month trend
	change := MonthOverMonthChange(in.TotalCent, in.PreviousTotalCent)
	if abs := absFloat(change); abs > 10 {
		level := LevelInfo
		if abs > 25 {
			level = LevelWarning
		}
		direction := "up"
		if change < 0 {
			direction = "down"
		}
		out = append(out, Insight{
			Type:    "trend",
			Level:   level,
			Title:   "Spending trend",
			Message: fmt.Sprintf("Your spending is %s %.2f%% compared to the previous month", direction, absFloat(change)),
			Value:   change,
		})
	}

	// 2. largest category
	if len(in.Categories) > 0 {
		top := in.Categories[0]
		level := LevelInfo
		if top.Percentage > 40 {
			level = LevelWarning
		}
		out = append(out, Insight{
			Type:    "top_category",
			Level:   level,
			Title:   "Top spending category",
			Message: fmt.Sprintf("%s is your largest category at $%s (%.2f%% of total spending)", top.Category, util.FormatCents(top.TotalCent), top.Percentage),
			Value:   top.Percentage,
		})
	}

	// 3. full-period projection, only while the period is still running
	if in.CurrentPeriod && in.DaysInPeriod > 0 {
		projected := in.DailyAverageCent * int64(in.DaysInPeriod)
		out = append(out, Insight{
			Type:    "projection",
			Level:   LevelInfo,
			Title:   "Projected monthly spending",
			Message: fmt.Sprintf("At the current rate you are projected to spend $%s this month", util.FormatCents(projected)),
			Value:   util.FromCents(projected),
		})
	}

	// 4. large single expense
	if len(in.TopExpenses) > 0 {
		largest := in.TopExpenses[0]
		share := util.Percentage(largest.AmountCent, in.TotalCent)
		if share > 15 {
			level := LevelCaution
			if share > 25 {
				level = LevelWarning
			}
			out = append(out, Insight{
				Type:    "large_expense",
				Level:   level,
				Title:   "Large single expense",
				Message: fmt.Sprintf("\"%s\" ($%s) accounts for %.2f%% of this period's spending", largest.Description, util.FormatCents(largest.AmountCent), share),
				Value:   share,
			})
		}
	}

	// 5. concentration across the top three categories
	if len(in.Categories) >= 3 {
		var top3 int64
		for _, cb := range in.Categories[:3] {
			top3 += cb.TotalCent
		}
		share := util.Percentage(top3, in.TotalCent)
		if share > 80 {
			out = append(out, Insight{
				Type:    "concentration",
				Level:   LevelInfo,
				Title:   "Spending concentration",
				Message: fmt.Sprintf("Your top 3 categories make up %.2f%% of total spending", share),
				Value:   share,
			})
		}
	}

	return out
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
