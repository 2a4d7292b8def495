package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"expense-ledger/internal/models"
	"expense-ledger/internal/stats"
	"expense-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BudgetHandler serves budget upsert, listing and the dashboard.
type BudgetHandler struct {
	DB *gorm.DB
}

func NewBudgetHandler(db *gorm.DB) *BudgetHandler {
	return &BudgetHandler{DB: db}
}

type budgetReq struct {
	Category string  `json:"category" binding:"required"`
	Amount   float64 `json:"amount" binding:"required"`
	Month    int     `json:"month" binding:"required"`
	Year     int     `json:"year" binding:"required"`
	Notes    string  `json:"notes"`
	Active   *bool   `json:"active"`
}

type budgetResp struct {
	ID         uint      `json:"id"`
	Category   string    `json:"category"`
	AmountCent int64     `json:"amount_cent"`
	Amount     string    `json:"amount"`
	Month      int       `json:"month"`
	Year       int       `json:"year"`
	Active     bool      `json:"active"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toBudgetResp(b *models.Budget) budgetResp {
	return budgetResp{
		ID:         b.ID,
		Category:   b.Category,
		AmountCent: b.AmountCent,
		Amount:     util.FormatCents(b.AmountCent),
		Month:      b.Month,
		Year:       b.Year,
		Active:     b.Active,
		Notes:      b.Notes,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// UpsertBudget creates the budget for (category, month, year) or updates the
// existing one. The composite unique index backstops concurrent duplicate
// creates; losing that race surfaces as the conflict error below.
func (h *BudgetHandler) UpsertBudget(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req budgetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := util.ValidateBudget(req.Category, req.Amount, req.Month, req.Year, req.Notes); len(errs) > 0 {
		util.ValidationError(c, errs)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	var budget models.Budget
	err := h.DB.Where("user_id = ? AND category = ? AND month = ? AND year = ?",
		user.ID, req.Category, req.Month, req.Year).
		First(&budget).Error

	switch {
	case err == nil:
		budget.AmountCent = util.ToCents(req.Amount)
		budget.Notes = req.Notes
		budget.Active = active
		if err := h.DB.Save(&budget).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, "failed to save budget")
			return
		}
		util.SuccessMessage(c, "budget updated", util.Response{"budget": toBudgetResp(&budget)})

	case err == gorm.ErrRecordNotFound:
		budget = models.Budget{
			UserID:     user.ID,
			Category:   req.Category,
			AmountCent: util.ToCents(req.Amount),
			Month:      req.Month,
			Year:       req.Year,
			Active:     active,
			Notes:      req.Notes,
		}
		if err := h.DB.Create(&budget).Error; err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint") {
				util.Error(c, http.StatusBadRequest, "a budget for this category and period already exists")
				return
			}
			util.Error(c, http.StatusInternalServerError, "failed to save budget")
			return
		}
		util.SuccessMessage(c, "budget created", util.Response{"budget": toBudgetResp(&budget)})

	default:
		util.Error(c, http.StatusInternalServerError, "failed to query budget")
	}
}

// spentCent sums the user's expenses for one category in one month.
// The window is UTC, matching how request dates are parsed.
func (h *BudgetHandler) spentCent(userID uint, category string, month, year int) (int64, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var spent int64
	err := h.DB.Model(&models.Expense{}).
		Where("user_id = ? AND category = ? AND date >= ? AND date < ?", userID, category, start, end).
		Select("COALESCE(SUM(amount_cent), 0)").
		Scan(&spent).Error
	return spent, err
}

// periodBudgets loads the caller's budgets for one period.
func (h *BudgetHandler) periodBudgets(c *gin.Context, userID uint, activeOnly bool) ([]models.Budget, int, time.Month, bool) {
	year, month, ok := parseMonthYear(c, time.Now())
	if !ok {
		return nil, 0, 0, false
	}

	q := h.DB.Where("user_id = ? AND month = ? AND year = ?", userID, int(month), year)
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var budgets []models.Budget
	if err := q.Order("category ASC").Find(&budgets).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to query budgets")
		return nil, 0, 0, false
	}
	return budgets, year, month, true
}

func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	budgets, year, month, ok := h.periodBudgets(c, user.ID, false)
	if !ok {
		return
	}

	items := make([]gin.H, 0, len(budgets))
	comparisons := make([]stats.Comparison, 0, len(budgets))
	for i := range budgets {
		b := &budgets[i]
		spent, err := h.spentCent(user.ID, b.Category, b.Month, b.Year)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, "failed to query expenses")
			return
		}
		cmp := stats.Compare(b.AmountCent, spent)
		comparisons = append(comparisons, cmp)
		items = append(items, gin.H{
			"budget":          toBudgetResp(b),
			"spent_cent":      cmp.SpentCent,
			"spent":           util.FormatCents(cmp.SpentCent),
			"remaining_cent":  cmp.RemainingCent,
			"remaining":       util.FormatCents(cmp.RemainingCent),
			"percentage_used": cmp.PercentUsed,
			"status":          cmp.Status,
		})
	}

	summary := stats.SummarizeComparisons(comparisons)

	util.Success(c, util.Response{
		"year":    year,
		"month":   int(month),
		"budgets": items,
		"summary": gin.H{
			"total_budget_cent": summary.TotalBudgetCent,
			"total_budget":      util.FormatCents(summary.TotalBudgetCent),
			"total_spent_cent":  summary.TotalSpentCent,
			"total_spent":       util.FormatCents(summary.TotalSpentCent),
			"exceeded_count":    summary.ExceededCount,
			"warning_count":     summary.WarningCount,
		},
	})
}

// Dashboard returns the visual variant: active budgets only, with a display
// color and a progress width capped at 100.
func (h *BudgetHandler) Dashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	budgets, year, month, ok := h.periodBudgets(c, user.ID, true)
	if !ok {
		return
	}

	items := make([]gin.H, 0, len(budgets))
	comparisons := make([]stats.Comparison, 0, len(budgets))
	for i := range budgets {
		b := &budgets[i]
		spent, err := h.spentCent(user.ID, b.Category, b.Month, b.Year)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, "failed to query expenses")
			return
		}
		cmp := stats.Compare(b.AmountCent, spent)
		comparisons = append(comparisons, cmp)
		ds := stats.DashboardFor(cmp.PercentUsed)
		items = append(items, gin.H{
			"category":        b.Category,
			"budget_cent":     b.AmountCent,
			"budget":          util.FormatCents(b.AmountCent),
			"spent_cent":      cmp.SpentCent,
			"spent":           util.FormatCents(cmp.SpentCent),
			"remaining_cent":  cmp.RemainingCent,
			"remaining":       util.FormatCents(cmp.RemainingCent),
			"percentage_used": cmp.PercentUsed,
			"status":          ds.Level,
			"color":           ds.Color,
			"progress":        ds.Progress,
		})
	}

	summary := stats.SummarizeComparisons(comparisons)

	util.Success(c, util.Response{
		"year":    year,
		"month":   int(month),
		"budgets": items,
		"summary": gin.H{
			"total_budget_cent": summary.TotalBudgetCent,
			"total_budget":      util.FormatCents(summary.TotalBudgetCent),
			"total_spent_cent":  summary.TotalSpentCent,
			"total_spent":       util.FormatCents(summary.TotalSpentCent),
			"exceeded_count":    summary.ExceededCount,
			"warning_count":     summary.WarningCount,
		},
	})
}

func (h *BudgetHandler) GetBudget(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "invalid id")
		return
	}

	var budget models.Budget
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&budget).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "budget not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "failed to query budget")
		}
		return
	}

	spent, err := h.spentCent(user.ID, budget.Category, budget.Month, budget.Year)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to query expenses")
		return
	}
	cmp := stats.Compare(budget.AmountCent, spent)

	util.Success(c, util.Response{
		"budget":          toBudgetResp(&budget),
		"spent_cent":      cmp.SpentCent,
		"spent":           util.FormatCents(cmp.SpentCent),
		"remaining_cent":  cmp.RemainingCent,
		"remaining":       util.FormatCents(cmp.RemainingCent),
		"percentage_used": cmp.PercentUsed,
		"status":          cmp.Status,
	})
}

func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "invalid id")
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Budget{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, "failed to delete budget")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, "budget not found")
		return
	}

	util.SuccessMessage(c, "budget deleted", nil)
}
