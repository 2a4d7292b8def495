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

// ExpenseHandler serves expense CRUD and the reporting endpoints.
type ExpenseHandler struct {
	DB          *gorm.DB
	PageSize    int
	MaxPageSize int
}

func NewExpenseHandler(db *gorm.DB, pageSize, maxPageSize int) *ExpenseHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &ExpenseHandler{DB: db, PageSize: pageSize, MaxPageSize: maxPageSize}
}

// ---------- request/response shapes ----------

type expenseReq struct {
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Date        string  `json:"date"`
}

type expenseResp struct {
	ID          uint      `json:"id"`
	Description string    `json:"description"`
	AmountCent  int64     `json:"amount_cent"`
	Amount      string    `json:"amount"` // two-decimal display string
	Category    string    `json:"category"`
	Date        string    `json:"date"` // YYYY-MM-DD
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toExpenseResp(e *models.Expense) expenseResp {
	return expenseResp{
		ID:          e.ID,
		Description: e.Description,
		AmountCent:  e.AmountCent,
		Amount:      util.FormatCents(e.AmountCent),
		Category:    e.Category,
		Date:        e.Date.Format("2006-01-02"),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// parseReqDate resolves the optional date field, defaulting to today.
func parseReqDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Now(), true
	}
	return util.ParseDate(s)
}

// ---------- create ----------

func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req expenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Description = strings.TrimSpace(req.Description)

	date, ok := parseReqDate(req.Date)
	if !ok {
		util.ValidationError(c, []util.FieldError{{Field: "date", Message: "date must be YYYY-MM-DD"}})
		return
	}

	if errs := util.ValidateExpense(req.Description, req.Amount, req.Category, date); len(errs) > 0 {
		util.ValidationError(c, errs)
		return
	}

	expense := models.Expense{
		UserID:      user.ID,
		Description: req.Description,
		AmountCent:  util.ToCents(req.Amount),
		Category:    req.Category,
		Date:        date,
	}

	if err := h.DB.Create(&expense).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to save expense")
		return
	}

	util.SuccessMessage(c, "expense created", util.Response{
		"expense": toExpenseResp(&expense),
	})
}

// ---------- list with filters and pagination ----------

type expenseFilter struct {
	category  string
	start     time.Time
	end       time.Time // exclusive
	hasStart  bool
	hasEnd    bool
	minCent   int64
	maxCent   int64
	hasMin    bool
	hasMax    bool
	search    string
	sortBy    string
	sortOrder string
}

// parseExpenseFilter reads the shared list/export query params. A false
// second return means an error response has already been written.
func parseExpenseFilter(c *gin.Context) (expenseFilter, bool) {
	var f expenseFilter

	f.category = c.Query("category")
	if f.category == "all" {
		f.category = ""
	}
	if f.category != "" && !models.ValidCategory(f.category) {
		util.Error(c, http.StatusBadRequest, "unknown category")
		return f, false
	}

	if s := c.Query("startDate"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return f, false
		}
		f.start = t
		f.hasStart = true
	}
	if s := c.Query("endDate"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
			return f, false
		}
		// inclusive range: strictly before end+1 day
		f.end = t.Add(24 * time.Hour)
		f.hasEnd = true
	}

	if s := c.Query("minAmount"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			util.Error(c, http.StatusBadRequest, "minAmount must be a non-negative number")
			return f, false
		}
		f.minCent = util.ToCents(v)
		f.hasMin = true
	}
	if s := c.Query("maxAmount"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			util.Error(c, http.StatusBadRequest, "maxAmount must be a non-negative number")
			return f, false
		}
		f.maxCent = util.ToCents(v)
		f.hasMax = true
	}

	f.search = strings.TrimSpace(c.Query("search"))

	f.sortBy = c.DefaultQuery("sortBy", "date")
	switch f.sortBy {
	case "date", "amount", "category", "description", "created_at":
	default:
		f.sortBy = "date"
	}
	f.sortOrder = c.DefaultQuery("sortOrder", "desc")
	if f.sortOrder != "asc" {
		f.sortOrder = "desc"
	}

	return f, true
}

// apply builds the filtered, user-scoped query.
func (f expenseFilter) apply(db *gorm.DB, userID uint) *gorm.DB {
	q := db.Model(&models.Expense{}).Where("user_id = ?", userID)
	if f.category != "" {
		q = q.Where("category = ?", f.category)
	}
	if f.hasStart {
		q = q.Where("date >= ?", f.start)
	}
	if f.hasEnd {
		q = q.Where("date < ?", f.end)
	}
	if f.hasMin {
		q = q.Where("amount_cent >= ?", f.minCent)
	}
	if f.hasMax {
		q = q.Where("amount_cent <= ?", f.maxCent)
	}
	if f.search != "" {
		q = q.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(f.search)+"%")
	}
	return q
}

// orderBy maps the whitelisted sort field onto a stable ORDER BY clause.
func (f expenseFilter) orderBy() string {
	col := map[string]string{
		"date":        "date",
		"amount":      "amount_cent",
		"category":    "category",
		"description": "description",
		"created_at":  "created_at",
	}[f.sortBy]
	dir := "DESC"
	if f.sortOrder == "asc" {
		dir = "ASC"
	}
	return col + " " + dir + ", id " + dir
}

func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filter, ok := parseExpenseFilter(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.PageSize)))
	if limit <= 0 || limit > h.MaxPageSize {
		limit = h.PageSize
	}
	offset := (page - 1) * limit

	base := filter.apply(h.DB, user.ID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to query expenses")
		return
	}

	var expenses []models.Expense
	if err := base.Session(&gorm.Session{}).
		Order(filter.orderBy()).
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to query expenses")
		return
	}

	items := make([]expenseResp, 0, len(expenses))
	for i := range expenses {
		items = append(items, toExpenseResp(&expenses[i]))
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	util.Success(c, util.Response{
		"expenses": items,
		"pagination": gin.H{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
			"has_next":    page < totalPages,
			"has_prev":    page > 1,
		},
	})
}

// ---------- single-record ops ----------

// findOwned loads one expense scoped to the requester; absent and not-owned
// are indistinguishable on purpose.
func (h *ExpenseHandler) findOwned(c *gin.Context, userID uint) (*models.Expense, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	var expense models.Expense
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "expense not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "failed to query expense")
		}
		return nil, false
	}
	return &expense, true
}

func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	expense, ok := h.findOwned(c, user.ID)
	if !ok {
		return
	}
	util.Success(c, util.Response{"expense": toExpenseResp(expense)})
}

func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req expenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Description = strings.TrimSpace(req.Description)

	date, ok := parseReqDate(req.Date)
	if !ok {
		util.ValidationError(c, []util.FieldError{{Field: "date", Message: "date must be YYYY-MM-DD"}})
		return
	}

	if errs := util.ValidateExpense(req.Description, req.Amount, req.Category, date); len(errs) > 0 {
		util.ValidationError(c, errs)
		return
	}

	expense, ok := h.findOwned(c, user.ID)
	if !ok {
		return
	}

	expense.Description = req.Description
	expense.AmountCent = util.ToCents(req.Amount)
	expense.Category = req.Category
	expense.Date = date

	if err := h.DB.Save(expense).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to save expense")
		return
	}

	util.SuccessMessage(c, "expense updated", util.Response{
		"expense": toExpenseResp(expense),
	})
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "invalid id")
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Expense{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, "failed to delete expense")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, "expense not found")
		return
	}

	util.SuccessMessage(c, "expense deleted", nil)
}

// ---------- stats over an optional date range ----------

func (h *ExpenseHandler) GetStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filter, ok := parseExpenseFilter(c)
	if !ok {
		return
	}

	var expenses []models.Expense
	if err := filter.apply(h.DB, user.ID).Find(&expenses).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to query expenses")
		return
	}

	summary := stats.Summarize(expenses)
	byCategory := stats.GroupByCategory(expenses)

	util.Success(c, util.Response{
		"overall": gin.H{
			"total_cent":   summary.TotalCent,
			"total":        util.FormatCents(summary.TotalCent),
			"count":        summary.Count,
			"average_cent": summary.AverageCent,
			"average":      util.FormatCents(summary.AverageCent),
		},
		"by_category": categoryRows(byCategory),
	})
}

// categoryRows adds display strings to a category breakdown.
func categoryRows(breakdown []stats.CategoryBreakdown) []gin.H {
	rows := make([]gin.H, 0, len(breakdown))
	for _, cb := range breakdown {
		rows = append(rows, gin.H{
			"category":     cb.Category,
			"total_cent":   cb.TotalCent,
			"total":        util.FormatCents(cb.TotalCent),
			"count":        cb.Count,
			"average_cent": cb.AverageCent,
			"average":      util.FormatCents(cb.AverageCent),
			"percentage":   cb.Percentage,
		})
	}
	return rows
}

// ---------- monthly summary ----------

// monthExpenses loads one calendar month of expenses. The window is built in
// UTC because request dates are parsed as UTC midnight; mixing locations here
// would drop first-of-month rows in zones west of UTC.
func (h *ExpenseHandler) monthExpenses(userID uint, year int, month time.Month) ([]models.Expense, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var expenses []models.Expense
	err := h.DB.Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Order("date ASC").
		Find(&expenses).Error
	return expenses, err
}

// parseMonthYear reads ?month and ?year, defaulting to the current month.
func parseMonthYear(c *gin.Context, now time.Time) (int, time.Month, bool) {
	year := now.Year()
	month := int(now.Month())

	if s := c.Query("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 2000 || y > 2100 {
			util.Error(c, http.StatusBadRequest, "year must be between 2000 and 2100")
			return 0, 0, false
		}
		year = y
	}
	if s := c.Query("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > 12 {
			util.Error(c, http.StatusBadRequest, "month must be between 1 and 12")
			return 0, 0, false
		}
		month = m
	}
	return year, time.Month(month), true
}

func (h *ExpenseHandler) MonthlySummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	now := time.Now()
	year, month, ok := parseMonthYear(c, now)
	if !ok {
		return
	}

	expenses, err := h.monthExpenses(user.ID, year, month)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to query expenses")
		return
	}

	// previous month total, for the trend comparison
	prevStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	prevExpenses, err := h.monthExpenses(user.ID, prevStart.Year(), prevStart.Month())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to query expenses")
		return
	}
	prevTotal := stats.Summarize(prevExpenses).TotalCent

	summary := stats.Summarize(expenses)
	byCategory := stats.GroupByCategory(expenses)
	window := stats.MonthWindow{Year: year, Month: month, Now: now}
	days := window.Days()
	avgPerDay := stats.AveragePerDay(summary.TotalCent, days)
	top := stats.TopExpenses(expenses, 5)

	insights := stats.GenerateInsights(stats.InsightInput{
		TotalCent:         summary.TotalCent,
		DailyAverageCent:  avgPerDay,
		Categories:        byCategory,
		PreviousTotalCent: prevTotal,
		DaysInPeriod:      stats.DaysInMonth(year, month),
		CurrentDay:        now.Day(),
		CurrentPeriod:     window.Current(),
		TopExpenses:       top,
	})

	topItems := make([]expenseResp, 0, len(top))
	for i := range top {
		topItems = append(topItems, toExpenseResp(&top[i]))
	}

	util.Success(c, util.Response{
		"year":  year,
		"month": int(month),
		"summary": gin.H{
			"total_cent":           summary.TotalCent,
			"total":                util.FormatCents(summary.TotalCent),
			"count":                summary.Count,
			"average_cent":         summary.AverageCent,
			"average":              util.FormatCents(summary.AverageCent),
			"average_per_day":      util.FormatCents(avgPerDay),
			"days":                 days,
			"previous_total":       util.FormatCents(prevTotal),
			"change_from_previous": stats.MonthOverMonthChange(summary.TotalCent, prevTotal),
		},
		"by_category":  categoryRows(byCategory),
		"daily":        stats.GroupByDay(expenses),
		"weekly":       stats.GroupByISOWeek(expenses),
		"top_expenses": topItems,
		"insights":     insights,
	})
}

// ---------- yearly summary ----------

func (h *ExpenseHandler) YearlySummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	year := time.Now().Year()
	if s := c.Query("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 2000 || y > 2100 {
			util.Error(c, http.StatusBadRequest, "year must be between 2000 and 2100")
			return
		}
		year = y
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var expenses []models.Expense
	if err := h.DB.Where("user_id = ? AND date >= ? AND date < ?", user.ID, start, end).
		Find(&expenses).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to query expenses")
		return
	}

	summary := stats.Summarize(expenses)
	byMonth := stats.GroupByMonth(expenses)
	months := stats.MonthsElapsed(year, time.Now().UTC())

	monthly := make([]gin.H, 0, len(byMonth))
	for _, mt := range byMonth {
		monthly = append(monthly, gin.H{
			"month":      mt.Month,
			"total_cent": mt.TotalCent,
			"total":      util.FormatCents(mt.TotalCent),
			"count":      mt.Count,
		})
	}

	util.Success(c, util.Response{
		"year": year,
		"summary": gin.H{
			"total_cent":        summary.TotalCent,
			"total":             util.FormatCents(summary.TotalCent),
			"count":             summary.Count,
			"months":            months,
			"average_per_month": util.FormatCents(summary.TotalCent / int64(months)),
		},
		"monthly":     monthly,
		"by_category": categoryRows(stats.GroupByCategory(expenses)),
	})
}

// ---------- categories and date range ----------

func (h *ExpenseHandler) GetCategories(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var used []string
	if err := h.DB.Model(&models.Expense{}).
		Where("user_id = ?", user.ID).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &used).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to query categories")
		return
	}

	util.Success(c, util.Response{
		"categories": models.Categories(),
		"used":       used,
	})
}

func (h *ExpenseHandler) GetDateRange(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var earliest, latest models.Expense
	err := h.DB.Where("user_id = ?", user.ID).Order("date ASC, id ASC").First(&earliest).Error
	if err == gorm.ErrRecordNotFound {
		util.Success(c, util.Response{"earliest": nil, "latest": nil})
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to query date range")
		return
	}
	if err := h.DB.Where("user_id = ?", user.ID).Order("date DESC, id DESC").First(&latest).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to query date range")
		return
	}

	util.Success(c, util.Response{
		"earliest": earliest.Date.Format("2006-01-02"),
		"latest":   latest.Date.Format("2006-01-02"),
	})
}
