package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"expense-ledger/internal/database"
	"expense-ledger/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a throwaway in-memory database. The DSN is named per test so
// pooled connections share one store without leaking across tests.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// setupTest wires the expense/budget routes behind a stub auth middleware
// that injects the given user.
func setupTest(t *testing.T) (*gorm.DB, *models.User, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testDB(t)

	user := &models.User{Username: "tester", PasswordHash: "irrelevant"}
	require.NoError(t, db.Create(user).Error)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("currentUser", user)
		c.Next()
	})

	expenseHandler := NewExpenseHandler(db, 20, 100)
	r.POST("/api/expenses", expenseHandler.CreateExpense)
	r.GET("/api/expenses", expenseHandler.ListExpenses)
	r.GET("/api/expenses/stats", expenseHandler.GetStats)
	r.GET("/api/expenses/summary/monthly", expenseHandler.MonthlySummary)
	r.GET("/api/expenses/summary/yearly", expenseHandler.YearlySummary)
	r.GET("/api/expenses/categories", expenseHandler.GetCategories)
	r.GET("/api/expenses/date-range", expenseHandler.GetDateRange)
	r.GET("/api/expenses/:id", expenseHandler.GetExpense)
	r.PUT("/api/expenses/:id", expenseHandler.UpdateExpense)
	r.DELETE("/api/expenses/:id", expenseHandler.DeleteExpense)

	budgetHandler := NewBudgetHandler(db)
	r.POST("/api/budgets", budgetHandler.UpsertBudget)
	r.GET("/api/budgets", budgetHandler.ListBudgets)
	r.GET("/api/budgets/dashboard", budgetHandler.Dashboard)
	r.GET("/api/budgets/:id", budgetHandler.GetBudget)
	r.DELETE("/api/budgets/:id", budgetHandler.DeleteBudget)

	return db, user, r
}

// doJSON performs a request and decodes the JSON envelope.
func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(b)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), "body: %s", w.Body.String())
	return w.Code, envelope
}

func data(t *testing.T, envelope map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok, "envelope has no data object: %v", envelope)
	return d
}

func itoa(id uint) string {
	return fmt.Sprintf("%d", id)
}

// seedExpense inserts a record directly, bypassing validation.
func seedExpense(t *testing.T, db *gorm.DB, userID uint, cents int64, category, description string, date time.Time) *models.Expense {
	t.Helper()
	e := &models.Expense{
		UserID:      userID,
		Description: description,
		AmountCent:  cents,
		Category:    category,
		Date:        date,
	}
	require.NoError(t, db.Create(e).Error)
	return e
}
