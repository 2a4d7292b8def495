package handler

import (
	"net/http"
	"testing"
	"time"

	"expense-ledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertBudget(t *testing.T) {
	db, user, r := setupTest(t)

	code, env := doJSON(t, r, http.MethodPost, "/api/budgets", map[string]interface{}{
		"category": "dining",
		"amount":   80.0,
		"month":    5,
		"year":     2024,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "budget created", env["message"])

	// same (category, month, year) tuple updates in place
	code, env = doJSON(t, r, http.MethodPost, "/api/budgets", map[string]interface{}{
		"category": "dining",
		"amount":   120.0,
		"month":    5,
		"year":     2024,
		"notes":    "raised after vacation",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "budget updated", env["message"])

	var budgets []models.Budget
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&budgets).Error)
	require.Len(t, budgets, 1)
	assert.Equal(t, int64(12000), budgets[0].AmountCent)
	assert.Equal(t, "raised after vacation", budgets[0].Notes)

	// a different month is a separate budget
	code, _ = doJSON(t, r, http.MethodPost, "/api/budgets", map[string]interface{}{
		"category": "dining",
		"amount":   80.0,
		"month":    6,
		"year":     2024,
	})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&budgets).Error)
	assert.Len(t, budgets, 2)
}

func TestUpsertBudgetValidation(t *testing.T) {
	_, _, r := setupTest(t)

	code, env := doJSON(t, r, http.MethodPost, "/api/budgets", map[string]interface{}{
		"category": "snacks",
		"amount":   -5.0,
		"month":    13,
		"year":     1999,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, env["success"])
	assert.Len(t, env["errors"].([]interface{}), 4)
}

func TestListBudgetsWithComparison(t *testing.T) {
	db, user, r := setupTest(t)

	// $20 + $30 + $50 dining in May 2024 against an $80 dining budget
	may := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	seedExpense(t, db, user.ID, 2000, "dining", "a", may)
	seedExpense(t, db, user.ID, 3000, "dining", "b", may.AddDate(0, 0, 10))
	seedExpense(t, db, user.ID, 5000, "dining", "c", may.AddDate(0, 0, 20))
	// outside the period, must not count
	seedExpense(t, db, user.ID, 9900, "dining", "june", may.AddDate(0, 1, 2))

	require.NoError(t, db.Create(&models.Budget{
		UserID: user.ID, Category: "dining", AmountCent: 8000, Month: 5, Year: 2024, Active: true,
	}).Error)

	code, env := doJSON(t, r, http.MethodGet, "/api/budgets?month=5&year=2024", nil)
	require.Equal(t, http.StatusOK, code)

	d := data(t, env)
	budgets := d["budgets"].([]interface{})
	require.Len(t, budgets, 1)

	row := budgets[0].(map[string]interface{})
	assert.Equal(t, "100.00", row["spent"])
	assert.Equal(t, "-20.00", row["remaining"])
	assert.Equal(t, float64(125), row["percentage_used"])
	assert.Equal(t, "exceeded", row["status"])

	summary := d["summary"].(map[string]interface{})
	assert.Equal(t, "80.00", summary["total_budget"])
	assert.Equal(t, "100.00", summary["total_spent"])
	assert.Equal(t, float64(1), summary["exceeded_count"])
	assert.Equal(t, float64(0), summary["warning_count"])
}

func TestDashboard(t *testing.T) {
	db, user, r := setupTest(t)

	may := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	seedExpense(t, db, user.ID, 10000, "dining", "a", may)
	seedExpense(t, db, user.ID, 4500, "groceries", "b", may)

	require.NoError(t, db.Create(&models.Budget{
		UserID: user.ID, Category: "dining", AmountCent: 8000, Month: 5, Year: 2024, Active: true,
	}).Error)
	require.NoError(t, db.Create(&models.Budget{
		UserID: user.ID, Category: "groceries", AmountCent: 10000, Month: 5, Year: 2024, Active: true,
	}).Error)
	// inactive budgets never show up on the dashboard
	require.NoError(t, db.Create(&models.Budget{
		UserID: user.ID, Category: "travel", AmountCent: 5000, Month: 5, Year: 2024, Active: false,
	}).Error)

	code, env := doJSON(t, r, http.MethodGet, "/api/budgets/dashboard?month=5&year=2024", nil)
	require.Equal(t, http.StatusOK, code)

	d := data(t, env)
	budgets := d["budgets"].([]interface{})
	require.Len(t, budgets, 2)

	dining := budgets[0].(map[string]interface{})
	assert.Equal(t, "dining", dining["category"])
	assert.Equal(t, "danger", dining["status"])
	assert.Equal(t, float64(100), dining["progress"]) // capped
	assert.NotEmpty(t, dining["color"])

	groceries := budgets[1].(map[string]interface{})
	assert.Equal(t, "success", groceries["status"])
	assert.Equal(t, float64(45), groceries["progress"])
}

func TestCreateInactiveBudget(t *testing.T) {
	db, user, r := setupTest(t)

	code, _ := doJSON(t, r, http.MethodPost, "/api/budgets", map[string]interface{}{
		"category": "travel",
		"amount":   50.0,
		"month":    5,
		"year":     2024,
		"active":   false,
	})
	require.Equal(t, http.StatusOK, code)

	var budget models.Budget
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&budget).Error)
	assert.False(t, budget.Active)

	// disabled on create, so the dashboard must not pick it up
	code, env := doJSON(t, r, http.MethodGet, "/api/budgets/dashboard?month=5&year=2024", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, data(t, env)["budgets"].([]interface{}))

	// the plain listing still shows it
	code, env = doJSON(t, r, http.MethodGet, "/api/budgets?month=5&year=2024", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, data(t, env)["budgets"].([]interface{}), 1)
}

func TestFirstOfMonthExpenseCountsTowardBudget(t *testing.T) {
	_, _, r := setupTest(t)

	code, _ := doJSON(t, r, http.MethodPost, "/api/expenses", map[string]interface{}{
		"description": "rent",
		"amount":      100.0,
		"category":    "housing",
		"date":        "2024-05-01",
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, r, http.MethodPost, "/api/budgets", map[string]interface{}{
		"category": "housing",
		"amount":   100.0,
		"month":    5,
		"year":     2024,
	})
	require.Equal(t, http.StatusOK, code)

	code, env := doJSON(t, r, http.MethodGet, "/api/budgets?month=5&year=2024", nil)
	require.Equal(t, http.StatusOK, code)

	budgets := data(t, env)["budgets"].([]interface{})
	require.Len(t, budgets, 1)
	row := budgets[0].(map[string]interface{})
	assert.Equal(t, "100.00", row["spent"])
	assert.Equal(t, float64(100), row["percentage_used"])
	assert.Equal(t, "exceeded", row["status"])
}

func TestGetAndDeleteBudget(t *testing.T) {
	db, user, r := setupTest(t)

	budget := &models.Budget{
		UserID: user.ID, Category: "travel", AmountCent: 30000, Month: 7, Year: 2024, Active: true,
	}
	require.NoError(t, db.Create(budget).Error)

	code, env := doJSON(t, r, http.MethodGet, "/api/budgets/"+itoa(budget.ID), nil)
	require.Equal(t, http.StatusOK, code)
	d := data(t, env)
	assert.Equal(t, "within_budget", d["status"])
	assert.Equal(t, "300.00", d["remaining"])

	code, _ = doJSON(t, r, http.MethodDelete, "/api/budgets/"+itoa(budget.ID), nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, r, http.MethodGet, "/api/budgets/"+itoa(budget.ID), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestBudgetOwnership(t *testing.T) {
	db, _, r := setupTest(t)

	other := &models.User{Username: "someone_else", PasswordHash: "x"}
	require.NoError(t, db.Create(other).Error)
	budget := &models.Budget{
		UserID: other.ID, Category: "travel", AmountCent: 30000, Month: 7, Year: 2024, Active: true,
	}
	require.NoError(t, db.Create(budget).Error)

	code, _ := doJSON(t, r, http.MethodGet, "/api/budgets/"+itoa(budget.ID), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = doJSON(t, r, http.MethodDelete, "/api/budgets/"+itoa(budget.ID), nil)
	assert.Equal(t, http.StatusNotFound, code)
}
