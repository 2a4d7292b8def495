package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"expense-ledger/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

// setupAuthTest wires the real auth middleware so the login/logout session
// lifecycle is exercised end to end.
func setupAuthTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testDB(t)

	r := gin.New()
	// low bcrypt cost keeps the test fast
	authHandler := NewAuthHandler(db, testJWTSecret, 1, 4)
	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	protected := r.Group("", middleware.AuthMiddleware(testJWTSecret, db))
	protected.POST("/api/auth/logout", authHandler.Logout)
	protected.GET("/api/me", GetMe)

	return r
}

func doAuthed(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (int, map[string]interface{}) {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), "body: %s", w.Body.String())
	return w.Code, envelope
}

func register(t *testing.T, r *gin.Engine, username, password string) {
	t.Helper()
	code, _ := doAuthed(t, r, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"username":         username,
		"password":         password,
		"confirm_password": password,
	})
	require.Equal(t, http.StatusOK, code)
}

func login(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	code, env := doAuthed(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, code)
	token, ok := data(t, env)["token"].(string)
	require.True(t, ok)
	return token
}

func TestRegisterLoginMe(t *testing.T) {
	r := setupAuthTest(t)

	register(t, r, "alex_42", "Sup3rSecret")
	token := login(t, r, "alex_42", "Sup3rSecret")

	code, env := doAuthed(t, r, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	user := data(t, env)["user"].(map[string]interface{})
	assert.Equal(t, "alex_42", user["username"])
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	r := setupAuthTest(t)

	// weak password
	code, _ := doAuthed(t, r, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"username":         "alex_42",
		"password":         "short",
		"confirm_password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	// bad username
	code, _ = doAuthed(t, r, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"username":         "a!",
		"password":         "Sup3rSecret",
		"confirm_password": "Sup3rSecret",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDuplicateUsername(t *testing.T) {
	r := setupAuthTest(t)

	register(t, r, "alex_42", "Sup3rSecret")

	// case-insensitive clash
	code, env := doAuthed(t, r, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"username":         "ALEX_42",
		"password":         "Sup3rSecret",
		"confirm_password": "Sup3rSecret",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, env["success"])
}

func TestWrongPassword(t *testing.T) {
	r := setupAuthTest(t)

	register(t, r, "alex_42", "Sup3rSecret")

	code, _ := doAuthed(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"username": "alex_42",
		"password": "WrongPass1",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLogoutRevokesSession(t *testing.T) {
	r := setupAuthTest(t)

	register(t, r, "alex_42", "Sup3rSecret")
	token := login(t, r, "alex_42", "Sup3rSecret")

	code, _ := doAuthed(t, r, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	// the token is dead now even though the JWT itself has not expired
	code, _ = doAuthed(t, r, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	// a fresh login issues a working session again
	token = login(t, r, "alex_42", "Sup3rSecret")
	code, _ = doAuthed(t, r, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestMissingToken(t *testing.T) {
	r := setupAuthTest(t)

	code, _ := doAuthed(t, r, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = doAuthed(t, r, http.MethodGet, "/api/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
