package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/testutil"
)

func setupAuthTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	h := newTestHandlers(t, db)

	router.POST("/api/v1/auth/register", h.Auth.Register)
	router.POST("/api/v1/auth/login", h.Auth.Login)
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/users", h.Auth.ListUsers)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupAuthTest(t)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/auth/register", map[string]interface{}{
		"username": "zhangsan",
		"name":     "张三",
		"password": "secret123",
		"role":     "manager",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	user := resp["data"].(map[string]interface{})
	if _, leaked := user["password_hash"]; leaked {
		t.Error("Password hash must not appear in responses")
	}

	// Duplicate username → 409
	w2 := testutil.DoRequest(env.Router, "POST", "/api/v1/auth/register", map[string]interface{}{
		"username": "zhangsan",
		"name":     "张三二号",
		"password": "whatever",
		"role":     "worker",
	}, "")
	if w2.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", w2.Code, w2.Body.String())
	}

	// Login with the right password
	w3 := testutil.DoRequest(env.Router, "POST", "/api/v1/auth/login", map[string]interface{}{
		"username": "zhangsan",
		"password": "secret123",
	}, "")
	if w3.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w3.Code, w3.Body.String())
	}
	resp3 := testutil.ParseResponse(w3)
	data := resp3["data"].(map[string]interface{})
	jwtToken, ok := data["token"].(string)
	if !ok || jwtToken == "" {
		t.Fatal("Expected a JWT token")
	}

	// Wrong password → 401
	w4 := testutil.DoRequest(env.Router, "POST", "/api/v1/auth/login", map[string]interface{}{
		"username": "zhangsan",
		"password": "wrong",
	}, "")
	if w4.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d: %s", w4.Code, w4.Body.String())
	}

	// Unknown user → 401, same message shape as wrong password
	w5 := testutil.DoRequest(env.Router, "POST", "/api/v1/auth/login", map[string]interface{}{
		"username": "nobody",
		"password": "whatever",
	}, "")
	if w5.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d: %s", w5.Code, w5.Body.String())
	}
}

func TestListUsersRequiresAuth(t *testing.T) {
	env := setupAuthTest(t)

	w := testutil.DoRequest(env.Router, "GET", "/api/v1/users", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d: %s", w.Code, w.Body.String())
	}

	w2 := testutil.DoRequest(env.Router, "GET", "/api/v1/users", nil, testutil.DefaultTestToken())
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
}
