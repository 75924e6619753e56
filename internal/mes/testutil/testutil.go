package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/bitfantasy/nimo-mes/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "nimo-mes-test-jwt-secret"

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// SetupTestDB creates an isolated sqlite database in a temp directory.
// The file is removed automatically when the test finishes.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mes_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, username, name, role string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      userID,
		"uid":      userID,
		"username": username,
		"name":     name,
		"role":     role,
		"iss":      "nimo-mes",
		"iat":      now.Unix(),
		"exp":      now.Add(24 * time.Hour).Unix(),
		"jti":      fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for a default test user
func DefaultTestToken() string {
	return GenerateTestToken("test-user-001", "tester", "Test User", "manager")
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedPersonnel creates a personnel row with the given role
func SeedPersonnel(t *testing.T, db *gorm.DB, name, employeeID, role string) *entity.Personnel {
	t.Helper()
	person := &entity.Personnel{
		ID:         service.NewID(),
		Name:       name,
		EmployeeID: employeeID,
		Role:       role,
		QRToken:    service.NewToken(),
	}
	if err := db.Create(person).Error; err != nil {
		t.Fatalf("Failed to seed personnel: %v", err)
	}
	return person
}

// SeedManager creates a manager for work order authorization
func SeedManager(t *testing.T, db *gorm.DB) *entity.Personnel {
	t.Helper()
	return SeedPersonnel(t, db, "Manager Zhang", "MGR001", entity.RoleManager)
}

// SeedOperator creates an operator for progress reporting
func SeedOperator(t *testing.T, db *gorm.DB) *entity.Personnel {
	t.Helper()
	return SeedPersonnel(t, db, "Operator Li", "OP001", entity.RoleOperator)
}

// SeedQA creates a qa inspector
func SeedQA(t *testing.T, db *gorm.DB) *entity.Personnel {
	t.Helper()
	return SeedPersonnel(t, db, "Inspector Wang", "QA001", entity.RoleQA)
}

// SeedMaterial creates a material batch
func SeedMaterial(t *testing.T, db *gorm.DB, name, batchCode string, stockQty int) *entity.Material {
	t.Helper()
	material := &entity.Material{
		ID:               service.NewID(),
		Name:             name,
		BatchCode:        batchCode,
		Supplier:         "Test Supplier",
		InspectionResult: "pass",
		StockQty:         stockQty,
		QRToken:          service.NewToken(),
	}
	if err := db.Create(material).Error; err != nil {
		t.Fatalf("Failed to seed material: %v", err)
	}
	return material
}
