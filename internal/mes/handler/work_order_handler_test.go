package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/bitfantasy/nimo-mes/internal/mes/testutil"
)

func setupWorkOrderTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	h := newTestHandlers(t, db)

	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/workorders", h.WorkOrder.Create)
	api.GET("/workorders", h.WorkOrder.List)
	api.GET("/workorders/:id", h.WorkOrder.Get)
	api.POST("/workorders/:id/progress", h.WorkOrder.RecordProgress)
	api.GET("/workorders/:id/progress", h.WorkOrder.ListProgress)
	api.POST("/workorders/:id/exceptions", h.WorkOrder.RaiseException)
	api.GET("/workorders/:id/exceptions", h.WorkOrder.ListExceptions)
	api.PUT("/workorders/:id/exceptions/:exc_id/resolve", h.WorkOrder.ResolveException)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func createWorkOrder(t *testing.T, env *testutil.TestEnv, token string, planQty int) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders", map[string]interface{}{
		"product_name":        "Smart Speaker A1",
		"material_batch":      "BATCH-2025-001",
		"plan_qty":            planQty,
		"line":                "L1",
		"manager_employee_id": "MGR001",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	return resp["data"].(map[string]interface{})
}

func TestWorkOrderCreateRequiresManager(t *testing.T) {
	env := setupWorkOrderTest(t)
	token := testutil.DefaultTestToken()

	// No manager seeded: authorization must fail before anything is written
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders", map[string]interface{}{
		"product_name":        "Smart Speaker A1",
		"plan_qty":            10,
		"manager_employee_id": "MGR001",
	}, token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d: %s", w.Code, w.Body.String())
	}

	// Missing employee id entirely
	w2 := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders", map[string]interface{}{
		"product_name": "Smart Speaker A1",
		"plan_qty":     10,
	}, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w2.Code, w2.Body.String())
	}

	var count int64
	env.DB.Model(&entity.WorkOrder{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no work orders, got %d", count)
	}
}

func TestWorkOrderCreateDefaults(t *testing.T) {
	env := setupWorkOrderTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedManager(t, env.DB)

	data := createWorkOrder(t, env, token, 10)

	if data["status"] != "pending" {
		t.Errorf("Expected status pending, got %v", data["status"])
	}
	if data["code"] == "" {
		t.Error("Expected a generated code")
	}
	if data["qr_token"] == "" {
		t.Error("Expected a production QR token")
	}
	if data["completion_qr_token"] != nil {
		t.Errorf("Expected no completion token at creation, got %v", data["completion_qr_token"])
	}
	if data["qr_image"] == "" {
		t.Error("Expected a rendered QR image")
	}

	// plan_qty must be present; an open-ended order passes an explicit 0
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders", map[string]interface{}{
		"product_name":        "Smart Speaker A1",
		"manager_employee_id": "MGR001",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 without plan_qty, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWorkOrderCreateRejectsCompletedStatus(t *testing.T) {
	env := setupWorkOrderTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedManager(t, env.DB)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders", map[string]interface{}{
		"product_name":        "Smart Speaker A1",
		"plan_qty":            10,
		"status":              "completed",
		"manager_employee_id": "MGR001",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWorkOrderLifecycle(t *testing.T) {
	env := setupWorkOrderTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedManager(t, env.DB)
	operator := testutil.SeedOperator(t, env.DB)

	data := createWorkOrder(t, env, token, 10)
	woID := data["id"].(string)

	// First report: 4 of 10 → in_progress, no completion token yet
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders/"+woID+"/progress", map[string]interface{}{
		"actual_qty":        4,
		"defect_qty":        1,
		"operator_qr_token": operator.QRToken,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	result := resp["data"].(map[string]interface{})
	wo := result["work_order"].(map[string]interface{})
	if wo["status"] != "in_progress" {
		t.Errorf("Expected in_progress, got %v", wo["status"])
	}
	if result["total_actual"].(float64) != 4 {
		t.Errorf("Expected total_actual 4, got %v", result["total_actual"])
	}
	if wo["completion_qr_token"] != nil {
		t.Errorf("Expected no completion token yet, got %v", wo["completion_qr_token"])
	}

	// Second report: 6 more → plan reached → completed, token minted
	w2 := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders/"+woID+"/progress", map[string]interface{}{
		"actual_qty":        6,
		"operator_qr_token": operator.QRToken,
	}, token)
	if w2.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w2.Code, w2.Body.String())
	}
	resp2 := testutil.ParseResponse(w2)
	result2 := resp2["data"].(map[string]interface{})
	wo2 := result2["work_order"].(map[string]interface{})
	if wo2["status"] != "completed" {
		t.Errorf("Expected completed, got %v", wo2["status"])
	}
	completionToken, ok := wo2["completion_qr_token"].(string)
	if !ok || completionToken == "" {
		t.Fatal("Expected completion token after reaching plan qty")
	}
	if result2["completion_qr_image"] == "" {
		t.Error("Expected completion QR image")
	}

	// Third report after completion: status and token stay put
	w3 := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders/"+woID+"/progress", map[string]interface{}{
		"actual_qty":        2,
		"operator_qr_token": operator.QRToken,
	}, token)
	if w3.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w3.Code, w3.Body.String())
	}
	resp3 := testutil.ParseResponse(w3)
	result3 := resp3["data"].(map[string]interface{})
	wo3 := result3["work_order"].(map[string]interface{})
	if wo3["status"] != "completed" {
		t.Errorf("Expected completed to stay terminal, got %v", wo3["status"])
	}
	if wo3["completion_qr_token"].(string) != completionToken {
		t.Errorf("Completion token must not change: %v != %s", wo3["completion_qr_token"], completionToken)
	}
	if result3["total_actual"].(float64) != 12 {
		t.Errorf("Expected total_actual 12, got %v", result3["total_actual"])
	}

	// Ledger has three entries in chronological order
	w4 := testutil.DoRequest(env.Router, "GET", "/api/v1/workorders/"+woID+"/progress", nil, token)
	resp4 := testutil.ParseResponse(w4)
	items := resp4["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 3 {
		t.Fatalf("Expected 3 ledger entries, got %d", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["actual_qty"].(float64) != 4 {
		t.Errorf("Expected first entry actual_qty 4, got %v", first["actual_qty"])
	}
}

func TestWorkOrderZeroPlanNeverCompletes(t *testing.T) {
	env := setupWorkOrderTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedManager(t, env.DB)
	operator := testutil.SeedOperator(t, env.DB)

	data := createWorkOrder(t, env, token, 0)
	woID := data["id"].(string)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders/"+woID+"/progress", map[string]interface{}{
		"actual_qty":        100,
		"operator_qr_token": operator.QRToken,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	wo := resp["data"].(map[string]interface{})["work_order"].(map[string]interface{})
	if wo["status"] != "in_progress" {
		t.Errorf("Zero plan qty must never auto-complete, got %v", wo["status"])
	}
	if wo["completion_qr_token"] != nil {
		t.Errorf("Expected no completion token, got %v", wo["completion_qr_token"])
	}
}

func TestWorkOrderCompletionChecksLedgerSum(t *testing.T) {
	env := setupWorkOrderTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedManager(t, env.DB)
	operator := testutil.SeedOperator(t, env.DB)

	data := createWorkOrder(t, env, token, 10)
	woID := data["id"].(string)

	// Ledger rows written outside the report path already sum to plan.
	// Completion must be decided against the persisted ledger, not the
	// totals a single submission happens to observe.
	for _, qty := range []int{4, 6} {
		entry := &entity.WorkOrderProgress{
			ID:          service.NewID(),
			WorkOrderID: woID,
			ActualQty:   qty,
			OperatorID:  &operator.ID,
		}
		if err := env.DB.Create(entry).Error; err != nil {
			t.Fatalf("Failed to seed progress: %v", err)
		}
	}

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders/"+woID+"/progress", map[string]interface{}{
		"actual_qty":        0,
		"operator_qr_token": operator.QRToken,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	result := testutil.ParseResponse(w)["data"].(map[string]interface{})
	wo := result["work_order"].(map[string]interface{})
	if wo["status"] != "completed" {
		t.Errorf("Expected completed once the ledger reaches plan, got %v", wo["status"])
	}
	if tok, ok := wo["completion_qr_token"].(string); !ok || tok == "" {
		t.Error("Expected a completion token minted from the ledger sum")
	}
	if result["total_actual"].(float64) != 10 {
		t.Errorf("Expected total_actual 10, got %v", result["total_actual"])
	}
}

func TestWorkOrderProgressBadOperatorLeavesNoRow(t *testing.T) {
	env := setupWorkOrderTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedManager(t, env.DB)

	data := createWorkOrder(t, env, token, 10)
	woID := data["id"].(string)

	// Unknown badge token → 404, no ledger row
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders/"+woID+"/progress", map[string]interface{}{
		"actual_qty":        4,
		"operator_qr_token": "no-such-badge",
	}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}

	// Employee id with wrong role → 403, no ledger row
	testutil.SeedPersonnel(t, env.DB, "Manager Two", "MGR002", entity.RoleManager)
	w2 := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders/"+woID+"/progress", map[string]interface{}{
		"actual_qty":           4,
		"operator_employee_id": "MGR002",
	}, token)
	if w2.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d: %s", w2.Code, w2.Body.String())
	}

	// Neither badge nor employee id → 400, no ledger row
	w3 := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders/"+woID+"/progress", map[string]interface{}{
		"actual_qty": 4,
	}, token)
	if w3.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unattributed progress, got %d: %s", w3.Code, w3.Body.String())
	}

	var count int64
	env.DB.Model(&entity.WorkOrderProgress{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no progress rows after failed authorization, got %d", count)
	}
}

func TestWorkOrderExceptions(t *testing.T) {
	env := setupWorkOrderTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedManager(t, env.DB)

	data := createWorkOrder(t, env, token, 10)
	woID := data["id"].(string)

	// Raising without manager credentials is rejected
	w0 := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders/"+woID+"/exceptions", map[string]interface{}{
		"exception_type": "equipment",
	}, token)
	if w0.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 without manager id, got %d: %s", w0.Code, w0.Body.String())
	}

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders/"+woID+"/exceptions", map[string]interface{}{
		"exception_type":      "equipment",
		"description":         "贴片机卡料",
		"manager_employee_id": "MGR001",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	exc := resp["data"].(map[string]interface{})
	if exc["status"] != "open" {
		t.Errorf("Expected open, got %v", exc["status"])
	}
	excID := exc["id"].(string)

	w2 := testutil.DoRequest(env.Router, "PUT", "/api/v1/workorders/"+woID+"/exceptions/"+excID+"/resolve", map[string]interface{}{
		"action":              "清理送料轨道后恢复",
		"manager_employee_id": "MGR001",
	}, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
	resp2 := testutil.ParseResponse(w2)
	exc2 := resp2["data"].(map[string]interface{})
	if exc2["status"] != "resolved" {
		t.Errorf("Expected resolved, got %v", exc2["status"])
	}
	if exc2["resolved_at"] == nil {
		t.Error("Expected resolved_at to be set")
	}

	// An explicit resolution status overrides the default
	w2b := testutil.DoRequest(env.Router, "PUT", "/api/v1/workorders/"+woID+"/exceptions/"+excID+"/resolve", map[string]interface{}{
		"status":              "wont_fix",
		"manager_employee_id": "MGR001",
	}, token)
	if w2b.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w2b.Code, w2b.Body.String())
	}
	exc2b := testutil.ParseResponse(w2b)["data"].(map[string]interface{})
	if exc2b["status"] != "wont_fix" {
		t.Errorf("Expected caller-supplied status wont_fix, got %v", exc2b["status"])
	}

	// Resolving an exception under the wrong work order → 404
	other := createWorkOrder(t, env, token, 5)
	w3 := testutil.DoRequest(env.Router, "PUT", "/api/v1/workorders/"+other["id"].(string)+"/exceptions/"+excID+"/resolve", map[string]interface{}{
		"manager_employee_id": "MGR001",
	}, token)
	if w3.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w3.Code, w3.Body.String())
	}
}
