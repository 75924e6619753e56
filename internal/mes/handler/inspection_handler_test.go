package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/testutil"
)

func setupInspectionTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	h := newTestHandlers(t, db)

	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/inspections", h.Inspection.Create)
	api.GET("/inspections", h.Inspection.List)
	api.POST("/workorders", h.WorkOrder.Create)
	api.POST("/workorders/:id/progress", h.WorkOrder.RecordProgress)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestInspectMaterialExistingWithReceipt(t *testing.T) {
	env := setupInspectionTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedQA(t, env.DB)
	material := testutil.SeedMaterial(t, env.DB, "PCB Board", "BATCH-2025-001", 50)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/inspections", map[string]interface{}{
		"object_type":    "material",
		"material_id":    material.ID,
		"result":         "pass",
		"qty":            30,
		"location":       "A-01",
		"qa_employee_id": "QA001",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var updated entity.Material
	env.DB.First(&updated, "id = ?", material.ID)
	if updated.StockQty != 80 {
		t.Errorf("Expected stock 80, got %d", updated.StockQty)
	}
	if updated.InspectionResult != "pass" {
		t.Errorf("Expected inspection_result pass, got %s", updated.InspectionResult)
	}

	var receipts []entity.MaterialReceipt
	env.DB.Where("material_id = ?", material.ID).Find(&receipts)
	if len(receipts) != 1 || receipts[0].Qty != 30 {
		t.Fatalf("Expected one receipt of 30, got %+v", receipts)
	}

	var records []entity.InspectionRecord
	env.DB.Where("object_token = ?", material.QRToken).Find(&records)
	if len(records) != 1 || records[0].ObjectType != entity.InspectionObjectMaterial {
		t.Fatalf("Expected one material inspection record, got %+v", records)
	}
}

func TestInspectMaterialInlineRegistration(t *testing.T) {
	env := setupInspectionTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedQA(t, env.DB)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/inspections", map[string]interface{}{
		"object_type":    "material",
		"name":           "Speaker Driver",
		"batch_code":     "BATCH-2025-002",
		"supplier":       "Acme Audio",
		"result":         "pass",
		"qty":            200,
		"qa_employee_id": "QA001",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["qr_image"] == "" {
		t.Error("Expected QR image for an inline-registered material")
	}

	// Quantity is counted exactly once through the receipt path
	var material entity.Material
	env.DB.First(&material, "batch_code = ?", "BATCH-2025-002")
	if material.StockQty != 200 {
		t.Errorf("Expected stock 200, got %d", material.StockQty)
	}

	// Incomplete inline fields → 400, nothing written
	w2 := testutil.DoRequest(env.Router, "POST", "/api/v1/inspections", map[string]interface{}{
		"object_type":    "material",
		"name":           "Nameless Batch",
		"result":         "pass",
		"qa_employee_id": "QA001",
	}, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w2.Code, w2.Body.String())
	}
}

func TestInspectMaterialRequiresQA(t *testing.T) {
	env := setupInspectionTest(t)
	token := testutil.DefaultTestToken()
	material := testutil.SeedMaterial(t, env.DB, "PCB Board", "BATCH-2025-001", 50)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/inspections", map[string]interface{}{
		"object_type":    "material",
		"material_id":    material.ID,
		"result":         "pass",
		"qty":            30,
		"qa_employee_id": "QA001",
	}, token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d: %s", w.Code, w.Body.String())
	}

	var updated entity.Material
	env.DB.First(&updated, "id = ?", material.ID)
	if updated.StockQty != 50 {
		t.Errorf("Stock must be untouched after failed authorization, got %d", updated.StockQty)
	}
}

// completeWorkOrder drives a work order to completion and returns its completion token
func completeWorkOrder(t *testing.T, env *testutil.TestEnv, token string) (string, string) {
	t.Helper()
	testutil.SeedManager(t, env.DB)
	operator := testutil.SeedOperator(t, env.DB)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders", map[string]interface{}{
		"product_name":        "Smart Speaker A1",
		"material_batch":      "BATCH-2025-001",
		"plan_qty":            5,
		"manager_employee_id": "MGR001",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	woID := data["id"].(string)
	productionToken := data["qr_token"].(string)

	w2 := testutil.DoRequest(env.Router, "POST", "/api/v1/workorders/"+woID+"/progress", map[string]interface{}{
		"actual_qty":        5,
		"operator_qr_token": operator.QRToken,
	}, token)
	if w2.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w2.Code, w2.Body.String())
	}
	wo := testutil.ParseResponse(w2)["data"].(map[string]interface{})["work_order"].(map[string]interface{})
	completionToken, ok := wo["completion_qr_token"].(string)
	if !ok || completionToken == "" {
		t.Fatal("Expected completion token")
	}
	return completionToken, productionToken
}

func TestInspectProductMintsProduct(t *testing.T) {
	env := setupInspectionTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedQA(t, env.DB)
	completionToken, _ := completeWorkOrder(t, env, token)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/inspections", map[string]interface{}{
		"object_type":         "product",
		"completion_qr_token": completionToken,
		"result":              "pass",
		"qty":                 5,
		"location":            "FG-01",
		"customer":            "客户甲",
		"note":                "首批入库",
		"qa_employee_id":      "QA001",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	product := data["product"].(map[string]interface{})
	if product["name"] != "Smart Speaker A1" {
		t.Errorf("Product must inherit the work order product name, got %v", product["name"])
	}
	if product["final_inspection"] != "pass" {
		t.Errorf("Expected final_inspection pass, got %v", product["final_inspection"])
	}
	if product["status"] != "pass" {
		t.Errorf("Product status should follow the inspection result, got %v", product["status"])
	}
	if data["qr_image"] == "" {
		t.Error("Expected product QR image")
	}

	var moves []entity.ProductInventoryMove
	env.DB.Find(&moves)
	if len(moves) != 1 {
		t.Fatalf("Expected one inventory move, got %d", len(moves))
	}
	if moves[0].Direction != entity.MoveDirectionIn || moves[0].Qty != 5 {
		t.Errorf("Expected an inbound move of 5, got %+v", moves[0])
	}
	if moves[0].OrderCode == "" {
		t.Error("Expected order code on the inventory move")
	}
	if moves[0].Customer != "客户甲" || moves[0].Note != "首批入库" {
		t.Errorf("Expected customer and note on the inventory move, got %+v", moves[0])
	}

	var records []entity.InspectionRecord
	env.DB.Where("object_type = ?", entity.InspectionObjectProduct).Find(&records)
	if len(records) != 1 {
		t.Fatalf("Expected one product inspection record, got %d", len(records))
	}
}

func TestInspectProductDefaults(t *testing.T) {
	env := setupInspectionTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedQA(t, env.DB)
	completionToken, _ := completeWorkOrder(t, env, token)

	// Omitted qty books a zero-quantity inbound move; an explicit
	// status overrides the result-derived default.
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/inspections", map[string]interface{}{
		"object_type":         "product",
		"completion_qr_token": completionToken,
		"result":              "pass",
		"status":              "in_stock",
		"qa_employee_id":      "QA001",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	product := data["product"].(map[string]interface{})
	if product["status"] != "in_stock" {
		t.Errorf("Expected caller-supplied status in_stock, got %v", product["status"])
	}

	var moves []entity.ProductInventoryMove
	env.DB.Find(&moves)
	if len(moves) != 1 {
		t.Fatalf("Expected one inventory move, got %d", len(moves))
	}
	if moves[0].Qty != 0 {
		t.Errorf("Expected zero-quantity move when qty is omitted, got %d", moves[0].Qty)
	}
}

func TestInspectProductRejectsProductionToken(t *testing.T) {
	env := setupInspectionTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedQA(t, env.DB)
	_, productionToken := completeWorkOrder(t, env, token)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/inspections", map[string]interface{}{
		"object_type":         "product",
		"completion_qr_token": productionToken,
		"result":              "pass",
		"qa_employee_id":      "QA001",
	}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Production token must not pass for product inspection, got %d: %s", w.Code, w.Body.String())
	}

	var productCount, moveCount, recordCount int64
	env.DB.Model(&entity.Product{}).Count(&productCount)
	env.DB.Model(&entity.ProductInventoryMove{}).Count(&moveCount)
	env.DB.Model(&entity.InspectionRecord{}).Count(&recordCount)
	if productCount != 0 || moveCount != 0 || recordCount != 0 {
		t.Errorf("Expected no side effects: products=%d moves=%d records=%d", productCount, moveCount, recordCount)
	}
}

func TestInspectUnknownObjectType(t *testing.T) {
	env := setupInspectionTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/inspections", map[string]interface{}{
		"object_type": "machine",
		"result":      "pass",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
}
