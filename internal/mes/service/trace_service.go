package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
)

// TraceService 追溯服务。通过成品二维码还原整条生产链路，
// 以及统一的扫码识别入口。
type TraceService struct {
	products    *repository.ProductRepository
	materials   *repository.MaterialRepository
	orders      *repository.WorkOrderRepository
	personnel   *repository.PersonnelRepository
	inspections *repository.InspectionRepository
}

func NewTraceService(products *repository.ProductRepository, materials *repository.MaterialRepository, orders *repository.WorkOrderRepository, personnel *repository.PersonnelRepository, inspections *repository.InspectionRepository) *TraceService {
	return &TraceService{
		products:    products,
		materials:   materials,
		orders:      orders,
		personnel:   personnel,
		inspections: inspections,
	}
}

// ProductSummary 追溯报告中的成品摘要
type ProductSummary struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	FinalInspection string    `json:"final_inspection"`
	QRToken         string    `json:"qr_token"`
	CreatedAt       time.Time `json:"created_at"`
}

// WorkOrderSummary 追溯报告中的工单摘要
type WorkOrderSummary struct {
	ID            string                 `json:"id"`
	Code          string                 `json:"code"`
	ProductName   string                 `json:"product_name"`
	MaterialBatch string                 `json:"material_batch"`
	PlanQty       int                    `json:"plan_qty"`
	Line          string                 `json:"line"`
	Status        entity.WorkOrderStatus `json:"status"`
	CreatedAt     time.Time              `json:"created_at"`
}

// MaterialSummary 追溯报告中的物料摘要
type MaterialSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	BatchCode        string `json:"batch_code"`
	Supplier         string `json:"supplier"`
	InspectionResult string `json:"inspection_result"`
	QRToken          string `json:"qr_token"`
}

// InspectionSummary 追溯报告中的质检摘要
type InspectionSummary struct {
	ObjectType string    `json:"object_type"`
	Result     string    `json:"result"`
	Inspector  string    `json:"inspector"`
	Items      string    `json:"items"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

func newInspectionSummary(rec entity.InspectionRecord) InspectionSummary {
	return InspectionSummary{
		ObjectType: rec.ObjectType,
		Result:     rec.Result,
		Inspector:  rec.Inspector,
		Items:      rec.Items,
		Note:       rec.Note,
		CreatedAt:  rec.CreatedAt,
	}
}

// OperatorSummary 追溯报告中的操作工摘要
type OperatorSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id"`
}

// TraceReport 成品追溯报告。工单/物料通过编码和批次号弱关联，
// 查不到时对应段为空，报告本身仍然成立。
type TraceReport struct {
	Product             ProductSummary      `json:"product"`
	ProductInspections  []InspectionSummary `json:"product_inspections"`
	WorkOrder           *WorkOrderSummary   `json:"work_order,omitempty"`
	Materials           []MaterialSummary   `json:"materials"`
	MaterialInspections []InspectionSummary `json:"material_inspections"`
	Operators           []OperatorSummary   `json:"operators"`
}

// TraceProduct 按成品二维码生成追溯报告。
// 链路：成品 → 工单（按 process_data 中的工单编码）→ 物料（按批次号）
// → 质检历史（按token，最新在前）→ 操作工（报工台账去重）。
func (s *TraceService) TraceProduct(ctx context.Context, productToken string) (*TraceReport, error) {
	product, err := s.products.FindByToken(ctx, productToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: product token not recognized", ErrNotFound)
		}
		return nil, err
	}

	report := &TraceReport{
		Product: ProductSummary{
			ID:              product.ID,
			Name:            product.Name,
			Status:          product.Status,
			FinalInspection: product.FinalInspection,
			QRToken:         product.QRToken,
			CreatedAt:       product.CreatedAt,
		},
		ProductInspections:  []InspectionSummary{},
		Materials:           []MaterialSummary{},
		MaterialInspections: []InspectionSummary{},
		Operators:           []OperatorSummary{},
	}

	var wo *entity.WorkOrder
	if product.ProcessData != "" {
		wo, err = s.orders.FindByCode(ctx, product.ProcessData)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	if wo != nil {
		report.WorkOrder = &WorkOrderSummary{
			ID:            wo.ID,
			Code:          wo.Code,
			ProductName:   wo.ProductName,
			MaterialBatch: wo.MaterialBatch,
			PlanQty:       wo.PlanQty,
			Line:          wo.Line,
			Status:        wo.Status,
			CreatedAt:     wo.CreatedAt,
		}
	}

	batch := product.LinkedMaterials
	if batch == "" && wo != nil {
		batch = wo.MaterialBatch
	}
	var materialTokens []string
	if batch != "" {
		materials, err := s.materials.FindByBatchCode(ctx, batch)
		if err != nil {
			return nil, err
		}
		for _, m := range materials {
			report.Materials = append(report.Materials, MaterialSummary{
				ID:               m.ID,
				Name:             m.Name,
				BatchCode:        m.BatchCode,
				Supplier:         m.Supplier,
				InspectionResult: m.InspectionResult,
				QRToken:          m.QRToken,
			})
			materialTokens = append(materialTokens, m.QRToken)
		}
	}

	productInspections, err := s.inspections.FindByObjectTokens(ctx, entity.InspectionObjectProduct, []string{product.QRToken})
	if err != nil {
		return nil, err
	}
	for _, rec := range productInspections {
		report.ProductInspections = append(report.ProductInspections, newInspectionSummary(rec))
	}
	materialInspections, err := s.inspections.FindByObjectTokens(ctx, entity.InspectionObjectMaterial, materialTokens)
	if err != nil {
		return nil, err
	}
	for _, rec := range materialInspections {
		report.MaterialInspections = append(report.MaterialInspections, newInspectionSummary(rec))
	}

	if wo != nil {
		ids, err := s.orders.OperatorIDs(ctx, wo.ID)
		if err != nil {
			return nil, err
		}
		operators, err := s.personnel.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, op := range operators {
			report.Operators = append(report.Operators, OperatorSummary{
				ID:         op.ID,
				Name:       op.Name,
				EmployeeID: op.EmployeeID,
			})
		}
	}

	return report, nil
}

// Scan 统一扫码识别。按固定优先级探测：物料 → 人员 → 成品 → 工单。
// 工单命中时区分生产码和完工码。
func (s *TraceService) Scan(ctx context.Context, token string) (*entity.ScanResult, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrBadRequest)
	}

	if material, err := s.materials.FindByToken(ctx, token); err == nil {
		return &entity.ScanResult{Kind: entity.ScanKindMaterial, Material: material}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if person, err := s.personnel.FindByToken(ctx, token); err == nil {
		return &entity.ScanResult{Kind: entity.ScanKindPersonnel, Personnel: person}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if product, err := s.products.FindByToken(ctx, token); err == nil {
		return &entity.ScanResult{Kind: entity.ScanKindProduct, Product: product}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if wo, err := s.orders.FindByAnyToken(ctx, token); err == nil {
		kind := entity.ScanKindWorkOrder
		if wo.CompletionQRToken != nil && *wo.CompletionQRToken == token {
			kind = entity.ScanKindWorkOrderCompletion
		}
		return &entity.ScanResult{Kind: kind, WorkOrder: wo}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return nil, fmt.Errorf("%w: token not recognized", ErrNotFound)
}
