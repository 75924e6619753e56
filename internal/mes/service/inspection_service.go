package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/shared/qrimg"
	"gorm.io/gorm"
)

// InspectionService 质检服务。来料检联动物料库存，
// 成品检消费完工二维码并生成成品。
type InspectionService struct {
	repo      *repository.InspectionRepository
	materials *repository.MaterialRepository
	orders    *repository.WorkOrderRepository
	personnel *PersonnelService
	renderer  *qrimg.Renderer
	db        *gorm.DB
}

func NewInspectionService(repo *repository.InspectionRepository, materials *repository.MaterialRepository, orders *repository.WorkOrderRepository, personnel *PersonnelService, renderer *qrimg.Renderer, db *gorm.DB) *InspectionService {
	return &InspectionService{
		repo:      repo,
		materials: materials,
		orders:    orders,
		personnel: personnel,
		renderer:  renderer,
		db:        db,
	}
}

// InspectMaterialRequest 来料检请求。material_id 指向已有物料；
// 不传则按内联字段现场登记新批次。qty > 0 时同步入库。
type InspectMaterialRequest struct {
	MaterialID   string `json:"material_id"`
	Name         string `json:"name"`
	BatchCode    string `json:"batch_code"`
	Supplier     string `json:"supplier"`
	Result       string `json:"result" binding:"required"`
	Qty          int    `json:"qty"`
	Location     string `json:"location"`
	Items        string `json:"items"`
	Note         string `json:"note"`
	QAEmployeeID string `json:"qa_employee_id"`
}

// MaterialInspectionResult 来料检结果
type MaterialInspectionResult struct {
	Material *entity.Material         `json:"material"`
	Record   *entity.InspectionRecord `json:"record"`
	QRImage  string                   `json:"qr_image,omitempty"`
}

// InspectMaterial 来料检。需要 qa 授权，校验全部通过后
// 物料登记/库存增量/入库记录/质检记录在同一事务落库。
// 内联登记的新批次初始库存为0，本次数量只通过入库增量计一次。
func (s *InspectionService) InspectMaterial(ctx context.Context, req *InspectMaterialRequest) (*MaterialInspectionResult, error) {
	qa, err := s.personnel.Require(ctx, entity.RoleQA, req.QAEmployeeID)
	if err != nil {
		return nil, err
	}
	if req.Qty < 0 {
		return nil, fmt.Errorf("%w: qty must not be negative", ErrBadRequest)
	}

	var material *entity.Material
	inline := false
	if req.MaterialID != "" {
		material, err = s.materials.FindByID(ctx, req.MaterialID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: material %s", ErrNotFound, req.MaterialID)
			}
			return nil, err
		}
	} else {
		if req.Name == "" || req.BatchCode == "" || req.Supplier == "" {
			return nil, fmt.Errorf("%w: name, batch_code and supplier are required for a new material", ErrBadRequest)
		}
		inline = true
		material = &entity.Material{
			ID:               NewID(),
			Name:             req.Name,
			BatchCode:        req.BatchCode,
			Supplier:         req.Supplier,
			InspectionResult: req.Result,
			StockQty:         0,
			QRToken:          NewToken(),
		}
	}

	record := &entity.InspectionRecord{
		ID:          NewID(),
		ObjectType:  entity.InspectionObjectMaterial,
		ObjectToken: material.QRToken,
		Result:      req.Result,
		Inspector:   qa.Name,
		Items:       req.Items,
		Note:        req.Note,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if inline {
			if err := tx.Create(material).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&entity.Material{}).
				Where("id = ?", material.ID).
				Update("inspection_result", req.Result).Error; err != nil {
				return err
			}
			material.InspectionResult = req.Result
		}

		if req.Qty > 0 {
			if err := tx.Model(&entity.Material{}).
				Where("id = ?", material.ID).
				Update("stock_qty", gorm.Expr("stock_qty + ?", req.Qty)).Error; err != nil {
				return err
			}
			material.StockQty += req.Qty

			receipt := &entity.MaterialReceipt{
				ID:         NewID(),
				MaterialID: material.ID,
				Location:   req.Location,
				Qty:        req.Qty,
				Operator:   qa.Name,
			}
			if err := tx.Create(receipt).Error; err != nil {
				return err
			}
		}

		return tx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}

	result := &MaterialInspectionResult{Material: material, Record: record}
	if inline {
		img, err := s.renderer.Render(ctx, material.QRToken)
		if err != nil {
			return nil, err
		}
		result.QRImage = img
	}
	return result, nil
}

// InspectProductRequest 成品检请求。completion_qr_token 必须是完工码，
// 生产码不被接受。
type InspectProductRequest struct {
	CompletionQRToken string `json:"completion_qr_token" binding:"required"`
	Result            string `json:"result" binding:"required"`
	Status            string `json:"status"`
	Qty               int    `json:"qty"`
	Location          string `json:"location"`
	Customer          string `json:"customer"`
	Items             string `json:"items"`
	Note              string `json:"note"`
	QAEmployeeID      string `json:"qa_employee_id"`
}

// ProductInspectionResult 成品检结果
type ProductInspectionResult struct {
	Product *entity.Product          `json:"product"`
	Record  *entity.InspectionRecord `json:"record"`
	QRImage string                   `json:"qr_image"`
}

// InspectProduct 成品检。消费完工二维码：根据完工码定位工单，
// 生成成品（继承工单的品名/批次/编码）、入库记录和质检记录，
// 三者在同一事务落库。完工码查不到时没有任何写入。
func (s *InspectionService) InspectProduct(ctx context.Context, req *InspectProductRequest) (*ProductInspectionResult, error) {
	qa, err := s.personnel.Require(ctx, entity.RoleQA, req.QAEmployeeID)
	if err != nil {
		return nil, err
	}
	if req.Qty < 0 {
		return nil, fmt.Errorf("%w: qty must not be negative", ErrBadRequest)
	}

	wo, err := s.orders.FindByCompletionToken(ctx, req.CompletionQRToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: completion token not recognized", ErrNotFound)
		}
		return nil, err
	}

	// 成品状态缺省跟随检验结论
	status := req.Status
	if status == "" {
		status = req.Result
	}

	product := &entity.Product{
		ID:              NewID(),
		Name:            wo.ProductName,
		Status:          status,
		FinalInspection: req.Result,
		LinkedMaterials: wo.MaterialBatch,
		ProcessData:     wo.Code,
		QRToken:         NewToken(),
	}
	move := &entity.ProductInventoryMove{
		ID:          NewID(),
		ProductID:   &product.ID,
		ProductName: product.Name,
		Direction:   entity.MoveDirectionIn,
		Qty:         req.Qty,
		Location:    req.Location,
		OrderCode:   wo.Code,
		Customer:    req.Customer,
		Note:        req.Note,
	}
	record := &entity.InspectionRecord{
		ID:          NewID(),
		ObjectType:  entity.InspectionObjectProduct,
		ObjectToken: product.QRToken,
		Result:      req.Result,
		Inspector:   qa.Name,
		Items:       req.Items,
		Note:        req.Note,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		if err := tx.Create(move).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}

	img, err := s.renderer.Render(ctx, product.QRToken)
	if err != nil {
		return nil, err
	}
	return &ProductInspectionResult{Product: product, Record: record, QRImage: img}, nil
}

// List 质检记录列表
func (s *InspectionService) List(ctx context.Context) ([]entity.InspectionRecord, error) {
	return s.repo.FindAll(ctx)
}
