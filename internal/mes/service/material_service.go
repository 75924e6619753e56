package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/shared/qrimg"
)

// MaterialService 物料批次服务
type MaterialService struct {
	repo     *repository.MaterialRepository
	renderer *qrimg.Renderer
}

func NewMaterialService(repo *repository.MaterialRepository, renderer *qrimg.Renderer) *MaterialService {
	return &MaterialService{repo: repo, renderer: renderer}
}

// CreateMaterialRequest 创建物料批次请求
type CreateMaterialRequest struct {
	Name             string `json:"name" binding:"required"`
	BatchCode        string `json:"batch_code" binding:"required"`
	Supplier         string `json:"supplier" binding:"required"`
	InspectionResult string `json:"inspection_result" binding:"required"`
	StockQty         int    `json:"stock_qty"`
	Extra            string `json:"extra"`
}

// MaterialWithQR 物料 + 批次二维码图片
type MaterialWithQR struct {
	entity.Material
	QRImage string `json:"qr_image"`
}

// Create 登记物料批次并签发二维码
func (s *MaterialService) Create(ctx context.Context, req *CreateMaterialRequest) (*MaterialWithQR, error) {
	if req.StockQty < 0 {
		return nil, fmt.Errorf("%w: stock_qty must not be negative", ErrBadRequest)
	}

	material := &entity.Material{
		ID:               NewID(),
		Name:             req.Name,
		BatchCode:        req.BatchCode,
		Supplier:         req.Supplier,
		InspectionResult: req.InspectionResult,
		StockQty:         req.StockQty,
		QRToken:          NewToken(),
		Extra:            req.Extra,
	}
	if err := s.repo.Create(ctx, material); err != nil {
		return nil, err
	}

	img, err := s.renderer.Render(ctx, material.QRToken)
	if err != nil {
		return nil, err
	}
	return &MaterialWithQR{Material: *material, QRImage: img}, nil
}

// Get 物料详情
func (s *MaterialService) Get(ctx context.Context, id string) (*entity.Material, error) {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: material %s", ErrNotFound, id)
		}
		return nil, err
	}
	return material, nil
}

// List 物料列表
func (s *MaterialService) List(ctx context.Context) ([]entity.Material, error) {
	return s.repo.FindAll(ctx)
}
