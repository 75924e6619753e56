package service

import (
	"context"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/shared/qrimg"
)

// ProductService 成品服务。正常路径下成品通过成品质检生成
// （见 InspectionService.InspectProduct），这里只提供手工登记和查询。
type ProductService struct {
	repo     *repository.ProductRepository
	renderer *qrimg.Renderer
}

func NewProductService(repo *repository.ProductRepository, renderer *qrimg.Renderer) *ProductService {
	return &ProductService{repo: repo, renderer: renderer}
}

// CreateProductRequest 手工登记成品请求
type CreateProductRequest struct {
	Name            string `json:"name" binding:"required"`
	LinkedMaterials string `json:"linked_materials"`
	ProcessData     string `json:"process_data"`
}

// ProductWithQR 成品 + 二维码图片
type ProductWithQR struct {
	entity.Product
	QRImage string `json:"qr_image"`
}

// Create 手工登记在制成品并签发二维码
func (s *ProductService) Create(ctx context.Context, req *CreateProductRequest) (*ProductWithQR, error) {
	product := &entity.Product{
		ID:              NewID(),
		Name:            req.Name,
		Status:          entity.ProductStatusWIP,
		LinkedMaterials: req.LinkedMaterials,
		ProcessData:     req.ProcessData,
		QRToken:         NewToken(),
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	img, err := s.renderer.Render(ctx, product.QRToken)
	if err != nil {
		return nil, err
	}
	return &ProductWithQR{Product: *product, QRImage: img}, nil
}

// List 成品列表
func (s *ProductService) List(ctx context.Context) ([]entity.Product, error) {
	return s.repo.FindAll(ctx)
}

// ListMoves 成品出入库记录
func (s *ProductService) ListMoves(ctx context.Context, productID string) ([]entity.ProductInventoryMove, error) {
	return s.repo.ListMoves(ctx, productID)
}