package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// ProductRepository 成品仓库
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error
	return products, err
}

// FindByToken 根据二维码token查找成品
func (r *ProductRepository) FindByToken(ctx context.Context, token string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).Where("qr_token = ?", token).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ListMoves 成品出入库记录（最新在前）
func (r *ProductRepository) ListMoves(ctx context.Context, productID string) ([]entity.ProductInventoryMove, error) {
	var moves []entity.ProductInventoryMove
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&moves).Error
	return moves, err
}
