package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// MaterialRepository 物料仓库
type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) Create(ctx context.Context, material *entity.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *MaterialRepository) FindAll(ctx context.Context) ([]entity.Material, error) {
	var materials []entity.Material
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&materials).Error
	return materials, err
}

// FindByID 根据ID查找物料
func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*entity.Material, error) {
	var material entity.Material
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&material).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

// FindByToken 根据二维码token查找物料
func (r *MaterialRepository) FindByToken(ctx context.Context, token string) (*entity.Material, error) {
	var material entity.Material
	err := r.db.WithContext(ctx).Where("qr_token = ?", token).First(&material).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

// FindByBatchCode 查找同一批次的全部物料
func (r *MaterialRepository) FindByBatchCode(ctx context.Context, batchCode string) ([]entity.Material, error) {
	var materials []entity.Material
	err := r.db.WithContext(ctx).Where("batch_code = ?", batchCode).Find(&materials).Error
	return materials, err
}
