package repository

import (
	"context"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// InspectionRepository 质检记录仓库
type InspectionRepository struct {
	db *gorm.DB
}

func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

func (r *InspectionRepository) Create(ctx context.Context, record *entity.InspectionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindAll 质检记录列表（最新在前）
func (r *InspectionRepository) FindAll(ctx context.Context) ([]entity.InspectionRecord, error) {
	var items []entity.InspectionRecord
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error
	return items, err
}

// FindByObjectTokens 按对象类型+token集合查询检验历史（最新在前）
func (r *InspectionRepository) FindByObjectTokens(ctx context.Context, objectType string, tokens []string) ([]entity.InspectionRecord, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	var items []entity.InspectionRecord
	err := r.db.WithContext(ctx).
		Where("object_type = ? AND object_token IN ?", objectType, tokens).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}
