package repository

import (
	"context"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// ProcessRepository 工序仓库
type ProcessRepository struct {
	db *gorm.DB
}

func NewProcessRepository(db *gorm.DB) *ProcessRepository {
	return &ProcessRepository{db: db}
}

func (r *ProcessRepository) Create(ctx context.Context, process *entity.Process) error {
	return r.db.WithContext(ctx).Create(process).Error
}

// FindAll 按工序顺序返回
func (r *ProcessRepository) FindAll(ctx context.Context) ([]entity.Process, error) {
	var processes []entity.Process
	err := r.db.WithContext(ctx).Order("sequence ASC").Find(&processes).Error
	return processes, err
}
