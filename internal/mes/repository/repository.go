package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories MES仓库集合
type Repositories struct {
	User       *UserRepository
	Personnel  *PersonnelRepository
	Process    *ProcessRepository
	Material   *MaterialRepository
	Product    *ProductRepository
	WorkOrder  *WorkOrderRepository
	Inspection *InspectionRepository
}

// NewRepositories 创建MES仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Personnel:  NewPersonnelRepository(db),
		Process:    NewProcessRepository(db),
		Material:   NewMaterialRepository(db),
		Product:    NewProductRepository(db),
		WorkOrder:  NewWorkOrderRepository(db),
		Inspection: NewInspectionRepository(db),
	}
}
