package service

import (
	"github.com/bitfantasy/nimo-mes/internal/config"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/shared/qrimg"
	"gorm.io/gorm"
)

// Services MES服务集合
type Services struct {
	Auth       *AuthService
	Personnel  *PersonnelService
	Process    *ProcessService
	Material   *MaterialService
	Product    *ProductService
	WorkOrder  *WorkOrderService
	Inspection *InspectionService
	Trace      *TraceService
}

// NewServices 创建MES服务集合
func NewServices(repos *repository.Repositories, db *gorm.DB, renderer *qrimg.Renderer, jwtCfg config.JWTConfig) *Services {
	personnelSvc := NewPersonnelService(repos.Personnel, renderer)
	return &Services{
		Auth:       NewAuthService(repos.User, jwtCfg),
		Personnel:  personnelSvc,
		Process:    NewProcessService(repos.Process),
		Material:   NewMaterialService(repos.Material, renderer),
		Product:    NewProductService(repos.Product, renderer),
		WorkOrder:  NewWorkOrderService(repos.WorkOrder, personnelSvc, renderer, db),
		Inspection: NewInspectionService(repos.Inspection, repos.Material, repos.WorkOrder, personnelSvc, renderer, db),
		Trace:      NewTraceService(repos.Product, repos.Material, repos.WorkOrder, repos.Personnel, repos.Inspection),
	}
}
