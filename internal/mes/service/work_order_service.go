package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/shared/qrimg"
	"gorm.io/gorm"
)

// WorkOrderService 工单服务。生命周期由报工事件驱动，
// 完工二维码只在首次进入 completed 时签发一次。
type WorkOrderService struct {
	repo      *repository.WorkOrderRepository
	personnel *PersonnelService
	renderer  *qrimg.Renderer
	db        *gorm.DB
}

func NewWorkOrderService(repo *repository.WorkOrderRepository, personnel *PersonnelService, renderer *qrimg.Renderer, db *gorm.DB) *WorkOrderService {
	return &WorkOrderService{repo: repo, personnel: personnel, renderer: renderer, db: db}
}

// CreateWorkOrderRequest 创建工单请求
type CreateWorkOrderRequest struct {
	Code              string     `json:"code"`
	ProductName       string     `json:"product_name" binding:"required"`
	MaterialBatch     string     `json:"material_batch"`
	PlanQty           *int       `json:"plan_qty" binding:"required"`
	Line              string     `json:"line"`
	Status            string     `json:"status"`
	PlannedStart      *time.Time `json:"planned_start"`
	PlannedEnd        *time.Time `json:"planned_end"`
	Notes             string     `json:"notes"`
	ManagerEmployeeID string     `json:"manager_employee_id"`
}

// WorkOrderWithQR 工单 + 生产二维码图片
type WorkOrderWithQR struct {
	entity.WorkOrder
	QRImage string `json:"qr_image"`
}

// Create 创建工单。需要 manager 授权，所有校验在落库之前完成。
// 初始状态只允许 pending / in_progress：完工码只能由报工流程签发，
// 直接创建 completed 工单会破坏「有完工码 ⇔ 已完工」的对应关系。
func (s *WorkOrderService) Create(ctx context.Context, req *CreateWorkOrderRequest) (*WorkOrderWithQR, error) {
	if _, err := s.personnel.Require(ctx, entity.RoleManager, req.ManagerEmployeeID); err != nil {
		return nil, err
	}
	// plan_qty 必填但允许为 0（开放式工单），所以用指针区分「缺失」和「0」
	if req.PlanQty == nil {
		return nil, fmt.Errorf("%w: plan_qty is required", ErrBadRequest)
	}
	planQty := *req.PlanQty
	if planQty < 0 {
		return nil, fmt.Errorf("%w: plan_qty must not be negative", ErrBadRequest)
	}

	status := entity.WorkOrderStatus(req.Status)
	if status == "" {
		status = entity.WOStatusPending
	}
	if status != entity.WOStatusPending && status != entity.WOStatusInProgress {
		return nil, fmt.Errorf("%w: initial status must be pending or in_progress", ErrBadRequest)
	}

	code := req.Code
	if code == "" {
		code = NewWorkOrderCode()
	}
	if _, err := s.repo.FindByCode(ctx, code); err == nil {
		return nil, fmt.Errorf("%w: work order code already exists", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	wo := &entity.WorkOrder{
		ID:            NewID(),
		Code:          code,
		ProductName:   req.ProductName,
		MaterialBatch: req.MaterialBatch,
		PlanQty:       planQty,
		Line:          req.Line,
		Status:        status,
		PlannedStart:  req.PlannedStart,
		PlannedEnd:    req.PlannedEnd,
		QRToken:       NewToken(),
		CreatedBy:     req.ManagerEmployeeID,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, wo); err != nil {
		return nil, err
	}

	img, err := s.renderer.Render(ctx, wo.QRToken)
	if err != nil {
		return nil, err
	}
	return &WorkOrderWithQR{WorkOrder: *wo, QRImage: img}, nil
}

// WorkOrderWithStats 工单 + 报工台账汇总
type WorkOrderWithStats struct {
	entity.WorkOrder
	TotalActual int `json:"total_actual"`
	TotalDefect int `json:"total_defect"`
}

// Get 工单详情，累计数始终从台账重算
func (s *WorkOrderService) Get(ctx context.Context, id string) (*WorkOrderWithStats, error) {
	wo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: work order %s", ErrNotFound, id)
		}
		return nil, err
	}
	actual, defect, err := s.repo.SumProgress(ctx, wo.ID)
	if err != nil {
		return nil, err
	}
	return &WorkOrderWithStats{WorkOrder: *wo, TotalActual: actual, TotalDefect: defect}, nil
}

// List 工单列表，附带每张工单的台账汇总
func (s *WorkOrderService) List(ctx context.Context) ([]WorkOrderWithStats, error) {
	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]WorkOrderWithStats, 0, len(orders))
	for _, wo := range orders {
		actual, defect, err := s.repo.SumProgress(ctx, wo.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, WorkOrderWithStats{WorkOrder: wo, TotalActual: actual, TotalDefect: defect})
	}
	return result, nil
}

// RecordProgressRequest 报工请求。操作工可用工牌二维码或工号标识，
// 两者都缺省时报工匿名。
type RecordProgressRequest struct {
	ActualQty          int    `json:"actual_qty"`
	DefectQty          int    `json:"defect_qty"`
	OperatorQRToken    string `json:"operator_qr_token"`
	OperatorEmployeeID string `json:"operator_employee_id"`
	Note               string `json:"note"`
}

// RecordProgressResult 报工结果。完工码在首次达成计划数时签发，
// 之后保持不变。
type RecordProgressResult struct {
	WorkOrder         entity.WorkOrder `json:"work_order"`
	TotalActual       int              `json:"total_actual"`
	TotalDefect       int              `json:"total_defect"`
	CompletionQRImage string           `json:"completion_qr_image,omitempty"`
}

// RecordProgress 记录报工并推进工单状态。
// 操作工解析在事务之前完成：解析失败时不会留下任何报工记录。
// 台账追加、累计重算、状态转移、完工码签发在同一事务内完成；
// 完工码用 completion_qr_token IS NULL 的条件更新签发，
// 并发报工同时达成计划数时也只有一个会写入。
func (s *WorkOrderService) RecordProgress(ctx context.Context, workOrderID string, req *RecordProgressRequest) (*RecordProgressResult, error) {
	if req.ActualQty < 0 || req.DefectQty < 0 {
		return nil, fmt.Errorf("%w: quantities must not be negative", ErrBadRequest)
	}

	operator, err := s.personnel.ResolveOperator(ctx, req.OperatorQRToken, req.OperatorEmployeeID)
	if err != nil {
		return nil, err
	}

	var (
		updated     entity.WorkOrder
		totalActual int
		totalDefect int
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wo entity.WorkOrder
		if err := tx.Where("id = ?", workOrderID).First(&wo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: work order %s", ErrNotFound, workOrderID)
			}
			return err
		}

		entry := &entity.WorkOrderProgress{
			ID:          NewID(),
			WorkOrderID: wo.ID,
			ActualQty:   req.ActualQty,
			DefectQty:   req.DefectQty,
			OperatorID:  &operator.ID,
			Note:        req.Note,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		var sums struct {
			Actual int
			Defect int
		}
		if err := tx.Model(&entity.WorkOrderProgress{}).
			Select("COALESCE(SUM(actual_qty), 0) AS actual, COALESCE(SUM(defect_qty), 0) AS defect").
			Where("work_order_id = ?", wo.ID).
			Scan(&sums).Error; err != nil {
			return err
		}
		totalActual, totalDefect = sums.Actual, sums.Defect

		if entity.NextStatus(wo.Status, totalActual, wo.PlanQty) == entity.WOStatusInProgress {
			if err := tx.Model(&entity.WorkOrder{}).
				Where("id = ? AND status = ?", wo.ID, entity.WOStatusPending).
				Update("status", entity.WOStatusInProgress).Error; err != nil {
				return err
			}
		}

		// 完工判定不依赖本事务读到的累计数：条件更新里用子查询对台账
		// 重新求和，两次并发报工合并越过计划数时也能正确完工。
		// completion_qr_token IS NULL 保证完工码只签发一次。
		if wo.PlanQty > 0 {
			ledger := tx.Model(&entity.WorkOrderProgress{}).
				Select("COALESCE(SUM(actual_qty), 0)").
				Where("work_order_id = ?", wo.ID)
			res := tx.Model(&entity.WorkOrder{}).
				Where("id = ? AND completion_qr_token IS NULL AND plan_qty <= (?)", wo.ID, ledger).
				Updates(map[string]interface{}{
					"status":              entity.WOStatusCompleted,
					"completion_qr_token": NewToken(),
				})
			if res.Error != nil {
				return res.Error
			}
		}

		return tx.Where("id = ?", wo.ID).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}

	result := &RecordProgressResult{
		WorkOrder:   updated,
		TotalActual: totalActual,
		TotalDefect: totalDefect,
	}
	if updated.CompletionQRToken != nil {
		img, err := s.renderer.Render(ctx, *updated.CompletionQRToken)
		if err != nil {
			return nil, err
		}
		result.CompletionQRImage = img
	}
	return result, nil
}

// ListProgress 报工台账（按时间正序）
func (s *WorkOrderService) ListProgress(ctx context.Context, workOrderID string) ([]entity.WorkOrderProgress, error) {
	if _, err := s.repo.FindByID(ctx, workOrderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: work order %s", ErrNotFound, workOrderID)
		}
		return nil, err
	}
	return s.repo.ListProgress(ctx, workOrderID)
}

// RaiseExceptionRequest 上报异常请求
type RaiseExceptionRequest struct {
	ExceptionType     string `json:"exception_type" binding:"required"`
	Description       string `json:"description"`
	Action            string `json:"action"`
	ManagerEmployeeID string `json:"manager_employee_id"`
}

// RaiseException 上报工单异常。与建单同样需要 manager 授权。
func (s *WorkOrderService) RaiseException(ctx context.Context, workOrderID string, req *RaiseExceptionRequest) (*entity.WorkOrderException, error) {
	if _, err := s.personnel.Require(ctx, entity.RoleManager, req.ManagerEmployeeID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, workOrderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: work order %s", ErrNotFound, workOrderID)
		}
		return nil, err
	}

	exc := &entity.WorkOrderException{
		ID:            NewID(),
		WorkOrderID:   workOrderID,
		ExceptionType: req.ExceptionType,
		Description:   req.Description,
		Action:        req.Action,
		Status:        entity.ExceptionStatusOpen,
	}
	if err := s.repo.CreateException(ctx, exc); err != nil {
		return nil, err
	}
	return exc, nil
}

// ResolveExceptionRequest 处理异常请求
type ResolveExceptionRequest struct {
	Status            string `json:"status"`
	Action            string `json:"action"`
	ManagerEmployeeID string `json:"manager_employee_id"`
}

// ResolveException 关闭工单异常。需要 manager 授权。
// 重复关闭会刷新 resolved_at。
func (s *WorkOrderService) ResolveException(ctx context.Context, workOrderID, excID string, req *ResolveExceptionRequest) (*entity.WorkOrderException, error) {
	if _, err := s.personnel.Require(ctx, entity.RoleManager, req.ManagerEmployeeID); err != nil {
		return nil, err
	}
	exc, err := s.repo.FindException(ctx, workOrderID, excID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: exception %s", ErrNotFound, excID)
		}
		return nil, err
	}

	now := time.Now()
	exc.Status = entity.ExceptionStatusResolved
	if req.Status != "" {
		exc.Status = req.Status
	}
	exc.ResolvedAt = &now
	if req.Action != "" {
		exc.Action = req.Action
	}
	if err := s.repo.SaveException(ctx, exc); err != nil {
		return nil, err
	}
	return exc, nil
}

// ListExceptions 工单异常列表
func (s *WorkOrderService) ListExceptions(ctx context.Context, workOrderID string) ([]entity.WorkOrderException, error) {
	if _, err := s.repo.FindByID(ctx, workOrderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: work order %s", ErrNotFound, workOrderID)
		}
		return nil, err
	}
	return s.repo.ListExceptions(ctx, workOrderID)
}
