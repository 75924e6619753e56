package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// WorkOrderRepository 工单仓库
type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) Create(ctx context.Context, wo *entity.WorkOrder) error {
	return r.db.WithContext(ctx).Create(wo).Error
}

// FindByID 根据ID查找工单
func (r *WorkOrderRepository) FindByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&wo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wo, nil
}

// FindByCode 根据工单编码查找
func (r *WorkOrderRepository) FindByCode(ctx context.Context, code string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&wo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wo, nil
}

// FindByAnyToken 根据生产码或完工码查找工单
func (r *WorkOrderRepository) FindByAnyToken(ctx context.Context, token string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.WithContext(ctx).
		Where("qr_token = ? OR completion_qr_token = ?", token, token).
		First(&wo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wo, nil
}

// FindByCompletionToken 根据完工码查找工单。生产码不匹配该查询。
func (r *WorkOrderRepository) FindByCompletionToken(ctx context.Context, token string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.WithContext(ctx).
		Where("completion_qr_token = ?", token).
		First(&wo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wo, nil
}

func (r *WorkOrderRepository) FindAll(ctx context.Context) ([]entity.WorkOrder, error) {
	var orders []entity.WorkOrder
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// SumProgress 从报工台账重新计算累计实绩/不良。永远不用缓存计数器。
func (r *WorkOrderRepository) SumProgress(ctx context.Context, workOrderID string) (actual, defect int, err error) {
	var result struct {
		Actual int
		Defect int
	}
	err = r.db.WithContext(ctx).
		Model(&entity.WorkOrderProgress{}).
		Select("COALESCE(SUM(actual_qty), 0) AS actual, COALESCE(SUM(defect_qty), 0) AS defect").
		Where("work_order_id = ?", workOrderID).
		Scan(&result).Error
	return result.Actual, result.Defect, err
}

// ListProgress 报工台账，按时间正序
func (r *WorkOrderRepository) ListProgress(ctx context.Context, workOrderID string) ([]entity.WorkOrderProgress, error) {
	var items []entity.WorkOrderProgress
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// OperatorIDs 工单报工涉及的操作工（去重）
func (r *WorkOrderRepository) OperatorIDs(ctx context.Context, workOrderID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.WorkOrderProgress{}).
		Distinct("operator_id").
		Where("work_order_id = ? AND operator_id IS NOT NULL", workOrderID).
		Pluck("operator_id", &ids).Error
	return ids, err
}

// CreateException 创建工单异常
func (r *WorkOrderRepository) CreateException(ctx context.Context, exc *entity.WorkOrderException) error {
	return r.db.WithContext(ctx).Create(exc).Error
}

// FindException 查找属于指定工单的异常
func (r *WorkOrderRepository) FindException(ctx context.Context, workOrderID, excID string) (*entity.WorkOrderException, error) {
	var exc entity.WorkOrderException
	err := r.db.WithContext(ctx).
		Where("id = ? AND work_order_id = ?", excID, workOrderID).
		First(&exc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &exc, nil
}

// ListExceptions 工单异常列表（最新在前）
func (r *WorkOrderRepository) ListExceptions(ctx context.Context, workOrderID string) ([]entity.WorkOrderException, error) {
	var items []entity.WorkOrderException
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// SaveException 更新工单异常
func (r *WorkOrderRepository) SaveException(ctx context.Context, exc *entity.WorkOrderException) error {
	return r.db.WithContext(ctx).Save(exc).Error
}