package entity

import (
	"time"
)

// WorkOrderStatus 工单状态
type WorkOrderStatus string

const (
	WOStatusPending    WorkOrderStatus = "pending"
	WOStatusInProgress WorkOrderStatus = "in_progress"
	WOStatusCompleted  WorkOrderStatus = "completed"
)

// NextStatus 工单状态转移函数。报工事件驱动：
// pending 收到任意报工（含0件）即转 in_progress；
// plan_qty > 0 且累计实绩达到计划数即转 completed；
// completed 为终态，不会回退。
func NextStatus(current WorkOrderStatus, totalActual, planQty int) WorkOrderStatus {
	if current == WOStatusCompleted {
		return WOStatusCompleted
	}
	if planQty > 0 && totalActual >= planQty {
		return WOStatusCompleted
	}
	return WOStatusInProgress
}

// WorkOrder 生产工单
type WorkOrder struct {
	ID                string          `json:"id" gorm:"primaryKey;size:32"`
	Code              string          `json:"code" gorm:"size:50;not null;uniqueIndex"`
	ProductName       string          `json:"product_name" gorm:"size:128;not null"`
	MaterialBatch     string          `json:"material_batch" gorm:"size:120"`
	PlanQty           int             `json:"plan_qty" gorm:"not null;default:0"`
	Line              string          `json:"line" gorm:"size:64"`
	Status            WorkOrderStatus `json:"status" gorm:"size:20;not null;default:pending"`
	PlannedStart      *time.Time      `json:"planned_start"`
	PlannedEnd        *time.Time      `json:"planned_end"`
	QRToken           string          `json:"qr_token" gorm:"size:64;not null;uniqueIndex"`
	CompletionQRToken *string         `json:"completion_qr_token" gorm:"size:64;uniqueIndex"`
	CreatedBy         string          `json:"created_by" gorm:"size:64"`
	Notes             string          `json:"notes" gorm:"type:text"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	Progress   []WorkOrderProgress  `json:"progress,omitempty" gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE"`
	Exceptions []WorkOrderException `json:"exceptions,omitempty" gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE"`
}

func (WorkOrder) TableName() string {
	return "mes_work_orders"
}

// WorkOrderProgress 工单报工记录。只追加的台账，累计实绩始终由SUM重新计算。
type WorkOrderProgress struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string    `json:"work_order_id" gorm:"size:32;not null;index"`
	ActualQty   int       `json:"actual_qty" gorm:"not null;default:0"`
	DefectQty   int       `json:"defect_qty" gorm:"not null;default:0"`
	OperatorID  *string   `json:"operator_id" gorm:"size:32"`
	Note        string    `json:"note" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

func (WorkOrderProgress) TableName() string {
	return "mes_work_order_progress"
}

// 异常状态
const (
	ExceptionStatusOpen     = "open"
	ExceptionStatusResolved = "resolved"
)

// WorkOrderException 工单异常
type WorkOrderException struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID   string     `json:"work_order_id" gorm:"size:32;not null;index"`
	ExceptionType string     `json:"exception_type" gorm:"size:64;not null"`
	Description   string     `json:"description" gorm:"type:text"`
	Action        string     `json:"action" gorm:"type:text"`
	Status        string     `json:"status" gorm:"size:20;not null;default:open"`
	ResolvedAt    *time.Time `json:"resolved_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (WorkOrderException) TableName() string {
	return "mes_work_order_exceptions"
}
