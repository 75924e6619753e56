package entity

import (
	"time"
)

// Process 工序（基础数据，仅供展示排序，不参与状态机）
type Process struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Name        string    `json:"name" gorm:"size:120;not null"`
	Sequence    int       `json:"sequence" gorm:"default:0"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Process) TableName() string {
	return "mes_processes"
}
