package entity

import (
	"time"
)

// 质检对象类型
const (
	InspectionObjectMaterial = "material"
	InspectionObjectProduct  = "product"
)

// InspectionRecord 质检记录。ObjectToken 是按token的弱引用，
// 被检对象即使被重建，检验历史仍可追溯。只追加。
type InspectionRecord struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	ObjectType  string    `json:"object_type" gorm:"size:20;not null;index"`
	ObjectToken string    `json:"object_token" gorm:"size:64;not null;index"`
	Result      string    `json:"result" gorm:"size:50;not null"`
	Inspector   string    `json:"inspector" gorm:"size:120"`
	Items       string    `json:"items" gorm:"type:text"`
	Note        string    `json:"note" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

func (InspectionRecord) TableName() string {
	return "mes_inspection_records"
}
