package entity

import (
	"time"
)

// Material 物料批次
type Material struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	Name             string    `json:"name" gorm:"size:120;not null"`
	BatchCode        string    `json:"batch_code" gorm:"size:120;not null;index"`
	Supplier         string    `json:"supplier" gorm:"size:120;not null"`
	InspectionResult string    `json:"inspection_result" gorm:"size:50;not null"`
	StockQty         int       `json:"stock_qty" gorm:"not null;default:0"`
	QRToken          string    `json:"qr_token" gorm:"size:64;not null;uniqueIndex"`
	Extra            string    `json:"extra" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Receipts []MaterialReceipt `json:"receipts,omitempty" gorm:"foreignKey:MaterialID;constraint:OnDelete:CASCADE"`
}

func (Material) TableName() string {
	return "mes_materials"
}

// MaterialReceipt 来料入库记录，始终与物料库存增量成对出现
type MaterialReceipt struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	MaterialID string    `json:"material_id" gorm:"size:32;not null;index"`
	Location   string    `json:"location" gorm:"size:120"`
	Qty        int       `json:"qty" gorm:"not null;default:0"`
	Operator   string    `json:"operator" gorm:"size:120"`
	CreatedAt  time.Time `json:"created_at"`
}

func (MaterialReceipt) TableName() string {
	return "mes_material_receipts"
}
