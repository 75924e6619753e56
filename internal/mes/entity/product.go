package entity

import (
	"time"
)

// 成品状态
const (
	ProductStatusWIP = "WIP"
)

// 库存移动方向
const (
	MoveDirectionIn  = "in"
	MoveDirectionOut = "out"
)

// Product 成品。ProcessData 保存来源工单编码 —— 查找键，不是外键，
// 工单被重建后追溯链依然成立。
type Product struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	Name            string    `json:"name" gorm:"size:120;not null"`
	Status          string    `json:"status" gorm:"size:50;not null;default:WIP"`
	FinalInspection string    `json:"final_inspection" gorm:"size:50"`
	LinkedMaterials string    `json:"linked_materials" gorm:"type:text"`
	ProcessData     string    `json:"process_data" gorm:"type:text"`
	QRToken         string    `json:"qr_token" gorm:"size:64;not null;uniqueIndex"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Moves []ProductInventoryMove `json:"moves,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL"`
}

func (Product) TableName() string {
	return "mes_products"
}

// ProductInventoryMove 成品出入库记录。ProductID 可空，产品被删除后
// 记录仍保留冗余的 ProductName。
type ProductInventoryMove struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	ProductID   *string   `json:"product_id" gorm:"size:32;index"`
	ProductName string    `json:"product_name" gorm:"size:120"`
	Direction   string    `json:"direction" gorm:"size:10;not null"`
	Qty         int       `json:"qty" gorm:"not null;default:0"`
	Location    string    `json:"location" gorm:"size:120"`
	OrderCode   string    `json:"order_code" gorm:"size:50"`
	Customer    string    `json:"customer" gorm:"size:120"`
	Note        string    `json:"note" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ProductInventoryMove) TableName() string {
	return "mes_product_inventory_moves"
}
