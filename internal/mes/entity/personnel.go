package entity

import (
	"time"
)

// 人员角色
const (
	RoleManager  = "manager"
	RoleOperator = "operator"
	RoleQA       = "qa"
	RoleWorker   = "worker"
)

// Personnel 生产人员，工牌二维码绑定 QRToken
type Personnel struct {
	ID                string    `json:"id" gorm:"primaryKey;size:32"`
	Name              string    `json:"name" gorm:"size:120;not null"`
	EmployeeID        string    `json:"employee_id" gorm:"size:120;not null;uniqueIndex"`
	Role              string    `json:"role" gorm:"size:120;not null"`
	AllowedOperations string    `json:"allowed_operations" gorm:"type:text"`
	QRToken           string    `json:"qr_token" gorm:"size:64;not null;uniqueIndex"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Personnel) TableName() string {
	return "mes_personnel"
}
