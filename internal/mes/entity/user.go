package entity

import (
	"time"
)

// User 系统账号（登录用，区别于车间人员 Personnel）
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	Username     string    `json:"username" gorm:"size:120;not null;uniqueIndex"`
	Name         string    `json:"name" gorm:"size:120;not null"`
	PasswordHash string    `json:"-" gorm:"size:128;not null"`
	Role         string    `json:"role" gorm:"size:50;not null;default:worker"`
	Permissions  string    `json:"permissions" gorm:"type:text"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "mes_users"
}
