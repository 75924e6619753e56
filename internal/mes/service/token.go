package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewToken 签发二维码token：32位十六进制，全局唯一，签发后不可变
func NewToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NewID 生成实体主键（与token同构，职责分开）
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NewWorkOrderCode 生成默认工单编码 WO-{时间戳}-{随机后缀}。
// 时间戳只有秒级精度，后缀避免同一秒内建单撞码。
func NewWorkOrderCode() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return "WO-" + time.Now().UTC().Format("20060102150405") + "-" + strings.ToUpper(suffix)
}
