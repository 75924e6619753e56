package service

import (
	"errors"
)

// 业务错误分类。服务层在任何写入发生之前完成全部校验和授权，
// 处理器用 errors.Is 翻译成HTTP响应。
var (
	ErrBadRequest   = errors.New("bad request")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)
