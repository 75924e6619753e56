package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// TraceHandler 追溯与扫码处理器
type TraceHandler struct {
	svc *service.TraceService
}

func NewTraceHandler(svc *service.TraceService) *TraceHandler {
	return &TraceHandler{svc: svc}
}

// Trace 成品追溯报告
func (h *TraceHandler) Trace(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		BadRequest(c, "Product token is required")
		return
	}

	report, err := h.svc.TraceProduct(c.Request.Context(), token)
	if err != nil {
		WriteError(c, err)
		return
	}

	Success(c, report)
}

// scanRequest 扫码请求
type scanRequest struct {
	Token string `json:"token" binding:"required"`
}

// Scan 统一扫码识别
func (h *TraceHandler) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Scan(c.Request.Context(), req.Token)
	if err != nil {
		WriteError(c, err)
		return
	}

	Success(c, gin.H{
		"type": result.Kind,
		"data": result.Data(),
	})
}
