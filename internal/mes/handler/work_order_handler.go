package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// WorkOrderHandler 工单处理器
type WorkOrderHandler struct {
	svc *service.WorkOrderService
}

func NewWorkOrderHandler(svc *service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc}
}

// Create 创建工单
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req service.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	wo, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		WriteError(c, err)
		return
	}

	Created(c, wo)
}

// Get 工单详情
func (h *WorkOrderHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Work order ID is required")
		return
	}

	wo, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}

	Success(c, wo)
}

// List 工单列表
func (h *WorkOrderHandler) List(c *gin.Context) {
	orders, err := h.svc.List(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": orders})
}

// RecordProgress 报工
func (h *WorkOrderHandler) RecordProgress(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Work order ID is required")
		return
	}

	var req service.RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.RecordProgress(c.Request.Context(), id, &req)
	if err != nil {
		WriteError(c, err)
		return
	}

	Created(c, result)
}

// ListProgress 报工台账
func (h *WorkOrderHandler) ListProgress(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Work order ID is required")
		return
	}

	items, err := h.svc.ListProgress(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// RaiseException 上报异常
func (h *WorkOrderHandler) RaiseException(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Work order ID is required")
		return
	}

	var req service.RaiseExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	exc, err := h.svc.RaiseException(c.Request.Context(), id, &req)
	if err != nil {
		WriteError(c, err)
		return
	}

	Created(c, exc)
}

// ResolveException 处理异常
func (h *WorkOrderHandler) ResolveException(c *gin.Context) {
	id := c.Param("id")
	excID := c.Param("exc_id")
	if id == "" || excID == "" {
		BadRequest(c, "Work order ID and exception ID are required")
		return
	}

	var req service.ResolveExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	exc, err := h.svc.ResolveException(c.Request.Context(), id, excID, &req)
	if err != nil {
		WriteError(c, err)
		return
	}

	Success(c, exc)
}

// ListExceptions 异常列表
func (h *WorkOrderHandler) ListExceptions(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Work order ID is required")
		return
	}

	items, err := h.svc.ListExceptions(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}
