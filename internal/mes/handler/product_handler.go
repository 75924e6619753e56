package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// ProductHandler 成品处理器
type ProductHandler struct {
	svc *service.ProductService
}

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// Create 手工登记成品
func (h *ProductHandler) Create(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		WriteError(c, err)
		return
	}

	Created(c, product)
}

// List 成品列表
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.svc.List(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": products})
}

// ListMoves 成品出入库记录
func (h *ProductHandler) ListMoves(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Product ID is required")
		return
	}

	moves, err := h.svc.ListMoves(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": moves})
}
