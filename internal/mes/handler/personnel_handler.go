package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// PersonnelHandler 人员处理器
type PersonnelHandler struct {
	svc *service.PersonnelService
}

func NewPersonnelHandler(svc *service.PersonnelService) *PersonnelHandler {
	return &PersonnelHandler{svc: svc}
}

// Create 创建人员
func (h *PersonnelHandler) Create(c *gin.Context) {
	var req service.CreatePersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	person, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		WriteError(c, err)
		return
	}

	Created(c, person)
}

// List 人员列表
func (h *PersonnelHandler) List(c *gin.Context) {
	people, err := h.svc.List(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": people})
}
