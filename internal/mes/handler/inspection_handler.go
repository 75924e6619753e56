package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// InspectionHandler 质检处理器
type InspectionHandler struct {
	svc *service.InspectionService
}

func NewInspectionHandler(svc *service.InspectionService) *InspectionHandler {
	return &InspectionHandler{svc: svc}
}

// inspectEnvelope 质检请求外层，按 object_type 分派
type inspectEnvelope struct {
	ObjectType string `json:"object_type" binding:"required"`

	service.InspectMaterialRequest
	CompletionQRToken string `json:"completion_qr_token"`
	Status            string `json:"status"`
	Customer          string `json:"customer"`
}

// Create 执行质检。object_type 为 material 或 product。
func (h *InspectionHandler) Create(c *gin.Context) {
	var req inspectEnvelope
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	switch req.ObjectType {
	case entity.InspectionObjectMaterial:
		result, err := h.svc.InspectMaterial(c.Request.Context(), &req.InspectMaterialRequest)
		if err != nil {
			WriteError(c, err)
			return
		}
		Created(c, result)
	case entity.InspectionObjectProduct:
		if req.CompletionQRToken == "" {
			BadRequest(c, "completion_qr_token is required")
			return
		}
		result, err := h.svc.InspectProduct(c.Request.Context(), &service.InspectProductRequest{
			CompletionQRToken: req.CompletionQRToken,
			Result:            req.Result,
			Status:            req.Status,
			Qty:               req.Qty,
			Location:          req.Location,
			Customer:          req.Customer,
			Items:             req.Items,
			Note:              req.Note,
			QAEmployeeID:      req.QAEmployeeID,
		})
		if err != nil {
			WriteError(c, err)
			return
		}
		Created(c, result)
	default:
		BadRequest(c, "object_type must be material or product")
	}
}

// List 质检记录列表
func (h *InspectionHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}
