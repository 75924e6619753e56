package entity

// ScanKind 扫码命中的对象类型
type ScanKind string

const (
	ScanKindMaterial            ScanKind = "material"
	ScanKindPersonnel           ScanKind = "personnel"
	ScanKindProduct             ScanKind = "product"
	ScanKindWorkOrder           ScanKind = "work_order"
	ScanKindWorkOrderCompletion ScanKind = "work_order_completion"
)

// ScanResult 扫码结果。按固定优先级探测：物料 → 人员 → 成品 → 工单
// （生产码优先于完工码），命中哪类就填哪个字段。
type ScanResult struct {
	Kind      ScanKind   `json:"type"`
	Material  *Material  `json:"material,omitempty"`
	Personnel *Personnel `json:"personnel,omitempty"`
	Product   *Product   `json:"product,omitempty"`
	WorkOrder *WorkOrder `json:"work_order,omitempty"`
}

// Data 返回命中的实体，便于统一序列化
func (r *ScanResult) Data() interface{} {
	switch r.Kind {
	case ScanKindMaterial:
		return r.Material
	case ScanKindPersonnel:
		return r.Personnel
	case ScanKindProduct:
		return r.Product
	case ScanKindWorkOrder, ScanKindWorkOrderCompletion:
		return r.WorkOrder
	}
	return nil
}
