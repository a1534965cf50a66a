package dto

// UpdatePlanRequest 套餐变更请求
// ExpiresAt格式yyyy-MM-dd，空表示长期有效
type UpdatePlanRequest struct {
	Name      string   `json:"name" binding:"required,oneof=basic professional enterprise"`
	Features  []string `json:"features" binding:"omitempty,dive,oneof=inventory_transfers inventory_reservations"`
	ExpiresAt string   `json:"expires_at" binding:"omitempty,datetime=2006-01-02"`
}
