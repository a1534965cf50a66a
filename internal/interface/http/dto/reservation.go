package dto

// CreateReservationRequest 发起预约请求
// 请求门店取自JWT，来源门店在请求体里指定
type CreateReservationRequest struct {
	SourceStoreID uint                   `json:"source_store_id" binding:"required"`
	CustomerID    uint                   `json:"customer_id"`
	Note          string                 `json:"note" binding:"max=500"`
	Items         []ReservationItemEntry `json:"items" binding:"required,min=1,dive"`
}

// ReservationItemEntry 预约明细项
type ReservationItemEntry struct {
	ProductID    uint `json:"product_id" binding:"required"`
	RequestedQty int  `json:"requested_qty" binding:"required,gt=0"`
}

// RejectReservationRequest 拒绝预约请求
type RejectReservationRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}
