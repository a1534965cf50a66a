package dto

// CreateSaleRequest 开单请求
type CreateSaleRequest struct {
	CustomerID uint             `json:"customer_id"`
	Discount   int64            `json:"discount" binding:"gte=0"` // 整单优惠(分)
	Items      []CreateSaleItem `json:"items" binding:"required,min=1,dive"`
}

// CreateSaleItem 销售明细项
type CreateSaleItem struct {
	ProductID uint  `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
	Discount  int64 `json:"discount" binding:"gte=0"` // 明细优惠(分)
}

// SettleSaleRequest 结算请求
// 收款金额合计必须等于应收金额，混合支付传多条
type SettleSaleRequest struct {
	Payments []SettlePayment `json:"payments" binding:"required,min=1,dive"`
}

// SettlePayment 收款项
type SettlePayment struct {
	Method string `json:"method" binding:"required,oneof=CASH CARD PIX CREDIT"`
	Amount int64  `json:"amount" binding:"required,gt=0"` // 收款金额(分)
}
