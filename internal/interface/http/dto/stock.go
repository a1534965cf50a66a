package dto

// ReceiveStockRequest 收货入库请求
// Expiration格式yyyy-MM-dd，空字符串表示无有效期（器械类商品）
type ReceiveStockRequest struct {
	ProductID  uint   `json:"product_id" binding:"required"`
	LotNumber  string `json:"lot_number" binding:"required,max=64"`
	Expiration string `json:"expiration" binding:"omitempty,datetime=2006-01-02"`
	UnitCost   int64  `json:"unit_cost" binding:"required,gt=0"` // 单位成本(分)
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
	Reason     string `json:"reason" binding:"max=200"` // 收货说明(如采购单号)
}

// AdjustStockRequest 盘点调整请求
// Delta正数为盘盈、负数为盘亏，依据必填
type AdjustStockRequest struct {
	LotID  uint   `json:"lot_id" binding:"required"`
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"required,max=200"`
}
