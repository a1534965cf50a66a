package dto

// OpenSessionRequest 开班请求
type OpenSessionRequest struct {
	OpeningFloat int64 `json:"opening_float" binding:"gte=0"` // 备用金(分)
}

// CloseSessionRequest 交班请求
type CloseSessionRequest struct {
	ClosingAmount int64 `json:"closing_amount" binding:"gte=0"` // 实际清点金额(分)
}

// CashInOutRequest 取款/存入请求
type CashInOutRequest struct {
	Type   string `json:"type" binding:"required,oneof=WITHDRAWAL DEPOSIT"`
	Amount int64  `json:"amount" binding:"required,gt=0"` // 金额(分,正数)
	Note   string `json:"note" binding:"max=200"`
}
