package dto

// CreateTransferRequest 创建调拨单请求
// 目的门店取自JWT（申请方），来源门店在请求体里指定
type CreateTransferRequest struct {
	OriginStoreID uint                `json:"origin_store_id" binding:"required"`
	Note          string              `json:"note" binding:"max=500"`
	Items         []TransferItemEntry `json:"items" binding:"required,min=1,dive"`
}

// TransferItemEntry 调拨明细项
type TransferItemEntry struct {
	ProductID    uint `json:"product_id" binding:"required"`
	RequestedQty int  `json:"requested_qty" binding:"required,gt=0"`
}

// SendTransferRequest 调拨发货请求
// Items为空表示按申请数量全量发货；给出的商品按给定数量部分发货，
// 不得超过申请数量，整单只能发货一次
type SendTransferRequest struct {
	Items []SendTransferItem `json:"items" binding:"omitempty,dive"`
}

// SendTransferItem 部分发货项
type SendTransferItem struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}
