package stock

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/domain/stock"
)

// AdjustStockUseCase 盘点调整用例
// 盘盈记ADJUST_POS,盘亏记ADJUST_NEG,原因必填(盘点依据)
// 盘亏不能把批号调成负数
type AdjustStockUseCase struct {
	stockService stock.Service
	txManager    TxManager
}

// NewAdjustStockUseCase 创建盘点调整用例
func NewAdjustStockUseCase(stockService stock.Service, txManager TxManager) *AdjustStockUseCase {
	return &AdjustStockUseCase{
		stockService: stockService,
		txManager:    txManager,
	}
}

// AdjustStockRequest 盘点调整请求DTO
type AdjustStockRequest struct {
	TenantID uint   // 租户ID(从JWT提取)
	ActorID  uint   // 操作人(从JWT提取)
	StoreID  uint   // 操作人门店(门店归属校验)
	LotID    uint   // 批号ID
	Delta    int    // 调整量(正=盘盈,负=盘亏)
	Reason   string // 盘点依据,必填
}

// AdjustStockResponse 盘点调整响应DTO
type AdjustStockResponse struct {
	LotID    uint `json:"lot_id"`
	Quantity int  `json:"quantity"` // 调整后批号数量
	Active   bool `json:"active"`
}

// Execute 执行盘点调整
func (uc *AdjustStockUseCase) Execute(ctx context.Context, req AdjustStockRequest) (*AdjustStockResponse, error) {
	// 1. 门店归属校验:只能调整本门店的批号
	lot, err := uc.stockService.GetLot(ctx, req.TenantID, req.LotID)
	if err != nil {
		return nil, err
	}
	if lot.StoreID != req.StoreID {
		return nil, stock.ErrLotStoreMismatch
	}

	// 2. 事务内调整批号+写流水
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		lot, err = uc.stockService.Adjust(txCtx, stock.AdjustParams{
			TenantID: req.TenantID,
			LotID:    req.LotID,
			Delta:    req.Delta,
			Reason:   req.Reason,
			ActorID:  req.ActorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &AdjustStockResponse{
		LotID:    lot.ID,
		Quantity: lot.Quantity,
		Active:   lot.Active,
	}, nil
}
