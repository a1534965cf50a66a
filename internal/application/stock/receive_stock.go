package stock

import (
	"context"
	"time"

	"github.com/xiebiao/pharmacy/internal/domain/catalog"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
)

// ReceiveStockUseCase 采购收货用例
// 设计说明:
// 1. 收货按批号键(门店,商品,批号,有效期)upsert:
//    同键批号存在则加量,不存在则创建新批号
// 2. 批号变更与IN流水在同一事务内提交
type ReceiveStockUseCase struct {
	stockService stock.Service
	productRepo  catalog.ProductRepository
	txManager    TxManager
}

// NewReceiveStockUseCase 创建收货用例
func NewReceiveStockUseCase(
	stockService stock.Service,
	productRepo catalog.ProductRepository,
	txManager TxManager,
) *ReceiveStockUseCase {
	return &ReceiveStockUseCase{
		stockService: stockService,
		productRepo:  productRepo,
		txManager:    txManager,
	}
}

// ReceiveStockRequest 收货请求DTO
type ReceiveStockRequest struct {
	TenantID   uint       // 租户ID(从JWT提取)
	StoreID    uint       // 收货门店(从JWT提取)
	ActorID    uint       // 操作人(从JWT提取)
	ProductID  uint       // 商品ID
	LotNumber  string     // 批号
	Expiration *time.Time // 有效期(可空)
	UnitCost   int64      // 单位成本(分)
	Quantity   int        // 收货数量
	Reason     string     // 收货说明(如采购单号)
}

// ReceiveStockResponse 收货响应DTO
type ReceiveStockResponse struct {
	LotID     uint   `json:"lot_id"`
	LotNumber string `json:"lot_number"`
	Quantity  int    `json:"quantity"` // 收货后批号数量
}

// Execute 执行收货
func (uc *ReceiveStockUseCase) Execute(ctx context.Context, req ReceiveStockRequest) (*ReceiveStockResponse, error) {
	// 1. 校验商品存在且在售
	product, err := uc.productRepo.FindByID(ctx, req.TenantID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, catalog.ErrProductNotFound
	}

	// 2. 事务内upsert批号+写流水
	var lot *stock.Lot
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		lot, err = uc.stockService.Receive(txCtx, stock.ReceiveParams{
			TenantID:   req.TenantID,
			StoreID:    req.StoreID,
			ProductID:  req.ProductID,
			LotNumber:  req.LotNumber,
			Expiration: req.Expiration,
			UnitCost:   req.UnitCost,
			Quantity:   req.Quantity,
			ActorID:    req.ActorID,
			Reason:     req.Reason,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &ReceiveStockResponse{
		LotID:     lot.ID,
		LotNumber: lot.LotNumber,
		Quantity:  lot.Quantity,
	}, nil
}
