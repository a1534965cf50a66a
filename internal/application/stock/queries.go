package stock

import (
	"context"
	"time"

	"github.com/xiebiao/pharmacy/internal/domain/stock"
)

// AvailabilityUseCase 可用量查询用例
// 可售量 = max(0, 在架批号总量 - 已批准预约占用量)
type AvailabilityUseCase struct {
	stockService stock.Service
}

// NewAvailabilityUseCase 创建可用量查询用例
func NewAvailabilityUseCase(stockService stock.Service) *AvailabilityUseCase {
	return &AvailabilityUseCase{stockService: stockService}
}

// AvailabilityResponse 可用量响应DTO
type AvailabilityResponse struct {
	StoreID   uint `json:"store_id"`
	ProductID uint `json:"product_id"`
	Available int  `json:"available"`
}

// Execute 查询(门店,商品)的可售量
func (uc *AvailabilityUseCase) Execute(ctx context.Context, tenantID, storeID, productID uint) (*AvailabilityResponse, error) {
	available, err := uc.stockService.AvailableQuantity(ctx, tenantID, storeID, productID)
	if err != nil {
		return nil, err
	}
	return &AvailabilityResponse{
		StoreID:   storeID,
		ProductID: productID,
		Available: available,
	}, nil
}

// ListLotsUseCase 批号列表查询用例
type ListLotsUseCase struct {
	stockService stock.Service
}

// NewListLotsUseCase 创建批号列表查询用例
func NewListLotsUseCase(stockService stock.Service) *ListLotsUseCase {
	return &ListLotsUseCase{stockService: stockService}
}

// LotInfo 批号信息DTO
type LotInfo struct {
	ID         uint   `json:"id"`
	StoreID    uint   `json:"store_id"`
	ProductID  uint   `json:"product_id"`
	LotNumber  string `json:"lot_number"`
	Expiration string `json:"expiration,omitempty"` // yyyy-MM-dd,空表示无有效期
	UnitCost   int64  `json:"unit_cost"`
	Quantity   int    `json:"quantity"`
	Active     bool   `json:"active"`
}

// ListLotsResponse 批号列表响应DTO
type ListLotsResponse struct {
	Lots  []LotInfo `json:"lots"`
	Total int64     `json:"total"`
}

// Execute 分页查询批号(支持近效期过滤)
func (uc *ListLotsUseCase) Execute(ctx context.Context, tenantID uint, params stock.ListLotsParams) (*ListLotsResponse, error) {
	lots, total, err := uc.stockService.ListLots(ctx, tenantID, params)
	if err != nil {
		return nil, err
	}

	infos := make([]LotInfo, len(lots))
	for i, lot := range lots {
		infos[i] = toLotInfo(lot)
	}
	return &ListLotsResponse{Lots: infos, Total: total}, nil
}

// ListMovementsUseCase 库存流水查询用例
type ListMovementsUseCase struct {
	stockService stock.Service
}

// NewListMovementsUseCase 创建流水查询用例
func NewListMovementsUseCase(stockService stock.Service) *ListMovementsUseCase {
	return &ListMovementsUseCase{stockService: stockService}
}

// MovementInfo 流水信息DTO
type MovementInfo struct {
	ID         uint   `json:"id"`
	StoreID    uint   `json:"store_id"`
	ProductID  uint   `json:"product_id"`
	LotID      uint   `json:"lot_id"`
	Type       string `json:"type"`
	Quantity   int    `json:"quantity"`
	BeforeQty  int    `json:"before_qty"`
	AfterQty   int    `json:"after_qty"`
	Reason     string `json:"reason,omitempty"`
	SaleID     uint   `json:"sale_id,omitempty"`
	TransferID uint   `json:"transfer_id,omitempty"`
	ActorID    uint   `json:"actor_id"`
	CreatedAt  string `json:"created_at"`
}

// ListMovementsResponse 流水列表响应DTO
type ListMovementsResponse struct {
	Movements []MovementInfo `json:"movements"`
	Total     int64          `json:"total"`
}

// Execute 分页查询库存流水
func (uc *ListMovementsUseCase) Execute(ctx context.Context, tenantID uint, params stock.ListMovementsParams) (*ListMovementsResponse, error) {
	movements, total, err := uc.stockService.ListMovements(ctx, tenantID, params)
	if err != nil {
		return nil, err
	}

	infos := make([]MovementInfo, len(movements))
	for i, m := range movements {
		infos[i] = MovementInfo{
			ID:         m.ID,
			StoreID:    m.StoreID,
			ProductID:  m.ProductID,
			LotID:      m.LotID,
			Type:       string(m.Type),
			Quantity:   m.Quantity,
			BeforeQty:  m.BeforeQty,
			AfterQty:   m.AfterQty,
			Reason:     m.Reason,
			SaleID:     m.SaleID,
			TransferID: m.TransferID,
			ActorID:    m.ActorID,
			CreatedAt:  m.CreatedAt.Format(time.DateTime),
		}
	}
	return &ListMovementsResponse{Movements: infos, Total: total}, nil
}

// toLotInfo 领域实体 → DTO
func toLotInfo(lot *stock.Lot) LotInfo {
	info := LotInfo{
		ID:        lot.ID,
		StoreID:   lot.StoreID,
		ProductID: lot.ProductID,
		LotNumber: lot.LotNumber,
		UnitCost:  lot.UnitCost,
		Quantity:  lot.Quantity,
		Active:    lot.Active,
	}
	if lot.Expiration != nil {
		info.Expiration = lot.Expiration.Format(time.DateOnly)
	}
	return info
}
