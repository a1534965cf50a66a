package transfer

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/domain/catalog"
	"github.com/xiebiao/pharmacy/internal/domain/transfer"
)

// CreateTransferUseCase 创建调拨单用例
// 由目的门店(要货方)发起草稿,指定来源门店和申请明细
type CreateTransferUseCase struct {
	transferRepo transfer.Repository
	productRepo  catalog.ProductRepository
	storeRepo    catalog.StoreRepository
}

// NewCreateTransferUseCase 创建调拨单用例
func NewCreateTransferUseCase(
	transferRepo transfer.Repository,
	productRepo catalog.ProductRepository,
	storeRepo catalog.StoreRepository,
) *CreateTransferUseCase {
	return &CreateTransferUseCase{
		transferRepo: transferRepo,
		productRepo:  productRepo,
		storeRepo:    storeRepo,
	}
}

// CreateTransferRequest 创建调拨请求DTO
type CreateTransferRequest struct {
	TenantID           uint // 租户ID(从JWT提取)
	DestinationStoreID uint // 目的门店(从JWT提取,创建方)
	OriginStoreID      uint // 来源门店
	Note               string
	Items              []CreateTransferItem
}

// CreateTransferItem 调拨明细项
type CreateTransferItem struct {
	ProductID    uint
	RequestedQty int
}

// CreateTransferResponse 创建调拨响应DTO
type CreateTransferResponse struct {
	TransferID uint   `json:"transfer_id"`
	Status     string `json:"status"`
}

// Execute 执行创建调拨单
func (uc *CreateTransferUseCase) Execute(ctx context.Context, req CreateTransferRequest) (*CreateTransferResponse, error) {
	// 1. 来源门店必须存在且营业
	store, err := uc.storeRepo.FindByID(ctx, req.TenantID, req.OriginStoreID)
	if err != nil {
		return nil, err
	}
	if !store.Active {
		return nil, catalog.ErrStoreNotFound
	}

	// 2. 校验明细商品存在
	items := make([]transfer.Item, len(req.Items))
	for i, item := range req.Items {
		if _, err := uc.productRepo.FindByID(ctx, req.TenantID, item.ProductID); err != nil {
			return nil, err
		}
		items[i] = transfer.Item{
			ProductID:    item.ProductID,
			RequestedQty: item.RequestedQty,
		}
	}

	// 3. 创建草稿
	t, err := transfer.NewTransfer(req.TenantID, req.OriginStoreID,
		req.DestinationStoreID, items, req.Note)
	if err != nil {
		return nil, err
	}

	if err := uc.transferRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	return &CreateTransferResponse{
		TransferID: t.ID,
		Status:     string(t.Status),
	}, nil
}
