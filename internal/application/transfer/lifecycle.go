package transfer

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/domain/transfer"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// CancelTransferUseCase 取消调拨用例
// 仅草稿可取消;已发货的调拨只能通过盘点调整冲正(单向门策略)
type CancelTransferUseCase struct {
	transferRepo transfer.Repository
	txManager    TxManager
}

// NewCancelTransferUseCase 创建取消调拨用例
func NewCancelTransferUseCase(transferRepo transfer.Repository, txManager TxManager) *CancelTransferUseCase {
	return &CancelTransferUseCase{transferRepo: transferRepo, txManager: txManager}
}

// Execute 执行取消调拨
func (uc *CancelTransferUseCase) Execute(ctx context.Context, tenantID, storeID, transferID uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		t, err := uc.transferRepo.LockByID(txCtx, tenantID, transferID)
		if err != nil {
			return err
		}
		// 创建方(目的门店)才可以取消草稿
		if !t.IsDestinationStore(storeID) {
			return apperrors.ErrStoreMismatch
		}
		if err := t.Cancel(); err != nil {
			return err
		}
		return uc.transferRepo.Update(txCtx, t)
	})
}

// GetTransferUseCase 调拨详情查询用例
type GetTransferUseCase struct {
	transferRepo transfer.Repository
}

// NewGetTransferUseCase 创建调拨详情查询用例
func NewGetTransferUseCase(transferRepo transfer.Repository) *GetTransferUseCase {
	return &GetTransferUseCase{transferRepo: transferRepo}
}

// Execute 查询调拨单详情
func (uc *GetTransferUseCase) Execute(ctx context.Context, tenantID, transferID uint) (*TransferInfo, error) {
	t, err := uc.transferRepo.FindByID(ctx, tenantID, transferID)
	if err != nil {
		return nil, err
	}
	info := toTransferInfo(t)
	return &info, nil
}

// ListTransfersUseCase 调拨列表查询用例
type ListTransfersUseCase struct {
	transferRepo transfer.Repository
}

// NewListTransfersUseCase 创建调拨列表查询用例
func NewListTransfersUseCase(transferRepo transfer.Repository) *ListTransfersUseCase {
	return &ListTransfersUseCase{transferRepo: transferRepo}
}

// TransferInfo 调拨信息DTO
type TransferInfo struct {
	ID                 uint               `json:"id"`
	OriginStoreID      uint               `json:"origin_store_id"`
	DestinationStoreID uint               `json:"destination_store_id"`
	Status             string             `json:"status"`
	Note               string             `json:"note,omitempty"`
	Items              []TransferItemInfo `json:"items"`
	CreatedAt          string             `json:"created_at"`
}

// TransferItemInfo 调拨明细DTO
type TransferItemInfo struct {
	ProductID    uint `json:"product_id"`
	RequestedQty int  `json:"requested_qty"`
	SentQty      int  `json:"sent_qty"`
}

// ListTransfersResponse 调拨列表响应DTO
type ListTransfersResponse struct {
	Transfers []TransferInfo `json:"transfers"`
	Total     int64          `json:"total"`
}

// Execute 分页查询调拨单
func (uc *ListTransfersUseCase) Execute(ctx context.Context, tenantID uint, params transfer.ListParams) (*ListTransfersResponse, error) {
	transfers, total, err := uc.transferRepo.List(ctx, tenantID, params)
	if err != nil {
		return nil, err
	}

	infos := make([]TransferInfo, len(transfers))
	for i, t := range transfers {
		infos[i] = toTransferInfo(t)
	}
	return &ListTransfersResponse{Transfers: infos, Total: total}, nil
}

// toTransferInfo 领域实体 → DTO
func toTransferInfo(t *transfer.Transfer) TransferInfo {
	items := make([]TransferItemInfo, len(t.Items))
	for i, item := range t.Items {
		items[i] = TransferItemInfo{
			ProductID:    item.ProductID,
			RequestedQty: item.RequestedQty,
			SentQty:      item.SentQty,
		}
	}
	return TransferInfo{
		ID:                 t.ID,
		OriginStoreID:      t.OriginStoreID,
		DestinationStoreID: t.DestinationStoreID,
		Status:             string(t.Status),
		Note:               t.Note,
		Items:              items,
		CreatedAt:          t.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
