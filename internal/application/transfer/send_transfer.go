package transfer

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/domain/transfer"
	"github.com/xiebiao/pharmacy/internal/domain/user"
	"github.com/xiebiao/pharmacy/internal/infrastructure/notify"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/metrics"
)

// SendTransferUseCase 调拨发货用例
// 业务流程(全部在同一事务内,全有或全无):
// 1. 锁定调拨单(整单只能发货一次)
// 2. 状态流转DRAFT→SENT并置位发货数量
// 3. 逐明细从来源门店FEFO出库,写TRANSFER_OUT流水
//    (流水携带transfer_id,入库时按它复刻批号)
// 任一明细可用量不足则整单回滚,批号和调拨单都不改动
type SendTransferUseCase struct {
	transferRepo transfer.Repository
	stockService stock.Service
	txManager    TxManager
	notifier     notify.Notifier
}

// NewSendTransferUseCase 创建调拨发货用例
func NewSendTransferUseCase(
	transferRepo transfer.Repository,
	stockService stock.Service,
	txManager TxManager,
	notifier notify.Notifier,
) *SendTransferUseCase {
	return &SendTransferUseCase{
		transferRepo: transferRepo,
		stockService: stockService,
		txManager:    txManager,
		notifier:     notifier,
	}
}

// SendTransferRequest 调拨发货请求DTO
type SendTransferRequest struct {
	TenantID   uint      // 租户ID(从JWT提取)
	StoreID    uint      // 操作人门店(必须是来源门店)
	ActorID    uint
	ActorRole  user.Role // 发货要药师或管理员角色
	TransferID uint
	// Partial 部分发货(商品ID→数量),nil表示按申请数量全量发货
	// 每个商品不得超过申请数量,整单只能发货一次
	Partial map[uint]int
}

// SendTransferResponse 调拨发货响应DTO
type SendTransferResponse struct {
	TransferID uint   `json:"transfer_id"`
	Status     string `json:"status"`
	TotalCost  int64  `json:"total_cost"` // 发出库存的总成本(分)
}

// Execute 执行调拨发货
func (uc *SendTransferUseCase) Execute(ctx context.Context, req SendTransferRequest) (*SendTransferResponse, error) {
	// 发货移动库存,普通店员无权操作(路由层也有同样的拦截,这里兜底)
	if !req.ActorRole.IsElevated() {
		return nil, apperrors.ErrForbidden
	}

	var t *transfer.Transfer
	var totalCost int64

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定调拨单(防止并发发货两次)
		var err error
		t, err = uc.transferRepo.LockByID(txCtx, req.TenantID, req.TransferID)
		if err != nil {
			return err
		}

		// 2. 只有来源门店可以发货
		if !t.IsOriginStore(req.StoreID) {
			return apperrors.ErrStoreMismatch
		}

		// 3. 状态流转并置位发货数量(SENT后不能再次发货)
		if err := t.Send(req.Partial); err != nil {
			return err
		}

		// 4. 逐明细FEFO出库
		for _, item := range t.SentItems() {
			result, err := uc.stockService.Consume(txCtx, stock.ConsumeParams{
				TenantID:   req.TenantID,
				StoreID:    t.OriginStoreID,
				ProductID:  item.ProductID,
				Quantity:   item.SentQty,
				Type:       stock.MovementTransferOut,
				TransferID: t.ID,
				ActorID:    req.ActorID,
			})
			if err != nil {
				return err // 整单回滚
			}
			totalCost += result.TotalCost
		}

		return uc.transferRepo.Update(txCtx, t)
	})
	if err != nil {
		return nil, err
	}

	// 5. 事务提交后发布事件(尽力而为)
	if metrics.TransfersSentTotal != nil {
		metrics.IncCounter(metrics.TransfersSentTotal)
	}
	uc.notifier.Notify(notify.EventTransferSent, notify.TransferEvent{
		TenantID:           int64(t.TenantID),
		TransferID:         int64(t.ID),
		OriginStoreID:      int64(t.OriginStoreID),
		DestinationStoreID: int64(t.DestinationStoreID),
	})

	return &SendTransferResponse{
		TransferID: t.ID,
		Status:     string(t.Status),
		TotalCost:  totalCost,
	}, nil
}
