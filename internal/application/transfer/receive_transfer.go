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

// ReceiveTransferUseCase 调拨入库用例
// 业务流程(全部在同一事务内):
// 1. 锁定调拨单(防止并发入库两次导致目的批号重复加量)
// 2. 按出库流水复刻批号:每条TRANSFER_OUT流水对应来源批号,
//    批号/有效期/成本原样带到目的门店,按批号键upsert
// 3. 每个目的批号写TRANSFER_IN流水
// 4. 状态流转SENT→RECEIVED
//
// 以流水而非明细为入库依据:出库流水记录了实际从哪些批号
// 发出多少,复刻后目的门店的批号构成与发出的完全一致
// (FEFO、近效期预警在目的门店依然正确)
type ReceiveTransferUseCase struct {
	transferRepo transfer.Repository
	lotRepo      stock.LotRepository
	movementRepo stock.MovementRepository
	txManager    TxManager
	notifier     notify.Notifier
}

// NewReceiveTransferUseCase 创建调拨入库用例
func NewReceiveTransferUseCase(
	transferRepo transfer.Repository,
	lotRepo stock.LotRepository,
	movementRepo stock.MovementRepository,
	txManager TxManager,
	notifier notify.Notifier,
) *ReceiveTransferUseCase {
	return &ReceiveTransferUseCase{
		transferRepo: transferRepo,
		lotRepo:      lotRepo,
		movementRepo: movementRepo,
		txManager:    txManager,
		notifier:     notifier,
	}
}

// ReceiveTransferRequest 调拨入库请求DTO
type ReceiveTransferRequest struct {
	TenantID   uint      // 租户ID(从JWT提取)
	StoreID    uint      // 操作人门店(必须是目的门店)
	ActorID    uint
	ActorRole  user.Role // 入库要药师或管理员角色
	TransferID uint
}

// ReceiveTransferResponse 调拨入库响应DTO
type ReceiveTransferResponse struct {
	TransferID   uint   `json:"transfer_id"`
	Status       string `json:"status"`
	LotsReceived int    `json:"lots_received"` // 入库批号数
}

// Execute 执行调拨入库
func (uc *ReceiveTransferUseCase) Execute(ctx context.Context, req ReceiveTransferRequest) (*ReceiveTransferResponse, error) {
	// 入库移动库存,普通店员无权操作(路由层也有同样的拦截,这里兜底)
	if !req.ActorRole.IsElevated() {
		return nil, apperrors.ErrForbidden
	}

	var t *transfer.Transfer
	var lotsReceived int

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定调拨单
		var err error
		t, err = uc.transferRepo.LockByID(txCtx, req.TenantID, req.TransferID)
		if err != nil {
			return err
		}

		// 2. 只有目的门店可以入库
		if !t.IsDestinationStore(req.StoreID) {
			return apperrors.ErrStoreMismatch
		}

		// 3. 状态流转(SENT→RECEIVED,重复入库在这里被拒绝)
		if err := t.MarkReceived(); err != nil {
			return err
		}

		// 4. 取出库流水作为入库依据
		outMovements, err := uc.movementRepo.FindByTransfer(txCtx, req.TenantID,
			t.ID, stock.MovementTransferOut)
		if err != nil {
			return err
		}
		if len(outMovements) == 0 {
			// 状态是SENT但没有出库流水,说明数据异常,不能凭空入库
			return transfer.ErrNoShipmentMovements
		}

		// 5. 逐流水复刻批号到目的门店
		for _, m := range outMovements {
			// 出库流水的数量为负,入库量取绝对值
			quantity := -m.Quantity

			// 查来源批号获取批号键(批号/有效期/成本)
			originLot, err := uc.lotRepo.FindByID(txCtx, req.TenantID, m.LotID)
			if err != nil {
				return err
			}

			// 按批号键upsert目的门店批号
			destLot, err := uc.lotRepo.LockByKey(txCtx, req.TenantID, t.DestinationStoreID,
				originLot.ProductID, originLot.LotNumber, originLot.Expiration)
			if err != nil && err != stock.ErrLotNotFound {
				return err
			}

			var before int
			if destLot != nil {
				before = destLot.Quantity
				if err := destLot.Add(quantity); err != nil {
					return err
				}
				if err := uc.lotRepo.Update(txCtx, destLot); err != nil {
					return err
				}
			} else {
				destLot, err = stock.NewLot(req.TenantID, t.DestinationStoreID,
					originLot.ProductID, originLot.LotNumber, originLot.Expiration,
					originLot.UnitCost, quantity)
				if err != nil {
					return err
				}
				if err := uc.lotRepo.Create(txCtx, destLot); err != nil {
					return err
				}
			}

			// 写TRANSFER_IN流水
			inMovement := stock.NewTransferInMovement(destLot, quantity, before,
				destLot.Quantity, t.ID, req.ActorID)
			if err := inMovement.Validate(); err != nil {
				return err
			}
			if err := uc.movementRepo.Create(txCtx, inMovement); err != nil {
				return err
			}
			lotsReceived++
		}

		return uc.transferRepo.Update(txCtx, t)
	})
	if err != nil {
		return nil, err
	}

	// 6. 事务提交后发布事件(尽力而为)
	if metrics.TransfersReceivedTotal != nil {
		metrics.IncCounter(metrics.TransfersReceivedTotal)
	}
	uc.notifier.Notify(notify.EventTransferReceived, notify.TransferEvent{
		TenantID:           int64(t.TenantID),
		TransferID:         int64(t.ID),
		OriginStoreID:      int64(t.OriginStoreID),
		DestinationStoreID: int64(t.DestinationStoreID),
	})

	return &ReceiveTransferResponse{
		TransferID:   t.ID,
		Status:       string(t.Status),
		LotsReceived: lotsReceived,
	}, nil
}
