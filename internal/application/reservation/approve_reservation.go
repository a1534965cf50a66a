package reservation

import (
	"context"
	"time"

	"github.com/xiebiao/pharmacy/internal/domain/reservation"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/domain/user"
	"github.com/xiebiao/pharmacy/internal/infrastructure/notify"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/metrics"
)

// ApproveReservationUseCase 批准预约用例
// 核心问题:批准会占用来源门店可售量,必须保证
// 1. 全有或全无:任一明细可用量不足则整单不批准
// 2. 无竞态:校验与置位在同一事务内,持批号行锁复核
//    (两个预约单同时批准时,后获锁者看到前者已占用的量)
type ApproveReservationUseCase struct {
	reservationRepo reservation.Repository
	lotRepo         stock.LotRepository
	holds           stock.ReservationHolds
	txManager       TxManager
	notifier        notify.Notifier
}

// NewApproveReservationUseCase 创建批准预约用例
func NewApproveReservationUseCase(
	reservationRepo reservation.Repository,
	lotRepo stock.LotRepository,
	holds stock.ReservationHolds,
	txManager TxManager,
	notifier notify.Notifier,
) *ApproveReservationUseCase {
	return &ApproveReservationUseCase{
		reservationRepo: reservationRepo,
		lotRepo:         lotRepo,
		holds:           holds,
		txManager:       txManager,
		notifier:        notifier,
	}
}

// ApproveReservationRequest 批准预约请求DTO
type ApproveReservationRequest struct {
	TenantID      uint      // 租户ID(从JWT提取)
	StoreID       uint      // 操作人门店(必须是来源门店)
	ActorID       uint
	ActorRole     user.Role // 批准要药师或管理员角色
	ReservationID uint
}

// ApproveReservationResponse 批准预约响应DTO
type ApproveReservationResponse struct {
	ReservationID uint   `json:"reservation_id"`
	Status        string `json:"status"`
}

// Execute 执行批准预约
func (uc *ApproveReservationUseCase) Execute(ctx context.Context, req ApproveReservationRequest) (*ApproveReservationResponse, error) {
	// 批准占用可售量,普通店员无权操作(路由层也有同样的拦截,这里兜底)
	if !req.ActorRole.IsElevated() {
		return nil, apperrors.ErrForbidden
	}

	var resv *reservation.Reservation

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定预约单(防止并发批准/取消竞态)
		var err error
		resv, err = uc.reservationRepo.LockByID(txCtx, req.TenantID, req.ReservationID)
		if err != nil {
			return err
		}

		// 2. 只有来源门店可以批准
		if !resv.IsSourceStore(req.StoreID) {
			return apperrors.ErrStoreMismatch
		}

		// 3. 逐明细持锁校验可用量(全有或全无)
		// 锁定批号行后统计:在架未过期总量 - 其他已批准预约占用 >= 申请数量
		now := time.Now()
		for _, item := range resv.Items {
			lots, err := uc.lotRepo.LockActiveByProduct(txCtx, req.TenantID,
				resv.SourceStoreID, item.ProductID)
			if err != nil {
				return err
			}

			total := 0
			for _, lot := range lots {
				if lot.IsConsumable(now) {
					total += lot.Quantity
				}
			}

			reserved, err := uc.holds.ApprovedQuantityExcluding(txCtx, req.TenantID,
				resv.SourceStoreID, item.ProductID, resv.ID)
			if err != nil {
				return err
			}

			available := total - reserved
			if available < item.RequestedQty {
				if available < 0 {
					available = 0
				}
				// 任一明细不足,整单失败回滚
				return stock.NewInsufficientStockError(item.RequestedQty, available)
			}
		}

		// 4. 状态流转+全部明细占用置位
		if err := resv.Approve(); err != nil {
			return err
		}
		return uc.reservationRepo.Update(txCtx, resv)
	})
	if err != nil {
		return nil, err
	}

	// 5. 事务提交后发布事件(尽力而为)
	if metrics.ReservationsApprovedTotal != nil {
		metrics.IncCounter(metrics.ReservationsApprovedTotal)
	}
	uc.notifier.Notify(notify.EventReservationApproved, notify.ReservationApprovedEvent{
		TenantID:      int64(resv.TenantID),
		ReservationID: int64(resv.ID),
		SourceStoreID: int64(resv.SourceStoreID),
	})

	return &ApproveReservationResponse{
		ReservationID: resv.ID,
		Status:        string(resv.Status),
	}, nil
}
