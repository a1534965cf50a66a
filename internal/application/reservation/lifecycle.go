package reservation

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/domain/reservation"
	"github.com/xiebiao/pharmacy/internal/infrastructure/notify"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// RejectReservationUseCase 拒绝预约用例
// 只有来源门店可以拒绝,原因必填
// 角色要求(药师或管理员)由路由层RequireElevated拦截
type RejectReservationUseCase struct {
	reservationRepo reservation.Repository
	txManager       TxManager
	notifier        notify.Notifier
}

// NewRejectReservationUseCase 创建拒绝预约用例
func NewRejectReservationUseCase(reservationRepo reservation.Repository, txManager TxManager, notifier notify.Notifier) *RejectReservationUseCase {
	return &RejectReservationUseCase{reservationRepo: reservationRepo, txManager: txManager, notifier: notifier}
}

// Execute 执行拒绝预约
func (uc *RejectReservationUseCase) Execute(ctx context.Context, tenantID, storeID, reservationID uint, reason string) error {
	var resv *reservation.Reservation

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		resv, err = uc.reservationRepo.LockByID(txCtx, tenantID, reservationID)
		if err != nil {
			return err
		}
		if !resv.IsSourceStore(storeID) {
			return apperrors.ErrStoreMismatch
		}
		if err := resv.Reject(reason); err != nil {
			return err
		}
		return uc.reservationRepo.Update(txCtx, resv)
	})
	if err != nil {
		return err
	}

	// 事务提交后通知请求门店(尽力而为)
	uc.notifier.Notify(notify.EventReservationRejected, notify.ReservationRejectedEvent{
		TenantID:       int64(resv.TenantID),
		ReservationID:  int64(resv.ID),
		RequestStoreID: int64(resv.RequestStoreID),
		Reason:         reason,
	})
	return nil
}

// CancelReservationUseCase 取消预约用例
// 请求门店在REQUESTED或APPROVED状态均可取消;
// 取消已批准的预约即释放占用(可用量只统计APPROVED状态)
type CancelReservationUseCase struct {
	reservationRepo reservation.Repository
	txManager       TxManager
}

// NewCancelReservationUseCase 创建取消预约用例
func NewCancelReservationUseCase(reservationRepo reservation.Repository, txManager TxManager) *CancelReservationUseCase {
	return &CancelReservationUseCase{reservationRepo: reservationRepo, txManager: txManager}
}

// Execute 执行取消预约
func (uc *CancelReservationUseCase) Execute(ctx context.Context, tenantID, storeID, reservationID uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		resv, err := uc.reservationRepo.LockByID(txCtx, tenantID, reservationID)
		if err != nil {
			return err
		}
		// 请求门店和来源门店都可以取消
		if !resv.IsRequestStore(storeID) && !resv.IsSourceStore(storeID) {
			return apperrors.ErrStoreMismatch
		}
		if err := resv.Cancel(); err != nil {
			return err
		}
		return uc.reservationRepo.Update(txCtx, resv)
	})
}

// FulfillReservationUseCase 履约确认用例
// 请求门店在实际提货后记录;本操作不移动库存
// (实际出库由来源门店的销售或调拨完成)
type FulfillReservationUseCase struct {
	reservationRepo reservation.Repository
	txManager       TxManager
}

// NewFulfillReservationUseCase 创建履约确认用例
func NewFulfillReservationUseCase(reservationRepo reservation.Repository, txManager TxManager) *FulfillReservationUseCase {
	return &FulfillReservationUseCase{reservationRepo: reservationRepo, txManager: txManager}
}

// Execute 执行履约确认
func (uc *FulfillReservationUseCase) Execute(ctx context.Context, tenantID, storeID, reservationID uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		resv, err := uc.reservationRepo.LockByID(txCtx, tenantID, reservationID)
		if err != nil {
			return err
		}
		if !resv.IsRequestStore(storeID) {
			return apperrors.ErrStoreMismatch
		}
		if err := resv.Fulfill(); err != nil {
			return err
		}
		return uc.reservationRepo.Update(txCtx, resv)
	})
}

// ListReservationsUseCase 预约列表查询用例
type ListReservationsUseCase struct {
	reservationRepo reservation.Repository
}

// NewListReservationsUseCase 创建预约列表查询用例
func NewListReservationsUseCase(reservationRepo reservation.Repository) *ListReservationsUseCase {
	return &ListReservationsUseCase{reservationRepo: reservationRepo}
}

// ReservationInfo 预约信息DTO
type ReservationInfo struct {
	ID             uint                  `json:"id"`
	RequestStoreID uint                  `json:"request_store_id"`
	SourceStoreID  uint                  `json:"source_store_id"`
	CustomerID     uint                  `json:"customer_id,omitempty"`
	Status         string                `json:"status"`
	Note           string                `json:"note,omitempty"`
	RejectReason   string                `json:"reject_reason,omitempty"`
	Items          []ReservationItemInfo `json:"items"`
	CreatedAt      string                `json:"created_at"`
}

// ReservationItemInfo 预约明细DTO
type ReservationItemInfo struct {
	ProductID    uint `json:"product_id"`
	RequestedQty int  `json:"requested_qty"`
	ReservedQty  int  `json:"reserved_qty"`
}

// ListReservationsResponse 预约列表响应DTO
type ListReservationsResponse struct {
	Reservations []ReservationInfo `json:"reservations"`
	Total        int64             `json:"total"`
}

// Execute 分页查询预约单
func (uc *ListReservationsUseCase) Execute(ctx context.Context, tenantID uint, params reservation.ListParams) (*ListReservationsResponse, error) {
	reservations, total, err := uc.reservationRepo.List(ctx, tenantID, params)
	if err != nil {
		return nil, err
	}

	infos := make([]ReservationInfo, len(reservations))
	for i, resv := range reservations {
		items := make([]ReservationItemInfo, len(resv.Items))
		for j, item := range resv.Items {
			items[j] = ReservationItemInfo{
				ProductID:    item.ProductID,
				RequestedQty: item.RequestedQty,
				ReservedQty:  item.ReservedQty,
			}
		}
		infos[i] = ReservationInfo{
			ID:             resv.ID,
			RequestStoreID: resv.RequestStoreID,
			SourceStoreID:  resv.SourceStoreID,
			CustomerID:     resv.CustomerID,
			Status:         string(resv.Status),
			Note:           resv.Note,
			RejectReason:   resv.RejectReason,
			Items:          items,
			CreatedAt:      resv.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}
	return &ListReservationsResponse{Reservations: infos, Total: total}, nil
}
