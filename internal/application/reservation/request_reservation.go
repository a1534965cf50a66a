package reservation

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/domain/catalog"
	"github.com/xiebiao/pharmacy/internal/domain/reservation"
)

// RequestReservationUseCase 发起跨店预约用例
// 设计说明:
// 1. 请求门店向来源门店借货:申请阶段不占用库存,
//    批准后才计入来源门店可售量扣减
// 2. 申请门店从JWT提取,来源门店由请求指定
type RequestReservationUseCase struct {
	reservationRepo reservation.Repository
	productRepo     catalog.ProductRepository
	storeRepo       catalog.StoreRepository
}

// NewRequestReservationUseCase 创建发起预约用例
func NewRequestReservationUseCase(
	reservationRepo reservation.Repository,
	productRepo catalog.ProductRepository,
	storeRepo catalog.StoreRepository,
) *RequestReservationUseCase {
	return &RequestReservationUseCase{
		reservationRepo: reservationRepo,
		productRepo:     productRepo,
		storeRepo:       storeRepo,
	}
}

// RequestReservationRequest 发起预约请求DTO
type RequestReservationRequest struct {
	TenantID       uint // 租户ID(从JWT提取)
	RequestStoreID uint // 请求门店(从JWT提取)
	SourceStoreID  uint // 来源门店
	CustomerID     uint // 关联顾客(可选)
	Note           string
	Items          []RequestReservationItem
}

// RequestReservationItem 预约明细项
type RequestReservationItem struct {
	ProductID    uint
	RequestedQty int
}

// RequestReservationResponse 发起预约响应DTO
type RequestReservationResponse struct {
	ReservationID uint   `json:"reservation_id"`
	Status        string `json:"status"`
}

// Execute 执行发起预约
func (uc *RequestReservationUseCase) Execute(ctx context.Context, req RequestReservationRequest) (*RequestReservationResponse, error) {
	// 1. 来源门店必须存在且营业
	store, err := uc.storeRepo.FindByID(ctx, req.TenantID, req.SourceStoreID)
	if err != nil {
		return nil, err
	}
	if !store.Active {
		return nil, catalog.ErrStoreNotFound
	}

	// 2. 校验明细商品存在
	items := make([]reservation.Item, len(req.Items))
	for i, item := range req.Items {
		if _, err := uc.productRepo.FindByID(ctx, req.TenantID, item.ProductID); err != nil {
			return nil, err
		}
		items[i] = reservation.Item{
			ProductID:    item.ProductID,
			RequestedQty: item.RequestedQty,
		}
	}

	// 3. 创建预约单(工厂方法校验门店不同、数量>0)
	resv, err := reservation.NewReservation(req.TenantID, req.RequestStoreID,
		req.SourceStoreID, req.CustomerID, items, req.Note)
	if err != nil {
		return nil, err
	}

	if err := uc.reservationRepo.Create(ctx, resv); err != nil {
		return nil, err
	}

	return &RequestReservationResponse{
		ReservationID: resv.ID,
		Status:        string(resv.Status),
	}, nil
}
