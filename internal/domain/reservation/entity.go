package reservation

import (
	"time"
)

// Status 预约单状态
// 设计说明:
// 1. 使用string类型(流水/审计表直接可读,便于排查)
// 2. 状态流转单向,只有CANCELED可从两个状态到达
type Status string

const (
	StatusRequested Status = "REQUESTED" // 已申请(请求门店发起)
	StatusApproved  Status = "APPROVED"  // 已批准(来源门店占用库存)
	StatusRejected  Status = "REJECTED"  // 已拒绝
	StatusCanceled  Status = "CANCELED"  // 已取消(释放占用)
	StatusFulfilled Status = "FULFILLED" // 已履约(请求门店确认提货)
)

// Reservation 预约单实体(聚合根)
// DDD设计说明:
// 1. 预约是跨门店的库存占用机制:批准后减少来源门店可售量,
//    但不移动库存(实际出库由后续销售或调拨完成)
// 2. Items是聚合内的子实体,必须通过Reservation访问
// 3. 请求门店≠来源门店(向其他门店借货的场景)
type Reservation struct {
	ID             uint
	TenantID       uint
	RequestStoreID uint   // 请求门店(发起方)
	SourceStoreID  uint   // 来源门店(库存被占用方)
	CustomerID     uint   // 关联顾客(可选,代客预约)
	Status         Status
	Note           string // 申请备注
	RejectReason   string // 拒绝原因(拒绝时必填)
	Items          []Item
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Item 预约明细项
// ReservedQty在批准前为0,批准时原子地置为RequestedQty
// (全部明细一起置位,不存在部分批准)
type Item struct {
	ID            uint
	ReservationID uint
	ProductID     uint
	RequestedQty  int // 申请数量
	ReservedQty   int // 占用数量(批准后=申请数量)
}

// NewReservation 创建预约单(工厂方法)
// 业务规则:
// - 请求门店和来源门店不能相同
// - 至少一个明细项,数量必须>0
func NewReservation(tenantID, requestStoreID, sourceStoreID, customerID uint, items []Item, note string) (*Reservation, error) {
	if requestStoreID == sourceStoreID {
		return nil, ErrSameStore
	}
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range items {
		if item.RequestedQty <= 0 {
			return nil, ErrInvalidItemQuantity
		}
	}

	now := time.Now()
	return &Reservation{
		TenantID:       tenantID,
		RequestStoreID: requestStoreID,
		SourceStoreID:  sourceStoreID,
		CustomerID:     customerID,
		Status:         StatusRequested,
		Note:           note,
		Items:          items,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CanTransitionTo 检查是否可以转换到目标状态
// 状态机设计,防止非法状态跳转
// 例如:不能从"已履约"回到"已批准"
func (r *Reservation) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusRequested: {StatusApproved, StatusRejected, StatusCanceled},
		StatusApproved:  {StatusFulfilled, StatusCanceled},
		StatusRejected:  {}, // 终态
		StatusCanceled:  {}, // 终态
		StatusFulfilled: {}, // 终态
	}

	allowed, exists := transitions[r.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
func (r *Reservation) TransitionTo(target Status) error {
	if !r.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	r.Status = target
	r.UpdatedAt = time.Now()
	return nil
}

// Approve 批准预约(领域行为)
// 全部明细的ReservedQty一起置为RequestedQty(全有或全无),
// 可用量校验由应用层在同一事务内完成
func (r *Reservation) Approve() error {
	if err := r.TransitionTo(StatusApproved); err != nil {
		return err
	}
	for i := range r.Items {
		r.Items[i].ReservedQty = r.Items[i].RequestedQty
	}
	return nil
}

// Reject 拒绝预约(领域行为),原因必填
func (r *Reservation) Reject(reason string) error {
	if reason == "" {
		return ErrRejectReasonRequired
	}
	if err := r.TransitionTo(StatusRejected); err != nil {
		return err
	}
	r.RejectReason = reason
	return nil
}

// Cancel 取消预约(领域行为)
// 已批准的预约取消后,占用量不再计入可售量扣减
// (可用量计算只统计APPROVED状态的预约)
func (r *Reservation) Cancel() error {
	return r.TransitionTo(StatusCanceled)
}

// Fulfill 履约确认(领域行为)
// 由请求门店在实际提货后记录;本操作不移动库存
func (r *Reservation) Fulfill() error {
	return r.TransitionTo(StatusFulfilled)
}

// IsSourceStore 检查指定门店是否为来源门店
// 批准/拒绝只能由来源门店操作
func (r *Reservation) IsSourceStore(storeID uint) bool {
	return r.SourceStoreID == storeID
}

// IsRequestStore 检查指定门店是否为请求门店
// 履约确认只能由请求门店操作
func (r *Reservation) IsRequestStore(storeID uint) bool {
	return r.RequestStoreID == storeID
}
