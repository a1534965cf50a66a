package stock

import (
	"context"
	"time"
)

// Service 库存领域服务接口
// 设计说明:
// 1. 封装跨实体的库存业务逻辑:可用量计算、FEFO消耗执行、收货、盘点
// 2. Consume/Receive/Adjust必须在事务内调用(应用层通过TxManager开启,
//    仓储从ctx提取事务句柄),批号变更与流水写入同一事务提交
type Service interface {
	// AvailableQuantity 可用量计算
	// 可售量 = max(0, 在架未过期批号总量 - 已批准预约占用量)
	// 过期批号不计入(不可售,只能盘点出账)
	// 只读操作,消耗类操作调用前用它做预检
	AvailableQuantity(ctx context.Context, tenantID, storeID, productID uint) (int, error)

	// Consume FEFO消耗执行
	// 锁定批号(FOR UPDATE)后复核可用量,按FEFO顺序扣减批号并逐批号写流水,
	// 返回触及的流水和加权成本,全程同一事务(全有或全无)
	Consume(ctx context.Context, params ConsumeParams) (*ConsumeResult, error)

	// Receive 采购收货
	// 按批号键upsert:存在则加量,不存在则创建新批号,写IN流水
	Receive(ctx context.Context, params ReceiveParams) (*Lot, error)

	// Adjust 盘点调整
	// delta为正记ADJUST_POS,为负记ADJUST_NEG,原因必填
	Adjust(ctx context.Context, params AdjustParams) (*Lot, error)

	// GetLot 查询批号详情
	GetLot(ctx context.Context, tenantID, lotID uint) (*Lot, error)

	// ListLots 分页查询批号
	ListLots(ctx context.Context, tenantID uint, params ListLotsParams) ([]*Lot, int64, error)

	// ListMovements 分页查询流水
	ListMovements(ctx context.Context, tenantID uint, params ListMovementsParams) ([]*Movement, int64, error)
}

// ConsumeParams FEFO消耗参数
type ConsumeParams struct {
	TenantID   uint
	StoreID    uint
	ProductID  uint
	Quantity   int          // 消耗数量
	Type       MovementType // OUT(销售) | TRANSFER_OUT(调拨出库)
	SaleID     uint         // 销售单ID(Type=OUT时设置)
	TransferID uint         // 调拨单ID(Type=TRANSFER_OUT时设置)
	ActorID    uint         // 操作人
}

// ConsumeResult FEFO消耗结果
type ConsumeResult struct {
	Movements        []*Movement // 每个被触及批号一条流水
	TotalCost        int64       // 总成本(分)
	WeightedUnitCost int64       // 加权单位成本(分),销售毛利核算用
}

// LotsTouched 本次消耗触及的批号数
func (r *ConsumeResult) LotsTouched() int {
	return len(r.Movements)
}

// ReceiveParams 采购收货参数
type ReceiveParams struct {
	TenantID   uint
	StoreID    uint
	ProductID  uint
	LotNumber  string
	Expiration *time.Time
	UnitCost   int64 // 单位成本(分)
	Quantity   int
	ActorID    uint
	Reason     string
}

// AdjustParams 盘点调整参数
type AdjustParams struct {
	TenantID uint
	LotID    uint
	Delta    int    // 调整量(正=盘盈,负=盘亏)
	Reason   string // 盘点依据,必填
	ActorID  uint
}

// service 库存领域服务实现
type service struct {
	lots      LotRepository
	movements MovementRepository
	holds     ReservationHolds
}

// NewService 创建库存领域服务
func NewService(lots LotRepository, movements MovementRepository, holds ReservationHolds) Service {
	return &service{
		lots:      lots,
		movements: movements,
		holds:     holds,
	}
}

// AvailableQuantity 可用量计算
func (s *service) AvailableQuantity(ctx context.Context, tenantID, storeID, productID uint) (int, error) {
	// 1. 在架未过期批号总量
	total, err := s.lots.SumActiveQuantity(ctx, tenantID, storeID, productID)
	if err != nil {
		return 0, err
	}

	// 2. 已批准预约占用量
	reserved, err := s.holds.ApprovedQuantity(ctx, tenantID, storeID, productID)
	if err != nil {
		return 0, err
	}

	// 3. 可售量不为负
	available := total - reserved
	if available < 0 {
		available = 0
	}
	return available, nil
}

// Consume FEFO消耗执行
// 业务流程:
// 1. 锁定(门店,商品)的全部在架批号(SELECT FOR UPDATE)
// 2. 复核可用量(批号总量-预约占用),不足则失败且不改动任何批号
// 3. 规划FEFO消耗(纯函数)
// 4. 逐批号扣减并写流水(流水记录变更前后数量)
//
// 持锁复核消除check-then-act竞态:两个并发请求先后获得行锁,
// 后者看到的是前者扣减后的数量,不会超卖
func (s *service) Consume(ctx context.Context, params ConsumeParams) (*ConsumeResult, error) {
	if params.Type != MovementOut && params.Type != MovementTransferOut {
		return nil, ErrInvalidMovementType
	}
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	// 1. 锁定批号
	lots, err := s.lots.LockActiveByProduct(ctx, params.TenantID, params.StoreID, params.ProductID)
	if err != nil {
		return nil, err
	}

	// 2. 持锁复核可用量(扣除过期批号和预约占用)
	now := time.Now()
	total := 0
	for _, lot := range lots {
		if lot.IsConsumable(now) {
			total += lot.Quantity
		}
	}
	reserved, err := s.holds.ApprovedQuantity(ctx, params.TenantID, params.StoreID, params.ProductID)
	if err != nil {
		return nil, err
	}
	if total-reserved < params.Quantity {
		available := total - reserved
		if available < 0 {
			available = 0
		}
		return nil, NewInsufficientStockError(params.Quantity, available)
	}

	// 3. 规划FEFO消耗
	plan, err := PlanConsumption(lots, params.Quantity, now)
	if err != nil {
		return nil, err
	}

	// 4. 执行计划:扣减批号+写流水
	result := &ConsumeResult{
		TotalCost:        plan.TotalCost,
		WeightedUnitCost: plan.WeightedUnitCost(),
	}
	for _, entry := range plan.Entries {
		lot := entry.Lot
		before := lot.Quantity

		if err := lot.Take(entry.Take); err != nil {
			return nil, err
		}
		if err := s.lots.Update(ctx, lot); err != nil {
			return nil, err
		}

		var movement *Movement
		switch params.Type {
		case MovementOut:
			movement = NewOutMovement(lot, entry.Take, before, lot.Quantity, params.SaleID, params.ActorID)
		case MovementTransferOut:
			movement = NewTransferOutMovement(lot, entry.Take, before, lot.Quantity, params.TransferID, params.ActorID)
		}

		if err := movement.Validate(); err != nil {
			return nil, err
		}
		if err := s.movements.Create(ctx, movement); err != nil {
			return nil, err
		}
		result.Movements = append(result.Movements, movement)
	}

	return result, nil
}

// Receive 采购收货
func (s *service) Receive(ctx context.Context, params ReceiveParams) (*Lot, error) {
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if params.UnitCost < 0 {
		return nil, ErrInvalidUnitCost
	}

	// 1. 按批号键查找既有批号(FOR UPDATE)
	lot, err := s.lots.LockByKey(ctx, params.TenantID, params.StoreID, params.ProductID,
		params.LotNumber, params.Expiration)
	if err != nil && err != ErrLotNotFound {
		return nil, err
	}

	// 2. upsert:存在则加量,不存在则创建
	var before int
	if lot != nil {
		before = lot.Quantity
		if err := lot.Add(params.Quantity); err != nil {
			return nil, err
		}
		if err := s.lots.Update(ctx, lot); err != nil {
			return nil, err
		}
	} else {
		lot, err = NewLot(params.TenantID, params.StoreID, params.ProductID,
			params.LotNumber, params.Expiration, params.UnitCost, params.Quantity)
		if err != nil {
			return nil, err
		}
		if err := s.lots.Create(ctx, lot); err != nil {
			return nil, err
		}
	}

	// 3. 写IN流水
	movement := NewInMovement(lot, params.Quantity, before, lot.Quantity, params.ActorID, params.Reason)
	if err := movement.Validate(); err != nil {
		return nil, err
	}
	if err := s.movements.Create(ctx, movement); err != nil {
		return nil, err
	}

	return lot, nil
}

// Adjust 盘点调整
func (s *service) Adjust(ctx context.Context, params AdjustParams) (*Lot, error) {
	if params.Delta == 0 {
		return nil, ErrInvalidQuantity
	}
	if params.Reason == "" {
		return nil, ErrAdjustReasonRequired
	}

	// 1. 查询批号
	lot, err := s.lots.FindByID(ctx, params.TenantID, params.LotID)
	if err != nil {
		return nil, err
	}

	// 2. 应用调整
	before := lot.Quantity
	if params.Delta > 0 {
		if err := lot.Add(params.Delta); err != nil {
			return nil, err
		}
	} else {
		if err := lot.Take(-params.Delta); err != nil {
			return nil, err
		}
	}
	if err := s.lots.Update(ctx, lot); err != nil {
		return nil, err
	}

	// 3. 写调整流水
	movement := NewAdjustMovement(lot, params.Delta, before, lot.Quantity, params.ActorID, params.Reason)
	if err := movement.Validate(); err != nil {
		return nil, err
	}
	if err := s.movements.Create(ctx, movement); err != nil {
		return nil, err
	}

	return lot, nil
}

// GetLot 查询批号详情
func (s *service) GetLot(ctx context.Context, tenantID, lotID uint) (*Lot, error) {
	return s.lots.FindByID(ctx, tenantID, lotID)
}

// ListLots 分页查询批号
func (s *service) ListLots(ctx context.Context, tenantID uint, params ListLotsParams) ([]*Lot, int64, error) {
	return s.lots.List(ctx, tenantID, params)
}

// ListMovements 分页查询流水
func (s *service) ListMovements(ctx context.Context, tenantID uint, params ListMovementsParams) ([]*Movement, int64, error) {
	return s.movements.List(ctx, tenantID, params)
}
