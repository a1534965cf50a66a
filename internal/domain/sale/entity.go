package sale

import (
	"time"
)

// Status 销售单状态
type Status string

const (
	StatusOpen     Status = "OPEN"     // 开单中(可增删明细)
	StatusPaid     Status = "PAID"     // 已结算(库存已FEFO出库)
	StatusCanceled Status = "CANCELED" // 已取消(未结算的单)
)

// PaymentMethod 收款方式
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"   // 现金
	PaymentCard   PaymentMethod = "CARD"   // 银行卡
	PaymentPix    PaymentMethod = "PIX"    // Pix即时转账
	PaymentCredit PaymentMethod = "CREDIT" // 赊账
)

// Sale 销售单实体(聚合根)
// DDD设计说明:
// 1. Sale是销售聚合的根实体,SaleItem是子实体
// 2. 金额全部使用int64存储"分"(避免浮点数精度问题)
// 3. 结算时才消耗库存(FEFO出库),开单阶段不占用库存
// 4. 结算后每个明细记录加权成本(UnitCost),用于毛利报表
type Sale struct {
	ID         uint
	TenantID   uint
	StoreID    uint   // 归属门店
	SaleNo     string // 销售单号(业务主键,全局唯一)
	CustomerID uint   // 关联顾客(可选)
	Status     Status
	Discount   int64 // 整单优惠(分)
	Total      int64 // 应收金额(分) = Σ明细小计 - 整单优惠
	Items      []Item
	PaidAt     *time.Time // 结算时间
	ActorID    uint       // 开单人
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Item 销售明细项
// UnitCost/TotalCost在结算时由FEFO消耗结果回填
// (加权成本,历史快照,不随后续进货成本变化)
type Item struct {
	ID        uint
	SaleID    uint
	ProductID uint
	Quantity  int
	UnitPrice int64 // 售价(分),开单时的价格快照
	Discount  int64 // 明细优惠(分)
	UnitCost  int64 // 加权单位成本(分),结算时回填
	TotalCost int64 // 明细总成本(分),结算时回填
}

// Subtotal 明细小计(分)
func (i *Item) Subtotal() int64 {
	return i.UnitPrice*int64(i.Quantity) - i.Discount
}

// NewSale 创建销售单(工厂方法)
func NewSale(tenantID, storeID, customerID, actorID uint, items []Item, discount int64) (*Sale, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if item.UnitPrice < 0 || item.Discount < 0 {
			return nil, ErrInvalidAmount
		}
	}
	if discount < 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	s := &Sale{
		TenantID:   tenantID,
		StoreID:    storeID,
		SaleNo:     GenerateSaleNo(),
		CustomerID: customerID,
		Status:     StatusOpen,
		Discount:   discount,
		Items:      items,
		ActorID:    actorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.Total = s.CalculateTotal()
	if s.Total < 0 {
		return nil, ErrInvalidAmount
	}
	return s, nil
}

// CalculateTotal 计算应收金额
// 根据明细实时计算,用于校验前端传递的金额是否被篡改
func (s *Sale) CalculateTotal() int64 {
	var total int64
	for _, item := range s.Items {
		total += item.Subtotal()
	}
	return total - s.Discount
}

// CanTransitionTo 检查是否可以转换到目标状态
func (s *Sale) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusOpen:     {StatusPaid, StatusCanceled},
		StatusPaid:     {}, // 终态(退货走冲正调整,不回退销售单)
		StatusCanceled: {}, // 终态
	}

	allowed, exists := transitions[s.Status]
	if !exists {
		return false
	}
	for _, st := range allowed {
		if st == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
func (s *Sale) TransitionTo(target Status) error {
	if !s.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	s.Status = target
	s.UpdatedAt = time.Now()
	return nil
}

// Settle 结算(领域行为)
// 置为已结算并记录时间;库存消耗和成本回填由应用层
// 在同一事务内完成
func (s *Sale) Settle() error {
	if err := s.TransitionTo(StatusPaid); err != nil {
		return err
	}
	now := time.Now()
	s.PaidAt = &now
	return nil
}

// Cancel 取消销售单(领域行为),仅未结算的单可取消
func (s *Sale) Cancel() error {
	return s.TransitionTo(StatusCanceled)
}

// SetItemCost 回填明细加权成本(结算时调用)
// 按明细下标定位:同一商品可能出现在多条明细上
// (如不同折扣分行),按商品ID回填会把成本都记到第一条上
func (s *Sale) SetItemCost(index int, unitCost, totalCost int64) {
	if index < 0 || index >= len(s.Items) {
		return
	}
	s.Items[index].UnitCost = unitCost
	s.Items[index].TotalCost = totalCost
}

// IsOwnedByStore 检查销售单是否属于指定门店
func (s *Sale) IsOwnedByStore(storeID uint) bool {
	return s.StoreID == storeID
}

// Payment 收款记录
// 结算时与CashMovement一起写入(收款进入当班收银流水)
type Payment struct {
	ID        uint
	TenantID  uint
	SaleID    uint
	Method    PaymentMethod
	Amount    int64 // 收款金额(分)
	CreatedAt time.Time
}

// NewPayment 创建收款记录
func NewPayment(tenantID, saleID uint, method PaymentMethod, amount int64) (*Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	switch method {
	case PaymentCash, PaymentCard, PaymentPix, PaymentCredit:
	default:
		return nil, ErrInvalidPaymentMethod
	}
	return &Payment{
		TenantID:  tenantID,
		SaleID:    saleID,
		Method:    method,
		Amount:    amount,
		CreatedAt: time.Now(),
	}, nil
}
