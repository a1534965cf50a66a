package cashier

import (
	"time"
)

// SessionStatus 收银班次状态
type SessionStatus string

const (
	SessionOpen   SessionStatus = "OPEN"   // 进行中
	SessionClosed SessionStatus = "CLOSED" // 已交班
)

// Session 收银班次实体(聚合根)
// DDD设计说明:
// 1. 销售结算的前置条件:门店必须有进行中的班次
//    (收款必须落入某个班次的现金流水,保证日结对账闭环)
// 2. 一个门店同一时间只能有一个进行中的班次
// 3. 交班时记录实际清点金额,与期望金额的差异即为长短款
type Session struct {
	ID            uint
	TenantID      uint
	StoreID       uint
	Status        SessionStatus
	OpenedBy      uint  // 开班人
	ClosedBy      uint  // 交班人
	OpeningFloat  int64 // 备用金(分)
	ClosingAmount int64 // 交班实际清点金额(分)
	OpenedAt      time.Time
	ClosedAt      *time.Time
}

// NewSession 开班(工厂方法)
func NewSession(tenantID, storeID, openedBy uint, openingFloat int64) (*Session, error) {
	if openingFloat < 0 {
		return nil, ErrInvalidAmount
	}
	return &Session{
		TenantID:     tenantID,
		StoreID:      storeID,
		Status:       SessionOpen,
		OpenedBy:     openedBy,
		OpeningFloat: openingFloat,
		OpenedAt:     time.Now(),
	}, nil
}

// Close 交班(领域行为)
func (s *Session) Close(closedBy uint, closingAmount int64) error {
	if s.Status != SessionOpen {
		return ErrSessionNotOpen
	}
	if closingAmount < 0 {
		return ErrInvalidAmount
	}
	now := time.Now()
	s.Status = SessionClosed
	s.ClosedBy = closedBy
	s.ClosingAmount = closingAmount
	s.ClosedAt = &now
	return nil
}

// IsOpen 班次是否进行中
func (s *Session) IsOpen() bool {
	return s.Status == SessionOpen
}

// MovementType 现金流水类型
type MovementType string

const (
	MovementSale       MovementType = "SALE"       // 销售收款
	MovementWithdrawal MovementType = "WITHDRAWAL" // 取款(上缴/找零补充)
	MovementDeposit    MovementType = "DEPOSIT"    // 存入
)

// Movement 现金流水(只增不改)
// 结算时与收款记录同一事务写入,班次期望金额由流水累计得出
type Movement struct {
	ID        uint
	TenantID  uint
	SessionID uint
	Type      MovementType
	Amount    int64  // 金额(分,取款为负)
	SaleID    uint   // 关联销售单(销售收款时设置)
	Note      string // 备注(取款/存入时说明)
	ActorID   uint
	CreatedAt time.Time
}

// NewSaleMovement 创建销售收款流水
func NewSaleMovement(tenantID, sessionID, saleID, actorID uint, amount int64) (*Movement, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return &Movement{
		TenantID:  tenantID,
		SessionID: sessionID,
		Type:      MovementSale,
		Amount:    amount,
		SaleID:    saleID,
		ActorID:   actorID,
		CreatedAt: time.Now(),
	}, nil
}

// NewCashMovement 创建取款/存入流水
// 取款金额记为负数,存入为正数
func NewCashMovement(tenantID, sessionID, actorID uint, mType MovementType, amount int64, note string) (*Movement, error) {
	if mType != MovementWithdrawal && mType != MovementDeposit {
		return nil, ErrInvalidMovementType
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if note == "" {
		return nil, ErrNoteRequired
	}
	if mType == MovementWithdrawal {
		amount = -amount
	}
	return &Movement{
		TenantID:  tenantID,
		SessionID: sessionID,
		Type:      mType,
		Amount:    amount,
		Note:      note,
		ActorID:   actorID,
		CreatedAt: time.Now(),
	}, nil
}
