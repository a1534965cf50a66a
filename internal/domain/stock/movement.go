package stock

import "time"

// MovementType 库存流水类型
type MovementType string

const (
	MovementIn          MovementType = "IN"           // 入库(采购收货)
	MovementOut         MovementType = "OUT"          // 出库(销售结算)
	MovementAdjustPos   MovementType = "ADJUST_POS"   // 盘盈调整
	MovementAdjustNeg   MovementType = "ADJUST_NEG"   // 盘亏调整
	MovementTransferOut MovementType = "TRANSFER_OUT" // 调拨出库
	MovementTransferIn  MovementType = "TRANSFER_IN"  // 调拨入库
)

// IsOutbound 是否为出库类型(数量记为负数)
func (t MovementType) IsOutbound() bool {
	switch t {
	case MovementOut, MovementAdjustNeg, MovementTransferOut:
		return true
	}
	return false
}

// Movement 库存流水(领域模型)
//
// 设计说明:
// 1. 为什么需要库存流水?
//   - 审计需求:药品批号的所有变更必须可追溯(药监合规)
//   - 对账需求:流水签名和应等于批号当前数量
//   - 排查需求:异常库存问题定位
//
// 2. 流水设计原则
//   - 只增不改(Append-Only)
//   - 记录变更前后数量(BeforeQty/AfterQty)
//   - 记录关联业务ID(销售单/调拨单)和操作人
type Movement struct {
	ID         uint
	TenantID   uint         // 租户ID
	StoreID    uint         // 门店ID
	ProductID  uint         // 商品ID
	LotID      uint         // 批号ID
	Type       MovementType // 流水类型
	Quantity   int          // 变更数量(正数=增加,负数=减少)
	BeforeQty  int          // 变更前批号数量
	AfterQty   int          // 变更后批号数量
	Reason     string       // 原因说明
	SaleID     uint         // 关联销售单ID(可选)
	TransferID uint         // 关联调拨单ID(可选)
	ActorID    uint         // 操作人用户ID
	CreatedAt  time.Time
}

// Validate 校验流水自身一致性
// 不变量:AfterQty - BeforeQty == Quantity(签名数量)
// 每次批号变更与流水写入在同一事务内,此校验保证流水和
// 与批号数量始终一致
func (m *Movement) Validate() error {
	if m.AfterQty-m.BeforeQty != m.Quantity {
		return ErrMovementInconsistent
	}
	if m.AfterQty < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// newMovement 流水构造基础
func newMovement(lot *Lot, mType MovementType, quantity, before, after int, actorID uint) *Movement {
	return &Movement{
		TenantID:  lot.TenantID,
		StoreID:   lot.StoreID,
		ProductID: lot.ProductID,
		LotID:     lot.ID,
		Type:      mType,
		Quantity:  quantity,
		BeforeQty: before,
		AfterQty:  after,
		ActorID:   actorID,
		CreatedAt: time.Now(),
	}
}

// NewInMovement 创建入库流水(采购收货)
func NewInMovement(lot *Lot, quantity, before, after int, actorID uint, reason string) *Movement {
	m := newMovement(lot, MovementIn, quantity, before, after, actorID)
	m.Reason = reason
	return m
}

// NewOutMovement 创建出库流水(销售结算)
func NewOutMovement(lot *Lot, quantity, before, after int, saleID, actorID uint) *Movement {
	m := newMovement(lot, MovementOut, -quantity, before, after, actorID)
	m.SaleID = saleID
	return m
}

// NewAdjustMovement 创建盘点调整流水
// delta为正数时记ADJUST_POS,负数时记ADJUST_NEG,reason必填(盘点依据)
func NewAdjustMovement(lot *Lot, delta, before, after int, actorID uint, reason string) *Movement {
	mType := MovementAdjustPos
	if delta < 0 {
		mType = MovementAdjustNeg
	}
	m := newMovement(lot, mType, delta, before, after, actorID)
	m.Reason = reason
	return m
}

// NewTransferOutMovement 创建调拨出库流水
func NewTransferOutMovement(lot *Lot, quantity, before, after int, transferID, actorID uint) *Movement {
	m := newMovement(lot, MovementTransferOut, -quantity, before, after, actorID)
	m.TransferID = transferID
	return m
}

// NewTransferInMovement 创建调拨入库流水
func NewTransferInMovement(lot *Lot, quantity, before, after int, transferID, actorID uint) *Movement {
	m := newMovement(lot, MovementTransferIn, quantity, before, after, actorID)
	m.TransferID = transferID
	return m
}
