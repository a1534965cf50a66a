package stock

import (
	"time"
)

// Lot 批号实体(聚合根)
// DDD设计说明:
// 1. Lot是库存聚合的根实体,按(门店,商品,批号,有效期)唯一标识
// 2. 成本使用int64存储"分"为单位(避免浮点数精度问题)
// 3. 数量归零时逻辑下架(Active=false),不物理删除(流水还引用它)
// 4. TenantID贯穿所有实体(多租户隔离,所有查询按租户过滤)
type Lot struct {
	ID         uint
	TenantID   uint       // 租户ID(连锁药房企业)
	StoreID    uint       // 门店ID
	ProductID  uint       // 商品ID
	LotNumber  string     // 批号(药监追溯标识)
	Expiration *time.Time // 有效期(nil表示无有效期,如器械类商品)
	UnitCost   int64      // 单位成本(分,1元=100分)
	Quantity   int        // 当前数量
	Active     bool       // 是否在架(数量归零后下架)
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewLot 创建新批号(工厂方法)
// 业务规则:
// - 数量必须>0(入库才会产生批号)
// - 成本不能为负(允许为0,如赠品)
func NewLot(tenantID, storeID, productID uint, lotNumber string, expiration *time.Time, unitCost int64, quantity int) (*Lot, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if unitCost < 0 {
		return nil, ErrInvalidUnitCost
	}

	now := time.Now()
	return &Lot{
		TenantID:   tenantID,
		StoreID:    storeID,
		ProductID:  productID,
		LotNumber:  lotNumber,
		Expiration: expiration,
		UnitCost:   unitCost,
		Quantity:   quantity,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Take 从批号取货(领域行为)
// 业务规则:
// - 取货数量必须>0且不超过当前数量(数量永不为负)
// - 数量归零时逻辑下架,保留审计历史
func (l *Lot) Take(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if l.Quantity < quantity {
		return NewInsufficientStockError(quantity, l.Quantity)
	}

	l.Quantity -= quantity
	if l.Quantity == 0 {
		l.Active = false
	}
	l.UpdatedAt = time.Now()
	return nil
}

// Add 向批号补货(用于调拨入库、盘盈调整)
// 数量归零后下架的批号,补货时重新上架
func (l *Lot) Add(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	l.Quantity += quantity
	l.Active = true
	l.UpdatedAt = time.Now()
	return nil
}

// IsExpired 检查批号是否过期
func (l *Lot) IsExpired(now time.Time) bool {
	if l.Expiration == nil {
		return false
	}
	return l.Expiration.Before(now)
}

// IsConsumable 检查批号是否可供消耗(在架、有余量且未过期)
// 过期批号不可售也不计入可用量,只能盘点调整出账
func (l *Lot) IsConsumable(now time.Time) bool {
	return l.Active && l.Quantity > 0 && !l.IsExpired(now)
}

// SameKey 检查是否与指定批号键匹配
// 批号键:(门店,商品,批号,有效期),调拨入库按此键upsert目的门店批号
func (l *Lot) SameKey(storeID, productID uint, lotNumber string, expiration *time.Time) bool {
	if l.StoreID != storeID || l.ProductID != productID || l.LotNumber != lotNumber {
		return false
	}
	if l.Expiration == nil || expiration == nil {
		return l.Expiration == nil && expiration == nil
	}
	return l.Expiration.Equal(*expiration)
}
