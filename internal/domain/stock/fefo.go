package stock

import (
	"sort"
	"time"
)

// FEFO(First-Expire-First-Out)消耗计划
//
// 设计说明:
// 1. 计划与执行分离:PlanConsumption是纯函数,只读批号快照,
//    不产生任何副作用,便于单元测试和成本核算复现
// 2. 排序必须确定:同一批号快照必须产生同一消耗顺序
//    (成本核算可复现的前提)
// 3. 库存不足在规划阶段失败,任何批号都不会被改动

// ConsumptionEntry 消耗计划的一项:从某批号取多少
type ConsumptionEntry struct {
	Lot  *Lot // 被消耗的批号
	Take int  // 取货数量
}

// ConsumptionPlan 消耗计划
type ConsumptionPlan struct {
	Entries   []ConsumptionEntry
	Quantity  int   // 计划消耗总量
	TotalCost int64 // 总成本(分) = Σ(取货数量×批号单位成本)
}

// WeightedUnitCost 加权单位成本(分)
// 销售结算用此成本计算毛利:
// 例:2件成本500分的批号+2件成本700分的批号 → (2*500+2*700)/4 = 600分
func (p *ConsumptionPlan) WeightedUnitCost() int64 {
	if p.Quantity == 0 {
		return 0
	}
	return p.TotalCost / int64(p.Quantity)
}

// SortLotsFEFO 按FEFO顺序排序批号(原地排序)
// 排序规则:
// 1. 有效期升序(最先过期的最先消耗)
// 2. 无有效期的批号排最后
// 3. 有效期相同时按批号ID升序(创建顺序,保证确定性)
func SortLotsFEFO(lots []*Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]

		switch {
		case a.Expiration == nil && b.Expiration == nil:
			return a.ID < b.ID
		case a.Expiration == nil:
			return false // 无有效期排后
		case b.Expiration == nil:
			return true
		case a.Expiration.Equal(*b.Expiration):
			return a.ID < b.ID
		default:
			return a.Expiration.Before(*b.Expiration)
		}
	})
}

// PlanConsumption 规划FEFO消耗(纯函数,不改动批号)
//
// 业务流程:
// 1. 过滤出在架、有余量且截至now未过期的批号
// 2. 按FEFO顺序排序
// 3. 逐批号取min(批号数量, 剩余需求),直到需求满足
// 4. 累计总成本(取货数量×单位成本)
//
// 错误:批号总量不足时返回库存不足错误(携带需要/可用数量),
// 调用方已通过可用量预检,此处为事务内的防御性复核
func PlanConsumption(lots []*Lot, quantity int, now time.Time) (*ConsumptionPlan, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	// 1. 过滤可消耗批号
	consumable := make([]*Lot, 0, len(lots))
	total := 0
	for _, lot := range lots {
		if lot.IsConsumable(now) {
			consumable = append(consumable, lot)
			total += lot.Quantity
		}
	}

	// 2. 总量预检:不足则在改动任何批号之前失败
	if total < quantity {
		return nil, NewInsufficientStockError(quantity, total)
	}

	// 3. FEFO排序
	SortLotsFEFO(consumable)

	// 4. 逐批号规划取货
	plan := &ConsumptionPlan{Quantity: quantity}
	remaining := quantity
	for _, lot := range consumable {
		if remaining == 0 {
			break
		}

		take := lot.Quantity
		if take > remaining {
			take = remaining
		}

		plan.Entries = append(plan.Entries, ConsumptionEntry{Lot: lot, Take: take})
		plan.TotalCost += int64(take) * lot.UnitCost
		remaining -= take
	}

	return plan, nil
}
