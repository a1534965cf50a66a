package stock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// planNow 规划参考时间:早于用例里所有批号的有效期
var planNow = time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

// 测试辅助:构造指定有效期的批号
func makeLot(id uint, expiration string, unitCost int64, quantity int) *Lot {
	var exp *time.Time
	if expiration != "" {
		t, err := time.Parse("2006-01-02", expiration)
		if err != nil {
			panic(err)
		}
		exp = &t
	}
	return &Lot{
		ID:         id,
		TenantID:   1,
		StoreID:    1,
		ProductID:  100,
		LotNumber:  "L" + expiration,
		Expiration: exp,
		UnitCost:   unitCost,
		Quantity:   quantity,
		Active:     true,
	}
}

// TestSortLotsFEFO 测试FEFO排序规则
func TestSortLotsFEFO(t *testing.T) {
	t.Run("有效期升序", func(t *testing.T) {
		lots := []*Lot{
			makeLot(1, "2025-06-01", 500, 10),
			makeLot(2, "2025-01-01", 500, 10),
			makeLot(3, "2025-03-01", 500, 10),
		}

		SortLotsFEFO(lots)

		assert.Equal(t, uint(2), lots[0].ID) // 2025-01-01最先
		assert.Equal(t, uint(3), lots[1].ID)
		assert.Equal(t, uint(1), lots[2].ID)
	})

	t.Run("无有效期批号排最后", func(t *testing.T) {
		lots := []*Lot{
			makeLot(1, "", 500, 10), // 无有效期
			makeLot(2, "2025-12-01", 500, 10),
		}

		SortLotsFEFO(lots)

		assert.Equal(t, uint(2), lots[0].ID)
		assert.Equal(t, uint(1), lots[1].ID)
	})

	t.Run("同有效期按批号ID升序", func(t *testing.T) {
		lots := []*Lot{
			makeLot(9, "2025-01-01", 500, 10),
			makeLot(3, "2025-01-01", 500, 10),
			makeLot(5, "2025-01-01", 500, 10),
		}

		SortLotsFEFO(lots)

		assert.Equal(t, uint(3), lots[0].ID)
		assert.Equal(t, uint(5), lots[1].ID)
		assert.Equal(t, uint(9), lots[2].ID)
	})
}

// TestPlanConsumption_FEFOOrder 测试FEFO消耗顺序
// 场景:1月批号5件+2月批号5件,消耗7件
// 期望:1月批号取完5件,2月批号取2件,共两项
func TestPlanConsumption_FEFOOrder(t *testing.T) {
	lots := []*Lot{
		makeLot(2, "2025-02-01", 500, 5),
		makeLot(1, "2025-01-01", 500, 5),
	}

	plan, err := PlanConsumption(lots, 7, planNow)
	require.NoError(t, err)

	require.Len(t, plan.Entries, 2)
	assert.Equal(t, uint(1), plan.Entries[0].Lot.ID)
	assert.Equal(t, 5, plan.Entries[0].Take)
	assert.Equal(t, uint(2), plan.Entries[1].Lot.ID)
	assert.Equal(t, 2, plan.Entries[1].Take)
}

// TestPlanConsumption_InsufficientStock 测试库存不足拒绝
// 场景:总量10件,请求11件
// 期望:返回库存不足错误,批号数量原封不动(计划是纯函数)
func TestPlanConsumption_InsufficientStock(t *testing.T) {
	lots := []*Lot{
		makeLot(1, "2025-01-01", 500, 5),
		makeLot(2, "2025-02-01", 500, 5),
	}

	plan, err := PlanConsumption(lots, 11, planNow)
	require.Error(t, err)
	assert.Nil(t, plan)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock))
	assert.Contains(t, err.Error(), "需要11")
	assert.Contains(t, err.Error(), "可用10")

	// 批号未被改动
	assert.Equal(t, 5, lots[0].Quantity)
	assert.Equal(t, 5, lots[1].Quantity)
}

// TestPlanConsumption_WeightedCost 测试加权成本计算
// 场景:2件来自成本5.00元的批号,2件来自成本7.00元的批号
// 期望:加权单位成本 = (2*500 + 2*700) / 4 = 600分 = 6.00元
func TestPlanConsumption_WeightedCost(t *testing.T) {
	lots := []*Lot{
		makeLot(1, "2025-01-01", 500, 2),
		makeLot(2, "2025-02-01", 700, 10),
	}

	plan, err := PlanConsumption(lots, 4, planNow)
	require.NoError(t, err)

	assert.Equal(t, int64(2*500+2*700), plan.TotalCost)
	assert.Equal(t, int64(600), plan.WeightedUnitCost())
}

// TestPlanConsumption_Deterministic 测试消耗顺序确定性
// 同一批号快照无论输入顺序如何,消耗顺序必须一致
// (成本核算可复现的前提)
func TestPlanConsumption_Deterministic(t *testing.T) {
	build := func(order []uint) []*Lot {
		byID := map[uint]*Lot{
			1: makeLot(1, "2025-01-01", 500, 3),
			2: makeLot(2, "2025-01-01", 600, 3),
			3: makeLot(3, "", 700, 3),
			4: makeLot(4, "2025-03-01", 800, 3),
		}
		lots := make([]*Lot, 0, len(order))
		for _, id := range order {
			lots = append(lots, byID[id])
		}
		return lots
	}

	permutations := [][]uint{
		{1, 2, 3, 4},
		{4, 3, 2, 1},
		{3, 1, 4, 2},
	}

	for _, perm := range permutations {
		plan, err := PlanConsumption(build(perm), 10, planNow)
		require.NoError(t, err)

		require.Len(t, plan.Entries, 4)
		// 期望顺序:1月(ID 1) → 1月(ID 2) → 3月(ID 4) → 无有效期(ID 3)
		assert.Equal(t, uint(1), plan.Entries[0].Lot.ID)
		assert.Equal(t, uint(2), plan.Entries[1].Lot.ID)
		assert.Equal(t, uint(4), plan.Entries[2].Lot.ID)
		assert.Equal(t, uint(3), plan.Entries[3].Lot.ID)
		assert.Equal(t, 1, plan.Entries[3].Take)
	}
}

// TestPlanConsumption_SkipsRetiredLots 测试已下架批号不参与消耗
func TestPlanConsumption_SkipsRetiredLots(t *testing.T) {
	retired := makeLot(1, "2025-01-01", 500, 0)
	retired.Active = false

	lots := []*Lot{
		retired,
		makeLot(2, "2025-02-01", 500, 5),
	}

	plan, err := PlanConsumption(lots, 5, planNow)
	require.NoError(t, err)

	require.Len(t, plan.Entries, 1)
	assert.Equal(t, uint(2), plan.Entries[0].Lot.ID)
}

// TestPlanConsumption_SkipsExpiredLots 测试过期批号不参与消耗
// 过期批号本来排在FEFO最前,必须被过滤掉,也不计入可用量
func TestPlanConsumption_SkipsExpiredLots(t *testing.T) {
	lots := []*Lot{
		makeLot(1, "2024-06-01", 400, 5), // 相对planNow已过期
		makeLot(2, "2025-02-01", 500, 5),
	}

	plan, err := PlanConsumption(lots, 5, planNow)
	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, uint(2), plan.Entries[0].Lot.ID)
	assert.Equal(t, int64(5*500), plan.TotalCost)

	// 可用量只算未过期的5件,请求6件被拒绝
	_, err = PlanConsumption(lots, 6, planNow)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock))
	assert.Contains(t, err.Error(), "可用5")
}

// TestPlanConsumption_InvalidQuantity 测试非法数量
func TestPlanConsumption_InvalidQuantity(t *testing.T) {
	lots := []*Lot{makeLot(1, "2025-01-01", 500, 5)}

	_, err := PlanConsumption(lots, 0, planNow)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = PlanConsumption(lots, -3, planNow)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
