package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// =========================================
// 内存假仓储(单元测试用,不依赖数据库)
// =========================================

type memLotRepo struct {
	lots   map[uint]*Lot
	nextID uint
}

func newMemLotRepo() *memLotRepo {
	return &memLotRepo{lots: make(map[uint]*Lot), nextID: 1}
}

func (r *memLotRepo) Create(_ context.Context, lot *Lot) error {
	lot.ID = r.nextID
	r.nextID++
	r.lots[lot.ID] = lot
	return nil
}

func (r *memLotRepo) Update(_ context.Context, lot *Lot) error {
	if _, ok := r.lots[lot.ID]; !ok {
		return ErrLotNotFound
	}
	r.lots[lot.ID] = lot
	return nil
}

func (r *memLotRepo) FindByID(_ context.Context, tenantID, id uint) (*Lot, error) {
	lot, ok := r.lots[id]
	if !ok || lot.TenantID != tenantID {
		return nil, ErrLotNotFound
	}
	return lot, nil
}

func (r *memLotRepo) FindActiveByProduct(_ context.Context, tenantID, storeID, productID uint) ([]*Lot, error) {
	var result []*Lot
	for _, lot := range r.lots {
		if lot.TenantID == tenantID && lot.StoreID == storeID && lot.ProductID == productID && lot.Active {
			result = append(result, lot)
		}
	}
	return result, nil
}

func (r *memLotRepo) LockActiveByProduct(ctx context.Context, tenantID, storeID, productID uint) ([]*Lot, error) {
	return r.FindActiveByProduct(ctx, tenantID, storeID, productID)
}

func (r *memLotRepo) LockByKey(_ context.Context, tenantID, storeID, productID uint, lotNumber string, expiration *time.Time) (*Lot, error) {
	for _, lot := range r.lots {
		if lot.TenantID == tenantID && lot.SameKey(storeID, productID, lotNumber, expiration) {
			return lot, nil
		}
	}
	return nil, ErrLotNotFound
}

func (r *memLotRepo) SumActiveQuantity(ctx context.Context, tenantID, storeID, productID uint) (int, error) {
	lots, _ := r.FindActiveByProduct(ctx, tenantID, storeID, productID)
	total := 0
	for _, lot := range lots {
		if lot.IsExpired(time.Now()) {
			continue
		}
		total += lot.Quantity
	}
	return total, nil
}

func (r *memLotRepo) List(_ context.Context, _ uint, _ ListLotsParams) ([]*Lot, int64, error) {
	return nil, 0, nil
}

type memMovementRepo struct {
	movements []*Movement
}

func (r *memMovementRepo) Create(_ context.Context, m *Movement) error {
	m.ID = uint(len(r.movements) + 1)
	r.movements = append(r.movements, m)
	return nil
}

func (r *memMovementRepo) FindByTransfer(_ context.Context, tenantID, transferID uint, mType MovementType) ([]*Movement, error) {
	var result []*Movement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.TransferID == transferID && m.Type == mType {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *memMovementRepo) List(_ context.Context, _ uint, _ ListMovementsParams) ([]*Movement, int64, error) {
	return r.movements, int64(len(r.movements)), nil
}

func (r *memMovementRepo) VerifyLotLedger(_ context.Context, _, _ uint) error {
	return nil
}

// fakeHolds 固定占用量的预约查询假实现
type fakeHolds struct {
	approved int
}

func (h *fakeHolds) ApprovedQuantity(_ context.Context, _, _, _ uint) (int, error) {
	return h.approved, nil
}

func (h *fakeHolds) ApprovedQuantityExcluding(_ context.Context, _, _, _, _ uint) (int, error) {
	return h.approved, nil
}

// =========================================
// 测试环境装配
// =========================================

type stockFixture struct {
	lots      *memLotRepo
	movements *memMovementRepo
	holds     *fakeHolds
	svc       Service
}

func newStockFixture() *stockFixture {
	lots := newMemLotRepo()
	movements := &memMovementRepo{}
	holds := &fakeHolds{}
	return &stockFixture{
		lots:      lots,
		movements: movements,
		holds:     holds,
		svc:       NewService(lots, movements, holds),
	}
}

func (f *stockFixture) seedLot(expiration string, unitCost int64, quantity int) *Lot {
	var exp *time.Time
	if expiration != "" {
		t, _ := time.Parse("2006-01-02", expiration)
		exp = &t
	}
	lot, err := NewLot(1, 1, 100, "L"+expiration, exp, unitCost, quantity)
	if err != nil {
		panic(err)
	}
	f.lots.Create(context.Background(), lot)
	return lot
}

// =========================================
// 测试用例
// =========================================

// TestService_AvailableQuantity 测试可用量计算
// 场景:批号10件,已批准预约占用4件 → 可售6件
func TestService_AvailableQuantity(t *testing.T) {
	f := newStockFixture()
	f.seedLot("2099-06-01", 500, 10)
	f.holds.approved = 4

	available, err := f.svc.AvailableQuantity(context.Background(), 1, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 6, available)
}

// TestService_AvailableQuantity_NeverNegative 测试可用量不为负
func TestService_AvailableQuantity_NeverNegative(t *testing.T) {
	f := newStockFixture()
	f.seedLot("2099-06-01", 500, 3)
	f.holds.approved = 10 // 占用超过库存(预约批准后库存被盘亏的场景)

	available, err := f.svc.AvailableQuantity(context.Background(), 1, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, available)
}

// TestService_AvailableQuantity_ExcludesExpiredLots 测试过期批号不计入可用量
// 场景:过期批号8件+未过期批号10件 → 可售只有10件
func TestService_AvailableQuantity_ExcludesExpiredLots(t *testing.T) {
	f := newStockFixture()
	f.seedLot("2020-01-01", 500, 8) // 已过期
	f.seedLot("2099-06-01", 500, 10)

	available, err := f.svc.AvailableQuantity(context.Background(), 1, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, available)
}

// TestService_Consume 测试FEFO消耗执行
func TestService_Consume(t *testing.T) {
	f := newStockFixture()
	janLot := f.seedLot("2099-01-01", 500, 5)
	febLot := f.seedLot("2099-02-01", 700, 5)

	result, err := f.svc.Consume(context.Background(), ConsumeParams{
		TenantID:  1,
		StoreID:   1,
		ProductID: 100,
		Quantity:  7,
		Type:      MovementOut,
		SaleID:    42,
		ActorID:   9,
	})
	require.NoError(t, err)

	// 1月批号耗尽并下架,2月批号剩3件
	assert.Equal(t, 0, janLot.Quantity)
	assert.False(t, janLot.Active)
	assert.Equal(t, 3, febLot.Quantity)

	// 每个触及批号一条流水,记录前后数量
	require.Equal(t, 2, result.LotsTouched())
	first := result.Movements[0]
	assert.Equal(t, MovementOut, first.Type)
	assert.Equal(t, -5, first.Quantity)
	assert.Equal(t, 5, first.BeforeQty)
	assert.Equal(t, 0, first.AfterQty)
	assert.Equal(t, uint(42), first.SaleID)

	second := result.Movements[1]
	assert.Equal(t, -2, second.Quantity)
	assert.Equal(t, 5, second.BeforeQty)
	assert.Equal(t, 3, second.AfterQty)

	// 加权成本:(5*500 + 2*700) / 7
	assert.Equal(t, int64(5*500+2*700), result.TotalCost)
	assert.Equal(t, int64((5*500+2*700)/7), result.WeightedUnitCost)
}

// TestService_Consume_SkipsExpiredLots 测试过期批号不被消耗
// 过期批号在FEFO顺序里排最前,必须被跳过而不是卖出去;
// 可用量也只按未过期批号复核
func TestService_Consume_SkipsExpiredLots(t *testing.T) {
	f := newStockFixture()
	expiredLot := f.seedLot("2020-01-01", 400, 8) // 已过期
	freshLot := f.seedLot("2099-06-01", 500, 10)

	result, err := f.svc.Consume(context.Background(), ConsumeParams{
		TenantID: 1, StoreID: 1, ProductID: 100,
		Quantity: 6, Type: MovementOut, ActorID: 9,
	})
	require.NoError(t, err)

	// 只动未过期批号,成本按未过期批号计
	assert.Equal(t, 8, expiredLot.Quantity)
	assert.Equal(t, 4, freshLot.Quantity)
	assert.Equal(t, int64(6*500), result.TotalCost)

	// 过期的8件不计入可用量:再要5件(未过期只剩4件)被拒绝
	_, err = f.svc.Consume(context.Background(), ConsumeParams{
		TenantID: 1, StoreID: 1, ProductID: 100,
		Quantity: 5, Type: MovementOut, ActorID: 9,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock))
}

// TestService_Consume_RespectsReservationHolds 测试消耗扣除预约占用
// 场景:批号10件,已批准预约占用4件
// 期望:消耗7件失败(可用6),消耗6件成功
func TestService_Consume_RespectsReservationHolds(t *testing.T) {
	f := newStockFixture()
	lot := f.seedLot("2099-06-01", 500, 10)
	f.holds.approved = 4

	_, err := f.svc.Consume(context.Background(), ConsumeParams{
		TenantID: 1, StoreID: 1, ProductID: 100,
		Quantity: 7, Type: MovementOut, ActorID: 9,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock))
	assert.Equal(t, 10, lot.Quantity) // 未被改动

	_, err = f.svc.Consume(context.Background(), ConsumeParams{
		TenantID: 1, StoreID: 1, ProductID: 100,
		Quantity: 6, Type: MovementOut, ActorID: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, lot.Quantity)
}

// TestService_Consume_InsufficientMutatesNothing 测试库存不足时零改动
func TestService_Consume_InsufficientMutatesNothing(t *testing.T) {
	f := newStockFixture()
	janLot := f.seedLot("2099-01-01", 500, 5)
	febLot := f.seedLot("2099-02-01", 500, 5)

	_, err := f.svc.Consume(context.Background(), ConsumeParams{
		TenantID: 1, StoreID: 1, ProductID: 100,
		Quantity: 11, Type: MovementOut, ActorID: 9,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock))

	assert.Equal(t, 5, janLot.Quantity)
	assert.Equal(t, 5, febLot.Quantity)
	assert.Empty(t, f.movements.movements)
}

// TestService_Consume_RejectsInboundType 测试消耗只接受出库类型
func TestService_Consume_RejectsInboundType(t *testing.T) {
	f := newStockFixture()
	f.seedLot("2099-06-01", 500, 10)

	_, err := f.svc.Consume(context.Background(), ConsumeParams{
		TenantID: 1, StoreID: 1, ProductID: 100,
		Quantity: 1, Type: MovementIn, ActorID: 9,
	})
	assert.ErrorIs(t, err, ErrInvalidMovementType)
}

// TestService_Receive 测试采购收货upsert
func TestService_Receive(t *testing.T) {
	f := newStockFixture()
	exp := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// 首次收货:创建新批号
	lot, err := f.svc.Receive(context.Background(), ReceiveParams{
		TenantID: 1, StoreID: 1, ProductID: 100,
		LotNumber: "B2401", Expiration: &exp,
		UnitCost: 350, Quantity: 20, ActorID: 9, Reason: "采购入库",
	})
	require.NoError(t, err)
	assert.Equal(t, 20, lot.Quantity)
	assert.True(t, lot.Active)

	// 同批号键再次收货:数量累加,不产生新批号
	lot2, err := f.svc.Receive(context.Background(), ReceiveParams{
		TenantID: 1, StoreID: 1, ProductID: 100,
		LotNumber: "B2401", Expiration: &exp,
		UnitCost: 350, Quantity: 10, ActorID: 9, Reason: "采购入库",
	})
	require.NoError(t, err)
	assert.Equal(t, lot.ID, lot2.ID)
	assert.Equal(t, 30, lot2.Quantity)

	// 两条IN流水
	require.Len(t, f.movements.movements, 2)
	assert.Equal(t, MovementIn, f.movements.movements[0].Type)
	assert.Equal(t, 20, f.movements.movements[1].BeforeQty)
	assert.Equal(t, 30, f.movements.movements[1].AfterQty)
}

// TestService_Adjust 测试盘点调整
func TestService_Adjust(t *testing.T) {
	f := newStockFixture()
	lot := f.seedLot("2099-06-01", 500, 10)

	t.Run("盘亏", func(t *testing.T) {
		updated, err := f.svc.Adjust(context.Background(), AdjustParams{
			TenantID: 1, LotID: lot.ID, Delta: -3, Reason: "月度盘点破损", ActorID: 9,
		})
		require.NoError(t, err)
		assert.Equal(t, 7, updated.Quantity)

		last := f.movements.movements[len(f.movements.movements)-1]
		assert.Equal(t, MovementAdjustNeg, last.Type)
		assert.Equal(t, -3, last.Quantity)
	})

	t.Run("盘盈", func(t *testing.T) {
		updated, err := f.svc.Adjust(context.Background(), AdjustParams{
			TenantID: 1, LotID: lot.ID, Delta: 2, Reason: "月度盘点多出", ActorID: 9,
		})
		require.NoError(t, err)
		assert.Equal(t, 9, updated.Quantity)

		last := f.movements.movements[len(f.movements.movements)-1]
		assert.Equal(t, MovementAdjustPos, last.Type)
	})

	t.Run("原因必填", func(t *testing.T) {
		_, err := f.svc.Adjust(context.Background(), AdjustParams{
			TenantID: 1, LotID: lot.ID, Delta: -1, Reason: "", ActorID: 9,
		})
		assert.ErrorIs(t, err, ErrAdjustReasonRequired)
	})

	t.Run("盘亏不能超过批号数量", func(t *testing.T) {
		_, err := f.svc.Adjust(context.Background(), AdjustParams{
			TenantID: 1, LotID: lot.ID, Delta: -100, Reason: "异常", ActorID: 9,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock))
	})
}
