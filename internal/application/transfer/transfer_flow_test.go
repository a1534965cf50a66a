package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/domain/transfer"
	"github.com/xiebiao/pharmacy/internal/domain/user"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// =========================================
// 内存假仓储(单元测试用,不依赖数据库)
// =========================================

type passTx struct{}

func (passTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memTransferRepo struct {
	transfers map[uint]*transfer.Transfer
	nextID    uint
}

func newMemTransferRepo() *memTransferRepo {
	return &memTransferRepo{transfers: make(map[uint]*transfer.Transfer), nextID: 1}
}

func (r *memTransferRepo) Create(_ context.Context, t *transfer.Transfer) error {
	t.ID = r.nextID
	r.nextID++
	r.transfers[t.ID] = t
	return nil
}

func (r *memTransferRepo) Update(_ context.Context, t *transfer.Transfer) error {
	r.transfers[t.ID] = t
	return nil
}

func (r *memTransferRepo) FindByID(_ context.Context, tenantID, id uint) (*transfer.Transfer, error) {
	t, ok := r.transfers[id]
	if !ok || t.TenantID != tenantID {
		return nil, transfer.ErrTransferNotFound
	}
	return t, nil
}

func (r *memTransferRepo) LockByID(ctx context.Context, tenantID, id uint) (*transfer.Transfer, error) {
	return r.FindByID(ctx, tenantID, id)
}

func (r *memTransferRepo) List(_ context.Context, _ uint, _ transfer.ListParams) ([]*transfer.Transfer, int64, error) {
	return nil, 0, nil
}

type memLotRepo struct {
	lots   map[uint]*stock.Lot
	nextID uint
}

func newMemLotRepo() *memLotRepo {
	return &memLotRepo{lots: make(map[uint]*stock.Lot), nextID: 1}
}

func (r *memLotRepo) Create(_ context.Context, lot *stock.Lot) error {
	lot.ID = r.nextID
	r.nextID++
	r.lots[lot.ID] = lot
	return nil
}

func (r *memLotRepo) Update(_ context.Context, lot *stock.Lot) error {
	r.lots[lot.ID] = lot
	return nil
}

func (r *memLotRepo) FindByID(_ context.Context, tenantID, id uint) (*stock.Lot, error) {
	lot, ok := r.lots[id]
	if !ok || lot.TenantID != tenantID {
		return nil, stock.ErrLotNotFound
	}
	return lot, nil
}

func (r *memLotRepo) FindActiveByProduct(_ context.Context, tenantID, storeID, productID uint) ([]*stock.Lot, error) {
	var result []*stock.Lot
	for _, lot := range r.lots {
		if lot.TenantID == tenantID && lot.StoreID == storeID && lot.ProductID == productID && lot.Active {
			result = append(result, lot)
		}
	}
	return result, nil
}

func (r *memLotRepo) LockActiveByProduct(ctx context.Context, tenantID, storeID, productID uint) ([]*stock.Lot, error) {
	return r.FindActiveByProduct(ctx, tenantID, storeID, productID)
}

func (r *memLotRepo) LockByKey(_ context.Context, tenantID, storeID, productID uint, lotNumber string, expiration *time.Time) (*stock.Lot, error) {
	for _, lot := range r.lots {
		if lot.TenantID == tenantID && lot.SameKey(storeID, productID, lotNumber, expiration) {
			return lot, nil
		}
	}
	return nil, stock.ErrLotNotFound
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

func (r *memLotRepo) List(_ context.Context, _ uint, _ stock.ListLotsParams) ([]*stock.Lot, int64, error) {
	return nil, 0, nil
}

type memMovementRepo struct {
	movements []*stock.Movement
}

func (r *memMovementRepo) Create(_ context.Context, m *stock.Movement) error {
	m.ID = uint(len(r.movements) + 1)
	r.movements = append(r.movements, m)
	return nil
}

func (r *memMovementRepo) FindByTransfer(_ context.Context, tenantID, transferID uint, mType stock.MovementType) ([]*stock.Movement, error) {
	var result []*stock.Movement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.TransferID == transferID && m.Type == mType {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *memMovementRepo) List(_ context.Context, _ uint, _ stock.ListMovementsParams) ([]*stock.Movement, int64, error) {
	return r.movements, int64(len(r.movements)), nil
}

func (r *memMovementRepo) VerifyLotLedger(_ context.Context, _, _ uint) error {
	return nil
}

type noHolds struct{}

func (noHolds) ApprovedQuantity(_ context.Context, _, _, _ uint) (int, error) { return 0, nil }
func (noHolds) ApprovedQuantityExcluding(_ context.Context, _, _, _, _ uint) (int, error) {
	return 0, nil
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) Notify(routingKey string, _ interface{}) {
	n.events = append(n.events, routingKey)
}

// =========================================
// 测试环境装配
// =========================================

const (
	originStore = uint(10)
	destStore   = uint(20)
)

type transferEnv struct {
	transferRepo *memTransferRepo
	lotRepo      *memLotRepo
	movementRepo *memMovementRepo
	notifier     *recordingNotifier
	send         *SendTransferUseCase
	receive      *ReceiveTransferUseCase
}

func newTransferEnv() *transferEnv {
	env := &transferEnv{
		transferRepo: newMemTransferRepo(),
		lotRepo:      newMemLotRepo(),
		movementRepo: &memMovementRepo{},
		notifier:     &recordingNotifier{},
	}
	stockService := stock.NewService(env.lotRepo, env.movementRepo, noHolds{})
	env.send = NewSendTransferUseCase(env.transferRepo, stockService, passTx{}, env.notifier)
	env.receive = NewReceiveTransferUseCase(env.transferRepo, env.lotRepo, env.movementRepo,
		passTx{}, env.notifier)
	return env
}

func (env *transferEnv) seedLot(t *testing.T, storeID, productID uint, lotNumber string, expiration *time.Time, unitCost int64, quantity int) *stock.Lot {
	t.Helper()
	lot, err := stock.NewLot(1, storeID, productID, lotNumber, expiration, unitCost, quantity)
	require.NoError(t, err)
	require.NoError(t, env.lotRepo.Create(context.Background(), lot))
	return lot
}

func (env *transferEnv) seedDraft(t *testing.T, items []transfer.Item) *transfer.Transfer {
	t.Helper()
	tr, err := transfer.NewTransfer(1, originStore, destStore, items, "补货")
	require.NoError(t, err)
	require.NoError(t, env.transferRepo.Create(context.Background(), tr))
	return tr
}

func daysFromNow(days int) *time.Time {
	d := time.Now().AddDate(0, 0, days)
	return &d
}

// =========================================
// 调拨流程测试
// =========================================

// 发货→入库往返:目的门店批号复刻来源批号(批号/有效期/成本)
func TestTransferRoundTrip(t *testing.T) {
	env := newTransferEnv()
	exp := daysFromNow(90)
	env.seedLot(t, originStore, 1, "LOT-A", exp, 500, 10)
	tr := env.seedDraft(t, []transfer.Item{{ProductID: 1, RequestedQty: 4}})

	// 来源门店发货
	sendResp, err := env.send.Execute(context.Background(), SendTransferRequest{
		TenantID: 1, StoreID: originStore, ActorID: 5, ActorRole: user.RolePharmacist, TransferID: tr.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, string(transfer.StatusSent), sendResp.Status)
	assert.Equal(t, int64(2000), sendResp.TotalCost) // 4 × 500分

	// 来源批号已扣减,TRANSFER_OUT流水已写
	originLot, _ := env.lotRepo.FindByID(context.Background(), 1, 1)
	assert.Equal(t, 6, originLot.Quantity)
	outs, _ := env.movementRepo.FindByTransfer(context.Background(), 1, tr.ID, stock.MovementTransferOut)
	require.Len(t, outs, 1)
	assert.Equal(t, -4, outs[0].Quantity)

	// 目的门店入库
	recvResp, err := env.receive.Execute(context.Background(), ReceiveTransferRequest{
		TenantID: 1, StoreID: destStore, ActorID: 6, ActorRole: user.RolePharmacist, TransferID: tr.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, string(transfer.StatusReceived), recvResp.Status)
	assert.Equal(t, 1, recvResp.LotsReceived)

	// 目的批号复刻:同批号/有效期/成本
	destLot, err := env.lotRepo.LockByKey(context.Background(), 1, destStore, 1, "LOT-A", exp)
	require.NoError(t, err)
	assert.Equal(t, 4, destLot.Quantity)
	assert.Equal(t, int64(500), destLot.UnitCost)

	// TRANSFER_IN流水已写
	ins, _ := env.movementRepo.FindByTransfer(context.Background(), 1, tr.ID, stock.MovementTransferIn)
	require.Len(t, ins, 1)
	assert.Equal(t, 4, ins[0].Quantity)

	assert.Contains(t, env.notifier.events, "transfer.sent")
	assert.Contains(t, env.notifier.events, "transfer.received")
}

// 发货按FEFO跨批号,入库按流水逐批号复刻
func TestTransferReceiveReplicatesMultipleLots(t *testing.T) {
	env := newTransferEnv()
	expA := daysFromNow(30)
	expB := daysFromNow(60)
	env.seedLot(t, originStore, 1, "LOT-A", expA, 500, 2)
	env.seedLot(t, originStore, 1, "LOT-B", expB, 700, 5)
	tr := env.seedDraft(t, []transfer.Item{{ProductID: 1, RequestedQty: 4}})

	_, err := env.send.Execute(context.Background(), SendTransferRequest{
		TenantID: 1, StoreID: originStore, ActorID: 5, ActorRole: user.RolePharmacist, TransferID: tr.ID,
	})
	require.NoError(t, err)

	recvResp, err := env.receive.Execute(context.Background(), ReceiveTransferRequest{
		TenantID: 1, StoreID: destStore, ActorID: 6, ActorRole: user.RolePharmacist, TransferID: tr.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, recvResp.LotsReceived)

	// FEFO:先近效期LOT-A全量2件,再LOT-B 2件
	destA, err := env.lotRepo.LockByKey(context.Background(), 1, destStore, 1, "LOT-A", expA)
	require.NoError(t, err)
	assert.Equal(t, 2, destA.Quantity)
	assert.Equal(t, int64(500), destA.UnitCost)

	destB, err := env.lotRepo.LockByKey(context.Background(), 1, destStore, 1, "LOT-B", expB)
	require.NoError(t, err)
	assert.Equal(t, 2, destB.Quantity)
	assert.Equal(t, int64(700), destB.UnitCost)
}

// 重复入库被状态机拒绝(防止目的批号重复加量)
func TestTransferReceiveTwiceRejected(t *testing.T) {
	env := newTransferEnv()
	exp := daysFromNow(90)
	env.seedLot(t, originStore, 1, "LOT-A", exp, 500, 10)
	tr := env.seedDraft(t, []transfer.Item{{ProductID: 1, RequestedQty: 3}})

	_, err := env.send.Execute(context.Background(), SendTransferRequest{
		TenantID: 1, StoreID: originStore, ActorID: 5, ActorRole: user.RolePharmacist, TransferID: tr.ID,
	})
	require.NoError(t, err)

	req := ReceiveTransferRequest{TenantID: 1, StoreID: destStore, ActorID: 6, ActorRole: user.RolePharmacist, TransferID: tr.ID}
	_, err = env.receive.Execute(context.Background(), req)
	require.NoError(t, err)

	_, err = env.receive.Execute(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidStateTransition))

	// 目的批号没有被重复加量
	destLot, err := env.lotRepo.LockByKey(context.Background(), 1, destStore, 1, "LOT-A", exp)
	require.NoError(t, err)
	assert.Equal(t, 3, destLot.Quantity)
}

// 部分发货:数量不超过申请上限,整单只能发货一次
func TestTransferPartialSend(t *testing.T) {
	env := newTransferEnv()
	env.seedLot(t, originStore, 1, "LOT-A", daysFromNow(90), 500, 10)
	env.seedLot(t, originStore, 2, "LOT-C", daysFromNow(90), 300, 10)
	tr := env.seedDraft(t, []transfer.Item{
		{ProductID: 1, RequestedQty: 5},
		{ProductID: 2, RequestedQty: 4},
	})

	// 只发商品1的3件
	_, err := env.send.Execute(context.Background(), SendTransferRequest{
		TenantID: 1, StoreID: originStore, ActorID: 5, ActorRole: user.RolePharmacist, TransferID: tr.ID,
		Partial: map[uint]int{1: 3},
	})
	require.NoError(t, err)

	lot1, _ := env.lotRepo.FindByID(context.Background(), 1, 1)
	assert.Equal(t, 7, lot1.Quantity)
	lot2, _ := env.lotRepo.FindByID(context.Background(), 1, 2)
	assert.Equal(t, 10, lot2.Quantity) // 商品2未发货

	// 发货后不能再补发(整单一次性)
	_, err = env.send.Execute(context.Background(), SendTransferRequest{
		TenantID: 1, StoreID: originStore, ActorID: 5, ActorRole: user.RolePharmacist, TransferID: tr.ID,
		Partial: map[uint]int{2: 4},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidStateTransition))
}

// 部分发货数量超过申请上限被拒绝
func TestTransferPartialSendExceedsCap(t *testing.T) {
	env := newTransferEnv()
	env.seedLot(t, originStore, 1, "LOT-A", daysFromNow(90), 500, 100)
	tr := env.seedDraft(t, []transfer.Item{{ProductID: 1, RequestedQty: 5}})

	_, err := env.send.Execute(context.Background(), SendTransferRequest{
		TenantID: 1, StoreID: originStore, ActorID: 5, ActorRole: user.RolePharmacist, TransferID: tr.ID,
		Partial: map[uint]int{1: 8},
	})
	assert.ErrorIs(t, err, transfer.ErrExceedsRequestedQty)
}

// 发货可用量不足:整单失败,调拨单保持DRAFT
func TestTransferSendInsufficientAborts(t *testing.T) {
	env := newTransferEnv()
	env.seedLot(t, originStore, 1, "LOT-A", daysFromNow(90), 500, 2)
	tr := env.seedDraft(t, []transfer.Item{{ProductID: 1, RequestedQty: 5}})

	_, err := env.send.Execute(context.Background(), SendTransferRequest{
		TenantID: 1, StoreID: originStore, ActorID: 5, ActorRole: user.RolePharmacist, TransferID: tr.ID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock))
}

// 非来源门店发货、非目的门店入库都被拒绝
func TestTransferStoreAuthority(t *testing.T) {
	env := newTransferEnv()
	env.seedLot(t, originStore, 1, "LOT-A", daysFromNow(90), 500, 10)
	tr := env.seedDraft(t, []transfer.Item{{ProductID: 1, RequestedQty: 2}})

	_, err := env.send.Execute(context.Background(), SendTransferRequest{
		TenantID: 1, StoreID: destStore, ActorID: 5, ActorRole: user.RolePharmacist, TransferID: tr.ID, // 目的门店试图发货
	})
	assert.ErrorIs(t, err, apperrors.ErrStoreMismatch)

	_, err = env.send.Execute(context.Background(), SendTransferRequest{
		TenantID: 1, StoreID: originStore, ActorID: 5, ActorRole: user.RolePharmacist, TransferID: tr.ID,
	})
	require.NoError(t, err)

	_, err = env.receive.Execute(context.Background(), ReceiveTransferRequest{
		TenantID: 1, StoreID: originStore, ActorID: 6, ActorRole: user.RolePharmacist, TransferID: tr.ID, // 来源门店试图入库
	})
	assert.ErrorIs(t, err, apperrors.ErrStoreMismatch)
}

// 普通店员无权发货/入库:批号和调拨单都不改动
func TestTransferRequiresElevatedRole(t *testing.T) {
	env := newTransferEnv()
	lot := env.seedLot(t, originStore, 1, "LOT-A", daysFromNow(90), 500, 10)
	tr := env.seedDraft(t, []transfer.Item{{ProductID: 1, RequestedQty: 4}})

	_, err := env.send.Execute(context.Background(), SendTransferRequest{
		TenantID: 1, StoreID: originStore, ActorID: 5, ActorRole: user.RoleAttendant, TransferID: tr.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, 10, lot.Quantity)
	assert.Equal(t, transfer.StatusDraft, tr.Status)

	// 药师发货后,店员同样不能入库
	_, err = env.send.Execute(context.Background(), SendTransferRequest{
		TenantID: 1, StoreID: originStore, ActorID: 5, ActorRole: user.RolePharmacist, TransferID: tr.ID,
	})
	require.NoError(t, err)

	_, err = env.receive.Execute(context.Background(), ReceiveTransferRequest{
		TenantID: 1, StoreID: destStore, ActorID: 6, ActorRole: user.RoleAttendant, TransferID: tr.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, transfer.StatusSent, tr.Status)
}
