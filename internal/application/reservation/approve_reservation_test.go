package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/pharmacy/internal/domain/reservation"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
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

type memReservationRepo struct {
	reservations map[uint]*reservation.Reservation
	nextID       uint
}

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{reservations: make(map[uint]*reservation.Reservation), nextID: 1}
}

func (r *memReservationRepo) Create(_ context.Context, resv *reservation.Reservation) error {
	resv.ID = r.nextID
	r.nextID++
	r.reservations[resv.ID] = resv
	return nil
}

func (r *memReservationRepo) Update(_ context.Context, resv *reservation.Reservation) error {
	r.reservations[resv.ID] = resv
	return nil
}

func (r *memReservationRepo) FindByID(_ context.Context, tenantID, id uint) (*reservation.Reservation, error) {
	resv, ok := r.reservations[id]
	if !ok || resv.TenantID != tenantID {
		return nil, reservation.ErrReservationNotFound
	}
	return resv, nil
}

func (r *memReservationRepo) LockByID(ctx context.Context, tenantID, id uint) (*reservation.Reservation, error) {
	return r.FindByID(ctx, tenantID, id)
}

func (r *memReservationRepo) List(_ context.Context, _ uint, _ reservation.ListParams) ([]*reservation.Reservation, int64, error) {
	return nil, 0, nil
}

// ApprovedQuantity 已批准预约占用(与MySQL实现同语义)
func (r *memReservationRepo) ApprovedQuantity(ctx context.Context, tenantID, storeID, productID uint) (int, error) {
	return r.ApprovedQuantityExcluding(ctx, tenantID, storeID, productID, 0)
}

func (r *memReservationRepo) ApprovedQuantityExcluding(_ context.Context, tenantID, storeID, productID, excludeID uint) (int, error) {
	total := 0
	for _, resv := range r.reservations {
		if resv.TenantID != tenantID || resv.SourceStoreID != storeID ||
			resv.Status != reservation.StatusApproved || resv.ID == excludeID {
			continue
		}
		for _, item := range resv.Items {
			if item.ProductID == productID {
				total += item.ReservedQty
			}
		}
	}
	return total, nil
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
	requestStore = uint(20)
	sourceStore  = uint(10)
)

type approveEnv struct {
	reservationRepo *memReservationRepo
	lotRepo         *memLotRepo
	notifier        *recordingNotifier
	uc              *ApproveReservationUseCase
}

func newApproveEnv() *approveEnv {
	env := &approveEnv{
		reservationRepo: newMemReservationRepo(),
		lotRepo:         newMemLotRepo(),
		notifier:        &recordingNotifier{},
	}
	env.uc = NewApproveReservationUseCase(env.reservationRepo, env.lotRepo,
		env.reservationRepo, passTx{}, env.notifier)
	return env
}

func (env *approveEnv) seedLot(t *testing.T, productID uint, quantity int) {
	t.Helper()
	lot, err := stock.NewLot(1, sourceStore, productID, "L1", nil, 100, quantity)
	require.NoError(t, err)
	require.NoError(t, env.lotRepo.Create(context.Background(), lot))
}

func (env *approveEnv) seedReservation(t *testing.T, items []reservation.Item) *reservation.Reservation {
	t.Helper()
	resv, err := reservation.NewReservation(1, requestStore, sourceStore, 0, items, "")
	require.NoError(t, err)
	require.NoError(t, env.reservationRepo.Create(context.Background(), resv))
	return resv
}

// =========================================
// 批准预约测试
// =========================================

func TestApproveReservation_Success(t *testing.T) {
	env := newApproveEnv()
	env.seedLot(t, 1, 10)
	resv := env.seedReservation(t, []reservation.Item{{ProductID: 1, RequestedQty: 4}})

	resp, err := env.uc.Execute(context.Background(), ApproveReservationRequest{
		TenantID: 1, StoreID: sourceStore, ActorID: 5, ActorRole: user.RolePharmacist, ReservationID: resv.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, string(reservation.StatusApproved), resp.Status)

	// 全部明细占用置位
	assert.Equal(t, 4, resv.Items[0].ReservedQty)
	assert.Contains(t, env.notifier.events, "reservation.approved")
}

// 全有或全无:两明细中任一可用量不足,整单不批准
func TestApproveReservation_AllOrNothing(t *testing.T) {
	env := newApproveEnv()
	env.seedLot(t, 1, 10) // 商品1充足
	env.seedLot(t, 2, 1)  // 商品2只有1件
	resv := env.seedReservation(t, []reservation.Item{
		{ProductID: 1, RequestedQty: 4},
		{ProductID: 2, RequestedQty: 3},
	})

	_, err := env.uc.Execute(context.Background(), ApproveReservationRequest{
		TenantID: 1, StoreID: sourceStore, ActorID: 5, ActorRole: user.RolePharmacist, ReservationID: resv.ID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock))

	// 整单保持REQUESTED,所有明细占用为0(包括充足的商品1)
	assert.Equal(t, reservation.StatusRequested, resv.Status)
	assert.Equal(t, 0, resv.Items[0].ReservedQty)
	assert.Equal(t, 0, resv.Items[1].ReservedQty)
	assert.Empty(t, env.notifier.events)
}

// 可用量 = 在架总量 - 其他已批准预约占用
func TestApproveReservation_CountsOtherApprovedHolds(t *testing.T) {
	env := newApproveEnv()
	env.seedLot(t, 1, 10)

	// 先批准一个占用7件的预约
	first := env.seedReservation(t, []reservation.Item{{ProductID: 1, RequestedQty: 7}})
	_, err := env.uc.Execute(context.Background(), ApproveReservationRequest{
		TenantID: 1, StoreID: sourceStore, ActorID: 5, ActorRole: user.RolePharmacist, ReservationID: first.ID,
	})
	require.NoError(t, err)

	// 第二个申请4件:10-7=3 < 4,被拒绝
	second := env.seedReservation(t, []reservation.Item{{ProductID: 1, RequestedQty: 4}})
	_, err = env.uc.Execute(context.Background(), ApproveReservationRequest{
		TenantID: 1, StoreID: sourceStore, ActorID: 5, ActorRole: user.RolePharmacist, ReservationID: second.ID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock))

	// 申请3件则可以
	third := env.seedReservation(t, []reservation.Item{{ProductID: 1, RequestedQty: 3}})
	_, err = env.uc.Execute(context.Background(), ApproveReservationRequest{
		TenantID: 1, StoreID: sourceStore, ActorID: 5, ActorRole: user.RolePharmacist, ReservationID: third.ID,
	})
	assert.NoError(t, err)
}

// 只有来源门店可以批准
func TestApproveReservation_SourceStoreOnly(t *testing.T) {
	env := newApproveEnv()
	env.seedLot(t, 1, 10)
	resv := env.seedReservation(t, []reservation.Item{{ProductID: 1, RequestedQty: 2}})

	_, err := env.uc.Execute(context.Background(), ApproveReservationRequest{
		TenantID: 1, StoreID: requestStore, ActorID: 5, ActorRole: user.RolePharmacist, ReservationID: resv.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrStoreMismatch)
}

// 取消已批准预约后,占用释放,后续批准可以使用该量
func TestApproveReservation_CanceledHoldReleased(t *testing.T) {
	env := newApproveEnv()
	env.seedLot(t, 1, 10)

	first := env.seedReservation(t, []reservation.Item{{ProductID: 1, RequestedQty: 8}})
	_, err := env.uc.Execute(context.Background(), ApproveReservationRequest{
		TenantID: 1, StoreID: sourceStore, ActorID: 5, ActorRole: user.RolePharmacist, ReservationID: first.ID,
	})
	require.NoError(t, err)

	// 取消释放占用
	cancel := NewCancelReservationUseCase(env.reservationRepo, passTx{})
	require.NoError(t, cancel.Execute(context.Background(), 1, requestStore, first.ID))

	second := env.seedReservation(t, []reservation.Item{{ProductID: 1, RequestedQty: 8}})
	_, err = env.uc.Execute(context.Background(), ApproveReservationRequest{
		TenantID: 1, StoreID: sourceStore, ActorID: 5, ActorRole: user.RolePharmacist, ReservationID: second.ID,
	})
	assert.NoError(t, err)
}

// 普通店员无权批准:预约单保持REQUESTED,不产生占用
func TestApproveReservation_RequiresElevatedRole(t *testing.T) {
	env := newApproveEnv()
	env.seedLot(t, 1, 10)
	resv := env.seedReservation(t, []reservation.Item{{ProductID: 1, RequestedQty: 4}})

	_, err := env.uc.Execute(context.Background(), ApproveReservationRequest{
		TenantID: 1, StoreID: sourceStore, ActorID: 5, ActorRole: user.RoleAttendant, ReservationID: resv.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	assert.Equal(t, reservation.StatusRequested, resv.Status)
	assert.Equal(t, 0, resv.Items[0].ReservedQty)
	assert.Empty(t, env.notifier.events)
}
