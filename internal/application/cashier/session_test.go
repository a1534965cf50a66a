package cashier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/pharmacy/internal/domain/cashier"
)

// =========================================
// 内存假仓储(单元测试用,不依赖数据库)
// =========================================

type passTx struct{}

func (passTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memSessionRepo struct {
	sessions map[uint]*cashier.Session
	nextID   uint
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uint]*cashier.Session), nextID: 1}
}

func (r *memSessionRepo) Create(_ context.Context, s *cashier.Session) error {
	s.ID = r.nextID
	r.nextID++
	r.sessions[s.ID] = s
	return nil
}

func (r *memSessionRepo) Update(_ context.Context, s *cashier.Session) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *memSessionRepo) FindByID(_ context.Context, tenantID, id uint) (*cashier.Session, error) {
	s, ok := r.sessions[id]
	if !ok || s.TenantID != tenantID {
		return nil, cashier.ErrSessionNotFound
	}
	return s, nil
}

func (r *memSessionRepo) FindOpenByStore(_ context.Context, tenantID, storeID uint) (*cashier.Session, error) {
	for _, s := range r.sessions {
		if s.TenantID == tenantID && s.StoreID == storeID && s.IsOpen() {
			return s, nil
		}
	}
	return nil, cashier.ErrNoOpenSession
}

func (r *memSessionRepo) LockOpenByStore(ctx context.Context, tenantID, storeID uint) (*cashier.Session, error) {
	return r.FindOpenByStore(ctx, tenantID, storeID)
}

func (r *memSessionRepo) List(_ context.Context, _ uint, _ cashier.ListParams) ([]*cashier.Session, int64, error) {
	return nil, 0, nil
}

type memCashRepo struct {
	movements []*cashier.Movement
}

func (r *memCashRepo) Create(_ context.Context, m *cashier.Movement) error {
	m.ID = uint(len(r.movements) + 1)
	r.movements = append(r.movements, m)
	return nil
}

func (r *memCashRepo) FindBySession(_ context.Context, tenantID, sessionID uint) ([]*cashier.Movement, error) {
	var result []*cashier.Movement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.SessionID == sessionID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *memCashRepo) SumBySession(_ context.Context, tenantID, sessionID uint) (int64, error) {
	var sum int64
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.SessionID == sessionID {
			sum += m.Amount
		}
	}
	return sum, nil
}

// =========================================
// 班次用例测试
// =========================================

func TestOpenSession(t *testing.T) {
	sessionRepo := newMemSessionRepo()
	uc := NewOpenSessionUseCase(sessionRepo, passTx{})

	resp, err := uc.Execute(context.Background(), OpenSessionRequest{
		TenantID: 1, StoreID: 10, ActorID: 5, OpeningFloat: 5000,
	})
	require.NoError(t, err)
	assert.Equal(t, string(cashier.SessionOpen), resp.Status)
	assert.Equal(t, int64(5000), resp.OpeningFloat)
}

// 同门店已有进行中班次时不能再开班
func TestOpenSession_DuplicateRejected(t *testing.T) {
	sessionRepo := newMemSessionRepo()
	uc := NewOpenSessionUseCase(sessionRepo, passTx{})

	_, err := uc.Execute(context.Background(), OpenSessionRequest{
		TenantID: 1, StoreID: 10, ActorID: 5, OpeningFloat: 5000,
	})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), OpenSessionRequest{
		TenantID: 1, StoreID: 10, ActorID: 6, OpeningFloat: 3000,
	})
	assert.ErrorIs(t, err, cashier.ErrSessionAlreadyOpen)

	// 别的门店不受影响
	_, err = uc.Execute(context.Background(), OpenSessionRequest{
		TenantID: 1, StoreID: 20, ActorID: 6, OpeningFloat: 3000,
	})
	assert.NoError(t, err)
}

// 交班对账:期望金额 = 备用金 + Σ现金流水,长短款 = 实际 - 期望
func TestCloseSession_OverShort(t *testing.T) {
	sessionRepo := newMemSessionRepo()
	cashRepo := &memCashRepo{}
	openUC := NewOpenSessionUseCase(sessionRepo, passTx{})
	closeUC := NewCloseSessionUseCase(sessionRepo, cashRepo, passTx{})

	openResp, err := openUC.Execute(context.Background(), OpenSessionRequest{
		TenantID: 1, StoreID: 10, ActorID: 5, OpeningFloat: 5000,
	})
	require.NoError(t, err)

	// 销售收款4500 + 存入1000 - 取款2000
	saleMv, _ := cashier.NewSaleMovement(1, openResp.SessionID, 1, 5, 4500)
	require.NoError(t, cashRepo.Create(context.Background(), saleMv))
	depositMv, _ := cashier.NewCashMovement(1, openResp.SessionID, 5, cashier.MovementDeposit, 1000, "找零补充")
	require.NoError(t, cashRepo.Create(context.Background(), depositMv))
	withdrawMv, _ := cashier.NewCashMovement(1, openResp.SessionID, 5, cashier.MovementWithdrawal, 2000, "上缴")
	require.NoError(t, cashRepo.Create(context.Background(), withdrawMv))

	// 期望 = 5000 + 4500 + 1000 - 2000 = 8500,实际清点8300 → 短款200
	resp, err := closeUC.Execute(context.Background(), CloseSessionRequest{
		TenantID: 1, StoreID: 10, ActorID: 5, ClosingAmount: 8300,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8500), resp.ExpectedAmount)
	assert.Equal(t, int64(-200), resp.OverShort)

	// 交班后再交班被拒绝(已无进行中班次)
	_, err = closeUC.Execute(context.Background(), CloseSessionRequest{
		TenantID: 1, StoreID: 10, ActorID: 5, ClosingAmount: 0,
	})
	assert.ErrorIs(t, err, cashier.ErrNoOpenSession)
}

// 取款/存入需要进行中的班次
func TestCashInOut_RequiresOpenSession(t *testing.T) {
	sessionRepo := newMemSessionRepo()
	cashRepo := &memCashRepo{}
	uc := NewCashInOutUseCase(sessionRepo, cashRepo, passTx{})

	err := uc.Execute(context.Background(), CashInOutRequest{
		TenantID: 1, StoreID: 10, ActorID: 5,
		Type: "DEPOSIT", Amount: 1000, Note: "找零补充",
	})
	assert.ErrorIs(t, err, cashier.ErrNoOpenSession)

	// 开班后可以
	openUC := NewOpenSessionUseCase(sessionRepo, passTx{})
	_, err = openUC.Execute(context.Background(), OpenSessionRequest{
		TenantID: 1, StoreID: 10, ActorID: 5, OpeningFloat: 5000,
	})
	require.NoError(t, err)

	err = uc.Execute(context.Background(), CashInOutRequest{
		TenantID: 1, StoreID: 10, ActorID: 5,
		Type: "WITHDRAWAL", Amount: 2000, Note: "上缴",
	})
	require.NoError(t, err)

	// 取款记为负数
	sum, _ := cashRepo.SumBySession(context.Background(), 1, 1)
	assert.Equal(t, int64(-2000), sum)
}
