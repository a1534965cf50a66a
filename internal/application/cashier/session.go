package cashier

import (
	"context"
	"errors"

	"github.com/xiebiao/pharmacy/internal/domain/cashier"
)

// OpenSessionUseCase 开班用例
// 业务规则:
// 1. 一个门店同一时间只能有一个进行中的班次
// 2. 开班前先持锁查询进行中班次,防止并发开出两个班次
//    (两个请求同时查到"无班次"再各自插入)
type OpenSessionUseCase struct {
	sessionRepo cashier.SessionRepository
	txManager   TxManager
}

// NewOpenSessionUseCase 创建开班用例
func NewOpenSessionUseCase(sessionRepo cashier.SessionRepository, txManager TxManager) *OpenSessionUseCase {
	return &OpenSessionUseCase{sessionRepo: sessionRepo, txManager: txManager}
}

// OpenSessionRequest 开班请求DTO
type OpenSessionRequest struct {
	TenantID     uint // 租户ID(从JWT提取)
	StoreID      uint // 门店(从JWT提取)
	ActorID      uint // 开班人(从JWT提取)
	OpeningFloat int64
}

// OpenSessionResponse 开班响应DTO
type OpenSessionResponse struct {
	SessionID    uint   `json:"session_id"`
	Status       string `json:"status"`
	OpeningFloat int64  `json:"opening_float"`
}

// Execute 执行开班
func (uc *OpenSessionUseCase) Execute(ctx context.Context, req OpenSessionRequest) (*OpenSessionResponse, error) {
	var session *cashier.Session

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 持锁检查是否已有进行中的班次
		_, err := uc.sessionRepo.LockOpenByStore(txCtx, req.TenantID, req.StoreID)
		if err == nil {
			return cashier.ErrSessionAlreadyOpen
		}
		if !errors.Is(err, cashier.ErrNoOpenSession) {
			return err
		}

		session, err = cashier.NewSession(req.TenantID, req.StoreID, req.ActorID, req.OpeningFloat)
		if err != nil {
			return err
		}
		return uc.sessionRepo.Create(txCtx, session)
	})
	if err != nil {
		return nil, err
	}

	return &OpenSessionResponse{
		SessionID:    session.ID,
		Status:       string(session.Status),
		OpeningFloat: session.OpeningFloat,
	}, nil
}

// CloseSessionUseCase 交班用例
// 业务规则:
// 1. 持锁关班,与进行中的结算互斥(结算同样持班次锁)
// 2. 期望金额 = 备用金 + Σ现金流水(销售收款+存入-取款)
// 3. 长短款 = 实际清点金额 - 期望金额,只记录不拦截
type CloseSessionUseCase struct {
	sessionRepo cashier.SessionRepository
	cashRepo    cashier.MovementRepository
	txManager   TxManager
}

// NewCloseSessionUseCase 创建交班用例
func NewCloseSessionUseCase(
	sessionRepo cashier.SessionRepository,
	cashRepo cashier.MovementRepository,
	txManager TxManager,
) *CloseSessionUseCase {
	return &CloseSessionUseCase{
		sessionRepo: sessionRepo,
		cashRepo:    cashRepo,
		txManager:   txManager,
	}
}

// CloseSessionRequest 交班请求DTO
type CloseSessionRequest struct {
	TenantID      uint
	StoreID       uint
	ActorID       uint
	ClosingAmount int64 // 实际清点金额(分)
}

// CloseSessionResponse 交班响应DTO
type CloseSessionResponse struct {
	SessionID      uint  `json:"session_id"`
	OpeningFloat   int64 `json:"opening_float"`
	ExpectedAmount int64 `json:"expected_amount"` // 期望金额(分)
	ClosingAmount  int64 `json:"closing_amount"`  // 实际清点金额(分)
	OverShort      int64 `json:"over_short"`      // 长短款(分,负=短款)
}

// Execute 执行交班
func (uc *CloseSessionUseCase) Execute(ctx context.Context, req CloseSessionRequest) (*CloseSessionResponse, error) {
	var session *cashier.Session
	var expected int64

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		session, err = uc.sessionRepo.LockOpenByStore(txCtx, req.TenantID, req.StoreID)
		if err != nil {
			return err
		}

		sum, err := uc.cashRepo.SumBySession(txCtx, req.TenantID, session.ID)
		if err != nil {
			return err
		}
		expected = session.OpeningFloat + sum

		if err := session.Close(req.ActorID, req.ClosingAmount); err != nil {
			return err
		}
		return uc.sessionRepo.Update(txCtx, session)
	})
	if err != nil {
		return nil, err
	}

	return &CloseSessionResponse{
		SessionID:      session.ID,
		OpeningFloat:   session.OpeningFloat,
		ExpectedAmount: expected,
		ClosingAmount:  session.ClosingAmount,
		OverShort:      session.ClosingAmount - expected,
	}, nil
}

// CashInOutUseCase 取款/存入用例
// 班次进行中才能操作,流水只增不改
type CashInOutUseCase struct {
	sessionRepo cashier.SessionRepository
	cashRepo    cashier.MovementRepository
	txManager   TxManager
}

// NewCashInOutUseCase 创建取款/存入用例
func NewCashInOutUseCase(
	sessionRepo cashier.SessionRepository,
	cashRepo cashier.MovementRepository,
	txManager TxManager,
) *CashInOutUseCase {
	return &CashInOutUseCase{
		sessionRepo: sessionRepo,
		cashRepo:    cashRepo,
		txManager:   txManager,
	}
}

// CashInOutRequest 取款/存入请求DTO
type CashInOutRequest struct {
	TenantID uint
	StoreID  uint
	ActorID  uint
	Type     string // WITHDRAWAL | DEPOSIT
	Amount   int64  // 金额(分,正数)
	Note     string
}

// Execute 执行取款/存入
func (uc *CashInOutUseCase) Execute(ctx context.Context, req CashInOutRequest) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		session, err := uc.sessionRepo.LockOpenByStore(txCtx, req.TenantID, req.StoreID)
		if err != nil {
			return err
		}

		movement, err := cashier.NewCashMovement(req.TenantID, session.ID, req.ActorID,
			cashier.MovementType(req.Type), req.Amount, req.Note)
		if err != nil {
			return err
		}
		return uc.cashRepo.Create(txCtx, movement)
	})
}

// GetSessionUseCase 班次详情查询用例(含流水明细)
type GetSessionUseCase struct {
	sessionRepo cashier.SessionRepository
	cashRepo    cashier.MovementRepository
}

// NewGetSessionUseCase 创建班次详情查询用例
func NewGetSessionUseCase(sessionRepo cashier.SessionRepository, cashRepo cashier.MovementRepository) *GetSessionUseCase {
	return &GetSessionUseCase{sessionRepo: sessionRepo, cashRepo: cashRepo}
}

// SessionInfo 班次信息DTO
type SessionInfo struct {
	ID            uint               `json:"id"`
	StoreID       uint               `json:"store_id"`
	Status        string             `json:"status"`
	OpenedBy      uint               `json:"opened_by"`
	ClosedBy      uint               `json:"closed_by,omitempty"`
	OpeningFloat  int64              `json:"opening_float"`
	ClosingAmount int64              `json:"closing_amount,omitempty"`
	OpenedAt      string             `json:"opened_at"`
	ClosedAt      string             `json:"closed_at,omitempty"`
	Movements     []CashMovementInfo `json:"movements,omitempty"`
}

// CashMovementInfo 现金流水DTO
type CashMovementInfo struct {
	Type      string `json:"type"`
	Amount    int64  `json:"amount"`
	SaleID    uint   `json:"sale_id,omitempty"`
	Note      string `json:"note,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Execute 查询班次详情
func (uc *GetSessionUseCase) Execute(ctx context.Context, tenantID, sessionID uint) (*SessionInfo, error) {
	session, err := uc.sessionRepo.FindByID(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	info := toSessionInfo(session)

	movements, err := uc.cashRepo.FindBySession(ctx, tenantID, session.ID)
	if err != nil {
		return nil, err
	}
	for _, m := range movements {
		info.Movements = append(info.Movements, CashMovementInfo{
			Type:      string(m.Type),
			Amount:    m.Amount,
			SaleID:    m.SaleID,
			Note:      m.Note,
			CreatedAt: m.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return &info, nil
}

// ListSessionsUseCase 班次列表查询用例
type ListSessionsUseCase struct {
	sessionRepo cashier.SessionRepository
}

// NewListSessionsUseCase 创建班次列表查询用例
func NewListSessionsUseCase(sessionRepo cashier.SessionRepository) *ListSessionsUseCase {
	return &ListSessionsUseCase{sessionRepo: sessionRepo}
}

// ListSessionsResponse 班次列表响应DTO
type ListSessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
	Total    int64         `json:"total"`
}

// Execute 分页查询班次
func (uc *ListSessionsUseCase) Execute(ctx context.Context, tenantID uint, params cashier.ListParams) (*ListSessionsResponse, error) {
	sessions, total, err := uc.sessionRepo.List(ctx, tenantID, params)
	if err != nil {
		return nil, err
	}

	infos := make([]SessionInfo, len(sessions))
	for i, s := range sessions {
		infos[i] = toSessionInfo(s)
	}
	return &ListSessionsResponse{Sessions: infos, Total: total}, nil
}

// toSessionInfo 领域实体 → DTO
func toSessionInfo(s *cashier.Session) SessionInfo {
	info := SessionInfo{
		ID:            s.ID,
		StoreID:       s.StoreID,
		Status:        string(s.Status),
		OpenedBy:      s.OpenedBy,
		ClosedBy:      s.ClosedBy,
		OpeningFloat:  s.OpeningFloat,
		ClosingAmount: s.ClosingAmount,
		OpenedAt:      s.OpenedAt.Format("2006-01-02 15:04:05"),
	}
	if s.ClosedAt != nil {
		info.ClosedAt = s.ClosedAt.Format("2006-01-02 15:04:05")
	}
	return info
}
