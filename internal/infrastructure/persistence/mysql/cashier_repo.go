package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/pharmacy/internal/domain/cashier"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// sessionRepository 收银班次仓储实现(MySQL)
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建班次仓储
func NewSessionRepository(db *gorm.DB) cashier.SessionRepository {
	return &sessionRepository{db: db}
}

// Create 创建班次
func (r *sessionRepository) Create(ctx context.Context, s *cashier.Session) error {
	model := toSessionModel(s)

	db := getDB(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建班次失败")
	}

	s.ID = model.ID
	return nil
}

// Update 更新班次(交班)
func (r *sessionRepository) Update(ctx context.Context, s *cashier.Session) error {
	db := getDB(ctx, r.db)

	result := db.Model(&CashSessionModel{}).
		Where("id = ? AND tenant_id = ?", s.ID, s.TenantID).
		Updates(map[string]interface{}{
			"status":         string(s.Status),
			"closed_by":      s.ClosedBy,
			"closing_amount": s.ClosingAmount,
			"closed_at":      s.ClosedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新班次失败")
	}
	if result.RowsAffected == 0 {
		return cashier.ErrSessionNotFound
	}
	return nil
}

// FindByID 根据ID查找班次
func (r *sessionRepository) FindByID(ctx context.Context, tenantID, id uint) (*cashier.Session, error) {
	var model CashSessionModel
	db := getDB(ctx, r.db)
	err := db.Where("tenant_id = ?", tenantID).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cashier.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "查询班次失败")
	}

	return toSessionEntity(&model), nil
}

// FindOpenByStore 查找门店进行中的班次
func (r *sessionRepository) FindOpenByStore(ctx context.Context, tenantID, storeID uint) (*cashier.Session, error) {
	db := getDB(ctx, r.db)
	return r.findOpen(db, tenantID, storeID)
}

// LockOpenByStore 悲观锁查找门店进行中的班次
// 开班时用于防止并发开出两个班次,结算时用于锁定收款班次
func (r *sessionRepository) LockOpenByStore(ctx context.Context, tenantID, storeID uint) (*cashier.Session, error) {
	db := getDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findOpen(db, tenantID, storeID)
}

// findOpen 进行中班次查询(共用逻辑)
func (r *sessionRepository) findOpen(db *gorm.DB, tenantID, storeID uint) (*cashier.Session, error) {
	var model CashSessionModel
	err := db.
		Where("tenant_id = ? AND store_id = ? AND status = ?",
			tenantID, storeID, string(cashier.SessionOpen)).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cashier.ErrNoOpenSession
		}
		return nil, apperrors.Wrap(err, "查询进行中班次失败")
	}

	return toSessionEntity(&model), nil
}

// List 分页查询班次列表
func (r *sessionRepository) List(ctx context.Context, tenantID uint, params cashier.ListParams) ([]*cashier.Session, int64, error) {
	var models []CashSessionModel
	var total int64

	db := getDB(ctx, r.db)
	query := db.Model(&CashSessionModel{}).Where("tenant_id = ?", tenantID)

	if params.StoreID > 0 {
		query = query.Where("store_id = ?", params.StoreID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", string(params.Status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询班次总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.
		Order("opened_at DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询班次列表失败")
	}

	sessions := make([]*cashier.Session, len(models))
	for i := range models {
		sessions[i] = toSessionEntity(&models[i])
	}
	return sessions, total, nil
}

// =========================================
// cashMovementRepository 现金流水仓储实现
// =========================================

// cashMovementRepository 现金流水仓储实现(MySQL),只增不改
type cashMovementRepository struct {
	db *gorm.DB
}

// NewCashMovementRepository 创建现金流水仓储
func NewCashMovementRepository(db *gorm.DB) cashier.MovementRepository {
	return &cashMovementRepository{db: db}
}

// Create 写入现金流水
func (r *cashMovementRepository) Create(ctx context.Context, m *cashier.Movement) error {
	model := &CashMovementModel{
		TenantID:  m.TenantID,
		SessionID: m.SessionID,
		Type:      string(m.Type),
		Amount:    m.Amount,
		SaleID:    m.SaleID,
		Note:      m.Note,
		ActorID:   m.ActorID,
		CreatedAt: m.CreatedAt,
	}

	db := getDB(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入现金流水失败")
	}

	m.ID = model.ID
	return nil
}

// FindBySession 查找班次的全部流水
func (r *cashMovementRepository) FindBySession(ctx context.Context, tenantID, sessionID uint) ([]*cashier.Movement, error) {
	var models []CashMovementModel
	db := getDB(ctx, r.db)
	err := db.Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Order("id ASC").
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询现金流水失败")
	}

	movements := make([]*cashier.Movement, len(models))
	for i := range models {
		movements[i] = toCashMovementEntity(&models[i])
	}
	return movements, nil
}

// SumBySession 统计班次流水合计
// 交班对账:期望金额 = 备用金 + 流水合计
func (r *cashMovementRepository) SumBySession(ctx context.Context, tenantID, sessionID uint) (int64, error) {
	var total int64
	db := getDB(ctx, r.db)
	err := db.Model(&CashMovementModel{}).
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计现金流水失败")
	}
	return total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toSessionModel 领域实体 → GORM模型
func toSessionModel(s *cashier.Session) *CashSessionModel {
	return &CashSessionModel{
		ID:            s.ID,
		TenantID:      s.TenantID,
		StoreID:       s.StoreID,
		Status:        string(s.Status),
		OpenedBy:      s.OpenedBy,
		ClosedBy:      s.ClosedBy,
		OpeningFloat:  s.OpeningFloat,
		ClosingAmount: s.ClosingAmount,
		OpenedAt:      s.OpenedAt,
		ClosedAt:      s.ClosedAt,
	}
}

// toSessionEntity GORM模型 → 领域实体
func toSessionEntity(model *CashSessionModel) *cashier.Session {
	return &cashier.Session{
		ID:            model.ID,
		TenantID:      model.TenantID,
		StoreID:       model.StoreID,
		Status:        cashier.SessionStatus(model.Status),
		OpenedBy:      model.OpenedBy,
		ClosedBy:      model.ClosedBy,
		OpeningFloat:  model.OpeningFloat,
		ClosingAmount: model.ClosingAmount,
		OpenedAt:      model.OpenedAt,
		ClosedAt:      model.ClosedAt,
	}
}

// toCashMovementEntity GORM模型 → 领域实体
func toCashMovementEntity(model *CashMovementModel) *cashier.Movement {
	return &cashier.Movement{
		ID:        model.ID,
		TenantID:  model.TenantID,
		SessionID: model.SessionID,
		Type:      cashier.MovementType(model.Type),
		Amount:    model.Amount,
		SaleID:    model.SaleID,
		Note:      model.Note,
		ActorID:   model.ActorID,
		CreatedAt: model.CreatedAt,
	}
}
