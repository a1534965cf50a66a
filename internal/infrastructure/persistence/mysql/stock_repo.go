package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/pharmacy/internal/domain/stock"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// lotRepository 批号仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/stock/repository.go定义的LotRepository接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. FEFO排序在domain层完成,仓储只负责取数和锁
type lotRepository struct {
	db *gorm.DB
}

// NewLotRepository 创建批号仓储
func NewLotRepository(db *gorm.DB) stock.LotRepository {
	return &lotRepository{db: db}
}

// Create 创建批号
func (r *lotRepository) Create(ctx context.Context, l *stock.Lot) error {
	model := toLotModel(l)

	db := getDB(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建批号失败")
	}

	// 回填自增ID
	l.ID = model.ID
	l.CreatedAt = model.CreatedAt
	l.UpdatedAt = model.UpdatedAt
	return nil
}

// Update 更新批号(数量、在架状态)
func (r *lotRepository) Update(ctx context.Context, l *stock.Lot) error {
	db := getDB(ctx, r.db)

	// 只更新可变字段,批号键(门店/商品/批号/有效期)不可变
	result := db.Model(&LotModel{}).Where("id = ? AND tenant_id = ?", l.ID, l.TenantID).
		Updates(map[string]interface{}{
			"quantity":   l.Quantity,
			"active":     l.Active,
			"updated_at": l.UpdatedAt,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新批号失败")
	}
	if result.RowsAffected == 0 {
		return stock.ErrLotNotFound
	}
	return nil
}

// FindByID 根据ID查找批号
func (r *lotRepository) FindByID(ctx context.Context, tenantID, id uint) (*stock.Lot, error) {
	var model LotModel
	db := getDB(ctx, r.db)
	err := db.Where("tenant_id = ?", tenantID).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, stock.ErrLotNotFound
		}
		return nil, apperrors.Wrap(err, "查询批号失败")
	}

	return toLotEntity(&model), nil
}

// FindActiveByProduct 查找(门店,商品)的全部在架批号(不加锁)
func (r *lotRepository) FindActiveByProduct(ctx context.Context, tenantID, storeID, productID uint) ([]*stock.Lot, error) {
	db := getDB(ctx, r.db)
	return r.findActive(db, tenantID, storeID, productID)
}

// LockActiveByProduct 悲观锁查找(门店,商品)的全部在架批号
// SELECT FOR UPDATE锁定批号行,check-then-act期间阻塞并发消耗,
// 防止两个请求读到同一可用量快照后同时扣减导致超卖
func (r *lotRepository) LockActiveByProduct(ctx context.Context, tenantID, storeID, productID uint) ([]*stock.Lot, error) {
	db := getDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findActive(db, tenantID, storeID, productID)
}

// findActive 在架批号查询(共用逻辑)
func (r *lotRepository) findActive(db *gorm.DB, tenantID, storeID, productID uint) ([]*stock.Lot, error) {
	var models []LotModel
	err := db.
		Where("tenant_id = ? AND store_id = ? AND product_id = ? AND active = ?",
			tenantID, storeID, productID, true).
		Order("id ASC"). // 固定锁定顺序,避免交叉加锁死锁
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询在架批号失败")
	}

	lots := make([]*stock.Lot, len(models))
	for i := range models {
		lots[i] = toLotEntity(&models[i])
	}
	return lots, nil
}

// LockByKey 悲观锁查找批号键对应的批号
// 调拨入库按(门店,商品,批号,有效期)upsert目的门店批号
func (r *lotRepository) LockByKey(ctx context.Context, tenantID, storeID, productID uint, lotNumber string, expiration *time.Time) (*stock.Lot, error) {
	var model LotModel
	db := getDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"})

	query := db.Where("tenant_id = ? AND store_id = ? AND product_id = ? AND lot_number = ?",
		tenantID, storeID, productID, lotNumber)
	if expiration == nil {
		query = query.Where("expiration IS NULL")
	} else {
		query = query.Where("expiration = ?", *expiration)
	}

	err := query.First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, stock.ErrLotNotFound
		}
		return nil, apperrors.Wrap(err, "锁定批号失败")
	}

	return toLotEntity(&model), nil
}

// SumActiveQuantity 统计(门店,商品)的在架未过期批号总量
// 过期批号不可售,不计入可用量(消耗路径同样按IsConsumable过滤)
func (r *lotRepository) SumActiveQuantity(ctx context.Context, tenantID, storeID, productID uint) (int, error) {
	var total int64
	db := getDB(ctx, r.db)
	err := db.Model(&LotModel{}).
		Where("tenant_id = ? AND store_id = ? AND product_id = ? AND active = ?",
			tenantID, storeID, productID, true).
		Where("expiration IS NULL OR expiration >= ?", time.Now()).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计在架批号总量失败")
	}
	return int(total), nil
}

// List 分页查询批号列表
func (r *lotRepository) List(ctx context.Context, tenantID uint, params stock.ListLotsParams) ([]*stock.Lot, int64, error) {
	var models []LotModel
	var total int64

	db := getDB(ctx, r.db)
	query := db.Model(&LotModel{}).Where("tenant_id = ?", tenantID)

	if params.StoreID > 0 {
		query = query.Where("store_id = ?", params.StoreID)
	}
	if params.ProductID > 0 {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.OnlyActive && !params.IncludeRetire {
		query = query.Where("active = ?", true)
	}
	if params.ExpiringDays > 0 {
		// 近效期预警:N天内到期的批号
		deadline := time.Now().AddDate(0, 0, params.ExpiringDays)
		query = query.Where("expiration IS NOT NULL AND expiration <= ?", deadline)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询批号总数失败")
	}

	// 按有效期升序展示(与FEFO消耗顺序一致,无有效期排最后)
	offset := (params.Page - 1) * params.PageSize
	err := query.
		Order("expiration IS NULL, expiration ASC, id ASC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询批号列表失败")
	}

	lots := make([]*stock.Lot, len(models))
	for i := range models {
		lots[i] = toLotEntity(&models[i])
	}
	return lots, total, nil
}

// =========================================
// movementRepository 库存流水仓储实现
// =========================================

// movementRepository 库存流水仓储实现(MySQL)
// 流水只增不改,接口不提供Update/Delete
type movementRepository struct {
	db *gorm.DB
}

// NewMovementRepository 创建库存流水仓储
func NewMovementRepository(db *gorm.DB) stock.MovementRepository {
	return &movementRepository{db: db}
}

// Create 写入流水
// 调用方保证与批号变更在同一事务内(TxManager)
func (r *movementRepository) Create(ctx context.Context, m *stock.Movement) error {
	model := toMovementModel(m)

	db := getDB(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入库存流水失败")
	}

	m.ID = model.ID
	return nil
}

// FindByTransfer 查找调拨单的指定类型流水
// 调拨入库按TRANSFER_OUT流水复刻批号(批号/有效期/成本原样带到目的门店)
func (r *movementRepository) FindByTransfer(ctx context.Context, tenantID, transferID uint, mType stock.MovementType) ([]*stock.Movement, error) {
	var models []StockMovementModel
	db := getDB(ctx, r.db)
	err := db.
		Where("tenant_id = ? AND transfer_id = ? AND type = ?", tenantID, transferID, string(mType)).
		Order("id ASC").
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询调拨流水失败")
	}

	movements := make([]*stock.Movement, len(models))
	for i := range models {
		movements[i] = toMovementEntity(&models[i])
	}
	return movements, nil
}

// List 分页查询流水列表
func (r *movementRepository) List(ctx context.Context, tenantID uint, params stock.ListMovementsParams) ([]*stock.Movement, int64, error) {
	var models []StockMovementModel
	var total int64

	db := getDB(ctx, r.db)
	query := db.Model(&StockMovementModel{}).Where("tenant_id = ?", tenantID)

	if params.StoreID > 0 {
		query = query.Where("store_id = ?", params.StoreID)
	}
	if params.ProductID > 0 {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.LotID > 0 {
		query = query.Where("lot_id = ?", params.LotID)
	}
	if params.Type != "" {
		query = query.Where("type = ?", string(params.Type))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询流水总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.
		Order("created_at DESC, id DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询流水列表失败")
	}

	movements := make([]*stock.Movement, len(models))
	for i := range models {
		movements[i] = toMovementEntity(&models[i])
	}
	return movements, total, nil
}

// VerifyLotLedger 校验批号账实一致
// 批号数量是权威值,流水是审计链:两者必须始终相等
// (每次变更在同一事务内写流水,不一致说明有代码绕过了流水)
func (r *movementRepository) VerifyLotLedger(ctx context.Context, tenantID, lotID uint) error {
	db := getDB(ctx, r.db)

	var lot LotModel
	err := db.Where("tenant_id = ?", tenantID).First(&lot, lotID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return stock.ErrLotNotFound
		}
		return apperrors.Wrap(err, "查询批号失败")
	}

	var sum int64
	err = db.Model(&StockMovementModel{}).
		Where("tenant_id = ? AND lot_id = ?", tenantID, lotID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	if err != nil {
		return apperrors.Wrap(err, "统计批号流水失败")
	}

	if int(sum) != lot.Quantity {
		return stock.ErrLedgerMismatch
	}
	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toLotModel 领域实体 → GORM模型
func toLotModel(l *stock.Lot) *LotModel {
	return &LotModel{
		ID:         l.ID,
		TenantID:   l.TenantID,
		StoreID:    l.StoreID,
		ProductID:  l.ProductID,
		LotNumber:  l.LotNumber,
		Expiration: l.Expiration,
		UnitCost:   l.UnitCost,
		Quantity:   l.Quantity,
		Active:     l.Active,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

// toLotEntity GORM模型 → 领域实体
func toLotEntity(model *LotModel) *stock.Lot {
	return &stock.Lot{
		ID:         model.ID,
		TenantID:   model.TenantID,
		StoreID:    model.StoreID,
		ProductID:  model.ProductID,
		LotNumber:  model.LotNumber,
		Expiration: model.Expiration,
		UnitCost:   model.UnitCost,
		Quantity:   model.Quantity,
		Active:     model.Active,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// toMovementModel 领域实体 → GORM模型
func toMovementModel(m *stock.Movement) *StockMovementModel {
	return &StockMovementModel{
		ID:         m.ID,
		TenantID:   m.TenantID,
		StoreID:    m.StoreID,
		ProductID:  m.ProductID,
		LotID:      m.LotID,
		Type:       string(m.Type),
		Quantity:   m.Quantity,
		BeforeQty:  m.BeforeQty,
		AfterQty:   m.AfterQty,
		Reason:     m.Reason,
		SaleID:     m.SaleID,
		TransferID: m.TransferID,
		ActorID:    m.ActorID,
		CreatedAt:  m.CreatedAt,
	}
}

// toMovementEntity GORM模型 → 领域实体
func toMovementEntity(model *StockMovementModel) *stock.Movement {
	return &stock.Movement{
		ID:         model.ID,
		TenantID:   model.TenantID,
		StoreID:    model.StoreID,
		ProductID:  model.ProductID,
		LotID:      model.LotID,
		Type:       stock.MovementType(model.Type),
		Quantity:   model.Quantity,
		BeforeQty:  model.BeforeQty,
		AfterQty:   model.AfterQty,
		Reason:     model.Reason,
		SaleID:     model.SaleID,
		TransferID: model.TransferID,
		ActorID:    model.ActorID,
		CreatedAt:  model.CreatedAt,
	}
}
