package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/pharmacy/internal/domain/transfer"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// transferRepository 调拨仓储实现(MySQL)
type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository 创建调拨仓储
func NewTransferRepository(db *gorm.DB) transfer.Repository {
	return &transferRepository{db: db}
}

// Create 创建调拨单(含明细)
func (r *transferRepository) Create(ctx context.Context, t *transfer.Transfer) error {
	model := toTransferModel(t)

	db := getDB(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建调拨单失败")
	}

	t.ID = model.ID
	for i := range t.Items {
		t.Items[i].ID = model.Items[i].ID
		t.Items[i].TransferID = model.ID
	}
	return nil
}

// Update 更新调拨单(状态、发货数量)
// 发货时与FEFO出库在同一事务内调用
func (r *transferRepository) Update(ctx context.Context, t *transfer.Transfer) error {
	db := getDB(ctx, r.db)

	result := db.Model(&TransferModel{}).
		Where("id = ? AND tenant_id = ?", t.ID, t.TenantID).
		Updates(map[string]interface{}{
			"status":     string(t.Status),
			"updated_at": t.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新调拨单失败")
	}
	if result.RowsAffected == 0 {
		return transfer.ErrTransferNotFound
	}

	// 发货数量置位
	for i := range t.Items {
		item := &t.Items[i]
		if err := db.Model(&TransferItemModel{}).
			Where("id = ? AND transfer_id = ?", item.ID, t.ID).
			Update("sent_qty", item.SentQty).Error; err != nil {
			return apperrors.Wrap(err, "更新调拨明细失败")
		}
	}
	return nil
}

// FindByID 根据ID查找调拨单(含明细)
func (r *transferRepository) FindByID(ctx context.Context, tenantID, id uint) (*transfer.Transfer, error) {
	var model TransferModel
	db := getDB(ctx, r.db)
	err := db.Preload("Items").Where("tenant_id = ?", tenantID).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transfer.ErrTransferNotFound
		}
		return nil, apperrors.Wrap(err, "查询调拨单失败")
	}

	return toTransferEntity(&model), nil
}

// LockByID 悲观锁查找调拨单
// 发货/入库时使用,防止并发操作同一调拨单
// (如同时入库两次导致目的批号重复加量)
func (r *transferRepository) LockByID(ctx context.Context, tenantID, id uint) (*transfer.Transfer, error) {
	var model TransferModel
	db := getDB(ctx, r.db)

	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ?", tenantID).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transfer.ErrTransferNotFound
		}
		return nil, apperrors.Wrap(err, "锁定调拨单失败")
	}

	if err := db.Where("transfer_id = ?", model.ID).Find(&model.Items).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询调拨明细失败")
	}

	return toTransferEntity(&model), nil
}

// List 分页查询调拨单列表
func (r *transferRepository) List(ctx context.Context, tenantID uint, params transfer.ListParams) ([]*transfer.Transfer, int64, error) {
	var models []TransferModel
	var total int64

	db := getDB(ctx, r.db)
	query := db.Model(&TransferModel{}).Where("tenant_id = ?", tenantID)

	if params.OriginStoreID > 0 {
		query = query.Where("origin_store_id = ?", params.OriginStoreID)
	}
	if params.DestinationStoreID > 0 {
		query = query.Where("destination_store_id = ?", params.DestinationStoreID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", string(params.Status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询调拨总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询调拨列表失败")
	}

	transfers := make([]*transfer.Transfer, len(models))
	for i := range models {
		transfers[i] = toTransferEntity(&models[i])
	}
	return transfers, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toTransferModel 领域实体 → GORM模型
func toTransferModel(t *transfer.Transfer) *TransferModel {
	items := make([]TransferItemModel, len(t.Items))
	for i, item := range t.Items {
		items[i] = TransferItemModel{
			ID:           item.ID,
			TransferID:   item.TransferID,
			ProductID:    item.ProductID,
			RequestedQty: item.RequestedQty,
			SentQty:      item.SentQty,
		}
	}

	return &TransferModel{
		ID:                 t.ID,
		TenantID:           t.TenantID,
		OriginStoreID:      t.OriginStoreID,
		DestinationStoreID: t.DestinationStoreID,
		Status:             string(t.Status),
		Note:               t.Note,
		Items:              items,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

// toTransferEntity GORM模型 → 领域实体
func toTransferEntity(model *TransferModel) *transfer.Transfer {
	items := make([]transfer.Item, len(model.Items))
	for i, item := range model.Items {
		items[i] = transfer.Item{
			ID:           item.ID,
			TransferID:   item.TransferID,
			ProductID:    item.ProductID,
			RequestedQty: item.RequestedQty,
			SentQty:      item.SentQty,
		}
	}

	return &transfer.Transfer{
		ID:                 model.ID,
		TenantID:           model.TenantID,
		OriginStoreID:      model.OriginStoreID,
		DestinationStoreID: model.DestinationStoreID,
		Status:             transfer.Status(model.Status),
		Note:               model.Note,
		Items:              items,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}
