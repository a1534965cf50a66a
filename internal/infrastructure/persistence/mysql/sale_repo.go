package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/pharmacy/internal/domain/sale"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// saleRepository 销售仓储实现(MySQL)
type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository 创建销售仓储
func NewSaleRepository(db *gorm.DB) sale.Repository {
	return &saleRepository{db: db}
}

// Create 创建销售单(含明细)
func (r *saleRepository) Create(ctx context.Context, s *sale.Sale) error {
	model := toSaleModel(s)

	db := getDB(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建销售单失败")
	}

	s.ID = model.ID
	for i := range s.Items {
		s.Items[i].ID = model.Items[i].ID
		s.Items[i].SaleID = model.ID
	}
	return nil
}

// Update 更新销售单(状态、明细成本)
// 结算时与库存消耗在同一事务内调用
func (r *saleRepository) Update(ctx context.Context, s *sale.Sale) error {
	db := getDB(ctx, r.db)

	result := db.Model(&SaleModel{}).
		Where("id = ? AND tenant_id = ?", s.ID, s.TenantID).
		Updates(map[string]interface{}{
			"status":     string(s.Status),
			"paid_at":    s.PaidAt,
			"updated_at": s.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新销售单失败")
	}
	if result.RowsAffected == 0 {
		return sale.ErrSaleNotFound
	}

	// 结算时回填明细加权成本
	for i := range s.Items {
		item := &s.Items[i]
		if err := db.Model(&SaleItemModel{}).
			Where("id = ? AND sale_id = ?", item.ID, s.ID).
			Updates(map[string]interface{}{
				"unit_cost":  item.UnitCost,
				"total_cost": item.TotalCost,
			}).Error; err != nil {
			return apperrors.Wrap(err, "更新销售明细失败")
		}
	}
	return nil
}

// FindByID 根据ID查找销售单(含明细)
func (r *saleRepository) FindByID(ctx context.Context, tenantID, id uint) (*sale.Sale, error) {
	var model SaleModel
	db := getDB(ctx, r.db)
	err := db.Preload("Items").Where("tenant_id = ?", tenantID).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sale.ErrSaleNotFound
		}
		return nil, apperrors.Wrap(err, "查询销售单失败")
	}

	return toSaleEntity(&model), nil
}

// FindBySaleNo 根据单号查找销售单
func (r *saleRepository) FindBySaleNo(ctx context.Context, tenantID uint, saleNo string) (*sale.Sale, error) {
	var model SaleModel
	db := getDB(ctx, r.db)
	err := db.Preload("Items").
		Where("tenant_id = ? AND sale_no = ?", tenantID, saleNo).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sale.ErrSaleNotFound
		}
		return nil, apperrors.Wrap(err, "查询销售单失败")
	}

	return toSaleEntity(&model), nil
}

// LockByID 悲观锁查找销售单
// 结算时使用,防止同一单被并发结算两次
func (r *saleRepository) LockByID(ctx context.Context, tenantID, id uint) (*sale.Sale, error) {
	var model SaleModel
	db := getDB(ctx, r.db)

	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ?", tenantID).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sale.ErrSaleNotFound
		}
		return nil, apperrors.Wrap(err, "锁定销售单失败")
	}

	if err := db.Where("sale_id = ?", model.ID).Find(&model.Items).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询销售明细失败")
	}

	return toSaleEntity(&model), nil
}

// List 分页查询销售单列表
func (r *saleRepository) List(ctx context.Context, tenantID uint, params sale.ListParams) ([]*sale.Sale, int64, error) {
	var models []SaleModel
	var total int64

	db := getDB(ctx, r.db)
	query := db.Model(&SaleModel{}).Where("tenant_id = ?", tenantID)

	if params.StoreID > 0 {
		query = query.Where("store_id = ?", params.StoreID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", string(params.Status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询销售总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询销售列表失败")
	}

	sales := make([]*sale.Sale, len(models))
	for i := range models {
		sales[i] = toSaleEntity(&models[i])
	}
	return sales, total, nil
}

// =========================================
// paymentRepository 收款记录仓储实现
// =========================================

// paymentRepository 收款记录仓储实现(MySQL),只增不改
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建收款记录仓储
func NewPaymentRepository(db *gorm.DB) sale.PaymentRepository {
	return &paymentRepository{db: db}
}

// Create 写入收款记录
// 结算时与现金流水在同一事务内写入
func (r *paymentRepository) Create(ctx context.Context, p *sale.Payment) error {
	model := &PaymentModel{
		TenantID:  p.TenantID,
		SaleID:    p.SaleID,
		Method:    string(p.Method),
		Amount:    p.Amount,
		CreatedAt: p.CreatedAt,
	}

	db := getDB(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入收款记录失败")
	}

	p.ID = model.ID
	return nil
}

// FindBySale 查找销售单的收款记录
func (r *paymentRepository) FindBySale(ctx context.Context, tenantID, saleID uint) ([]*sale.Payment, error) {
	var models []PaymentModel
	db := getDB(ctx, r.db)
	err := db.Where("tenant_id = ? AND sale_id = ?", tenantID, saleID).
		Order("id ASC").
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询收款记录失败")
	}

	payments := make([]*sale.Payment, len(models))
	for i := range models {
		payments[i] = &sale.Payment{
			ID:        models[i].ID,
			TenantID:  models[i].TenantID,
			SaleID:    models[i].SaleID,
			Method:    sale.PaymentMethod(models[i].Method),
			Amount:    models[i].Amount,
			CreatedAt: models[i].CreatedAt,
		}
	}
	return payments, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toSaleModel 领域实体 → GORM模型
func toSaleModel(s *sale.Sale) *SaleModel {
	items := make([]SaleItemModel, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemModel{
			ID:        item.ID,
			SaleID:    item.SaleID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			UnitCost:  item.UnitCost,
			TotalCost: item.TotalCost,
		}
	}

	return &SaleModel{
		ID:         s.ID,
		TenantID:   s.TenantID,
		StoreID:    s.StoreID,
		SaleNo:     s.SaleNo,
		CustomerID: s.CustomerID,
		Status:     string(s.Status),
		Discount:   s.Discount,
		Total:      s.Total,
		Items:      items,
		PaidAt:     s.PaidAt,
		ActorID:    s.ActorID,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// toSaleEntity GORM模型 → 领域实体
func toSaleEntity(model *SaleModel) *sale.Sale {
	items := make([]sale.Item, len(model.Items))
	for i, item := range model.Items {
		items[i] = sale.Item{
			ID:        item.ID,
			SaleID:    item.SaleID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			UnitCost:  item.UnitCost,
			TotalCost: item.TotalCost,
		}
	}

	return &sale.Sale{
		ID:         model.ID,
		TenantID:   model.TenantID,
		StoreID:    model.StoreID,
		SaleNo:     model.SaleNo,
		CustomerID: model.CustomerID,
		Status:     sale.Status(model.Status),
		Discount:   model.Discount,
		Total:      model.Total,
		Items:      items,
		PaidAt:     model.PaidAt,
		ActorID:    model.ActorID,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
