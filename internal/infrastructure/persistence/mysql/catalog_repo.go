package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/pharmacy/internal/domain/catalog"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// productRepository 商品仓储实现(MySQL)
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) catalog.ProductRepository {
	return &productRepository{db: db}
}

// Create 创建商品
// SKU唯一性由数据库(tenant_id, sku)唯一索引保证
// (而非应用层SELECT再INSERT,避免并发窗口)
func (r *productRepository) Create(ctx context.Context, p *catalog.Product) error {
	model := toProductModel(p)

	db := getDB(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return catalog.ErrSKUDuplicate
		}
		return apperrors.Wrap(err, "创建商品失败")
	}

	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

// Update 更新商品
func (r *productRepository) Update(ctx context.Context, p *catalog.Product) error {
	db := getDB(ctx, r.db)

	result := db.Model(&ProductModel{}).
		Where("id = ? AND tenant_id = ?", p.ID, p.TenantID).
		Updates(map[string]interface{}{
			"barcode":     p.Barcode,
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
			"active":      p.Active,
			"updated_at":  p.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新商品失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// FindByID 根据ID查找商品
func (r *productRepository) FindByID(ctx context.Context, tenantID, id uint) (*catalog.Product, error) {
	var model ProductModel
	db := getDB(ctx, r.db)
	err := db.Where("tenant_id = ?", tenantID).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}

	return toProductEntity(&model), nil
}

// FindBySKU 根据SKU查找商品
func (r *productRepository) FindBySKU(ctx context.Context, tenantID uint, sku string) (*catalog.Product, error) {
	var model ProductModel
	db := getDB(ctx, r.db)
	err := db.Where("tenant_id = ? AND sku = ?", tenantID, sku).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}

	return toProductEntity(&model), nil
}

// List 分页查询商品列表
func (r *productRepository) List(ctx context.Context, tenantID uint, params catalog.ListParams) ([]*catalog.Product, int64, error) {
	var models []ProductModel
	var total int64

	db := getDB(ctx, r.db)
	query := db.Model(&ProductModel{}).Where("tenant_id = ?", tenantID)

	// 关键词搜索(名称、SKU、条码)
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("name LIKE ? OR sku LIKE ? OR barcode LIKE ?", keyword, keyword, keyword)
	}
	if params.OnlyActive {
		query = query.Where("active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询商品总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.
		Order("created_at DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询商品列表失败")
	}

	products := make([]*catalog.Product, len(models))
	for i := range models {
		products[i] = toProductEntity(&models[i])
	}
	return products, total, nil
}

// =========================================
// storeRepository 门店仓储实现
// =========================================

// storeRepository 门店仓储实现(MySQL)
type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository 创建门店仓储
func NewStoreRepository(db *gorm.DB) catalog.StoreRepository {
	return &storeRepository{db: db}
}

// Create 创建门店
func (r *storeRepository) Create(ctx context.Context, s *catalog.Store) error {
	model := &StoreModel{
		TenantID:  s.TenantID,
		Code:      s.Code,
		Name:      s.Name,
		Address:   s.Address,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}

	db := getDB(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return catalog.ErrStoreCodeDuplicate
		}
		return apperrors.Wrap(err, "创建门店失败")
	}

	s.ID = model.ID
	return nil
}

// FindByID 根据ID查找门店
func (r *storeRepository) FindByID(ctx context.Context, tenantID, id uint) (*catalog.Store, error) {
	var model StoreModel
	db := getDB(ctx, r.db)
	err := db.Where("tenant_id = ?", tenantID).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrStoreNotFound
		}
		return nil, apperrors.Wrap(err, "查询门店失败")
	}

	return toStoreEntity(&model), nil
}

// ListByTenant 查询租户的全部门店
func (r *storeRepository) ListByTenant(ctx context.Context, tenantID uint) ([]*catalog.Store, error) {
	var models []StoreModel
	db := getDB(ctx, r.db)
	err := db.Where("tenant_id = ?", tenantID).Order("id ASC").Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询门店列表失败")
	}

	stores := make([]*catalog.Store, len(models))
	for i := range models {
		stores[i] = toStoreEntity(&models[i])
	}
	return stores, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toProductModel 领域实体 → GORM模型
func toProductModel(p *catalog.Product) *ProductModel {
	return &ProductModel{
		ID:                   p.ID,
		TenantID:             p.TenantID,
		SKU:                  p.SKU,
		Barcode:              p.Barcode,
		Name:                 p.Name,
		Description:          p.Description,
		Price:                p.Price,
		RequiresPrescription: p.RequiresPrescription,
		Active:               p.Active,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

// toProductEntity GORM模型 → 领域实体
func toProductEntity(model *ProductModel) *catalog.Product {
	return &catalog.Product{
		ID:                   model.ID,
		TenantID:             model.TenantID,
		SKU:                  model.SKU,
		Barcode:              model.Barcode,
		Name:                 model.Name,
		Description:          model.Description,
		Price:                model.Price,
		RequiresPrescription: model.RequiresPrescription,
		Active:               model.Active,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	}
}

// toStoreEntity GORM模型 → 领域实体
func toStoreEntity(model *StoreModel) *catalog.Store {
	return &catalog.Store{
		ID:        model.ID,
		TenantID:  model.TenantID,
		Code:      model.Code,
		Name:      model.Name,
		Address:   model.Address,
		Active:    model.Active,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
