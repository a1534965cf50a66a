package catalog

import (
	"context"
)

// ProductRepository 商品仓储接口(依赖倒置原则)
type ProductRepository interface {
	// Create 创建商品
	Create(ctx context.Context, product *Product) error

	// Update 更新商品
	Update(ctx context.Context, product *Product) error

	// FindByID 根据ID查找商品
	FindByID(ctx context.Context, tenantID, id uint) (*Product, error)

	// FindBySKU 根据SKU查找商品
	FindBySKU(ctx context.Context, tenantID uint, sku string) (*Product, error)

	// List 分页查询商品列表
	List(ctx context.Context, tenantID uint, params ListParams) ([]*Product, int64, error)
}

// ListParams 商品列表查询参数
type ListParams struct {
	Page       int
	PageSize   int
	Keyword    string // 搜索关键词(名称、SKU、条码)
	OnlyActive bool   // 只看在售商品
}

// StoreRepository 门店仓储接口
type StoreRepository interface {
	// Create 创建门店
	Create(ctx context.Context, store *Store) error

	// FindByID 根据ID查找门店
	FindByID(ctx context.Context, tenantID, id uint) (*Store, error)

	// ListByTenant 查询租户的全部门店
	ListByTenant(ctx context.Context, tenantID uint) ([]*Store, error)
}
