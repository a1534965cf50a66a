package catalog

import (
	"time"
)

// Product 商品实体(聚合根)
// DDD设计说明:
// 1. SKU作为业务唯一标识(租户内唯一,数据库层保证)
// 2. 售价使用int64存储"分"(避免浮点数精度问题)
// 3. 商品不保存库存数量:库存由批号(stock.Lot)承载,
//    商品只是目录信息
type Product struct {
	ID                   uint
	TenantID             uint
	SKU                  string // 商品编码(租户内唯一)
	Barcode              string // 条码(扫码售卖)
	Name                 string // 商品名
	Description          string
	Price                int64 // 售价(分)
	RequiresPrescription bool  // 是否处方药(结算时需药师角色)
	Active               bool  // 是否在售
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewProduct 创建商品(工厂方法)
func NewProduct(tenantID uint, sku, barcode, name, description string, price int64, requiresPrescription bool) (*Product, error) {
	if sku == "" {
		return nil, ErrInvalidSKU
	}
	if name == "" {
		return nil, ErrInvalidName
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}

	now := time.Now()
	return &Product{
		TenantID:             tenantID,
		SKU:                  sku,
		Barcode:              barcode,
		Name:                 name,
		Description:          description,
		Price:                price,
		RequiresPrescription: requiresPrescription,
		Active:               true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// UpdatePrice 更新售价(领域行为)
func (p *Product) UpdatePrice(newPrice int64) error {
	if newPrice < 0 {
		return ErrInvalidPrice
	}
	p.Price = newPrice
	p.UpdatedAt = time.Now()
	return nil
}

// UpdateInfo 更新商品基本信息
func (p *Product) UpdateInfo(name, description, barcode string) {
	if name != "" {
		p.Name = name
	}
	if description != "" {
		p.Description = description
	}
	if barcode != "" {
		p.Barcode = barcode
	}
	p.UpdatedAt = time.Now()
}

// Deactivate 下架商品(不物理删除,历史销售还引用它)
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}

// Store 门店实体
// 门店是库存、销售、班次的归属维度
type Store struct {
	ID        uint
	TenantID  uint
	Code      string // 门店编码(租户内唯一)
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewStore 创建门店
func NewStore(tenantID uint, code, name, address string) (*Store, error) {
	if code == "" || name == "" {
		return nil, ErrInvalidName
	}
	now := time.Now()
	return &Store{
		TenantID:  tenantID,
		Code:      code,
		Name:      name,
		Address:   address,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
