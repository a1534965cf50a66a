package catalog

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/domain/catalog"
)

// CreateProductUseCase 创建商品用例
type CreateProductUseCase struct {
	productRepo catalog.ProductRepository
}

// NewCreateProductUseCase 创建商品用例
func NewCreateProductUseCase(productRepo catalog.ProductRepository) *CreateProductUseCase {
	return &CreateProductUseCase{productRepo: productRepo}
}

// CreateProductRequest 创建商品请求DTO
type CreateProductRequest struct {
	TenantID             uint // 租户ID(从JWT提取)
	SKU                  string
	Barcode              string
	Name                 string
	Description          string
	Price                int64 // 售价(分)
	RequiresPrescription bool
}

// ProductInfo 商品信息DTO
type ProductInfo struct {
	ID                   uint   `json:"id"`
	SKU                  string `json:"sku"`
	Barcode              string `json:"barcode,omitempty"`
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	Price                int64  `json:"price"`
	RequiresPrescription bool   `json:"requires_prescription"`
	Active               bool   `json:"active"`
}

// Execute 执行创建商品
func (uc *CreateProductUseCase) Execute(ctx context.Context, req CreateProductRequest) (*ProductInfo, error) {
	product, err := catalog.NewProduct(req.TenantID, req.SKU, req.Barcode,
		req.Name, req.Description, req.Price, req.RequiresPrescription)
	if err != nil {
		return nil, err
	}

	// SKU重复由数据库唯一索引保证,仓储翻译为ErrSKUDuplicate
	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	info := toProductInfo(product)
	return &info, nil
}

// UpdateProductUseCase 更新商品用例(改价/改信息/下架)
type UpdateProductUseCase struct {
	productRepo catalog.ProductRepository
}

// NewUpdateProductUseCase 创建更新商品用例
func NewUpdateProductUseCase(productRepo catalog.ProductRepository) *UpdateProductUseCase {
	return &UpdateProductUseCase{productRepo: productRepo}
}

// UpdateProductRequest 更新商品请求DTO
// Price为nil表示不改价;Deactivate=true时下架
type UpdateProductRequest struct {
	TenantID    uint
	ProductID   uint
	Name        string
	Description string
	Barcode     string
	Price       *int64
	Deactivate  bool
}

// Execute 执行更新商品
func (uc *UpdateProductUseCase) Execute(ctx context.Context, req UpdateProductRequest) (*ProductInfo, error) {
	product, err := uc.productRepo.FindByID(ctx, req.TenantID, req.ProductID)
	if err != nil {
		return nil, err
	}

	product.UpdateInfo(req.Name, req.Description, req.Barcode)
	if req.Price != nil {
		if err := product.UpdatePrice(*req.Price); err != nil {
			return nil, err
		}
	}
	if req.Deactivate {
		// 下架不物理删除,历史销售/批号还引用它
		product.Deactivate()
	}

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	info := toProductInfo(product)
	return &info, nil
}

// ListProductsUseCase 商品列表查询用例
type ListProductsUseCase struct {
	productRepo catalog.ProductRepository
}

// NewListProductsUseCase 创建商品列表查询用例
func NewListProductsUseCase(productRepo catalog.ProductRepository) *ListProductsUseCase {
	return &ListProductsUseCase{productRepo: productRepo}
}

// ListProductsResponse 商品列表响应DTO
type ListProductsResponse struct {
	Products []ProductInfo `json:"products"`
	Total    int64         `json:"total"`
}

// Execute 分页查询商品
func (uc *ListProductsUseCase) Execute(ctx context.Context, tenantID uint, params catalog.ListParams) (*ListProductsResponse, error) {
	products, total, err := uc.productRepo.List(ctx, tenantID, params)
	if err != nil {
		return nil, err
	}

	infos := make([]ProductInfo, len(products))
	for i, p := range products {
		infos[i] = toProductInfo(p)
	}
	return &ListProductsResponse{Products: infos, Total: total}, nil
}

// toProductInfo 领域实体 → DTO
func toProductInfo(p *catalog.Product) ProductInfo {
	return ProductInfo{
		ID:                   p.ID,
		SKU:                  p.SKU,
		Barcode:              p.Barcode,
		Name:                 p.Name,
		Description:          p.Description,
		Price:                p.Price,
		RequiresPrescription: p.RequiresPrescription,
		Active:               p.Active,
	}
}
