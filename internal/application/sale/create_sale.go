package sale

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/domain/catalog"
	"github.com/xiebiao/pharmacy/internal/domain/sale"
)

// CreateSaleUseCase 开单用例
// 设计说明:
// 1. 开单阶段不占用库存,结算时才FEFO出库
// 2. 售价取商品目录当前价(价格快照),不信任前端传价
//    (防止改价攻击)
type CreateSaleUseCase struct {
	saleRepo    sale.Repository
	productRepo catalog.ProductRepository
}

// NewCreateSaleUseCase 创建开单用例
func NewCreateSaleUseCase(saleRepo sale.Repository, productRepo catalog.ProductRepository) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		saleRepo:    saleRepo,
		productRepo: productRepo,
	}
}

// CreateSaleRequest 开单请求DTO
type CreateSaleRequest struct {
	TenantID   uint // 租户ID(从JWT提取)
	StoreID    uint // 门店(从JWT提取)
	ActorID    uint // 开单人(从JWT提取)
	CustomerID uint // 关联顾客(可选)
	Discount   int64
	Items      []CreateSaleItem
}

// CreateSaleItem 销售明细项
type CreateSaleItem struct {
	ProductID uint
	Quantity  int
	Discount  int64 // 明细优惠(分)
}

// CreateSaleResponse 开单响应DTO
type CreateSaleResponse struct {
	SaleID uint   `json:"sale_id"`
	SaleNo string `json:"sale_no"`
	Total  int64  `json:"total"`
	Status string `json:"status"`
}

// Execute 执行开单
func (uc *CreateSaleUseCase) Execute(ctx context.Context, req CreateSaleRequest) (*CreateSaleResponse, error) {
	// 1. 校验商品并取当前售价作为快照
	items := make([]sale.Item, len(req.Items))
	for i, item := range req.Items {
		product, err := uc.productRepo.FindByID(ctx, req.TenantID, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Active {
			return nil, catalog.ErrProductNotFound
		}
		items[i] = sale.Item{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price, // 数据库中的当前价格
			Discount:  item.Discount,
		}
	}

	// 2. 创建销售单(工厂方法计算应收金额)
	s, err := sale.NewSale(req.TenantID, req.StoreID, req.CustomerID, req.ActorID,
		items, req.Discount)
	if err != nil {
		return nil, err
	}

	if err := uc.saleRepo.Create(ctx, s); err != nil {
		return nil, err
	}

	return &CreateSaleResponse{
		SaleID: s.ID,
		SaleNo: s.SaleNo,
		Total:  s.Total,
		Status: string(s.Status),
	}, nil
}
