package sale

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/domain/sale"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// CancelSaleUseCase 取消销售单用例
// 仅未结算(OPEN)的单可取消;已结算的单退货走盘点冲正,不回退状态
type CancelSaleUseCase struct {
	saleRepo  sale.Repository
	txManager TxManager
}

// NewCancelSaleUseCase 创建取消销售单用例
func NewCancelSaleUseCase(saleRepo sale.Repository, txManager TxManager) *CancelSaleUseCase {
	return &CancelSaleUseCase{saleRepo: saleRepo, txManager: txManager}
}

// Execute 执行取消
func (uc *CancelSaleUseCase) Execute(ctx context.Context, tenantID, storeID, saleID uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		s, err := uc.saleRepo.LockByID(txCtx, tenantID, saleID)
		if err != nil {
			return err
		}
		if !s.IsOwnedByStore(storeID) {
			return apperrors.ErrStoreMismatch
		}
		if err := s.Cancel(); err != nil {
			return err
		}
		return uc.saleRepo.Update(txCtx, s)
	})
}

// GetSaleUseCase 销售单详情查询用例
type GetSaleUseCase struct {
	saleRepo    sale.Repository
	paymentRepo sale.PaymentRepository
}

// NewGetSaleUseCase 创建销售单详情查询用例
func NewGetSaleUseCase(saleRepo sale.Repository, paymentRepo sale.PaymentRepository) *GetSaleUseCase {
	return &GetSaleUseCase{saleRepo: saleRepo, paymentRepo: paymentRepo}
}

// SaleInfo 销售单信息DTO
type SaleInfo struct {
	ID         uint           `json:"id"`
	SaleNo     string         `json:"sale_no"`
	StoreID    uint           `json:"store_id"`
	CustomerID uint           `json:"customer_id,omitempty"`
	Status     string         `json:"status"`
	Discount   int64          `json:"discount"`
	Total      int64          `json:"total"`
	Items      []SaleItemInfo `json:"items"`
	Payments   []PaymentInfo  `json:"payments,omitempty"`
	PaidAt     string         `json:"paid_at,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

// SaleItemInfo 销售明细DTO
type SaleItemInfo struct {
	ProductID uint  `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
	Discount  int64 `json:"discount"`
	UnitCost  int64 `json:"unit_cost"`  // 结算后才有值
	TotalCost int64 `json:"total_cost"` // 结算后才有值
}

// PaymentInfo 收款记录DTO
type PaymentInfo struct {
	Method string `json:"method"`
	Amount int64  `json:"amount"`
}

// Execute 查询销售单详情(含收款记录)
func (uc *GetSaleUseCase) Execute(ctx context.Context, tenantID, saleID uint) (*SaleInfo, error) {
	s, err := uc.saleRepo.FindByID(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}

	info := toSaleInfo(s)

	payments, err := uc.paymentRepo.FindBySale(ctx, tenantID, s.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		info.Payments = append(info.Payments, PaymentInfo{
			Method: string(p.Method),
			Amount: p.Amount,
		})
	}
	return &info, nil
}

// ListSalesUseCase 销售列表查询用例
type ListSalesUseCase struct {
	saleRepo sale.Repository
}

// NewListSalesUseCase 创建销售列表查询用例
func NewListSalesUseCase(saleRepo sale.Repository) *ListSalesUseCase {
	return &ListSalesUseCase{saleRepo: saleRepo}
}

// ListSalesResponse 销售列表响应DTO
type ListSalesResponse struct {
	Sales []SaleInfo `json:"sales"`
	Total int64      `json:"total"`
}

// Execute 分页查询销售单
func (uc *ListSalesUseCase) Execute(ctx context.Context, tenantID uint, params sale.ListParams) (*ListSalesResponse, error) {
	sales, total, err := uc.saleRepo.List(ctx, tenantID, params)
	if err != nil {
		return nil, err
	}

	infos := make([]SaleInfo, len(sales))
	for i, s := range sales {
		infos[i] = toSaleInfo(s)
	}
	return &ListSalesResponse{Sales: infos, Total: total}, nil
}

// toSaleInfo 领域实体 → DTO
func toSaleInfo(s *sale.Sale) SaleInfo {
	items := make([]SaleItemInfo, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemInfo{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			UnitCost:  item.UnitCost,
			TotalCost: item.TotalCost,
		}
	}
	info := SaleInfo{
		ID:         s.ID,
		SaleNo:     s.SaleNo,
		StoreID:    s.StoreID,
		CustomerID: s.CustomerID,
		Status:     string(s.Status),
		Discount:   s.Discount,
		Total:      s.Total,
		Items:      items,
		CreatedAt:  s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if s.PaidAt != nil {
		info.PaidAt = s.PaidAt.Format("2006-01-02 15:04:05")
	}
	return info
}
