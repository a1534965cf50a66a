package sale

import (
	"context"
	"time"

	"github.com/xiebiao/pharmacy/internal/domain/cashier"
	"github.com/xiebiao/pharmacy/internal/domain/catalog"
	"github.com/xiebiao/pharmacy/internal/domain/sale"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/domain/user"
	"github.com/xiebiao/pharmacy/internal/infrastructure/notify"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/metrics"
)

// SettleSaleUseCase 销售结算用例
// 这是整个系统最核心的用例,一次结算在同一事务内完成:
// 1. 锁定销售单(防止并发结算两次)
// 2. 校验门店有进行中的收银班次(收款必须落入班次对账闭环)
// 3. 处方药校验(明细含处方药时要求药师/管理员角色)
// 4. 逐明细FEFO出库(持批号行锁复核可用量,防超卖)
// 5. 回填明细加权成本(毛利核算)
// 6. 写收款记录和班次现金流水
// 任一步失败整单回滚,库存/销售单/收款都不改动
type SettleSaleUseCase struct {
	saleRepo     sale.Repository
	paymentRepo  sale.PaymentRepository
	productRepo  catalog.ProductRepository
	sessionRepo  cashier.SessionRepository
	cashRepo     cashier.MovementRepository
	stockService stock.Service
	txManager    TxManager
	notifier     notify.Notifier
}

// NewSettleSaleUseCase 创建结算用例
func NewSettleSaleUseCase(
	saleRepo sale.Repository,
	paymentRepo sale.PaymentRepository,
	productRepo catalog.ProductRepository,
	sessionRepo cashier.SessionRepository,
	cashRepo cashier.MovementRepository,
	stockService stock.Service,
	txManager TxManager,
	notifier notify.Notifier,
) *SettleSaleUseCase {
	return &SettleSaleUseCase{
		saleRepo:     saleRepo,
		paymentRepo:  paymentRepo,
		productRepo:  productRepo,
		sessionRepo:  sessionRepo,
		cashRepo:     cashRepo,
		stockService: stockService,
		txManager:    txManager,
		notifier:     notifier,
	}
}

// SettleSaleRequest 结算请求DTO
type SettleSaleRequest struct {
	TenantID  uint      // 租户ID(从JWT提取)
	StoreID   uint      // 操作人门店(从JWT提取)
	ActorID   uint      // 结算人(从JWT提取)
	ActorRole user.Role // 结算人角色(处方药校验)
	SaleID    uint
	Payments  []SettlePayment
}

// SettlePayment 收款项
type SettlePayment struct {
	Method string // CASH | CARD | PIX | CREDIT
	Amount int64  // 收款金额(分)
}

// SettleSaleResponse 结算响应DTO
type SettleSaleResponse struct {
	SaleID    uint   `json:"sale_id"`
	SaleNo    string `json:"sale_no"`
	Total     int64  `json:"total"`
	TotalCost int64  `json:"total_cost"` // 总成本(分),毛利=Total-TotalCost
	Status    string `json:"status"`
}

// Execute 执行结算
func (uc *SettleSaleUseCase) Execute(ctx context.Context, req SettleSaleRequest) (*SettleSaleResponse, error) {
	start := time.Now()

	var s *sale.Sale
	var totalCost int64

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定销售单
		var err error
		s, err = uc.saleRepo.LockByID(txCtx, req.TenantID, req.SaleID)
		if err != nil {
			return err
		}

		// 2. 门店归属校验
		if !s.IsOwnedByStore(req.StoreID) {
			return apperrors.ErrStoreMismatch
		}

		// 3. 收款金额必须与应收一致
		var paid int64
		for _, p := range req.Payments {
			paid += p.Amount
		}
		if paid != s.Total {
			return sale.ErrPaymentMismatch
		}

		// 4. 班次校验:门店必须有进行中的班次(持锁,交班与结算互斥)
		session, err := uc.sessionRepo.LockOpenByStore(txCtx, req.TenantID, req.StoreID)
		if err != nil {
			return err
		}

		// 5. 处方药校验:明细含处方药时要求药师/管理员
		for _, item := range s.Items {
			product, err := uc.productRepo.FindByID(txCtx, req.TenantID, item.ProductID)
			if err != nil {
				return err
			}
			if product.RequiresPrescription && !req.ActorRole.IsElevated() {
				return sale.ErrPrescriptionRequired
			}
		}

		// 6. 逐明细FEFO出库并回填加权成本
		// 成本按明细下标回填:同一商品分多行时每行记各自消耗的成本
		for i := range s.Items {
			item := s.Items[i]
			result, err := uc.stockService.Consume(txCtx, stock.ConsumeParams{
				TenantID:  req.TenantID,
				StoreID:   s.StoreID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Type:      stock.MovementOut,
				SaleID:    s.ID,
				ActorID:   req.ActorID,
			})
			if err != nil {
				return err // 任一明细不足,整单回滚
			}

			s.SetItemCost(i, result.WeightedUnitCost, result.TotalCost)
			totalCost += result.TotalCost

			if metrics.StockConsumedTotal != nil {
				metrics.AddCounterVec(metrics.StockConsumedTotal,
					map[string]string{"movement_type": string(stock.MovementOut)},
					float64(item.Quantity))
				metrics.ObserveHistogram(metrics.LotsTouchedPerConsume,
					float64(result.LotsTouched()))
			}
		}

		// 7. 状态流转(OPEN→PAID)
		if err := s.Settle(); err != nil {
			return err
		}
		if err := uc.saleRepo.Update(txCtx, s); err != nil {
			return err
		}

		// 8. 写收款记录;现金收款同时进入班次现金流水
		// (非现金收款不进钱箱,交班清点只对现金)
		for _, p := range req.Payments {
			payment, err := sale.NewPayment(req.TenantID, s.ID,
				sale.PaymentMethod(p.Method), p.Amount)
			if err != nil {
				return err
			}
			if err := uc.paymentRepo.Create(txCtx, payment); err != nil {
				return err
			}

			if payment.Method == sale.PaymentCash {
				cashMovement, err := cashier.NewSaleMovement(req.TenantID, session.ID,
					s.ID, req.ActorID, p.Amount)
				if err != nil {
					return err
				}
				if err := uc.cashRepo.Create(txCtx, cashMovement); err != nil {
					return err
				}
			}
		}

		return nil
	})

	if err != nil {
		uc.recordFailure(ctx, req, err)
		return nil, err
	}

	// 9. 事务提交后记录指标、发布事件(尽力而为)
	if metrics.SalesSettledTotal != nil {
		metrics.IncCounter(metrics.SalesSettledTotal)
		metrics.ObserveHistogram(metrics.SaleSettlementDuration, time.Since(start).Seconds())
	}
	uc.notifier.Notify(notify.EventSaleSettled, notify.SaleSettledEvent{
		TenantID: int64(s.TenantID),
		StoreID:  int64(s.StoreID),
		SaleID:   int64(s.ID),
		Total:    s.Total,
		Settled:  s.PaidAt.Unix(),
		ActorID:  int64(req.ActorID),
	})

	return &SettleSaleResponse{
		SaleID:    s.ID,
		SaleNo:    s.SaleNo,
		Total:     s.Total,
		TotalCost: totalCost,
		Status:    string(s.Status),
	}, nil
}

// recordFailure 记录结算失败指标和缺货事件
func (uc *SettleSaleUseCase) recordFailure(ctx context.Context, req SettleSaleRequest, err error) {
	reason := "other"
	switch {
	case apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock):
		reason = "insufficient_stock"
		if metrics.StockShortfallsTotal != nil {
			metrics.IncCounter(metrics.StockShortfallsTotal)
		}
		uc.notifier.Notify(notify.EventStockShortfall, notify.StockShortfallEvent{
			TenantID: int64(req.TenantID),
			StoreID:  int64(req.StoreID),
		})
	case apperrors.IsCode(err, apperrors.ErrCodeNoOpenCashSession):
		reason = "no_cash_session"
	}

	if metrics.SalesFailedTotal != nil {
		metrics.IncCounterVec(metrics.SalesFailedTotal, map[string]string{"reason": reason})
	}
}
