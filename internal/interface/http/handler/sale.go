package handler

import (
	"github.com/gin-gonic/gin"

	appsale "github.com/xiebiao/pharmacy/internal/application/sale"
	"github.com/xiebiao/pharmacy/internal/domain/sale"
	"github.com/xiebiao/pharmacy/internal/interface/http/dto"
	"github.com/xiebiao/pharmacy/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// SaleHandler 销售HTTP处理器
type SaleHandler struct {
	createSaleUseCase *appsale.CreateSaleUseCase
	settleSaleUseCase *appsale.SettleSaleUseCase
	cancelSaleUseCase *appsale.CancelSaleUseCase
	getSaleUseCase    *appsale.GetSaleUseCase
	listSalesUseCase  *appsale.ListSalesUseCase
}

// NewSaleHandler 创建销售处理器
func NewSaleHandler(
	createSaleUseCase *appsale.CreateSaleUseCase,
	settleSaleUseCase *appsale.SettleSaleUseCase,
	cancelSaleUseCase *appsale.CancelSaleUseCase,
	getSaleUseCase *appsale.GetSaleUseCase,
	listSalesUseCase *appsale.ListSalesUseCase,
) *SaleHandler {
	return &SaleHandler{
		createSaleUseCase: createSaleUseCase,
		settleSaleUseCase: settleSaleUseCase,
		cancelSaleUseCase: cancelSaleUseCase,
		getSaleUseCase:    getSaleUseCase,
		listSalesUseCase:  listSalesUseCase,
	}
}

// Create 开单
// @Summary      开单
// @Description  创建销售单并按当前售价快照计算应收金额（不动库存）
// @Tags         销售
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateSaleRequest true "销售单信息"
// @Success      201 {object} response.Response "开单成功"
// @Failure      400 {object} response.Response "参数错误或优惠超过小计"
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	items := make([]appsale.CreateSaleItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = appsale.CreateSaleItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Discount:  item.Discount,
		}
	}

	result, err := h.createSaleUseCase.Execute(c.Request.Context(), appsale.CreateSaleRequest{
		TenantID:   middleware.GetTenantID(c),
		StoreID:    middleware.GetStoreID(c),
		ActorID:    middleware.GetUserID(c),
		CustomerID: req.CustomerID,
		Discount:   req.Discount,
		Items:      items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Settle 结算
// @Summary      结算销售单
// @Description  收款并按FEFO扣减库存，整单一个事务：要求门店有进行中的收银班次，
// @Description  收款合计必须等于应收金额，处方药需要药师或管理员操作
// @Tags         销售
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "销售单ID"
// @Param        request body dto.SettleSaleRequest true "收款信息"
// @Success      200 {object} response.Response "结算成功"
// @Failure      400 {object} response.Response "库存不足/无班次/金额不符"
// @Failure      403 {object} response.Response "处方药角色不足或非本门店销售单"
// @Failure      409 {object} response.Response "销售单状态不允许结算"
// @Router       /api/v1/sales/{id}/settle [post]
func (h *SaleHandler) Settle(c *gin.Context) {
	saleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SettleSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	payments := make([]appsale.SettlePayment, len(req.Payments))
	for i, p := range req.Payments {
		payments[i] = appsale.SettlePayment{Method: p.Method, Amount: p.Amount}
	}

	result, err := h.settleSaleUseCase.Execute(c.Request.Context(), appsale.SettleSaleRequest{
		TenantID:  middleware.GetTenantID(c),
		StoreID:   middleware.GetStoreID(c),
		ActorID:   middleware.GetUserID(c),
		ActorRole: middleware.GetRole(c),
		SaleID:    saleID,
		Payments:  payments,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Cancel 作废
// @Summary      作废销售单
// @Description  作废未结算的销售单（已结算的不可作废）
// @Tags         销售
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "销售单ID"
// @Success      200 {object} response.Response "作废成功"
// @Failure      409 {object} response.Response "销售单状态不允许作废"
// @Router       /api/v1/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *gin.Context) {
	saleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.cancelSaleUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), middleware.GetStoreID(c), saleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Get 销售单详情
// @Summary      销售单详情
// @Description  查询销售单及收款记录
// @Tags         销售
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "销售单ID"
// @Success      200 {object} response.Response "查询成功"
// @Failure      404 {object} response.Response "销售单不存在"
// @Router       /api/v1/sales/{id} [get]
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.getSaleUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), saleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 销售单列表
// @Summary      销售单列表
// @Description  分页查询销售单，支持按门店/状态过滤
// @Tags         销售
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        store_id query int false "按门店过滤"
// @Param        status query string false "按状态过滤(OPEN/SETTLED/CANCELED)"
// @Success      200 {object} response.Response "查询成功"
// @Router       /api/v1/sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	result, err := h.listSalesUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), sale.ListParams{
			Page:     page,
			PageSize: pageSize,
			StoreID:  queryID(c, "store_id"),
			Status:   sale.Status(c.Query("status")),
		})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
