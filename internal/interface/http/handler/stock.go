package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appstock "github.com/xiebiao/pharmacy/internal/application/stock"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/interface/http/dto"
	"github.com/xiebiao/pharmacy/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// StockHandler 库存HTTP处理器
// 收货/盘点操作的门店取自JWT，只能操作本门店的库存
type StockHandler struct {
	receiveStockUseCase  *appstock.ReceiveStockUseCase
	adjustStockUseCase   *appstock.AdjustStockUseCase
	availabilityUseCase  *appstock.AvailabilityUseCase
	listLotsUseCase      *appstock.ListLotsUseCase
	listMovementsUseCase *appstock.ListMovementsUseCase
}

// NewStockHandler 创建库存处理器
func NewStockHandler(
	receiveStockUseCase *appstock.ReceiveStockUseCase,
	adjustStockUseCase *appstock.AdjustStockUseCase,
	availabilityUseCase *appstock.AvailabilityUseCase,
	listLotsUseCase *appstock.ListLotsUseCase,
	listMovementsUseCase *appstock.ListMovementsUseCase,
) *StockHandler {
	return &StockHandler{
		receiveStockUseCase:  receiveStockUseCase,
		adjustStockUseCase:   adjustStockUseCase,
		availabilityUseCase:  availabilityUseCase,
		listLotsUseCase:      listLotsUseCase,
		listMovementsUseCase: listMovementsUseCase,
	}
}

// Receive 收货入库
// @Summary      收货入库
// @Description  按(商品,批号,有效期,成本)入库，同键批号累加数量，同时写IN流水
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ReceiveStockRequest true "收货信息"
// @Success      200 {object} response.Response "入库成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/stock/receive [post]
func (h *StockHandler) Receive(c *gin.Context) {
	var req dto.ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	var expiration *time.Time
	if req.Expiration != "" {
		exp, err := time.Parse("2006-01-02", req.Expiration)
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "有效期格式错误，应为yyyy-MM-dd")
			return
		}
		expiration = &exp
	}

	result, err := h.receiveStockUseCase.Execute(c.Request.Context(), appstock.ReceiveStockRequest{
		TenantID:   middleware.GetTenantID(c),
		StoreID:    middleware.GetStoreID(c),
		ActorID:    middleware.GetUserID(c),
		ProductID:  req.ProductID,
		LotNumber:  req.LotNumber,
		Expiration: expiration,
		UnitCost:   req.UnitCost,
		Quantity:   req.Quantity,
		Reason:     req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Adjust 盘点调整
// @Summary      盘点调整
// @Description  盘盈/盘亏调整批号数量并写ADJUST流水（需要药师或管理员角色）
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AdjustStockRequest true "调整信息"
// @Success      200 {object} response.Response "调整成功"
// @Failure      400 {object} response.Response "参数错误或调整后数量为负"
// @Failure      403 {object} response.Response "角色不足或非本门店批号"
// @Router       /api/v1/stock/adjust [post]
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.adjustStockUseCase.Execute(c.Request.Context(), appstock.AdjustStockRequest{
		TenantID: middleware.GetTenantID(c),
		ActorID:  middleware.GetUserID(c),
		StoreID:  middleware.GetStoreID(c),
		LotID:    req.LotID,
		Delta:    req.Delta,
		Reason:   req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Availability 可用量查询
// @Summary      可用量查询
// @Description  查询(门店,商品)的可售量：在架批号总量减去已批准预约占用
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        product_id query int true "商品ID"
// @Param        store_id query int false "门店ID（缺省为本门店，可查其他门店用于预约/调拨前确认）"
// @Success      200 {object} response.Response "查询成功"
// @Router       /api/v1/stock/availability [get]
func (h *StockHandler) Availability(c *gin.Context) {
	productID := queryID(c, "product_id")
	if productID == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "product_id必填")
		return
	}
	storeID := queryID(c, "store_id")
	if storeID == 0 {
		storeID = middleware.GetStoreID(c)
	}

	result, err := h.availabilityUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), storeID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListLots 批号列表
// @Summary      批号列表
// @Description  分页查询批号，支持近效期过滤（expiring_days=N看N天内到期）
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        store_id query int false "按门店过滤"
// @Param        product_id query int false "按商品过滤"
// @Param        expiring_days query int false "只看N天内到期的批号"
// @Param        include_retired query bool false "包含已下架批号"
// @Success      200 {object} response.Response "查询成功"
// @Router       /api/v1/stock/lots [get]
func (h *StockHandler) ListLots(c *gin.Context) {
	page, pageSize := pagination(c)
	expiringDays, _ := strconv.Atoi(c.Query("expiring_days"))

	result, err := h.listLotsUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), stock.ListLotsParams{
			Page:          page,
			PageSize:      pageSize,
			StoreID:       queryID(c, "store_id"),
			ProductID:     queryID(c, "product_id"),
			OnlyActive:    c.Query("include_retired") != "true",
			ExpiringDays:  expiringDays,
			IncludeRetire: c.Query("include_retired") == "true",
		})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListMovements 库存流水
// @Summary      库存流水
// @Description  分页查询库存流水账（只增不改的审计记录）
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        store_id query int false "按门店过滤"
// @Param        product_id query int false "按商品过滤"
// @Param        lot_id query int false "按批号过滤"
// @Param        type query string false "按类型过滤(IN/OUT/ADJUST/TRANSFER_OUT/TRANSFER_IN)"
// @Success      200 {object} response.Response "查询成功"
// @Router       /api/v1/stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	page, pageSize := pagination(c)

	result, err := h.listMovementsUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), stock.ListMovementsParams{
			Page:      page,
			PageSize:  pageSize,
			StoreID:   queryID(c, "store_id"),
			ProductID: queryID(c, "product_id"),
			LotID:     queryID(c, "lot_id"),
			Type:      stock.MovementType(c.Query("type")),
		})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
