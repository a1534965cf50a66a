package handler

import (
	"github.com/gin-gonic/gin"

	appcashier "github.com/xiebiao/pharmacy/internal/application/cashier"
	"github.com/xiebiao/pharmacy/internal/domain/cashier"
	"github.com/xiebiao/pharmacy/internal/interface/http/dto"
	"github.com/xiebiao/pharmacy/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// CashierHandler 收银班次HTTP处理器
type CashierHandler struct {
	openSessionUseCase  *appcashier.OpenSessionUseCase
	closeSessionUseCase *appcashier.CloseSessionUseCase
	cashInOutUseCase    *appcashier.CashInOutUseCase
	getSessionUseCase   *appcashier.GetSessionUseCase
	listSessionsUseCase *appcashier.ListSessionsUseCase
}

// NewCashierHandler 创建收银班次处理器
func NewCashierHandler(
	openSessionUseCase *appcashier.OpenSessionUseCase,
	closeSessionUseCase *appcashier.CloseSessionUseCase,
	cashInOutUseCase *appcashier.CashInOutUseCase,
	getSessionUseCase *appcashier.GetSessionUseCase,
	listSessionsUseCase *appcashier.ListSessionsUseCase,
) *CashierHandler {
	return &CashierHandler{
		openSessionUseCase:  openSessionUseCase,
		closeSessionUseCase: closeSessionUseCase,
		cashInOutUseCase:    cashInOutUseCase,
		getSessionUseCase:   getSessionUseCase,
		listSessionsUseCase: listSessionsUseCase,
	}
}

// Open 开班
// @Summary      开班
// @Description  在本门店开启收银班次（一个门店同时只能有一个进行中的班次）
// @Tags         收银
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.OpenSessionRequest true "备用金"
// @Success      201 {object} response.Response "开班成功"
// @Failure      400 {object} response.Response "该门店已有进行中的班次"
// @Router       /api/v1/cashier/sessions [post]
func (h *CashierHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.openSessionUseCase.Execute(c.Request.Context(), appcashier.OpenSessionRequest{
		TenantID:     middleware.GetTenantID(c),
		StoreID:      middleware.GetStoreID(c),
		ActorID:      middleware.GetUserID(c),
		OpeningFloat: req.OpeningFloat,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Close 交班
// @Summary      交班
// @Description  关闭本门店进行中的班次并对账：期望金额=备用金+Σ现金流水，
// @Description  长短款=实际清点-期望（只记录不拦截）
// @Tags         收银
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CloseSessionRequest true "实际清点金额"
// @Success      200 {object} response.Response "交班成功，返回对账结果"
// @Failure      400 {object} response.Response "无进行中的班次"
// @Router       /api/v1/cashier/sessions/close [post]
func (h *CashierHandler) Close(c *gin.Context) {
	var req dto.CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.closeSessionUseCase.Execute(c.Request.Context(), appcashier.CloseSessionRequest{
		TenantID:      middleware.GetTenantID(c),
		StoreID:       middleware.GetStoreID(c),
		ActorID:       middleware.GetUserID(c),
		ClosingAmount: req.ClosingAmount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CashInOut 取款/存入
// @Summary      现金取款/存入
// @Description  班次进行中记录取款（上缴）或存入（补充找零），流水只增不改
// @Tags         收银
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CashInOutRequest true "现金操作"
// @Success      200 {object} response.Response "记录成功"
// @Failure      400 {object} response.Response "无进行中的班次"
// @Router       /api/v1/cashier/movements [post]
func (h *CashierHandler) CashInOut(c *gin.Context) {
	var req dto.CashInOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	err := h.cashInOutUseCase.Execute(c.Request.Context(), appcashier.CashInOutRequest{
		TenantID: middleware.GetTenantID(c),
		StoreID:  middleware.GetStoreID(c),
		ActorID:  middleware.GetUserID(c),
		Type:     req.Type,
		Amount:   req.Amount,
		Note:     req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Get 班次详情
// @Summary      班次详情
// @Description  查询班次及其现金流水明细
// @Tags         收银
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "班次ID"
// @Success      200 {object} response.Response "查询成功"
// @Failure      404 {object} response.Response "班次不存在"
// @Router       /api/v1/cashier/sessions/{id} [get]
func (h *CashierHandler) Get(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.getSessionUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 班次列表
// @Summary      班次列表
// @Description  分页查询班次，支持按门店/状态过滤
// @Tags         收银
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        store_id query int false "按门店过滤"
// @Param        status query string false "按状态过滤(OPEN/CLOSED)"
// @Success      200 {object} response.Response "查询成功"
// @Router       /api/v1/cashier/sessions [get]
func (h *CashierHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	result, err := h.listSessionsUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), cashier.ListParams{
			Page:     page,
			PageSize: pageSize,
			StoreID:  queryID(c, "store_id"),
			Status:   cashier.SessionStatus(c.Query("status")),
		})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
