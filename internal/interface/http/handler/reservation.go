package handler

import (
	"github.com/gin-gonic/gin"

	appreservation "github.com/xiebiao/pharmacy/internal/application/reservation"
	"github.com/xiebiao/pharmacy/internal/domain/reservation"
	"github.com/xiebiao/pharmacy/internal/interface/http/dto"
	"github.com/xiebiao/pharmacy/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// ReservationHandler 跨店预约HTTP处理器
// 路由整组挂RequireFeature(inventory_reservations)，
// 未开通套餐的租户到不了这里
type ReservationHandler struct {
	requestUseCase *appreservation.RequestReservationUseCase
	approveUseCase *appreservation.ApproveReservationUseCase
	rejectUseCase  *appreservation.RejectReservationUseCase
	cancelUseCase  *appreservation.CancelReservationUseCase
	fulfillUseCase *appreservation.FulfillReservationUseCase
	listUseCase    *appreservation.ListReservationsUseCase
}

// NewReservationHandler 创建预约处理器
func NewReservationHandler(
	requestUseCase *appreservation.RequestReservationUseCase,
	approveUseCase *appreservation.ApproveReservationUseCase,
	rejectUseCase *appreservation.RejectReservationUseCase,
	cancelUseCase *appreservation.CancelReservationUseCase,
	fulfillUseCase *appreservation.FulfillReservationUseCase,
	listUseCase *appreservation.ListReservationsUseCase,
) *ReservationHandler {
	return &ReservationHandler{
		requestUseCase: requestUseCase,
		approveUseCase: approveUseCase,
		rejectUseCase:  rejectUseCase,
		cancelUseCase:  cancelUseCase,
		fulfillUseCase: fulfillUseCase,
		listUseCase:    listUseCase,
	}
}

// Create 发起预约
// @Summary      发起预约
// @Description  本门店向来源门店发起跨店预约（REQUESTED，不动库存不占量）
// @Tags         跨店预约
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateReservationRequest true "预约信息"
// @Success      201 {object} response.Response "发起成功"
// @Failure      403 {object} response.Response "套餐未开通跨店预约"
// @Failure      404 {object} response.Response "门店或商品不存在"
// @Router       /api/v1/reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	items := make([]appreservation.RequestReservationItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = appreservation.RequestReservationItem{
			ProductID:    item.ProductID,
			RequestedQty: item.RequestedQty,
		}
	}

	result, err := h.requestUseCase.Execute(c.Request.Context(), appreservation.RequestReservationRequest{
		TenantID:       middleware.GetTenantID(c),
		RequestStoreID: middleware.GetStoreID(c),
		SourceStoreID:  req.SourceStoreID,
		CustomerID:     req.CustomerID,
		Note:           req.Note,
		Items:          items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Approve 批准预约
// @Summary      批准预约
// @Description  来源门店批准预约并占用可售量（全有或全无：任一明细可用量不足则整单不批准）
// @Tags         跨店预约
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约单ID"
// @Success      200 {object} response.Response "批准成功"
// @Failure      400 {object} response.Response "可用量不足"
// @Failure      403 {object} response.Response "非来源门店"
// @Failure      409 {object} response.Response "预约单状态不允许批准"
// @Router       /api/v1/reservations/{id}/approve [post]
func (h *ReservationHandler) Approve(c *gin.Context) {
	reservationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.approveUseCase.Execute(c.Request.Context(), appreservation.ApproveReservationRequest{
		TenantID:      middleware.GetTenantID(c),
		StoreID:       middleware.GetStoreID(c),
		ActorID:       middleware.GetUserID(c),
		ActorRole:     middleware.GetRole(c),
		ReservationID: reservationID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Reject 拒绝预约
// @Summary      拒绝预约
// @Description  来源门店拒绝预约（必须给出原因）
// @Tags         跨店预约
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约单ID"
// @Param        request body dto.RejectReservationRequest true "拒绝原因"
// @Success      200 {object} response.Response "拒绝成功"
// @Failure      403 {object} response.Response "非来源门店"
// @Router       /api/v1/reservations/{id}/reject [post]
func (h *ReservationHandler) Reject(c *gin.Context) {
	reservationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.RejectReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	err := h.rejectUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), middleware.GetStoreID(c), reservationID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Cancel 取消预约
// @Summary      取消预约
// @Description  请求门店取消预约，已批准的占用随之释放
// @Tags         跨店预约
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约单ID"
// @Success      200 {object} response.Response "取消成功"
// @Failure      403 {object} response.Response "非请求门店"
// @Router       /api/v1/reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	reservationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.cancelUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), middleware.GetStoreID(c), reservationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Fulfill 履约确认
// @Summary      履约确认
// @Description  顾客到店完成购买后由请求门店确认履约，占用释放
// @Tags         跨店预约
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约单ID"
// @Success      200 {object} response.Response "确认成功"
// @Failure      409 {object} response.Response "预约单状态不允许履约"
// @Router       /api/v1/reservations/{id}/fulfill [post]
func (h *ReservationHandler) Fulfill(c *gin.Context) {
	reservationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.fulfillUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), middleware.GetStoreID(c), reservationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// List 预约列表
// @Summary      预约列表
// @Description  分页查询预约单，支持按请求/来源门店和状态过滤
// @Tags         跨店预约
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        request_store_id query int false "按请求门店过滤"
// @Param        source_store_id query int false "按来源门店过滤"
// @Param        status query string false "按状态过滤(REQUESTED/APPROVED/REJECTED/FULFILLED/CANCELED)"
// @Success      200 {object} response.Response "查询成功"
// @Router       /api/v1/reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	result, err := h.listUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), reservation.ListParams{
			Page:           page,
			PageSize:       pageSize,
			RequestStoreID: queryID(c, "request_store_id"),
			SourceStoreID:  queryID(c, "source_store_id"),
			Status:         reservation.Status(c.Query("status")),
		})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
