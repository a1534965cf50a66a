package handler

import (
	"github.com/gin-gonic/gin"

	apptransfer "github.com/xiebiao/pharmacy/internal/application/transfer"
	"github.com/xiebiao/pharmacy/internal/domain/transfer"
	"github.com/xiebiao/pharmacy/internal/interface/http/dto"
	"github.com/xiebiao/pharmacy/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// TransferHandler 门店调拨HTTP处理器
// 路由整组挂RequireFeature(inventory_transfers)
type TransferHandler struct {
	createUseCase  *apptransfer.CreateTransferUseCase
	sendUseCase    *apptransfer.SendTransferUseCase
	receiveUseCase *apptransfer.ReceiveTransferUseCase
	cancelUseCase  *apptransfer.CancelTransferUseCase
	getUseCase     *apptransfer.GetTransferUseCase
	listUseCase    *apptransfer.ListTransfersUseCase
}

// NewTransferHandler 创建调拨处理器
func NewTransferHandler(
	createUseCase *apptransfer.CreateTransferUseCase,
	sendUseCase *apptransfer.SendTransferUseCase,
	receiveUseCase *apptransfer.ReceiveTransferUseCase,
	cancelUseCase *apptransfer.CancelTransferUseCase,
	getUseCase *apptransfer.GetTransferUseCase,
	listUseCase *apptransfer.ListTransfersUseCase,
) *TransferHandler {
	return &TransferHandler{
		createUseCase:  createUseCase,
		sendUseCase:    sendUseCase,
		receiveUseCase: receiveUseCase,
		cancelUseCase:  cancelUseCase,
		getUseCase:     getUseCase,
		listUseCase:    listUseCase,
	}
}

// Create 创建调拨单
// @Summary      创建调拨单
// @Description  本门店作为目的门店向来源门店申请调拨（DRAFT，不动库存）
// @Tags         门店调拨
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateTransferRequest true "调拨单信息"
// @Success      201 {object} response.Response "创建成功"
// @Failure      403 {object} response.Response "套餐未开通门店调拨"
// @Failure      404 {object} response.Response "门店或商品不存在"
// @Router       /api/v1/transfers [post]
func (h *TransferHandler) Create(c *gin.Context) {
	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	items := make([]apptransfer.CreateTransferItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = apptransfer.CreateTransferItem{
			ProductID:    item.ProductID,
			RequestedQty: item.RequestedQty,
		}
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), apptransfer.CreateTransferRequest{
		TenantID:           middleware.GetTenantID(c),
		DestinationStoreID: middleware.GetStoreID(c),
		OriginStoreID:      req.OriginStoreID,
		Note:               req.Note,
		Items:              items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Send 调拨发货
// @Summary      调拨发货
// @Description  来源门店发货：FEFO扣减库存并写TRANSFER_OUT流水，整单只能发货一次；
// @Description  请求体可按商品给出部分发货数量（不超过申请数量），为空则全量发货
// @Tags         门店调拨
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "调拨单ID"
// @Param        request body dto.SendTransferRequest false "部分发货数量"
// @Success      200 {object} response.Response "发货成功"
// @Failure      400 {object} response.Response "库存不足或超过申请数量"
// @Failure      403 {object} response.Response "非来源门店"
// @Failure      409 {object} response.Response "调拨单状态不允许发货"
// @Router       /api/v1/transfers/{id}/send [post]
func (h *TransferHandler) Send(c *gin.Context) {
	transferID, ok := pathID(c, "id")
	if !ok {
		return
	}

	// 请求体可省略(全量发货)
	var req dto.SendTransferRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
			return
		}
	}

	var partial map[uint]int
	if len(req.Items) > 0 {
		partial = make(map[uint]int, len(req.Items))
		for _, item := range req.Items {
			partial[item.ProductID] = item.Quantity
		}
	}

	result, err := h.sendUseCase.Execute(c.Request.Context(), apptransfer.SendTransferRequest{
		TenantID:   middleware.GetTenantID(c),
		StoreID:    middleware.GetStoreID(c),
		ActorID:    middleware.GetUserID(c),
		ActorRole:  middleware.GetRole(c),
		TransferID: transferID,
		Partial:    partial,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Receive 调拨入库
// @Summary      调拨入库
// @Description  目的门店确认入库：按出库流水在本门店复刻批号（批号/有效期/成本不变）
// @Description  并写TRANSFER_IN流水
// @Tags         门店调拨
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "调拨单ID"
// @Success      200 {object} response.Response "入库成功"
// @Failure      400 {object} response.Response "调拨单没有出库流水"
// @Failure      403 {object} response.Response "非目的门店"
// @Failure      409 {object} response.Response "调拨单状态不允许入库（含重复入库）"
// @Router       /api/v1/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *gin.Context) {
	transferID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.receiveUseCase.Execute(c.Request.Context(), apptransfer.ReceiveTransferRequest{
		TenantID:   middleware.GetTenantID(c),
		StoreID:    middleware.GetStoreID(c),
		ActorID:    middleware.GetUserID(c),
		ActorRole:  middleware.GetRole(c),
		TransferID: transferID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Cancel 取消调拨
// @Summary      取消调拨单
// @Description  取消草稿状态的调拨单（已发货的不可取消）
// @Tags         门店调拨
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "调拨单ID"
// @Success      200 {object} response.Response "取消成功"
// @Failure      409 {object} response.Response "调拨单状态不允许取消"
// @Router       /api/v1/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *gin.Context) {
	transferID, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.cancelUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), middleware.GetStoreID(c), transferID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Get 调拨单详情
// @Summary      调拨单详情
// @Tags         门店调拨
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "调拨单ID"
// @Success      200 {object} response.Response "查询成功"
// @Failure      404 {object} response.Response "调拨单不存在"
// @Router       /api/v1/transfers/{id} [get]
func (h *TransferHandler) Get(c *gin.Context) {
	transferID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), transferID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 调拨单列表
// @Summary      调拨单列表
// @Description  分页查询调拨单，支持按来源/目的门店和状态过滤
// @Tags         门店调拨
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        origin_store_id query int false "按来源门店过滤"
// @Param        destination_store_id query int false "按目的门店过滤"
// @Param        status query string false "按状态过滤(DRAFT/SENT/RECEIVED/CANCELED)"
// @Success      200 {object} response.Response "查询成功"
// @Router       /api/v1/transfers [get]
func (h *TransferHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	result, err := h.listUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), transfer.ListParams{
			Page:               page,
			PageSize:           pageSize,
			OriginStoreID:      queryID(c, "origin_store_id"),
			DestinationStoreID: queryID(c, "destination_store_id"),
			Status:             transfer.Status(c.Query("status")),
		})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
