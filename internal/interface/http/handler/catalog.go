package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/pharmacy/internal/application/catalog"
	"github.com/xiebiao/pharmacy/internal/domain/catalog"
	"github.com/xiebiao/pharmacy/internal/interface/http/dto"
	"github.com/xiebiao/pharmacy/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// CatalogHandler 商品与门店HTTP处理器
type CatalogHandler struct {
	createProductUseCase *appcatalog.CreateProductUseCase
	updateProductUseCase *appcatalog.UpdateProductUseCase
	listProductsUseCase  *appcatalog.ListProductsUseCase
	createStoreUseCase   *appcatalog.CreateStoreUseCase
	listStoresUseCase    *appcatalog.ListStoresUseCase
}

// NewCatalogHandler 创建商品与门店处理器
func NewCatalogHandler(
	createProductUseCase *appcatalog.CreateProductUseCase,
	updateProductUseCase *appcatalog.UpdateProductUseCase,
	listProductsUseCase *appcatalog.ListProductsUseCase,
	createStoreUseCase *appcatalog.CreateStoreUseCase,
	listStoresUseCase *appcatalog.ListStoresUseCase,
) *CatalogHandler {
	return &CatalogHandler{
		createProductUseCase: createProductUseCase,
		updateProductUseCase: updateProductUseCase,
		listProductsUseCase:  listProductsUseCase,
		createStoreUseCase:   createStoreUseCase,
		listStoresUseCase:    listStoresUseCase,
	}
}

// CreateProduct 创建商品
// @Summary      创建商品
// @Description  在租户商品目录里创建商品（SKU租户内唯一）
// @Tags         商品目录
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateProductRequest true "商品信息"
// @Success      201 {object} response.Response "创建成功"
// @Failure      400 {object} response.Response "参数错误或SKU已存在"
// @Router       /api/v1/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.createProductUseCase.Execute(c.Request.Context(), appcatalog.CreateProductRequest{
		TenantID:             middleware.GetTenantID(c),
		SKU:                  req.SKU,
		Barcode:              req.Barcode,
		Name:                 req.Name,
		Description:          req.Description,
		Price:                req.Price,
		RequiresPrescription: req.RequiresPrescription,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateProduct 更新商品
// @Summary      更新商品
// @Description  改价、改信息或下架商品
// @Tags         商品目录
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        request body dto.UpdateProductRequest true "变更内容"
// @Success      200 {object} response.Response "更新成功"
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateProductUseCase.Execute(c.Request.Context(), appcatalog.UpdateProductRequest{
		TenantID:    middleware.GetTenantID(c),
		ProductID:   productID,
		Name:        req.Name,
		Description: req.Description,
		Barcode:     req.Barcode,
		Price:       req.Price,
		Deactivate:  req.Deactivate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListProducts 商品列表
// @Summary      商品列表
// @Description  分页查询商品，支持按名称/SKU/条码搜索
// @Tags         商品目录
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        keyword query string false "搜索关键词"
// @Param        only_active query bool false "只看在售商品"
// @Success      200 {object} response.Response "查询成功"
// @Router       /api/v1/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page, pageSize := pagination(c)

	result, err := h.listProductsUseCase.Execute(c.Request.Context(),
		middleware.GetTenantID(c), catalog.ListParams{
			Page:       page,
			PageSize:   pageSize,
			Keyword:    c.Query("keyword"),
			OnlyActive: c.Query("only_active") == "true",
		})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateStore 创建门店
// @Summary      创建门店
// @Description  管理员在租户下创建门店
// @Tags         商品目录
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateStoreRequest true "门店信息"
// @Success      201 {object} response.Response "创建成功"
// @Failure      403 {object} response.Response "非管理员"
// @Router       /api/v1/stores [post]
func (h *CatalogHandler) CreateStore(c *gin.Context) {
	var req dto.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.createStoreUseCase.Execute(c.Request.Context(), appcatalog.CreateStoreRequest{
		TenantID: middleware.GetTenantID(c),
		Code:     req.Code,
		Name:     req.Name,
		Address:  req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListStores 门店列表
// @Summary      门店列表
// @Description  查询租户下的全部门店
// @Tags         商品目录
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "查询成功"
// @Router       /api/v1/stores [get]
func (h *CatalogHandler) ListStores(c *gin.Context) {
	result, err := h.listStoresUseCase.Execute(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// =========================================
// 参数解析辅助（包内共用）
// =========================================

// pathID 解析路径参数里的数字ID，非法则直接写400响应
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "非法的"+name+"参数")
		return 0, false
	}
	return uint(id), true
}

// pagination 解析分页参数，带默认值和上限
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// queryID 解析查询参数里的数字ID（0=未传）
func queryID(c *gin.Context, name string) uint {
	id, _ := strconv.ParseUint(c.Query(name), 10, 64)
	return uint(id)
}
