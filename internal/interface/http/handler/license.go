package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	applicense "github.com/xiebiao/pharmacy/internal/application/license"
	"github.com/xiebiao/pharmacy/internal/interface/http/dto"
	"github.com/xiebiao/pharmacy/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// LicenseHandler 套餐HTTP处理器
type LicenseHandler struct {
	updatePlanUseCase *applicense.UpdatePlanUseCase
	getPlanUseCase    *applicense.GetPlanUseCase
}

// NewLicenseHandler 创建套餐处理器
func NewLicenseHandler(
	updatePlanUseCase *applicense.UpdatePlanUseCase,
	getPlanUseCase *applicense.GetPlanUseCase,
) *LicenseHandler {
	return &LicenseHandler{
		updatePlanUseCase: updatePlanUseCase,
		getPlanUseCase:    getPlanUseCase,
	}
}

// UpdatePlan 套餐变更
// @Summary      变更租户套餐
// @Description  管理员变更本租户套餐和功能开关，变更后立即失效缓存
// @Tags         套餐
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpdatePlanRequest true "套餐信息"
// @Success      200 {object} response.Response "变更成功"
// @Failure      403 {object} response.Response "非管理员"
// @Router       /api/v1/license/plan [put]
func (h *LicenseHandler) UpdatePlan(c *gin.Context) {
	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		exp, err := time.Parse("2006-01-02", req.ExpiresAt)
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "到期日格式错误，应为yyyy-MM-dd")
			return
		}
		expiresAt = &exp
	}

	result, err := h.updatePlanUseCase.Execute(c.Request.Context(), applicense.UpdatePlanRequest{
		TenantID:  middleware.GetTenantID(c),
		Name:      req.Name,
		Features:  req.Features,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetPlan 套餐查询
// @Summary      查询租户套餐
// @Tags         套餐
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "查询成功"
// @Router       /api/v1/license/plan [get]
func (h *LicenseHandler) GetPlan(c *gin.Context) {
	result, err := h.getPlanUseCase.Execute(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
