package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/pharmacy/internal/domain/license"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// LicenseMiddleware 套餐功能开关中间件
// 设计说明：
// 1. 调拨/预约等增值功能按租户套餐开通，未开通的租户直接403
// 2. 开关结果走redis缓存（FeatureChecker实现里做TTL+失效），
//    中间件本身不感知缓存
// 3. 必须挂在RequireAuth之后（依赖Context里的tenant_id）
type LicenseMiddleware struct {
	checker license.FeatureChecker
}

// NewLicenseMiddleware 创建功能开关中间件
func NewLicenseMiddleware(checker license.FeatureChecker) *LicenseMiddleware {
	return &LicenseMiddleware{checker: checker}
}

// RequireFeature 要求租户套餐开通指定功能
// 使用方式：
//
//	transfers := v1.Group("/transfers")
//	transfers.Use(licenseMiddleware.RequireFeature(license.FeatureTransfers))
func (m *LicenseMiddleware) RequireFeature(feature license.Feature) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := GetTenantID(c)

		enabled, err := m.checker.HasFeature(c.Request.Context(), tenantID, feature)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if !enabled {
			response.Error(c, apperrors.ErrFeatureDisabled)
			c.Abort()
			return
		}

		c.Next()
	}
}
