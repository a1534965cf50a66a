package license

import (
	"context"
)

// Repository 套餐仓储接口
type Repository interface {
	// FindByTenant 查找租户的生效套餐
	// 无套餐记录时返回ErrPlanNotFound(视为未开通任何增值功能)
	FindByTenant(ctx context.Context, tenantID uint) (*Plan, error)

	// Save 保存套餐(开通/变更)
	Save(ctx context.Context, plan *Plan) error
}

// FeatureChecker 功能开关查询接口
// HTTP中间件按此接口门禁调拨/预约路由;实现方组合
// Repository与Redis缓存(热路径,避免每个请求查库)
type FeatureChecker interface {
	// HasFeature 检查租户是否开通指定功能
	HasFeature(ctx context.Context, tenantID uint, feature Feature) (bool, error)
}
