package license

import (
	"context"
	"time"

	"github.com/xiebiao/pharmacy/internal/domain/license"
)

// CacheInvalidator 功能开关缓存失效接口
// 套餐变更后立即失效Redis缓存,避免等待TTL过期
// (由redis.CachedFeatureChecker实现)
type CacheInvalidator interface {
	InvalidateTenant(ctx context.Context, tenantID uint, features ...license.Feature) error
}

// UpdatePlanUseCase 套餐开通/变更用例(仅管理员)
type UpdatePlanUseCase struct {
	planRepo    license.Repository
	invalidator CacheInvalidator
}

// NewUpdatePlanUseCase 创建套餐变更用例
func NewUpdatePlanUseCase(planRepo license.Repository, invalidator CacheInvalidator) *UpdatePlanUseCase {
	return &UpdatePlanUseCase{planRepo: planRepo, invalidator: invalidator}
}

// UpdatePlanRequest 套餐变更请求DTO
type UpdatePlanRequest struct {
	TenantID  uint
	Name      string   // basic | professional | enterprise
	Features  []string // 开通的功能开关
	ExpiresAt *time.Time
}

// PlanInfo 套餐信息DTO
type PlanInfo struct {
	TenantID  uint     `json:"tenant_id"`
	Name      string   `json:"name"`
	Features  []string `json:"features"`
	ExpiresAt string   `json:"expires_at,omitempty"`
}

// Execute 执行套餐变更
func (uc *UpdatePlanUseCase) Execute(ctx context.Context, req UpdatePlanRequest) (*PlanInfo, error) {
	features := make([]license.Feature, len(req.Features))
	for i, f := range req.Features {
		features[i] = license.Feature(f)
	}

	plan := &license.Plan{
		TenantID:  req.TenantID,
		Name:      req.Name,
		Features:  features,
		ExpiresAt: req.ExpiresAt,
		UpdatedAt: time.Now(),
	}
	if err := uc.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	// 变更生效后失效缓存(降级开关关闭立即生效)
	_ = uc.invalidator.InvalidateTenant(ctx, req.TenantID,
		license.FeatureTransfers, license.FeatureReservations)

	info := toPlanInfo(plan)
	return &info, nil
}

// GetPlanUseCase 套餐查询用例
type GetPlanUseCase struct {
	planRepo license.Repository
}

// NewGetPlanUseCase 创建套餐查询用例
func NewGetPlanUseCase(planRepo license.Repository) *GetPlanUseCase {
	return &GetPlanUseCase{planRepo: planRepo}
}

// Execute 查询租户套餐
func (uc *GetPlanUseCase) Execute(ctx context.Context, tenantID uint) (*PlanInfo, error) {
	plan, err := uc.planRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	info := toPlanInfo(plan)
	return &info, nil
}

// toPlanInfo 领域实体 → DTO
func toPlanInfo(p *license.Plan) PlanInfo {
	features := make([]string, len(p.Features))
	for i, f := range p.Features {
		features[i] = string(f)
	}
	info := PlanInfo{
		TenantID: p.TenantID,
		Name:     p.Name,
		Features: features,
	}
	if p.ExpiresAt != nil {
		info.ExpiresAt = p.ExpiresAt.Format("2006-01-02 15:04:05")
	}
	return info
}
