package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/pharmacy/internal/domain/license"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// licenseRepository 租户套餐仓储实现(MySQL)
// Features以逗号分隔字符串存储,仓储负责序列化/反序列化
type licenseRepository struct {
	db *gorm.DB
}

// NewLicenseRepository 创建套餐仓储
func NewLicenseRepository(db *gorm.DB) license.Repository {
	return &licenseRepository{db: db}
}

// FindByTenant 查找租户的生效套餐
func (r *licenseRepository) FindByTenant(ctx context.Context, tenantID uint) (*license.Plan, error) {
	var model LicensePlanModel
	db := getDB(ctx, r.db)
	err := db.Where("tenant_id = ?", tenantID).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, license.ErrPlanNotFound
		}
		return nil, apperrors.Wrap(err, "查询租户套餐失败")
	}

	return toPlanEntity(&model), nil
}

// Save 保存套餐(开通/变更)
// 每个租户一条生效记录,按tenant_id唯一索引upsert
func (r *licenseRepository) Save(ctx context.Context, p *license.Plan) error {
	model := &LicensePlanModel{
		ID:        p.ID,
		TenantID:  p.TenantID,
		Name:      p.Name,
		Features:  joinFeatures(p.Features),
		ExpiresAt: p.ExpiresAt,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	db := getDB(ctx, r.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "features", "expires_at", "updated_at"}),
	}).Create(model).Error

	if err != nil {
		return apperrors.Wrap(err, "保存租户套餐失败")
	}

	p.ID = model.ID
	return nil
}

// =========================================
// 辅助函数:功能开关序列化
// =========================================

// joinFeatures 功能开关集合 → 逗号分隔字符串
func joinFeatures(features []license.Feature) string {
	parts := make([]string, len(features))
	for i, f := range features {
		parts[i] = string(f)
	}
	return strings.Join(parts, ",")
}

// splitFeatures 逗号分隔字符串 → 功能开关集合
func splitFeatures(s string) []license.Feature {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	features := make([]license.Feature, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			features = append(features, license.Feature(p))
		}
	}
	return features
}

// toPlanEntity GORM模型 → 领域实体
func toPlanEntity(model *LicensePlanModel) *license.Plan {
	return &license.Plan{
		ID:        model.ID,
		TenantID:  model.TenantID,
		Name:      model.Name,
		Features:  splitFeatures(model.Features),
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
