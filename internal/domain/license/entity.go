package license

import (
	"time"
)

// Feature 套餐功能开关
// 调拨/预约是增值功能,按租户套餐开通;HTTP中间件按功能门禁路由
type Feature string

const (
	FeatureTransfers    Feature = "inventory_transfers"    // 门店间调拨
	FeatureReservations Feature = "inventory_reservations" // 跨店预约
)

// Plan 租户套餐(聚合根)
// 设计说明:
// 1. 每个租户一条生效套餐记录,功能以开关集合表达
// 2. 功能判定是热路径(每个调拨/预约请求都会检查),
//    结果缓存在Redis(见infrastructure/persistence/redis)
type Plan struct {
	ID        uint
	TenantID  uint
	Name      string // 套餐名(basic/professional/enterprise)
	Features  []Feature
	ExpiresAt *time.Time // 到期时间(nil=永久)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasFeature 检查套餐是否开通指定功能
// 套餐过期视为全部增值功能关闭
func (p *Plan) HasFeature(feature Feature, now time.Time) bool {
	if p.ExpiresAt != nil && p.ExpiresAt.Before(now) {
		return false
	}
	for _, f := range p.Features {
		if f == feature {
			return true
		}
	}
	return false
}
