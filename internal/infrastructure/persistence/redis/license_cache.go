package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/pharmacy/internal/domain/license"
)

// 功能开关缓存参数
// 套餐变更不频繁,5分钟TTL在时效和命中率之间取平衡;
// 负缓存(未开通)同样缓存,防止无套餐租户反复打穿到数据库
const (
	featureCacheTTL = 5 * time.Minute
	featureKeyFmt   = "license:%d:%s" // license:{tenant_id}:{feature}
)

// CachedFeatureChecker 功能开关查询(Redis缓存 + MySQL回源)
// 设计说明:
// 1. 实现license.FeatureChecker接口,HTTP中间件按此门禁调拨/预约路由
// 2. 功能判定是热路径(每个调拨/预约请求都检查),先查Redis,
//    未命中时回源数据库并回填
// 3. Redis故障时降级为直查数据库(可用性优先于延迟)
type CachedFeatureChecker struct {
	client *redis.Client
	repo   license.Repository
}

// NewCachedFeatureChecker 创建带缓存的功能开关查询
// 返回具体类型:除license.FeatureChecker外还提供InvalidateTenant,
// 套餐变更用例按需依赖
func NewCachedFeatureChecker(client *redis.Client, repo license.Repository) *CachedFeatureChecker {
	return &CachedFeatureChecker{client: client, repo: repo}
}

// HasFeature 检查租户是否开通指定功能
func (c *CachedFeatureChecker) HasFeature(ctx context.Context, tenantID uint, feature license.Feature) (bool, error) {
	key := fmt.Sprintf(featureKeyFmt, tenantID, feature)

	// 1. 查缓存
	val, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return val == "1", nil
	}
	if !errors.Is(err, redis.Nil) {
		// Redis故障,降级直查数据库
		log.Printf("功能开关缓存查询失败,降级直查数据库: %v", err)
	}

	// 2. 回源数据库
	enabled, err := c.loadFromDB(ctx, tenantID, feature)
	if err != nil {
		return false, err
	}

	// 3. 回填缓存(包含负结果),失败只记录不影响判定
	cacheVal := "0"
	if enabled {
		cacheVal = "1"
	}
	if err := c.client.Set(ctx, key, cacheVal, featureCacheTTL).Err(); err != nil {
		log.Printf("功能开关缓存回填失败: %v", err)
	}

	return enabled, nil
}

// InvalidateTenant 套餐变更后使租户的功能开关缓存失效
func (c *CachedFeatureChecker) InvalidateTenant(ctx context.Context, tenantID uint, features ...license.Feature) error {
	keys := make([]string, len(features))
	for i, f := range features {
		keys[i] = fmt.Sprintf(featureKeyFmt, tenantID, f)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// loadFromDB 从数据库加载功能判定
// 无套餐记录视为未开通任何增值功能(不是错误)
func (c *CachedFeatureChecker) loadFromDB(ctx context.Context, tenantID uint, feature license.Feature) (bool, error) {
	plan, err := c.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, license.ErrPlanNotFound) {
			return false, nil
		}
		return false, err
	}
	return plan.HasFeature(feature, time.Now()), nil
}
