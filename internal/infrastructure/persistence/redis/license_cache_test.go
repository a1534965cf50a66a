package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/pharmacy/internal/domain/license"
)

// memPlanRepo 套餐假仓储(单元测试用,不依赖数据库)
type memPlanRepo struct {
	plans map[uint]*license.Plan
	calls int
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{plans: make(map[uint]*license.Plan)}
}

func (r *memPlanRepo) FindByTenant(_ context.Context, tenantID uint) (*license.Plan, error) {
	r.calls++
	plan, ok := r.plans[tenantID]
	if !ok {
		return nil, license.ErrPlanNotFound
	}
	return plan, nil
}

func (r *memPlanRepo) Save(_ context.Context, plan *license.Plan) error {
	r.plans[plan.TenantID] = plan
	return nil
}

// unreachableRedis 指向无服务监听的地址,任何命令都立即失败
// (拨号超时设得很短,测试不用等默认超时)
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1, // 不重试,失败立即返回
	})
}

// TestCachedFeatureChecker_DegradesToDBOnCacheFailure 测试缓存故障降级
// Redis不可用时功能判定不报错,直查数据库给出结果
// (可用性优先:缓存挂掉不能把调拨/预约整组路由打成500)
func TestCachedFeatureChecker_DegradesToDBOnCacheFailure(t *testing.T) {
	repo := newMemPlanRepo()
	require.NoError(t, repo.Save(context.Background(), &license.Plan{
		TenantID: 1,
		Name:     "professional",
		Features: []license.Feature{license.FeatureTransfers},
	}))

	checker := NewCachedFeatureChecker(unreachableRedis(), repo)

	// 已开通的功能:降级后依然放行
	enabled, err := checker.HasFeature(context.Background(), 1, license.FeatureTransfers)
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, 1, repo.calls) // 确实回源了数据库

	// 未开通的功能:降级后依然拒绝
	enabled, err = checker.HasFeature(context.Background(), 1, license.FeatureReservations)
	require.NoError(t, err)
	assert.False(t, enabled)
}

// TestCachedFeatureChecker_NoPlanMeansDisabled 测试无套餐租户
// 无套餐记录不是错误,视为未开通任何增值功能
func TestCachedFeatureChecker_NoPlanMeansDisabled(t *testing.T) {
	checker := NewCachedFeatureChecker(unreachableRedis(), newMemPlanRepo())

	enabled, err := checker.HasFeature(context.Background(), 42, license.FeatureTransfers)
	require.NoError(t, err)
	assert.False(t, enabled)
}

// TestCachedFeatureChecker_ExpiredPlanDisabled 测试过期套餐
// 套餐过期视为全部增值功能关闭
func TestCachedFeatureChecker_ExpiredPlanDisabled(t *testing.T) {
	repo := newMemPlanRepo()
	expired := time.Now().Add(-24 * time.Hour)
	require.NoError(t, repo.Save(context.Background(), &license.Plan{
		TenantID:  1,
		Name:      "professional",
		Features:  []license.Feature{license.FeatureTransfers},
		ExpiresAt: &expired,
	}))

	checker := NewCachedFeatureChecker(unreachableRedis(), repo)

	enabled, err := checker.HasFeature(context.Background(), 1, license.FeatureTransfers)
	require.NoError(t, err)
	assert.False(t, enabled)
}
