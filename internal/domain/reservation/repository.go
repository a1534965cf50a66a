package reservation

import (
	"context"
)

// Repository 预约仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 实现方同时实现stock.ReservationHolds(已批准占用量统计),
//    供库存域计算可售量
type Repository interface {
	// Create 创建预约单(含明细)
	Create(ctx context.Context, reservation *Reservation) error

	// Update 更新预约单(状态、明细占用量),与业务校验同一事务
	Update(ctx context.Context, reservation *Reservation) error

	// FindByID 根据ID查找预约单(含明细)
	FindByID(ctx context.Context, tenantID, id uint) (*Reservation, error)

	// LockByID 悲观锁查找预约单
	// 审批时使用,防止并发批准/取消产生状态竞态
	LockByID(ctx context.Context, tenantID, id uint) (*Reservation, error)

	// List 分页查询预约单列表
	List(ctx context.Context, tenantID uint, params ListParams) ([]*Reservation, int64, error)
}

// ListParams 预约列表查询参数
type ListParams struct {
	Page           int
	PageSize       int
	RequestStoreID uint   // 按请求门店过滤(0=全部)
	SourceStoreID  uint   // 按来源门店过滤(0=全部)
	Status         Status // 按状态过滤(空=全部)
}
