package transfer

import (
	"context"
)

// Repository 调拨仓储接口(依赖倒置原则)
type Repository interface {
	// Create 创建调拨单(含明细)
	Create(ctx context.Context, transfer *Transfer) error

	// Update 更新调拨单(状态、发货数量),与FEFO出库同一事务
	Update(ctx context.Context, transfer *Transfer) error

	// FindByID 根据ID查找调拨单(含明细)
	FindByID(ctx context.Context, tenantID, id uint) (*Transfer, error)

	// LockByID 悲观锁查找调拨单
	// 发货/入库时使用,防止并发操作同一调拨单
	// (如同时入库两次导致目的批号重复加量)
	LockByID(ctx context.Context, tenantID, id uint) (*Transfer, error)

	// List 分页查询调拨单列表
	List(ctx context.Context, tenantID uint, params ListParams) ([]*Transfer, int64, error)
}

// ListParams 调拨列表查询参数
type ListParams struct {
	Page               int
	PageSize           int
	OriginStoreID      uint   // 按来源门店过滤(0=全部)
	DestinationStoreID uint   // 按目的门店过滤(0=全部)
	Status             Status // 按状态过滤(空=全部)
}
