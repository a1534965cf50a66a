package sale

import (
	"context"
)

// Repository 销售仓储接口(依赖倒置原则)
type Repository interface {
	// Create 创建销售单(含明细)
	Create(ctx context.Context, sale *Sale) error

	// Update 更新销售单(状态、明细成本),与库存消耗同一事务
	Update(ctx context.Context, sale *Sale) error

	// FindByID 根据ID查找销售单(含明细)
	FindByID(ctx context.Context, tenantID, id uint) (*Sale, error)

	// FindBySaleNo 根据单号查找销售单
	FindBySaleNo(ctx context.Context, tenantID uint, saleNo string) (*Sale, error)

	// LockByID 悲观锁查找销售单
	// 结算时使用,防止同一单被并发结算两次
	LockByID(ctx context.Context, tenantID, id uint) (*Sale, error)

	// List 分页查询销售单列表
	List(ctx context.Context, tenantID uint, params ListParams) ([]*Sale, int64, error)
}

// ListParams 销售列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	StoreID  uint   // 按门店过滤(0=全部)
	Status   Status // 按状态过滤(空=全部)
}

// PaymentRepository 收款记录仓储接口
// 收款记录只增不改
type PaymentRepository interface {
	// Create 写入收款记录
	Create(ctx context.Context, payment *Payment) error

	// FindBySale 查找销售单的收款记录
	FindBySale(ctx context.Context, tenantID, saleID uint) ([]*Payment, error)
}
