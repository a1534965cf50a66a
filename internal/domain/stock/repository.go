package stock

import (
	"context"
	"time"
)

// LotRepository 批号仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
// 3. 所有查询按TenantID过滤(多租户隔离)
type LotRepository interface {
	// Create 创建批号
	Create(ctx context.Context, lot *Lot) error

	// Update 更新批号(数量、在架状态)
	Update(ctx context.Context, lot *Lot) error

	// FindByID 根据ID查找批号
	FindByID(ctx context.Context, tenantID, id uint) (*Lot, error)

	// FindActiveByProduct 查找(门店,商品)的全部在架批号
	// 用于可用量计算等只读场景,不加锁
	FindActiveByProduct(ctx context.Context, tenantID, storeID, productID uint) ([]*Lot, error)

	// LockActiveByProduct 悲观锁查找(门店,商品)的全部在架批号
	// 使用SELECT FOR UPDATE锁定行,check-then-act期间阻塞并发消耗,
	// 防止两个请求读到同一可用量快照后同时扣减导致超卖
	LockActiveByProduct(ctx context.Context, tenantID, storeID, productID uint) ([]*Lot, error)

	// LockByKey 悲观锁查找批号键(门店,商品,批号,有效期)对应的批号
	// 调拨入库按此键upsert目的门店批号,未找到返回ErrLotNotFound
	LockByKey(ctx context.Context, tenantID, storeID, productID uint, lotNumber string, expiration *time.Time) (*Lot, error)

	// SumActiveQuantity 统计(门店,商品)的在架未过期批号总量
	SumActiveQuantity(ctx context.Context, tenantID, storeID, productID uint) (int, error)

	// List 分页查询批号列表
	List(ctx context.Context, tenantID uint, params ListLotsParams) ([]*Lot, int64, error)
}

// ListLotsParams 批号列表查询参数
type ListLotsParams struct {
	Page          int  // 页码(从1开始)
	PageSize      int  // 每页数量
	StoreID       uint // 按门店过滤(0=全部)
	ProductID     uint // 按商品过滤(0=全部)
	OnlyActive    bool // 只看在架批号
	ExpiringDays  int  // 只看N天内到期的批号(0=不过滤)
	IncludeRetire bool // 包含已下架批号
}

// MovementRepository 库存流水仓储接口
// 流水只增不改,接口不提供Update/Delete
type MovementRepository interface {
	// Create 写入流水
	Create(ctx context.Context, movement *Movement) error

	// FindByTransfer 查找调拨单的指定类型流水
	// 调拨入库按出库流水复刻批号,调拨单无出库流水说明从未真正发货
	FindByTransfer(ctx context.Context, tenantID, transferID uint, mType MovementType) ([]*Movement, error)

	// List 分页查询流水列表
	List(ctx context.Context, tenantID uint, params ListMovementsParams) ([]*Movement, int64, error)

	// VerifyLotLedger 校验批号账实一致
	// Σ带符号流水必须等于批号当前数量(对账巡检用),
	// 不一致返回ErrLedgerMismatch
	VerifyLotLedger(ctx context.Context, tenantID, lotID uint) error
}

// ListMovementsParams 流水列表查询参数
type ListMovementsParams struct {
	Page      int
	PageSize  int
	StoreID   uint         // 按门店过滤(0=全部)
	ProductID uint         // 按商品过滤(0=全部)
	LotID     uint         // 按批号过滤(0=全部)
	Type      MovementType // 按类型过滤(空=全部)
}

// ReservationHolds 预约占用查询接口
// 设计说明:
// 1. 库存域只需要"已批准预约占用了多少",不关心预约的完整生命周期,
//    按需定义小接口,由预约仓储实现(避免stock→reservation的包依赖)
// 2. 审批预约时需排除预约自身(审批前reservedQty为0,排除是防御性的)
type ReservationHolds interface {
	// ApprovedQuantity 统计(门店,商品)被已批准预约占用的数量
	ApprovedQuantity(ctx context.Context, tenantID, storeID, productID uint) (int, error)

	// ApprovedQuantityExcluding 统计占用数量,排除指定预约单
	ApprovedQuantityExcluding(ctx context.Context, tenantID, storeID, productID, reservationID uint) (int, error)
}
