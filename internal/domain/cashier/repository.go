package cashier

import (
	"context"
)

// SessionRepository 收银班次仓储接口
type SessionRepository interface {
	// Create 创建班次
	Create(ctx context.Context, session *Session) error

	// Update 更新班次(交班)
	Update(ctx context.Context, session *Session) error

	// FindByID 根据ID查找班次
	FindByID(ctx context.Context, tenantID, id uint) (*Session, error)

	// FindOpenByStore 查找门店进行中的班次
	// 无进行中班次时返回ErrNoOpenSession
	FindOpenByStore(ctx context.Context, tenantID, storeID uint) (*Session, error)

	// LockOpenByStore 悲观锁查找门店进行中的班次
	// 开班时用于防止并发开出两个班次,结算时用于锁定收款班次
	LockOpenByStore(ctx context.Context, tenantID, storeID uint) (*Session, error)

	// List 分页查询班次列表
	List(ctx context.Context, tenantID uint, params ListParams) ([]*Session, int64, error)
}

// ListParams 班次列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	StoreID  uint          // 按门店过滤(0=全部)
	Status   SessionStatus // 按状态过滤(空=全部)
}

// MovementRepository 现金流水仓储接口(只增不改)
type MovementRepository interface {
	// Create 写入现金流水
	Create(ctx context.Context, movement *Movement) error

	// FindBySession 查找班次的全部流水
	FindBySession(ctx context.Context, tenantID, sessionID uint) ([]*Movement, error)

	// SumBySession 统计班次流水合计(交班对账用)
	SumBySession(ctx context.Context, tenantID, sessionID uint) (int64, error)
}
