package reservation

import "context"

// TxManager 事务编排接口(消费方定义)
// 由infrastructure/persistence/mysql.TxManager实现;
// 单元测试用直通假实现(直接调用fn)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
