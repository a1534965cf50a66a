package stock

import (
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// 库存领域错误定义
var (
	// ErrLotNotFound 批号不存在
	ErrLotNotFound = apperrors.New(apperrors.ErrCodeLotNotFound, "批号不存在")

	// ErrInvalidQuantity 无效的数量
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrInvalidUnitCost 无效的成本
	ErrInvalidUnitCost = apperrors.New(apperrors.ErrCodeInvalidParams, "成本不能为负数")

	// ErrInvalidMovementType 无效的流水类型
	ErrInvalidMovementType = apperrors.New(apperrors.ErrCodeInvalidParams, "无效的流水类型")

	// ErrAdjustReasonRequired 盘点调整必须填写原因
	ErrAdjustReasonRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "盘点调整必须填写原因")

	// ErrLotStoreMismatch 批号不属于操作人门店
	ErrLotStoreMismatch = apperrors.New(apperrors.ErrCodeStoreMismatch, "批号不属于当前门店")

	// ErrLedgerMismatch 批号账实不符(Σ流水 != 批号数量)
	ErrLedgerMismatch = apperrors.New(apperrors.ErrCodeInternal, "批号流水合计与当前数量不一致")

	// ErrMovementInconsistent 流水前后数量不一致
	// 出现此错误说明程序有bug(流水在写入前已通过构造函数计算),属系统错误
	ErrMovementInconsistent = apperrors.New(apperrors.ErrCodeInternal, "库存流水前后数量不一致")
)

// NewInsufficientStockError 创建库存不足错误(携带需要/可用数量)
func NewInsufficientStockError(requested, available int) *apperrors.AppError {
	return apperrors.Newf(apperrors.ErrCodeInsufficientStock,
		"库存不足: 需要%d, 可用%d", requested, available)
}
