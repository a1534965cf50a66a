package sale

import (
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// 销售领域错误定义
var (
	// ErrSaleNotFound 销售单不存在
	ErrSaleNotFound = apperrors.ErrSaleNotFound

	// ErrInvalidStatusTransition 非法状态流转
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidStateTransition, "销售单当前状态不允许此操作")

	// ErrEmptyItems 明细为空
	ErrEmptyItems = apperrors.New(apperrors.ErrCodeInvalidParams, "销售单至少需要一个明细项")

	// ErrInvalidQuantity 数量非法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "销售数量必须大于0")

	// ErrInvalidAmount 金额非法
	ErrInvalidAmount = apperrors.New(apperrors.ErrCodeInvalidParams, "金额不合法")

	// ErrInvalidPaymentMethod 收款方式非法
	ErrInvalidPaymentMethod = apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的收款方式")

	// ErrNoOpenCashSession 无进行中的收银班次
	ErrNoOpenCashSession = apperrors.ErrNoOpenCashSession

	// ErrPaymentMismatch 收款金额与应收不一致
	ErrPaymentMismatch = apperrors.New(apperrors.ErrCodeBusinessError, "收款金额与应收金额不一致")

	// ErrPrescriptionRequired 处方药需要药师或管理员结算
	ErrPrescriptionRequired = apperrors.New(apperrors.ErrCodeForbidden, "销售处方药需要药师或管理员操作")
)
