package reservation

import (
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// 预约领域错误定义
var (
	// ErrReservationNotFound 预约单不存在
	ErrReservationNotFound = apperrors.ErrReservationNotFound

	// ErrInvalidStatusTransition 非法状态流转
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidStateTransition, "预约单当前状态不允许此操作")

	// ErrSameStore 请求门店和来源门店相同
	ErrSameStore = apperrors.New(apperrors.ErrCodeInvalidParams, "请求门店和来源门店不能相同")

	// ErrEmptyItems 明细为空
	ErrEmptyItems = apperrors.New(apperrors.ErrCodeInvalidParams, "预约单至少需要一个明细项")

	// ErrInvalidItemQuantity 明细数量非法
	ErrInvalidItemQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "预约数量必须大于0")

	// ErrRejectReasonRequired 拒绝原因必填
	ErrRejectReasonRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "拒绝预约必须填写原因")
)
