package transfer

import (
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// 调拨领域错误定义
var (
	// ErrTransferNotFound 调拨单不存在
	ErrTransferNotFound = apperrors.ErrTransferNotFound

	// ErrInvalidStatusTransition 非法状态流转
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidStateTransition, "调拨单当前状态不允许此操作")

	// ErrSameStore 来源门店和目的门店相同
	ErrSameStore = apperrors.New(apperrors.ErrCodeInvalidParams, "来源门店和目的门店不能相同")

	// ErrEmptyItems 明细为空
	ErrEmptyItems = apperrors.New(apperrors.ErrCodeInvalidParams, "调拨单至少需要一个发货明细")

	// ErrInvalidItemQuantity 明细数量非法
	ErrInvalidItemQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "调拨数量必须大于0")

	// ErrItemNotRequested 发货商品不在申请明细内
	ErrItemNotRequested = apperrors.New(apperrors.ErrCodeInvalidParams, "发货商品不在调拨申请明细内")

	// ErrExceedsRequestedQty 发货数量超过申请数量
	ErrExceedsRequestedQty = apperrors.New(apperrors.ErrCodeInvalidParams, "发货数量不能超过申请数量")

	// ErrNoShipmentMovements 调拨单无出库流水
	ErrNoShipmentMovements = apperrors.ErrNoShipmentMovements
)
