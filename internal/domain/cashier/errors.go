package cashier

import (
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// 收银领域错误定义
var (
	// ErrSessionNotFound 班次不存在
	ErrSessionNotFound = apperrors.New(apperrors.ErrCodeNotFound, "收银班次不存在")

	// ErrNoOpenSession 门店无进行中的班次
	ErrNoOpenSession = apperrors.ErrNoOpenCashSession

	// ErrSessionAlreadyOpen 门店已有进行中的班次
	ErrSessionAlreadyOpen = apperrors.ErrSessionAlreadyOpen

	// ErrSessionNotOpen 班次不在进行中(重复交班)
	ErrSessionNotOpen = apperrors.New(apperrors.ErrCodeInvalidStateTransition, "班次已交班")

	// ErrInvalidAmount 金额非法
	ErrInvalidAmount = apperrors.New(apperrors.ErrCodeInvalidParams, "金额不合法")

	// ErrInvalidMovementType 现金流水类型非法
	ErrInvalidMovementType = apperrors.New(apperrors.ErrCodeInvalidParams, "无效的现金流水类型")

	// ErrNoteRequired 取款/存入必须填写说明
	ErrNoteRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "取款/存入必须填写说明")
)
