package user

import (
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// 用户领域错误定义
var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.ErrUserNotFound

	// ErrInvalidRole 非法角色
	ErrInvalidRole = apperrors.New(apperrors.ErrCodeInvalidParams, "非法的用户角色")

	// ErrUserDisabled 账号已停用
	ErrUserDisabled = apperrors.New(apperrors.ErrCodeForbidden, "账号已停用")
)
