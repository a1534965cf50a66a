package license

import (
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// 套餐领域错误定义
var (
	// ErrPlanNotFound 租户无套餐记录
	ErrPlanNotFound = apperrors.New(apperrors.ErrCodeNotFound, "租户套餐不存在")

	// ErrFeatureDisabled 套餐未开通此功能
	ErrFeatureDisabled = apperrors.ErrFeatureDisabled
)
