package catalog

import (
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// 商品目录领域错误定义
var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = apperrors.ErrProductNotFound

	// ErrStoreNotFound 门店不存在
	ErrStoreNotFound = apperrors.New(apperrors.ErrCodeNotFound, "门店不存在")

	// ErrSKUDuplicate SKU已存在
	ErrSKUDuplicate = apperrors.ErrSKUDuplicate

	// ErrStoreCodeDuplicate 门店编码已存在
	ErrStoreCodeDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "门店编码已存在")

	// ErrInvalidSKU SKU不能为空
	ErrInvalidSKU = apperrors.New(apperrors.ErrCodeInvalidParams, "SKU不能为空")

	// ErrInvalidName 名称不能为空
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "名称不能为空")

	// ErrInvalidPrice 价格非法
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为负数")
)
