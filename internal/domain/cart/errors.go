package cart

import (
	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
)

var (
	ErrCartNotFound    = apperrors.New(apperrors.ErrCodeCartNotFound, "购物车不存在")
	ErrItemNotFound    = apperrors.New(apperrors.ErrCodeNotFound, "购物车中没有该图书")
	ErrCartNotActive   = apperrors.New(apperrors.ErrCodeInvalidTransition, "购物车已失效,不能修改")
	ErrEmptyCart       = apperrors.New(apperrors.ErrCodeInvalidParams, "购物车为空")
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
	ErrInvalidPrice    = apperrors.New(apperrors.ErrCodeInvalidParams, "单价不能为负数")
)
