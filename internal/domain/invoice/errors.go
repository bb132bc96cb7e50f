package invoice

import (
	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
)

var (
	ErrInvoiceNotFound   = apperrors.New(apperrors.ErrCodeInvoiceNotFound, "发票不存在")
	ErrInvalidTransition = apperrors.New(apperrors.ErrCodeInvalidTransition, "发票状态不允许此操作")
	ErrInvalidCurrency   = apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的币种")
	ErrEmptyOrder        = apperrors.New(apperrors.ErrCodeInvalidParams, "订单没有明细,无法开票")
	ErrForbidden         = apperrors.New(apperrors.ErrCodeForbidden, "无权访问该发票")
)
