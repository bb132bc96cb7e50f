package order

import (
	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidTransition, "订单状态不允许此操作")

	// ErrCannotDelete 已发货/已送达的订单不能删除
	ErrCannotDelete = apperrors.New(apperrors.ErrCodeInvalidTransition, "已发货或已送达的订单不能删除")

	// ErrInvalidOrderItems 订单明细不合法
	ErrInvalidOrderItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	ErrInvalidStatus        = apperrors.New(apperrors.ErrCodeInvalidParams, "订单状态不合法")
	ErrInvalidPaymentMethod = apperrors.New(apperrors.ErrCodeInvalidParams, "支付方式不合法")

	// ErrForbidden 访问他人订单
	ErrForbidden = apperrors.New(apperrors.ErrCodeForbidden, "无权访问该订单")
)
