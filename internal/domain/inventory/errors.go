package inventory

import (
	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
)

// 库存领域错误定义
//
// 错误码分类:
//   - 参数错误(409xx):数量、阈值非法
//   - 业务错误(400xx):库存不足、重复建档、仍有预留
//   - 资源错误(404xx):台账不存在
var (
	ErrInvalidBookID    = apperrors.New(apperrors.ErrCodeInvalidParams, "无效的图书ID")
	ErrInvalidQuantity  = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
	ErrNegativeStock    = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")
	ErrInvalidThreshold = apperrors.New(apperrors.ErrCodeInvalidParams, "低库存阈值不能为负数")

	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")
	ErrInventoryExists   = apperrors.New(apperrors.ErrCodeInvalidTransition, "该图书已有库存记录")
	ErrHasReservations   = apperrors.New(apperrors.ErrCodeInvalidTransition, "存在预留库存,不能删除")

	ErrInventoryNotFound = apperrors.New(apperrors.ErrCodeInventoryNotFound, "库存记录不存在")
)

// InsufficientStock 构造指明图书的库存不足错误
// errors.Is(err, ErrInsufficientStock) 成立
func InsufficientStock(bookID uint, available, requested int) error {
	return apperrors.Newf(apperrors.ErrCodeInsufficientStock,
		"图书(ID:%d)库存不足,可用:%d,需要:%d", bookID, available, requested)
}
