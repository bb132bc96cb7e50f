package book

import (
	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrISBNDuplicate ISBN号已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	ErrInvalidISBN       = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")
	ErrInvalidTitle      = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空")
	ErrInvalidAuthors    = apperrors.New(apperrors.ErrCodeInvalidParams, "至少需要一位作者")
	ErrInvalidCategories = apperrors.New(apperrors.ErrCodeInvalidParams, "至少需要一个分类")
	ErrInvalidYear       = apperrors.New(apperrors.ErrCodeInvalidParams, "出版年份超出范围")
	ErrInvalidPrice      = apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为负数且最多两位小数")
	ErrInvalidDiscount   = apperrors.New(apperrors.ErrCodeInvalidParams, "折扣不能为负数且最多两位小数")
	ErrInvalidStock      = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")
	ErrInvalidQuantity   = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrInsufficientStock 图书库存计数不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")

	// ErrBookInactive 图书已下架
	ErrBookInactive = apperrors.New(apperrors.ErrCodeInvalidTransition, "图书已下架")
)
