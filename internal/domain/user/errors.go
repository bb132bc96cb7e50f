package user

import (
	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
)

var (
	ErrUserNotFound   = apperrors.New(apperrors.ErrCodeUserNotFound, "用户不存在")
	ErrEmailDuplicate = apperrors.ErrEmailDuplicate
	ErrInvalidEmail   = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	ErrInvalidName    = apperrors.New(apperrors.ErrCodeInvalidParams, "昵称长度应为2-50个字符")
	ErrUnderage       = apperrors.New(apperrors.ErrCodeInvalidParams, "注册用户须年满18岁")
	ErrTermsRequired  = apperrors.New(apperrors.ErrCodeInvalidParams, "请先同意服务条款")
)
