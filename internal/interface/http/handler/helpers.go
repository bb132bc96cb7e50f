package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookstore-commerce/internal/application/order"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
	"github.com/xiebiao/bookstore-commerce/pkg/response"
)

// pathID 解析路径中的正整数ID,失败时直接写错误响应
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的"+name)
		return 0, false
	}
	return uint(id), true
}

// actor 当前登录用户
func actor(c *gin.Context) apporder.Actor {
	return apporder.Actor{
		UserID:  middleware.GetUserID(c),
		IsAdmin: middleware.IsAdmin(c),
	}
}

// pageQuery 分页参数
type pageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (q pageQuery) normalize() (int, int) {
	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	return page, size
}
