package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/bookstore-commerce/internal/application/cart"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-commerce/pkg/response"
)

// CartHandler 购物车HTTP处理器
type CartHandler struct {
	cartService *appcart.Service
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(cartService *appcart.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get 当前购物车(不存在时创建)
// @Summary      我的购物车
// @Tags         购物车
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.CartResponse}
// @Router       /api/v1/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	result, err := h.cartService.GetOrCreate(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCartResponse(result))
}

// AddItem 加入购物车
// @Summary      加入购物车
// @Description  同一本书重复加入时累加数量,单价保留首次加入时的快照
// @Tags         购物车
// @Accept       json
// @Security     BearerAuth
// @Param        request body dto.AddCartItemRequest true "明细"
// @Success      200 {object} response.Response{data=dto.CartResponse}
// @Failure      200 {object} response.Response "40001库存不足"
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.cartService.AddItem(c.Request.Context(), middleware.GetUserID(c), req.BookID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCartResponse(result))
}

// RemoveItem 移除明细
// @Summary      移除购物车明细
// @Tags         购物车
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.CartResponse}
// @Router       /api/v1/cart/items/{book_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	bookID, ok := pathID(c, "book_id")
	if !ok {
		return
	}
	result, err := h.cartService.RemoveItem(c.Request.Context(), middleware.GetUserID(c), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCartResponse(result))
}

// Abandon 放弃购物车
// @Summary      放弃购物车
// @Tags         购物车
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.CartResponse}
// @Router       /api/v1/cart/abandon [post]
func (h *CartHandler) Abandon(c *gin.Context) {
	result, err := h.cartService.Abandon(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCartResponse(result))
}
