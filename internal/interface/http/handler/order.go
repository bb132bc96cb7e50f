package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookstore-commerce/internal/application/order"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-commerce/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	placeOrder  *apporder.PlaceOrderUseCase
	cancelOrder *apporder.CancelOrderUseCase
	manageOrder *apporder.ManageOrderUseCase
	queryOrder  *apporder.QueryOrderUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	placeOrder *apporder.PlaceOrderUseCase,
	cancelOrder *apporder.CancelOrderUseCase,
	manageOrder *apporder.ManageOrderUseCase,
	queryOrder *apporder.QueryOrderUseCase,
) *OrderHandler {
	return &OrderHandler{
		placeOrder:  placeOrder,
		cancelOrder: cancelOrder,
		manageOrder: manageOrder,
		queryOrder:  queryOrder,
	}
}

// PlaceFromCart 购物车下单
// @Summary      购物车下单
// @Description  一个事务内完成：锁库存 → 创建订单 → 扣减库存 → 购物车置为CONVERTED
// @Description  任意一本书库存不足时整单失败，不产生任何副作用
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PlaceFromCartRequest true "下单信息"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "下单成功"
// @Failure      200 {object} response.Response "40001库存不足 / 40002购物车为空或状态不对"
// @Router       /api/v1/orders/from-cart [post]
func (h *OrderHandler) PlaceFromCart(c *gin.Context) {
	var req dto.PlaceFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.placeOrder.FromCart(c.Request.Context(), apporder.FromCartRequest{
		UserID:  middleware.GetUserID(c),
		CartID:  req.CartID,
		Details: req.OrderDetails.ToDomain(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToOrderResponse(result))
}

// CreateOrder 直接下单
// @Summary      直接下单
// @Description  按图书当前价格下单，同一本书的多行会合并
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "订单明细"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Router       /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	// 1. 参数绑定
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	// 2. DTO转换
	items := make([]apporder.DirectItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = apporder.DirectItem{BookID: item.BookID, Quantity: item.Quantity}
	}

	// 3. 调用用例
	result, err := h.placeOrder.Direct(c.Request.Context(), apporder.DirectRequest{
		UserID:  middleware.GetUserID(c),
		Items:   items,
		Details: req.OrderDetails.ToDomain(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToOrderResponse(result))
}

// ListOrders 我的订单
// @Summary      我的订单列表
// @Tags         订单
// @Security     BearerAuth
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}
	page, size := q.normalize()

	orders, total, err := h.queryOrder.List(c.Request.Context(), middleware.GetUserID(c), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.OrderResponse, len(orders))
	for i, o := range orders {
		list[i] = dto.ToOrderResponse(o)
	}
	response.SuccessWithPage(c, list, total, page, size)
}

// GetOrder 订单详情
// @Summary      订单详情
// @Description  只能查看自己的订单(管理员除外)
// @Tags         订单
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.queryOrder.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToOrderResponse(result))
}

// CancelOrder 取消订单(不回补库存)
// @Summary      取消订单
// @Tags         订单
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      200 {object} response.Response "40002已发货/已送达/已取消的订单不能取消"
// @Router       /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.cancelOrder.Cancel(c.Request.Context(), actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToOrderResponse(result))
}

// CancelAndRestock 取消订单并回补库存
// @Summary      取消并回补库存
// @Tags         订单
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Router       /api/v1/orders/{id}/cancel-and-restock [post]
func (h *OrderHandler) CancelAndRestock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.cancelOrder.CancelAndRestock(c.Request.Context(), actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToOrderResponse(result))
}

// UpdateOrder 后台修改订单
// @Summary      修改订单
// @Tags         订单
// @Accept       json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.UpdateOrderRequest true "修改内容"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Router       /api/v1/orders/{id} [patch]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	params, err := req.ToDomain()
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.manageOrder.Update(c.Request.Context(), id, params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToOrderResponse(result))
}

// DeleteOrder 删除订单
// @Summary      删除订单
// @Description  已发货和已送达的订单不能删除，删除不回补库存
// @Tags         订单
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.manageOrder.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
