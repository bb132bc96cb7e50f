package handler

import (
	"github.com/gin-gonic/gin"

	appinvoice "github.com/xiebiao/bookstore-commerce/internal/application/invoice"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-commerce/pkg/response"
)

// InvoiceHandler 发票HTTP处理器
type InvoiceHandler struct {
	invoiceService *appinvoice.Service
}

// NewInvoiceHandler 创建发票处理器
func NewInvoiceHandler(invoiceService *appinvoice.Service) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Issue 为订单开具发票
// @Summary      开具发票
// @Description  一个订单只开一张发票，重复请求返回已有发票
// @Tags         发票
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.IssueInvoiceRequest true "开票信息"
// @Success      200 {object} response.Response{data=dto.InvoiceResponse}
// @Failure      200 {object} response.Response "40002订单已取消 / 40900币种不支持"
// @Router       /api/v1/invoices [post]
func (h *InvoiceHandler) Issue(c *gin.Context) {
	var req dto.IssueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.invoiceService.Issue(c.Request.Context(), actor(c), appinvoice.IssueCommand{
		OrderID:        req.OrderID,
		Currency:       req.Currency,
		FiscalData:     req.FiscalData,
		BillingAddress: req.BillingAddress,
		Notes:          req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInvoiceResponse(result))
}

// List 我的发票
// @Summary      我的发票列表
// @Tags         发票
// @Security     BearerAuth
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}
	page, size := q.normalize()

	invoices, total, err := h.invoiceService.List(c.Request.Context(), middleware.GetUserID(c), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	list := make([]*dto.InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		list[i] = dto.ToInvoiceResponse(inv)
	}
	response.SuccessWithPage(c, list, total, page, size)
}

// Get 发票详情
// @Summary      发票详情
// @Tags         发票
// @Security     BearerAuth
// @Param        id path int true "发票ID"
// @Success      200 {object} response.Response{data=dto.InvoiceResponse}
// @Router       /api/v1/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.invoiceService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInvoiceResponse(result))
}

// Update 修改账单地址/备注
// @Summary      修改开票信息
// @Description  只能修改账单地址和备注,金额和明细开具后不可变;已作废的发票不能修改
// @Tags         发票
// @Accept       json
// @Security     BearerAuth
// @Param        id path int true "发票ID"
// @Param        request body dto.UpdateInvoiceRequest true "开票信息"
// @Success      200 {object} response.Response{data=dto.InvoiceResponse}
// @Failure      200 {object} response.Response "40002发票已作废"
// @Router       /api/v1/invoices/{id} [patch]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.invoiceService.UpdateDetails(c.Request.Context(), actor(c), id, req.ToDomain())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInvoiceResponse(result))
}

// GetByOrder 订单的发票
// @Summary      订单的发票
// @Tags         发票
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.InvoiceResponse}
// @Router       /api/v1/orders/{id}/invoice [get]
func (h *InvoiceHandler) GetByOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.invoiceService.GetByOrder(c.Request.Context(), actor(c), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInvoiceResponse(result))
}

// Pay 标记已支付
// @Summary      发票标记已支付
// @Tags         发票
// @Security     BearerAuth
// @Param        id path int true "发票ID"
// @Success      200 {object} response.Response{data=dto.InvoiceResponse}
// @Router       /api/v1/invoices/{id}/pay [post]
func (h *InvoiceHandler) Pay(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.invoiceService.Pay(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInvoiceResponse(result))
}

// Void 作废发票
// @Summary      作废发票
// @Description  作废不影响订单状态
// @Tags         发票
// @Security     BearerAuth
// @Param        id path int true "发票ID"
// @Success      200 {object} response.Response{data=dto.InvoiceResponse}
// @Router       /api/v1/invoices/{id} [delete]
func (h *InvoiceHandler) Void(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.invoiceService.Void(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInvoiceResponse(result))
}
