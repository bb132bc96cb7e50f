package handler

import (
	"github.com/gin-gonic/gin"

	appinventory "github.com/xiebiao/bookstore-commerce/internal/application/inventory"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-commerce/pkg/response"
)

// InventoryHandler 库存台账HTTP处理器(除查询外都需要管理员)
type InventoryHandler struct {
	inventoryService *appinventory.Service
}

// NewInventoryHandler 创建库存处理器
func NewInventoryHandler(inventoryService *appinventory.Service) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// logsQuery 流水查询参数
// 不传limit时由用例取默认值(appinventory.DefaultLogLimit)
type logsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

// Create 建立库存台账
// @Summary      建立库存台账
// @Description  threshold不传时使用配置的默认阈值
// @Tags         库存
// @Accept       json
// @Security     BearerAuth
// @Param        request body dto.CreateInventoryRequest true "台账"
// @Success      200 {object} response.Response{data=dto.InventoryResponse}
// @Router       /api/v1/inventory [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req dto.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.inventoryService.Create(c.Request.Context(), appinventory.CreateCommand{
		BookID:    req.BookID,
		Available: req.Available,
		Threshold: req.Threshold,
		Location:  req.Location,
		Notes:     req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInventoryResponse(result))
}

// Get 查询库存
// @Summary      查询库存
// @Tags         库存
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.InventoryResponse}
// @Router       /api/v1/inventory/{book_id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	bookID, ok := pathID(c, "book_id")
	if !ok {
		return
	}
	result, err := h.inventoryService.Get(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInventoryResponse(result))
}

// LowStock 低库存列表
// @Summary      低库存列表
// @Tags         库存
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.InventoryResponse}
// @Router       /api/v1/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	invs, err := h.inventoryService.ListLowStock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	list := make([]*dto.InventoryResponse, len(invs))
	for i, inv := range invs {
		list[i] = dto.ToInventoryResponse(inv)
	}
	response.Success(c, list)
}

// Logs 变更流水(按时间倒序)
// @Summary      库存流水
// @Tags         库存
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Param        limit query int false "条数(默认50)"
// @Success      200 {object} response.Response{data=[]dto.InventoryLogResponse}
// @Router       /api/v1/inventory/{book_id}/logs [get]
func (h *InventoryHandler) Logs(c *gin.Context) {
	bookID, ok := pathID(c, "book_id")
	if !ok {
		return
	}
	var q logsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}
	logs, err := h.inventoryService.Logs(c.Request.Context(), bookID, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInventoryLogResponses(logs))
}

// UpdateSettings 修改阈值/位置/备注
// @Summary      修改库存设置
// @Tags         库存
// @Accept       json
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Param        request body dto.InventorySettingsRequest true "设置"
// @Success      200 {object} response.Response{data=dto.InventoryResponse}
// @Router       /api/v1/inventory/{book_id} [patch]
func (h *InventoryHandler) UpdateSettings(c *gin.Context) {
	bookID, ok := pathID(c, "book_id")
	if !ok {
		return
	}
	var req dto.InventorySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.inventoryService.UpdateSettings(c.Request.Context(), bookID, appinventory.SettingsCommand{
		Threshold: req.Threshold,
		Location:  req.Location,
		Notes:     req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInventoryResponse(result))
}

// Delete 删除台账
// @Summary      删除库存台账
// @Description  还有预留数量时不能删除
// @Tags         库存
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/inventory/{book_id} [delete]
func (h *InventoryHandler) Delete(c *gin.Context) {
	bookID, ok := pathID(c, "book_id")
	if !ok {
		return
	}
	if err := h.inventoryService.Delete(c.Request.Context(), bookID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Reserve 预留库存
// @Summary      预留库存
// @Tags         库存
// @Accept       json
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Param        request body dto.QuantityRequest true "数量"
// @Success      200 {object} response.Response{data=dto.InventoryResponse}
// @Failure      200 {object} response.Response "40001库存不足"
// @Router       /api/v1/inventory/{book_id}/reserve [post]
func (h *InventoryHandler) Reserve(c *gin.Context) {
	bookID, req, ok := bindQuantity(c)
	if !ok {
		return
	}
	result, err := h.inventoryService.Reserve(c.Request.Context(), bookID, req.Quantity, req.OrderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInventoryResponse(result))
}

// Release 释放预留
// @Summary      释放预留
// @Description  超过已预留数量时只释放已预留的部分，released为实际释放数量
// @Tags         库存
// @Accept       json
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Param        request body dto.QuantityRequest true "数量"
// @Success      200 {object} response.Response{data=dto.InventoryResponse}
// @Router       /api/v1/inventory/{book_id}/release [post]
func (h *InventoryHandler) Release(c *gin.Context) {
	bookID, req, ok := bindQuantity(c)
	if !ok {
		return
	}
	inv, released, err := h.inventoryService.Release(c.Request.Context(), bookID, req.Quantity, req.OrderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp := dto.ToInventoryResponse(inv)
	resp.Released = &released
	response.Success(c, resp)
}

// ConfirmSale 确认售出
// @Summary      确认售出
// @Description  优先消耗已预留的数量，不足部分从可用库存扣减
// @Tags         库存
// @Accept       json
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Param        request body dto.QuantityRequest true "数量"
// @Success      200 {object} response.Response{data=dto.InventoryResponse}
// @Router       /api/v1/inventory/{book_id}/confirm [post]
func (h *InventoryHandler) ConfirmSale(c *gin.Context) {
	bookID, req, ok := bindQuantity(c)
	if !ok {
		return
	}
	result, err := h.inventoryService.ConfirmSale(c.Request.Context(), bookID, req.Quantity, req.OrderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInventoryResponse(result))
}

// Restock 补货
// @Summary      补货
// @Tags         库存
// @Accept       json
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Param        request body dto.RestockRequest true "补货信息"
// @Success      200 {object} response.Response{data=dto.InventoryResponse}
// @Router       /api/v1/inventory/{book_id}/restock [post]
func (h *InventoryHandler) Restock(c *gin.Context) {
	bookID, ok := pathID(c, "book_id")
	if !ok {
		return
	}
	var req dto.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.inventoryService.Restock(c.Request.Context(), bookID, req.Quantity, req.Lot, req.Remark)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInventoryResponse(result))
}

func bindQuantity(c *gin.Context) (uint, dto.QuantityRequest, bool) {
	var req dto.QuantityRequest
	bookID, ok := pathID(c, "book_id")
	if !ok {
		return 0, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return 0, req, false
	}
	return bookID, req, true
}
