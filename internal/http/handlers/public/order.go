package public

import (
	"github.com/holdcart/internal/http/response"
	"github.com/holdcart/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOrders 获取当前用户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orders, err := h.OrderRepo.ListByUser(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "order list failed", err)
		return
	}
	response.Success(c, gin.H{"orders": orders})
}

// GetOrder 获取订单详情（仅限本人订单）
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	order, err := h.OrderRepo.GetByIDAndUser(orderID, uid)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	if order == nil {
		respondWithMappedError(c, service.ErrOrderNotFound, orderErrorRules, response.CodeNotFound, "order not found")
		return
	}
	response.Success(c, gin.H{"order": order})
}
