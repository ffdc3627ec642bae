package public

import (
	"github.com/holdcart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// Checkout 结算购物车
func (h *Handler) Checkout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	order, err := h.CheckoutService.Checkout(c.Request.Context(), cartID, uid)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Created(c, gin.H{"order": order})
}
