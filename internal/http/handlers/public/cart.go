package public

import (
	"github.com/holdcart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CreateCart 创建购物车
func (h *Handler) CreateCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	cart, err := h.CartService.CreateCart(uid)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Created(c, gin.H{"cart": cart})
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	cart, err := h.CartService.GetCart(cartID, uid)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"cart": cart})
}

// AddCartItem 加入商品
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	cart, err := h.CartService.AddItem(cartID, uid, req.ProductID, req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"cart": cart})
}

// UpdateCartItem 调整购物车行数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	cart, err := h.CartService.UpdateItem(cartID, uid, req.ProductID, req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"cart": cart})
}

// DeleteCartItem 移除购物车行
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	productID, ok := parseUintParam(c, "product_id")
	if !ok {
		return
	}

	cart, err := h.CartService.RemoveItem(cartID, uid, productID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"cart": cart})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	cart, err := h.CartService.ClearCart(cartID, uid)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"cart": cart})
}
