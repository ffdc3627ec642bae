package public

import (
	"github.com/holdcart/internal/http/response"
	"github.com/holdcart/internal/models"
	"github.com/holdcart/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductRequest 商品创建请求
type ProductRequest struct {
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description"`
	Price       models.Money `json:"price"`
	Stock       int          `json:"stock"`
}

// ProductUpdateRequest 商品部分更新请求，未提供的字段保持原值
type ProductUpdateRequest struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Price       *models.Money `json:"price"`
	Stock       *int          `json:"stock"`
}

// ListProducts 商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.ProductService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}
	response.Success(c, gin.H{"products": products})
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	product, err := h.ProductService.Get(productID)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "product fetch failed")
		return
	}
	response.Success(c, gin.H{"product": product})
}

// CreateProduct 创建商品（管理员）
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	product, err := h.ProductService.Create(req.Name, req.Description, req.Price, req.Stock)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "product create failed")
		return
	}
	response.Created(c, gin.H{"product": product})
}

// UpdateProduct 更新商品（管理员）
func (h *Handler) UpdateProduct(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	product, err := h.ProductService.Update(productID, service.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "product update failed")
		return
	}
	response.Success(c, gin.H{"product": product})
}

// DeleteProduct 删除商品（管理员）
func (h *Handler) DeleteProduct(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.ProductService.Delete(productID); err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "product delete failed")
		return
	}
	response.SuccessWithMsg(c, "product deleted", nil)
}
