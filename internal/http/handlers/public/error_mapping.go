package public

import (
	"errors"

	handlershared "github.com/holdcart/internal/http/handlers/shared"
	"github.com/holdcart/internal/http/response"
	"github.com/holdcart/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var registerErrorRules = []mappedHandlerError{
	{target: service.ErrNameRequired, code: response.CodeBadRequest, msg: "name is required"},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, msg: "invalid email"},
	{target: service.ErrWeakPassword, code: response.CodeBadRequest, msg: "password must be at least 8 characters"},
	{target: service.ErrEmailTaken, code: response.CodeConflict, msg: "email already registered"},
}

var loginErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredential, code: response.CodeUnauthorized, msg: "invalid email or password"},
}

var productErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrInvalidProduct, code: response.CodeBadRequest, msg: "invalid product"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrCartNotFound, code: response.CodeNotFound, msg: "cart not found"},
	{target: service.ErrCartAlreadyExists, code: response.CodeConflict, msg: "cart already exists"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, msg: "cart item not found"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrInvalidCartItem, code: response.CodeBadRequest, msg: "invalid cart item"},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest, msg: "insufficient stock"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrCartNotFound, code: response.CodeNotFound, msg: "cart not found"},
	{target: service.ErrEmptyCart, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrPaymentFailed, code: response.CodeBadRequest, msg: "payment failed"},
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
}

func respondCartError(c *gin.Context, err error) {
	// 库存不足需回传具体商品，便于前端定位失败行
	var stockErr *service.InsufficientStockError
	if errors.As(err, &stockErr) {
		handlershared.RequestLog(c).Warnw("cart_insufficient_stock", "product_id", stockErr.ProductID)
		response.ErrorWithData(c, response.CodeBadRequest, stockErr.Error(), gin.H{
			"product_id": stockErr.ProductID,
		})
		return
	}
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart operation failed")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
}
