package router

import (
	"fmt"
	"strings"

	"github.com/holdcart/internal/cache"
	"github.com/holdcart/internal/config"
	"github.com/holdcart/internal/constants"
	publichandlers "github.com/holdcart/internal/http/handlers/public"
	"github.com/holdcart/internal/logger"
	"github.com/holdcart/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	authRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:auth", redisPrefix),
		WindowSeconds: cfg.Security.AuthRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.AuthRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", RateLimitMiddleware(redisClient, authRule, KeyByIP), publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, authRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		// 商品浏览（公开）
		apiV1.GET("/products", publicHandler.ListProducts)
		apiV1.GET("/products/:id", publicHandler.GetProduct)

		// 商品管理（管理员）
		adminProducts := apiV1.Group("/products")
		adminProducts.Use(UserJWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo), AdminRoleMiddleware())
		{
			adminProducts.POST("", publicHandler.CreateProduct)
			adminProducts.PUT("/:id", publicHandler.UpdateProduct)
			adminProducts.DELETE("/:id", publicHandler.DeleteProduct)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
		{
			user.POST("/cart", publicHandler.CreateCart)
			user.GET("/cart/:id", publicHandler.GetCart)
			user.POST("/cart/:id/items", publicHandler.AddCartItem)
			user.PUT("/cart/:id/items", publicHandler.UpdateCartItem)
			user.DELETE("/cart/:id/items/:product_id", publicHandler.DeleteCartItem)
			user.DELETE("/cart/:id", publicHandler.ClearCart)
			user.POST("/cart/:id/checkout", publicHandler.Checkout)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
