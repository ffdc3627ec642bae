package provider

import (
	"github.com/holdcart/internal/cache"
	"github.com/holdcart/internal/config"
	"github.com/holdcart/internal/logger"
	"github.com/holdcart/internal/models"
	"github.com/holdcart/internal/payment"
	"github.com/holdcart/internal/queue"
	"github.com/holdcart/internal/repository"
	"github.com/holdcart/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo        repository.UserRepository
	ProductRepo     repository.ProductRepository
	CartRepo        repository.CartRepository
	ReservationRepo repository.ReservationRepository
	OrderRepo       repository.OrderRepository

	// Services
	UserAuthService    *service.UserAuthService
	ProductService     *service.ProductService
	CartService        *service.CartService
	CheckoutService    *service.CheckoutService
	ReservationService *service.ReservationService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.ReservationRepo = repository.NewReservationRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
}

func (c *Container) initServices() {
	db := models.DB
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CartService = service.NewCartService(db, c.Config, c.CartRepo, c.ProductRepo, c.ReservationRepo, c.QueueClient)
	c.CheckoutService = service.NewCheckoutService(db, c.CartRepo, c.OrderRepo, c.ReservationRepo, payment.NewSandboxGateway())
	c.ReservationService = service.NewReservationService(db, c.CartRepo, c.ProductRepo, c.ReservationRepo)
}
