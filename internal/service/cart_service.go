package service

import (
	"time"

	"github.com/holdcart/internal/config"
	"github.com/holdcart/internal/constants"
	"github.com/holdcart/internal/logger"
	"github.com/holdcart/internal/models"
	"github.com/holdcart/internal/queue"
	"github.com/holdcart/internal/repository"

	"gorm.io/gorm"
)

// CartService 购物车业务服务。加购即扣减库存并建立限时预留，
// 所有多步写入都在单个事务内完成。
type CartService struct {
	db              *gorm.DB
	cfg             *config.Config
	cartRepo        repository.CartRepository
	productRepo     repository.ProductRepository
	reservationRepo repository.ReservationRepository
	queueClient     *queue.Client
}

// NewCartService 创建购物车服务
func NewCartService(
	db *gorm.DB,
	cfg *config.Config,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	reservationRepo repository.ReservationRepository,
	queueClient *queue.Client,
) *CartService {
	return &CartService{
		db:              db,
		cfg:             cfg,
		cartRepo:        cartRepo,
		productRepo:     productRepo,
		reservationRepo: reservationRepo,
		queueClient:     queueClient,
	}
}

// ReservationTTL 预留保持时长
func (s *CartService) ReservationTTL() time.Duration {
	minutes := constants.ReservationTTLMinutesDefault
	if s.cfg != nil && s.cfg.Reservation.TTLMinutes > 0 {
		minutes = s.cfg.Reservation.TTLMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// CreateCart 为用户创建购物车（每个用户至多一个）
func (s *CartService) CreateCart(userID uint) (*models.Cart, error) {
	existing, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCartAlreadyExists
	}
	cart := &models.Cart{
		UserID: userID,
		Total:  models.ZeroMoney(),
	}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart 获取购物车（校验归属）
func (s *CartService) GetCart(cartID, userID uint) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil || cart.UserID != userID {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

// AddItem 加入商品。在单个事务内：条件扣减库存、建立限时预留、
// 合并购物车行并累加合计；提交后再投递延迟释放任务。
func (s *CartService) AddItem(cartID, userID, productID uint, quantity int) (*models.Cart, error) {
	if productID == 0 || quantity <= 0 {
		return nil, ErrInvalidCartItem
	}

	var reservationID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		reservationRepo := s.reservationRepo.WithTx(tx)

		cart, err := cartRepo.GetByID(cartID)
		if err != nil {
			return err
		}
		if cart == nil || cart.UserID != userID {
			return ErrCartNotFound
		}

		product, err := productRepo.GetByID(productID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}

		affected, err := productRepo.DeductStock(productID, quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return &InsufficientStockError{ProductID: productID}
		}

		reservation := &models.Reservation{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			ExpiresAt: time.Now().Add(s.ReservationTTL()),
		}
		if err := reservationRepo.Create(reservation); err != nil {
			return err
		}
		reservationID = reservation.ID

		lineDelta := product.Price.MulInt(quantity)
		item, err := cartRepo.GetItem(cartID, productID)
		if err != nil {
			return err
		}
		if item == nil {
			item = &models.CartItem{
				CartID:    cartID,
				ProductID: productID,
				Quantity:  quantity,
				ItemPrice: lineDelta,
			}
			if err := cartRepo.CreateItem(item); err != nil {
				return err
			}
		} else {
			item.Quantity += quantity
			item.ItemPrice = item.ItemPrice.AddMoney(lineDelta)
			if err := cartRepo.UpdateItem(item); err != nil {
				return err
			}
		}
		return cartRepo.UpdateTotal(cartID, cart.Total.AddMoney(lineDelta))
	})
	if err != nil {
		return nil, err
	}

	s.scheduleRelease(reservationID)
	return s.GetCart(cartID, userID)
}

// UpdateItem 将购物车行数量调整为 quantity。增量部分等同加购
// （扣库存+新预留），减量部分回补库存并按新→旧收缩预留。
func (s *CartService) UpdateItem(cartID, userID, productID uint, quantity int) (*models.Cart, error) {
	if productID == 0 || quantity <= 0 {
		return nil, ErrInvalidCartItem
	}

	var reservationID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		reservationRepo := s.reservationRepo.WithTx(tx)

		cart, err := cartRepo.GetByID(cartID)
		if err != nil {
			return err
		}
		if cart == nil || cart.UserID != userID {
			return ErrCartNotFound
		}

		item, err := cartRepo.GetItem(cartID, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrCartItemNotFound
		}

		delta := quantity - item.Quantity
		if delta == 0 {
			return nil
		}

		product, err := productRepo.GetByID(productID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}

		if delta > 0 {
			affected, err := productRepo.DeductStock(productID, delta)
			if err != nil {
				return err
			}
			if affected == 0 {
				return &InsufficientStockError{ProductID: productID}
			}
			reservation := &models.Reservation{
				UserID:    userID,
				ProductID: productID,
				Quantity:  delta,
				ExpiresAt: time.Now().Add(s.ReservationTTL()),
			}
			if err := reservationRepo.Create(reservation); err != nil {
				return err
			}
			reservationID = reservation.ID
		} else {
			release := -delta
			if _, err := productRepo.RestoreStock(productID, release); err != nil {
				return err
			}
			if err := shrinkReservations(reservationRepo, userID, productID, release); err != nil {
				return err
			}
		}

		// 行小计按当前单价整体重算，合计按新旧行差值调整
		newLine := product.Price.MulInt(quantity)
		totalDelta := newLine.SubMoney(item.ItemPrice)
		item.Quantity = quantity
		item.ItemPrice = newLine
		if err := cartRepo.UpdateItem(item); err != nil {
			return err
		}
		return cartRepo.UpdateTotal(cartID, cart.Total.AddMoney(totalDelta))
	})
	if err != nil {
		return nil, err
	}

	s.scheduleRelease(reservationID)
	return s.GetCart(cartID, userID)
}

// RemoveItem 移除购物车行：回补库存、删除行与对应预留、扣减合计
func (s *CartService) RemoveItem(cartID, userID, productID uint) (*models.Cart, error) {
	if productID == 0 {
		return nil, ErrInvalidCartItem
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		reservationRepo := s.reservationRepo.WithTx(tx)

		cart, err := cartRepo.GetByID(cartID)
		if err != nil {
			return err
		}
		if cart == nil || cart.UserID != userID {
			return ErrCartNotFound
		}

		item, err := cartRepo.GetItem(cartID, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrCartItemNotFound
		}

		if _, err := productRepo.RestoreStock(productID, item.Quantity); err != nil {
			return err
		}
		if _, err := cartRepo.DeleteItem(cartID, productID); err != nil {
			return err
		}
		// 同事务删除预留，到期任务不会再次回补
		if _, err := reservationRepo.DeleteByUserProducts(userID, []uint{productID}); err != nil {
			return err
		}
		return cartRepo.UpdateTotal(cartID, cart.Total.SubMoney(item.ItemPrice))
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(cartID, userID)
}

// ClearCart 清空购物车：回补全部库存、删除全部行与预留、合计归零。
// 空购物车视为成功。
func (s *CartService) ClearCart(cartID, userID uint) (*models.Cart, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		reservationRepo := s.reservationRepo.WithTx(tx)

		cart, err := cartRepo.GetByID(cartID)
		if err != nil {
			return err
		}
		if cart == nil || cart.UserID != userID {
			return ErrCartNotFound
		}

		items, err := cartRepo.ListItems(cartID)
		if err != nil {
			return err
		}
		productIDs := make([]uint, 0, len(items))
		for _, item := range items {
			if _, err := productRepo.RestoreStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
			productIDs = append(productIDs, item.ProductID)
		}
		if err := cartRepo.DeleteItems(cartID); err != nil {
			return err
		}
		if _, err := reservationRepo.DeleteByUserProducts(userID, productIDs); err != nil {
			return err
		}
		return cartRepo.UpdateTotal(cartID, models.ZeroMoney())
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(cartID, userID)
}

// scheduleRelease 提交后投递延迟释放任务。投递失败仅告警，
// 到期兜底扫描会接管释放。
func (s *CartService) scheduleRelease(reservationID uint) {
	if reservationID == 0 || !s.queueClient.Enabled() {
		return
	}
	payload := queue.ReservationReleasePayload{ReservationID: reservationID}
	if err := s.queueClient.EnqueueReservationRelease(payload, s.ReservationTTL()); err != nil {
		logger.Warnw("reservation_release_enqueue_failed",
			"reservation_id", reservationID,
			"error", err,
		)
	}
}

// shrinkReservations 按新→旧收缩用户某商品的预留共 release 个
func shrinkReservations(reservationRepo repository.ReservationRepository, userID, productID uint, release int) error {
	reservations, err := reservationRepo.ListByUserProduct(userID, productID)
	if err != nil {
		return err
	}
	remaining := release
	for _, reservation := range reservations {
		if remaining <= 0 {
			break
		}
		if reservation.Quantity <= remaining {
			if _, err := reservationRepo.DeleteByID(reservation.ID); err != nil {
				return err
			}
			remaining -= reservation.Quantity
			continue
		}
		if err := reservationRepo.UpdateQuantity(reservation.ID, reservation.Quantity-remaining); err != nil {
			return err
		}
		remaining = 0
	}
	return nil
}
