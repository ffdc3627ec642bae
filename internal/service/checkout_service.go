package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/holdcart/internal/constants"
	"github.com/holdcart/internal/logger"
	"github.com/holdcart/internal/models"
	"github.com/holdcart/internal/payment"
	"github.com/holdcart/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckoutService 结算服务。单个事务内完成支付授权、订单落库、
// 预留消费与购物车清空。
type CheckoutService struct {
	db              *gorm.DB
	cartRepo        repository.CartRepository
	orderRepo       repository.OrderRepository
	reservationRepo repository.ReservationRepository
	authorizer      payment.Authorizer
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	reservationRepo repository.ReservationRepository,
	authorizer payment.Authorizer,
) *CheckoutService {
	return &CheckoutService{
		db:              db,
		cartRepo:        cartRepo,
		orderRepo:       orderRepo,
		reservationRepo: reservationRepo,
		authorizer:      authorizer,
	}
}

// Checkout 结算购物车。预留行在此处删除即视为成交，
// 库存在加购时已扣减，结算不再变动商品库存。
func (s *CheckoutService) Checkout(ctx context.Context, cartID, userID uint) (*models.Order, error) {
	var created *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)
		reservationRepo := s.reservationRepo.WithTx(tx)

		cart, err := cartRepo.GetByID(cartID)
		if err != nil {
			return err
		}
		if cart == nil || cart.UserID != userID {
			return ErrCartNotFound
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		if err := s.authorizer.Authorize(ctx, userID, cart.Total); err != nil {
			logger.Debugw("checkout_payment_declined",
				"cart_id", cartID,
				"user_id", userID,
				"error", err,
			)
			return ErrPaymentFailed
		}

		order := &models.Order{
			OrderNo:   newOrderNo(),
			UserID:    userID,
			Status:    constants.OrderStatusPaid,
			Total:     cart.Total,
			OrderDate: time.Now(),
		}
		orderItems := make([]models.OrderItem, 0, len(cart.Items))
		productIDs := make([]uint, 0, len(cart.Items))
		for _, item := range cart.Items {
			name := ""
			if item.Product != nil {
				name = item.Product.Name
			}
			orderItems = append(orderItems, models.OrderItem{
				ProductID:   item.ProductID,
				ProductName: name,
				Quantity:    item.Quantity,
				ItemPrice:   item.ItemPrice,
			})
			productIDs = append(productIDs, item.ProductID)
		}
		if err := orderRepo.Create(order, orderItems); err != nil {
			return err
		}

		// 预留转成交：删除预留行，到期任务之后会空转
		if _, err := reservationRepo.DeleteByUserProducts(userID, productIDs); err != nil {
			return err
		}

		if err := cartRepo.DeleteItems(cartID); err != nil {
			return err
		}
		if err := cartRepo.UpdateTotal(cartID, models.ZeroMoney()); err != nil {
			return err
		}

		order.Items = orderItems
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func newOrderNo() string {
	stamp := time.Now().Format("20060102150405")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return fmt.Sprintf("HC%s%s", stamp, suffix)
}
