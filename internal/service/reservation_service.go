package service

import (
	"errors"
	"time"

	"github.com/holdcart/internal/models"
	"github.com/holdcart/internal/repository"

	"gorm.io/gorm"
)

// ReservationService 库存预留释放服务。定时任务与兜底扫描
// 共用同一释放路径，以删除预留行为线性化点保证只释放一次。
type ReservationService struct {
	db              *gorm.DB
	cartRepo        repository.CartRepository
	productRepo     repository.ProductRepository
	reservationRepo repository.ReservationRepository
}

// NewReservationService 创建库存预留服务
func NewReservationService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	reservationRepo repository.ReservationRepository,
) *ReservationService {
	return &ReservationService{
		db:              db,
		cartRepo:        cartRepo,
		productRepo:     productRepo,
		reservationRepo: reservationRepo,
	}
}

// Release 释放单个预留：回补库存并回滚对应购物车行。
// 预留行已被结算/移除消费时返回 ErrReservationNotFound。
func (s *ReservationService) Release(reservationID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		reservationRepo := s.reservationRepo.WithTx(tx)

		reservation, err := reservationRepo.GetByID(reservationID)
		if err != nil {
			return err
		}
		if reservation == nil {
			return ErrReservationNotFound
		}

		affected, err := reservationRepo.DeleteByID(reservationID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrReservationNotFound
		}

		if _, err := productRepo.RestoreStock(reservation.ProductID, reservation.Quantity); err != nil {
			return err
		}

		// 回滚购物车行，购物车不再展示已失去的持有量
		cart, err := cartRepo.GetByUserID(reservation.UserID)
		if err != nil {
			return err
		}
		if cart == nil {
			return nil
		}
		item, err := cartRepo.GetItem(cart.ID, reservation.ProductID)
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}

		product, err := productRepo.GetByID(reservation.ProductID)
		if err != nil {
			return err
		}
		price := models.ZeroMoney()
		if product != nil {
			price = product.Price
		}

		lineDelta := price.MulInt(reservation.Quantity)
		if item.Quantity <= reservation.Quantity {
			lineDelta = item.ItemPrice
			if _, err := cartRepo.DeleteItem(cart.ID, reservation.ProductID); err != nil {
				return err
			}
		} else {
			item.Quantity -= reservation.Quantity
			item.ItemPrice = item.ItemPrice.SubMoney(lineDelta)
			if err := cartRepo.UpdateItem(item); err != nil {
				return err
			}
		}
		return cartRepo.UpdateTotal(cart.ID, cart.Total.SubMoney(lineDelta))
	})
}

// ReleaseDue 释放所有已到期的预留，返回释放数量
func (s *ReservationService) ReleaseDue(now time.Time, limit int) (int, error) {
	due, err := s.reservationRepo.ListDue(now, limit)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, reservation := range due {
		if err := s.Release(reservation.ID); err != nil {
			if errors.Is(err, ErrReservationNotFound) {
				continue
			}
			return released, err
		}
		released++
	}
	return released, nil
}
