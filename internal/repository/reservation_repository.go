package repository

import (
	"errors"
	"time"

	"github.com/holdcart/internal/models"

	"gorm.io/gorm"
)

// ReservationRepository 库存预留数据访问接口
type ReservationRepository interface {
	Create(reservation *models.Reservation) error
	GetByID(id uint) (*models.Reservation, error)
	DeleteByID(id uint) (int64, error)
	UpdateQuantity(id uint, quantity int) error
	ListByUserProduct(userID, productID uint) ([]models.Reservation, error)
	DeleteByUserProducts(userID uint, productIDs []uint) (int64, error)
	ListDue(now time.Time, limit int) ([]models.Reservation, error)
	WithTx(tx *gorm.DB) ReservationRepository
}

// GormReservationRepository GORM 实现
type GormReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository 创建库存预留仓库
func NewReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReservationRepository) WithTx(tx *gorm.DB) ReservationRepository {
	if tx == nil {
		return r
	}
	return &GormReservationRepository{db: tx}
}

// Create 创建预留
func (r *GormReservationRepository) Create(reservation *models.Reservation) error {
	return r.db.Create(reservation).Error
}

// GetByID 根据 ID 获取预留
func (r *GormReservationRepository) GetByID(id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

// DeleteByID 删除预留，返回影响行数。
// 影响行数为 0 表示预留已被其它路径（结算/移除/释放）消费。
func (r *GormReservationRepository) DeleteByID(id uint) (int64, error) {
	result := r.db.Delete(&models.Reservation{}, id)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// UpdateQuantity 调整预留数量
func (r *GormReservationRepository) UpdateQuantity(id uint, quantity int) error {
	return r.db.Model(&models.Reservation{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

// ListByUserProduct 获取用户某商品的全部预留（新→旧）
func (r *GormReservationRepository) ListByUserProduct(userID, productID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Order("created_at DESC, id DESC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// DeleteByUserProducts 删除用户若干商品的全部预留，返回影响行数
func (r *GormReservationRepository) DeleteByUserProducts(userID uint, productIDs []uint) (int64, error) {
	if userID == 0 || len(productIDs) == 0 {
		return 0, nil
	}
	result := r.db.Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Delete(&models.Reservation{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListDue 获取已到期的预留（旧→新）
func (r *GormReservationRepository) ListDue(now time.Time, limit int) ([]models.Reservation, error) {
	var reservations []models.Reservation
	query := r.db.Where("expires_at <= ?", now).Order("expires_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}
