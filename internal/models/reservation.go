package models

import "time"

// Reservation 库存预留记录。行存在即预留有效；
// 释放以删除行为线性化点，删除成功才回补库存，
// 定时释放、兜底扫描、移除与结算之间由此互斥。
type Reservation struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                        // 主键
	UserID    uint      `gorm:"not null;index:idx_reservations_user_product" json:"user_id"` // 用户ID
	ProductID uint      `gorm:"not null;index:idx_reservations_user_product" json:"product_id"` // 商品ID
	Quantity  int       `gorm:"not null" json:"quantity"`                                    // 预留数量
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`                            // 过期时间
	CreatedAt time.Time `json:"created_at"`                                                  // 创建时间
}

// TableName 指定表名
func (Reservation) TableName() string {
	return "reservations"
}
