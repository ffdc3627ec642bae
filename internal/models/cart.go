package models

import "time"

// Cart 购物车表（每个用户至多一个活跃购物车）
type Cart struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                // 主键
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`                 // 用户ID
	Total     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total"`  // 合计（始终等于各行小计之和）
	CreatedAt time.Time `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                          // 更新时间

	Items []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty"` // 购物车项
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}
