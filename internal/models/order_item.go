package models

import "time"

// OrderItem 订单项表
type OrderItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID     uint      `gorm:"index;not null" json:"order_id"`                           // 订单ID
	ProductID   uint      `gorm:"index;not null" json:"product_id"`                         // 商品ID
	ProductName string    `gorm:"not null" json:"product_name"`                             // 商品名称快照
	Quantity    int       `gorm:"not null" json:"quantity"`                                 // 数量
	ItemPrice   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"item_price"` // 锁定的行小计
	CreatedAt   time.Time `json:"created_at"`                                               // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
