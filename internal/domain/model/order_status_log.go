package model

import "time"

// ステータス遷移の履歴。誰がいつ変えたかを残す
type OrderStatusLog struct {
	ID         int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64       `gorm:"not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus   OrderStatus `gorm:"type:varchar(20);not null" json:"to_status"`
	ActorID    string      `gorm:"type:varchar(64);not null" json:"actor_id"`
	CreatedAt  time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}
