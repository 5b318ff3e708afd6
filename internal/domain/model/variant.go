package model

import (
	"time"

	"gorm.io/gorm"
)

// 購入単位のSKU。在庫はここで持つ
type ProductVariant struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64          `gorm:"not null;index" json:"product_id"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`
	Price     int64          `gorm:"not null" json:"price"`
	Stock     int64          `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
