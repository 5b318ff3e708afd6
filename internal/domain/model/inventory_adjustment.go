package model

import "time"

//在庫調整の履歴

type InventoryAdjustment struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	VariantID  int64     `gorm:"not null;index" json:"variant_id"`
	AdjustedBy string    `gorm:"type:varchar(64);not null" json:"adjusted_by"`
	OldStock   int64     `gorm:"not null" json:"old_stock"`
	NewStock   int64     `gorm:"not null" json:"new_stock"`
	Reason     string    `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
