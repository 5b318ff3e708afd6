package model

import "time"

type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentMethodPrepaid        PaymentMethod = "PREPAID"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCashOnDelivery || m == PaymentMethodPrepaid
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// 1チェックアウトにつき1件。金額は全注文の合計。
// 注文側がpayment_idで参照する（注文をキャンセルしても消さない）
type Payment struct {
	ID             int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	BuyerID        string        `gorm:"type:varchar(64);not null;index" json:"buyer_id"`
	Amount         int64         `gorm:"not null" json:"amount"`
	Method         PaymentMethod `gorm:"type:varchar(20);not null" json:"method"`
	Status         PaymentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	IdempotencyKey string        `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt      time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
