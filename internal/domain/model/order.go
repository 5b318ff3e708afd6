package model

import "time"

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusProcessing     OrderStatus = "PROCESSING"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusRefunded       OrderStatus = "REFUNDED"
)

// 遷移できる先。発送後のキャンセルは不可、返金は配達済みかキャンセル済みからのみ
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingPayment: {OrderStatusPending, OrderStatusCancelled},
	OrderStatusPending:        {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing:     {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:        {OrderStatusDelivered},
	OrderStatusDelivered:      {OrderStatusRefunded},
	OrderStatusCancelled:      {OrderStatusRefunded},
	OrderStatusRefunded:       {},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// 作成時の初期ステータス。代引きは支払い確認が無いのでPENDING開始
func InitialOrderStatus(method PaymentMethod) OrderStatus {
	if method == PaymentMethodCashOnDelivery {
		return OrderStatusPending
	}
	return OrderStatusPendingPayment
}

// 1出店者ぶんの注文。金額と配送先スナップショットは作成後に変更しない。
// 変更できるのは Status / TrackingNumber / UpdatedAt だけ。
type Order struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber    string      `gorm:"type:varchar(32);not null;uniqueIndex" json:"order_number"`
	BuyerID        string      `gorm:"type:varchar(64);not null;index" json:"buyer_id"`
	SellerID       int64       `gorm:"not null;index" json:"seller_id"`
	PaymentID      int64       `gorm:"not null;index" json:"payment_id"`
	Subtotal       int64       `gorm:"not null" json:"subtotal"`
	ShippingFee    int64       `gorm:"not null" json:"shipping_fee"`
	PlatformFee    int64       `gorm:"not null" json:"platform_fee"`
	SellerEarnings int64       `gorm:"not null" json:"seller_earnings"`
	TotalPrice     int64       `gorm:"not null" json:"total_price"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TrackingNumber string      `gorm:"type:varchar(100)" json:"tracking_number"`

	// 配送先スナップショット（住所を後から編集しても過去の注文は変わらない）
	ShipName     string `gorm:"type:varchar(100);not null" json:"ship_name"`
	ShipPhone    string `gorm:"type:varchar(10);not null" json:"ship_phone"`
	ShipEmail    string `gorm:"type:varchar(255);not null" json:"ship_email"`
	ShipAddress  string `gorm:"type:varchar(200);not null" json:"ship_address"`
	ShipWard     string `gorm:"type:varchar(50);not null" json:"ship_ward"`
	ShipDistrict string `gorm:"type:varchar(50);not null" json:"ship_district"`
	ShipCity     string `gorm:"type:varchar(50);not null" json:"ship_city"`
	ShipNote     string `gorm:"type:varchar(500)" json:"ship_note"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
