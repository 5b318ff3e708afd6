package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

// 出店者ダッシュボード用の絞り込み
type SellerOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByBuyerID(ctx context.Context, buyerID string, page int, limit int) ([]model.Order, int64, error)
	ListByPaymentID(ctx context.Context, paymentID int64) ([]model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	UpdateTrackingNumber(ctx context.Context, orderID int64, trackingNumber string) error

	// 出店者側の一覧
	ListBySeller(ctx context.Context, sellerID int64, f SellerOrderListFilter) ([]model.Order, int64, error)
}
