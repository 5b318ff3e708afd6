package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type OrderItemOutput struct {
	ProductID   int64  `json:"product_id"`
	VariantID   int64  `json:"variant_id"`
	ProductName string `json:"product_name"`
	VariantName string `json:"variant_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
	Subtotal    int64  `json:"subtotal"`
}

type StatusChangeOutput struct {
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	OrderNumber    string            `json:"order_number"`
	SellerID       int64             `json:"seller_id"`
	Status         string            `json:"status"`
	Subtotal       int64             `json:"subtotal"`
	ShippingFee    int64             `json:"shipping_fee"`
	PlatformFee    int64             `json:"platform_fee"`
	SellerEarnings int64             `json:"seller_earnings"`
	TotalPrice     int64             `json:"total_price"`
	TrackingNumber string            `json:"tracking_number"`
	PaymentID      int64             `json:"payment_id"`
	ShipName       string            `json:"ship_name"`
	ShipPhone      string            `json:"ship_phone"`
	ShipAddress    string            `json:"ship_address"`
	ShipWard       string            `json:"ship_ward"`
	ShipDistrict   string            `json:"ship_district"`
	ShipCity       string            `json:"ship_city"`
	ShipNote       string            `json:"ship_note"`
	CreatedAt      time.Time         `json:"created_at"`
	Items          []OrderItemOutput `json:"items"`

	// 詳細取得のときだけ入る
	History []StatusChangeOutput `json:"history,omitempty"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, buyerID string, page int, limit int) ([]OrderOutput, int64, error) {
	if buyerID == "" {
		return nil, 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var outs []OrderOutput
	var total int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, t, err := r.Orders().ListByBuyerID(ctx, buyerID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		total = t

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return nil, 0, err
	}
	return outs, total, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, buyerID string, orderID int64) (OrderOutput, error) {
	if buyerID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.BuyerID != buyerID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// ステータスの変更履歴も詳細には付ける
		logs, err := r.StatusLogs().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		out.History = toHistory(logs)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toHistory(logs []model.OrderStatusLog) []StatusChangeOutput {
	history := make([]StatusChangeOutput, 0, len(logs))
	for _, l := range logs {
		history = append(history, StatusChangeOutput{
			FromStatus: string(l.FromStatus),
			ToStatus:   string(l.ToStatus),
			ActorID:    l.ActorID,
			CreatedAt:  l.CreatedAt,
		})
	}
	return history
}

// CancelOrder は買い手によるキャンセル。
// 発送前だけ。キャンセル時は明細ぶんの在庫を戻して履歴を残す
func (u *OrderUsecase) CancelOrder(ctx context.Context, buyerID string, orderID int64) (OrderOutput, error) {
	if buyerID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.BuyerID != buyerID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if !o.Status.CanTransitionTo(model.OrderStatusCancelled) {
			return NewHTTPError(http.StatusConflict, "cannot cancel")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//在庫戻し
		for _, it := range items {
			if err := r.Inventory().IncreaseStock(ctx, it.VariantID, it.Quantity); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCancelled); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.StatusLogs().Create(ctx, model.OrderStatusLog{
			OrderID:    orderID,
			FromStatus: o.Status,
			ToStatus:   model.OrderStatusCancelled,
			ActorID:    buyerID,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o.Status = model.OrderStatusCancelled
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			ProductName: it.ProductNameSnapshot,
			VariantName: it.VariantNameSnapshot,
			UnitPrice:   it.UnitPriceSnapshot,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
		})
	}

	return OrderOutput{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		SellerID:       o.SellerID,
		Status:         string(o.Status),
		Subtotal:       o.Subtotal,
		ShippingFee:    o.ShippingFee,
		PlatformFee:    o.PlatformFee,
		SellerEarnings: o.SellerEarnings,
		TotalPrice:     o.TotalPrice,
		TrackingNumber: o.TrackingNumber,
		PaymentID:      o.PaymentID,
		ShipName:       o.ShipName,
		ShipPhone:      o.ShipPhone,
		ShipAddress:    o.ShipAddress,
		ShipWard:       o.ShipWard,
		ShipDistrict:   o.ShipDistrict,
		ShipCity:       o.ShipCity,
		ShipNote:       o.ShipNote,
		CreatedAt:      o.CreatedAt,
		Items:          outItems,
	}
}
