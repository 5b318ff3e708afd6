package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 出店者ダッシュボード側の注文操作。
// ステータス遷移はここと買い手のキャンセルだけが起点で、
// チェックアウト本体は初期ステータスを決めるだけ。
type SellerOrderUsecase struct {
	tx repo.TransactionManager
}

func NewSellerOrderUsecase(tx repo.TransactionManager) *SellerOrderUsecase {
	return &SellerOrderUsecase{tx: tx}
}

type SellerOrderListInput struct {
	Page   int
	Limit  int
	Status string
	From   *time.Time
	To     *time.Time
}

type SellerOrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *SellerOrderUsecase) ListOrders(ctx context.Context, sellerID int64, in SellerOrderListInput) (SellerOrderListOutput, error) {
	if sellerID <= 0 {
		return SellerOrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 50
	}
	if in.Status != "" && !isKnownStatus(in.Status) {
		return SellerOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out SellerOrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListBySeller(ctx, sellerID, repo.SellerOrderListFilter{
			Page:   in.Page,
			Limit:  in.Limit,
			Status: in.Status,
			From:   in.From,
			To:     in.To,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			lines, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			items = append(items, toOrderOutput(o, lines))
		}

		out = SellerOrderListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}
		return nil
	})

	if err != nil {
		return SellerOrderListOutput{}, err
	}
	return out, nil
}

type UpdateOrderStatusInput struct {
	Status         model.OrderStatus
	TrackingNumber string
}

// UpdateStatus は出店者による遷移（発送・配達・キャンセル・返金）。
// REFUNDEDは決済が確定済み（PAID）の注文にしか適用できない。
// キャンセル時は在庫を戻す。どの遷移も履歴を残す
func (u *SellerOrderUsecase) UpdateStatus(ctx context.Context, sellerID int64, actorID string, orderID int64, in UpdateOrderStatusInput) (OrderOutput, error) {
	if sellerID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !isKnownStatus(string(in.Status)) {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
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
		if o.SellerID != sellerID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if !o.Status.CanTransitionTo(in.Status) {
			return NewHTTPError(http.StatusConflict, "illegal transition")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		switch in.Status {
		case model.OrderStatusRefunded:
			p, err := r.Payments().FindByID(ctx, o.PaymentID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if p.Status != model.PaymentStatusPaid {
				return NewHTTPError(http.StatusConflict, "payment not captured")
			}
			if err := r.Payments().UpdateStatus(ctx, o.PaymentID, model.PaymentStatusRefunded); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		case model.OrderStatusCancelled:
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.VariantID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		case model.OrderStatusShipped:
			if in.TrackingNumber != "" {
				if err := r.Orders().UpdateTrackingNumber(ctx, orderID, in.TrackingNumber); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				o.TrackingNumber = in.TrackingNumber
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, in.Status); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.StatusLogs().Create(ctx, model.OrderStatusLog{
			OrderID:    orderID,
			FromStatus: o.Status,
			ToStatus:   in.Status,
			ActorID:    actorID,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o.Status = in.Status
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func isKnownStatus(s string) bool {
	switch model.OrderStatus(s) {
	case model.OrderStatusPendingPayment, model.OrderStatusPending, model.OrderStatusProcessing,
		model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusCancelled, model.OrderStatusRefunded:
		return true
	}
	return false
}
