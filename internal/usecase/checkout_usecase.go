package usecase

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// 外部の決済キャプチャへの通知。PREPAIDの注文確定後に呼ぶ
type CaptureRequest struct {
	PaymentID int64   `json:"payment_id"`
	BuyerID   string  `json:"buyer_id"`
	OrderIDs  []int64 `json:"order_ids"`
	Amount    int64   `json:"amount"`
}

type PaymentCaptureNotifier interface {
	NotifyCaptureRequested(ctx context.Context, req CaptureRequest) error
}

type CreatedOrder struct {
	ID          int64             `json:"id"`
	OrderNumber string            `json:"order_number"`
	SellerID    int64             `json:"seller_id"`
	SellerName  string            `json:"seller_name"`
	Total       int64             `json:"total"`
	Status      model.OrderStatus `json:"status"`
}

type CheckoutResult struct {
	Orders      []CreatedOrder `json:"orders"`
	PaymentID   int64          `json:"payment_id"`
	TotalAmount int64          `json:"total_amount"`
}

// CheckoutUsecase はチェックアウト確定の本体。
// 在庫の再チェック・減算・N注文＋1決済の作成を1トランザクションでやる。
// 途中で何か失敗したら全部ロールバック（部分成功は作らない）。
type CheckoutUsecase struct {
	tx          repo.TransactionManager
	sellers     repo.SellerRepository
	carts       repo.CartStore
	notifier    PaymentCaptureNotifier
	logger      zerolog.Logger
	feeRate     decimal.Decimal
	shippingFee int64
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	sellers repo.SellerRepository,
	carts repo.CartStore,
	notifier PaymentCaptureNotifier,
	logger zerolog.Logger,
	feeRate decimal.Decimal,
	shippingFee int64,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:          tx,
		sellers:     sellers,
		carts:       carts,
		notifier:    notifier,
		logger:      logger,
		feeRate:     feeRate,
		shippingFee: shippingFee,
	}
}

func (u *CheckoutUsecase) CommitCheckout(ctx context.Context, buyerID string, lines []model.CartLine, form ShippingForm, method model.PaymentMethod, idemKey string) (CheckoutResult, error) {
	// 入力エラーはI/Oの前に弾く
	if buyerID == "" {
		return CheckoutResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(lines) == 0 {
		return CheckoutResult{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	for _, l := range lines {
		if l.VariantID <= 0 || l.Quantity < 1 {
			return CheckoutResult{}, NewHTTPError(http.StatusBadRequest, "invalid cart line")
		}
	}
	if !method.IsValid() {
		return CheckoutResult{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}
	key := strings.TrimSpace(idemKey)
	if key == "" || len(key) > 255 {
		return CheckoutResult{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	groups := PartitionBySeller(lines)

	// 出店者が全員実在するかをトランザクションの前に確認する。
	// 1人でも消えていたらカートごと拒否（黙って分割成立させるのは危険）
	sellerNames, err := u.resolveSellers(ctx, groups)
	if err != nil {
		return CheckoutResult{}, err
	}

	ids, requested := AggregateRequested(lines)

	var out CheckoutResult
	var replayed bool

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Payments().FindByIdempotencyKey(ctx, buyerID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			replay, err := u.replayResult(ctx, r, existing)
			if err != nil {
				return err
			}
			out = replay
			replayed = true
			return nil
		}

		// SKU行をID昇順でロックして読む（順序を揃えてデッドロック回避）
		sorted := make([]int64, len(ids))
		copy(sorted, ids)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		infos, err := r.Variants().FindInfoByIDsForUpdate(ctx, sorted)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		catalog := infoByID(infos)

		// 確定チェック。事前チェックと同じ関数をロック済みの読みで回す
		if invalid := Shortfalls(ids, requested, catalog, lines); len(invalid) > 0 {
			return &StockConflictError{Items: invalid}
		}

		// SKUごとに合算した数量で1回だけ減算
		for _, id := range ids {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, id, requested[id])
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				// ロック済みなので通常ここには来ない
				info := catalog[id]
				return &StockConflictError{Items: []InvalidItem{{
					VariantID:         id,
					ProductName:       info.ProductName,
					RequestedQuantity: requested[id],
					AvailableStock:    info.Stock,
				}}}
			}
		}

		// 下書きを組んで決済金額を先に確定する
		drafts := make([]OrderDraft, 0, len(groups))
		var totalAmount int64
		for _, g := range groups {
			d := BuildOrderDraft(g, buyerID, form, catalog, u.feeRate, u.shippingFee)
			drafts = append(drafts, d)
			totalAmount += d.Money.Total
		}

		paymentID, err := r.Payments().Create(ctx, model.Payment{
			BuyerID:        buyerID,
			Amount:         totalAmount,
			Method:         method,
			Status:         model.PaymentStatusPending,
			IdempotencyKey: key,
		})
		if err != nil {
			// 同時に同じキーが入った場合はもう一回検索して同じ結果を返す
			ex2, found2, err2 := r.Payments().FindByIdempotencyKey(ctx, buyerID, key)
			if err2 == nil && found2 {
				replay, err3 := u.replayResult(ctx, r, ex2)
				if err3 != nil {
					return err3
				}
				out = replay
				replayed = true
				return nil
			}
			return NewHTTPError(http.StatusBadRequest, "idempotency conflict")
		}

		status := model.InitialOrderStatus(method)
		created := make([]CreatedOrder, 0, len(drafts))

		for _, d := range drafts {
			number := newOrderNumber()
			orderID, err := r.Orders().Create(ctx, draftToOrder(d, paymentID, status, number))
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			items := make([]model.OrderItem, 0, len(d.Lines))
			now := time.Now()
			for _, l := range d.Lines {
				items = append(items, model.OrderItem{
					ProductID:           l.ProductID,
					VariantID:           l.VariantID,
					ProductNameSnapshot: l.ProductNameSnapshot,
					VariantNameSnapshot: l.VariantNameSnapshot,
					UnitPriceSnapshot:   l.UnitPrice,
					Quantity:            l.Quantity,
					Subtotal:            l.LineSubtotal,
					CreatedAt:           now,
				})
			}
			if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			created = append(created, CreatedOrder{
				ID:          orderID,
				OrderNumber: number,
				SellerID:    d.SellerID,
				SellerName:  sellerNames[d.SellerID],
				Total:       d.Money.Total,
				Status:      status,
			})
		}

		out = CheckoutResult{
			Orders:      created,
			PaymentID:   paymentID,
			TotalAmount: totalAmount,
		}
		return nil
	})

	if err != nil {
		return CheckoutResult{}, err
	}

	// リプレイは前回の結果を返すだけ。今回は何も作っていないので
	// カートも通知も触らない（初回のチェックアウト後に足した商品を消さない）
	if replayed {
		return out, nil
	}

	// commit成功後にだけカートを消す。失敗しても注文は成立しているのでログだけ
	if err := u.carts.Clear(ctx, buyerID); err != nil {
		u.logger.Warn().Err(err).Str("buyer_id", buyerID).Msg("failed to clear cart after checkout")
	}

	// PREPAIDは外部キャプチャに回す。通知失敗はwebhook側で回収できるのでログだけ
	if method == model.PaymentMethodPrepaid {
		orderIDs := make([]int64, 0, len(out.Orders))
		for _, o := range out.Orders {
			orderIDs = append(orderIDs, o.ID)
		}
		req := CaptureRequest{
			PaymentID: out.PaymentID,
			BuyerID:   buyerID,
			OrderIDs:  orderIDs,
			Amount:    out.TotalAmount,
		}
		if err := u.notifier.NotifyCaptureRequested(ctx, req); err != nil {
			u.logger.Error().Err(err).Int64("payment_id", out.PaymentID).Msg("failed to publish capture request")
		}
	}

	return out, nil
}

// 出店者IDを名前に解決する。消えている/停止中ならカートごと拒否
func (u *CheckoutUsecase) resolveSellers(ctx context.Context, groups []model.SellerGroup) (map[int64]string, error) {
	ids := make([]int64, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.SellerID)
	}

	sellers, err := u.sellers.FindByIDs(ctx, ids)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	names := make(map[int64]string, len(sellers))
	for _, s := range sellers {
		if s.IsActive {
			names[s.ID] = s.Name
		}
	}
	for _, id := range ids {
		if _, ok := names[id]; !ok {
			return nil, NewHTTPError(http.StatusBadRequest, "seller not available")
		}
	}
	return names, nil
}

// 既存paymentから前回と同じ結果を組み立てる
func (u *CheckoutUsecase) replayResult(ctx context.Context, r repo.TxRepos, payment model.Payment) (CheckoutResult, error) {
	orders, err := r.Orders().ListByPaymentID(ctx, payment.ID)
	if err != nil {
		return CheckoutResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	sellerIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		sellerIDs = append(sellerIDs, o.SellerID)
	}
	sellers, err := u.sellers.FindByIDs(ctx, sellerIDs)
	if err != nil {
		return CheckoutResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	names := make(map[int64]string, len(sellers))
	for _, s := range sellers {
		names[s.ID] = s.Name
	}

	created := make([]CreatedOrder, 0, len(orders))
	for _, o := range orders {
		created = append(created, CreatedOrder{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			SellerID:    o.SellerID,
			SellerName:  names[o.SellerID],
			Total:       o.TotalPrice,
			Status:      o.Status,
		})
	}

	return CheckoutResult{
		Orders:      created,
		PaymentID:   payment.ID,
		TotalAmount: payment.Amount,
	}, nil
}

func draftToOrder(d OrderDraft, paymentID int64, status model.OrderStatus, number string) model.Order {
	return model.Order{
		OrderNumber:    number,
		BuyerID:        d.BuyerID,
		SellerID:       d.SellerID,
		PaymentID:      paymentID,
		Subtotal:       d.Money.Subtotal,
		ShippingFee:    d.Money.ShippingFee,
		PlatformFee:    d.Money.PlatformFee,
		SellerEarnings: d.Money.SellerEarnings,
		TotalPrice:     d.Money.Total,
		Status:         status,
		ShipName:       d.Shipping.Name,
		ShipPhone:      d.Shipping.Phone,
		ShipEmail:      d.Shipping.Email,
		ShipAddress:    d.Shipping.Address,
		ShipWard:       d.Shipping.Ward,
		ShipDistrict:   d.Shipping.District,
		ShipCity:       d.Shipping.City,
		ShipNote:       d.Shipping.Note,
	}
}

// 人が読める注文番号。例: ORD-20260829-7F3A1B2C
func newOrderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return "ORD-" + time.Now().Format("20060102") + "-" + id
}
