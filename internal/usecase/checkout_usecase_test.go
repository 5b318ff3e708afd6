package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type checkoutFixture struct {
	tx         *TxManagerMock
	sellers    *SellerRepoMock
	carts      *CartStoreMock
	notifier   *NotifierMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	payments   *PaymentRepoMock
	variants   *VariantRepoMock
	inventory  *InventoryRepoMock
	uc         *usecase.CheckoutUsecase
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		tx:         new(TxManagerMock),
		sellers:    new(SellerRepoMock),
		carts:      new(CartStoreMock),
		notifier:   new(NotifierMock),
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		payments:   new(PaymentRepoMock),
		variants:   new(VariantRepoMock),
		inventory:  new(InventoryRepoMock),
	}
	f.tx.Repos = &TxReposMock{
		orders:     f.orders,
		orderItems: f.orderItems,
		payments:   f.payments,
		variants:   f.variants,
		inventory:  f.inventory,
		statusLogs: new(StatusLogRepoMock),
	}
	f.uc = usecase.NewCheckoutUsecase(
		f.tx, f.sellers, f.carts, f.notifier, zerolog.Nop(),
		decimal.RequireFromString("0.02"), 30000,
	)
	return f
}

func validForm() usecase.ShippingForm {
	return usecase.ShippingForm{
		Name:     "Taro Yamada",
		Phone:    "0901234567",
		Email:    "taro@example.com",
		Address:  "123 Nguyen Trai",
		Ward:     "Ward 5",
		District: "District 1",
		City:     "Ho Chi Minh",
	}
}

// =====================
// 入力チェック
// =====================

func TestCommitCheckout_EmptyBuyer(t *testing.T) {
	f := newCheckoutFixture()
	_, err := f.uc.CommitCheckout(context.Background(), "", []model.CartLine{{VariantID: 1, Quantity: 1}}, validForm(), model.PaymentMethodCashOnDelivery, "key-1")
	assertErrContains(t, err, "unauthorized")
}

func TestCommitCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	_, err := f.uc.CommitCheckout(context.Background(), "buyer-1", nil, validForm(), model.PaymentMethodCashOnDelivery, "key-1")
	assertErrContains(t, err, "cart empty")
}

func TestCommitCheckout_InvalidLine(t *testing.T) {
	f := newCheckoutFixture()
	_, err := f.uc.CommitCheckout(context.Background(), "buyer-1", []model.CartLine{{VariantID: 1, Quantity: 0}}, validForm(), model.PaymentMethodCashOnDelivery, "key-1")
	assertErrContains(t, err, "invalid cart line")
}

func TestCommitCheckout_InvalidMethod(t *testing.T) {
	f := newCheckoutFixture()
	_, err := f.uc.CommitCheckout(context.Background(), "buyer-1", []model.CartLine{{VariantID: 1, Quantity: 1}}, validForm(), model.PaymentMethod("BITCOIN"), "key-1")
	assertErrContains(t, err, "invalid payment_method")
}

func TestCommitCheckout_MissingIdempotencyKey(t *testing.T) {
	f := newCheckoutFixture()
	_, err := f.uc.CommitCheckout(context.Background(), "buyer-1", []model.CartLine{{VariantID: 1, Quantity: 1}}, validForm(), model.PaymentMethodCashOnDelivery, "  ")
	assertErrContains(t, err, "invalid idempotency_key")
}

// =====================
// 出店者の実在チェック（トランザクション前）
// =====================

func TestCommitCheckout_MissingSellerRejectsWholeCart(t *testing.T) {
	f := newCheckoutFixture()

	lines := []model.CartLine{
		{VariantID: 100, SellerID: 10, Quantity: 1},
		{VariantID: 200, SellerID: 99, Quantity: 1}, // 消えた出店者
	}

	f.sellers.On("FindByIDs", mock.Anything, []int64{10, 99}).Return([]model.Seller{
		{ID: 10, Name: "Shop A", IsActive: true},
	}, nil)

	_, err := f.uc.CommitCheckout(context.Background(), "buyer-1", lines, validForm(), model.PaymentMethodCashOnDelivery, "key-1")
	assertErrContains(t, err, "seller not available")

	// 片方だけ成立させない。トランザクション自体始めない
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestCommitCheckout_InactiveSellerRejected(t *testing.T) {
	f := newCheckoutFixture()

	lines := []model.CartLine{{VariantID: 100, SellerID: 10, Quantity: 1}}
	f.sellers.On("FindByIDs", mock.Anything, []int64{10}).Return([]model.Seller{
		{ID: 10, Name: "Shop A", IsActive: false},
	}, nil)

	_, err := f.uc.CommitCheckout(context.Background(), "buyer-1", lines, validForm(), model.PaymentMethodCashOnDelivery, "key-1")
	assertErrContains(t, err, "seller not available")
}

// =====================
// 成功パス
// =====================

func TestCommitCheckout_MultiSellerSuccess(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	lines := []model.CartLine{
		{ProductID: 1, VariantID: 100, SellerID: 10, Name: "Tea", Quantity: 2},
		{ProductID: 2, VariantID: 200, SellerID: 20, Name: "Mug", Quantity: 1},
	}

	f.sellers.On("FindByIDs", mock.Anything, []int64{10, 20}).Return([]model.Seller{
		{ID: 10, Name: "Shop A", IsActive: true},
		{ID: 20, Name: "Shop B", IsActive: true},
	}, nil)

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.payments.On("FindByIdempotencyKey", mock.Anything, "buyer-1", "key-1").Return(model.Payment{}, false, nil)

	// ロック読みはID昇順
	f.variants.On("FindInfoByIDsForUpdate", mock.Anything, []int64{100, 200}).Return([]repo.VariantInfo{
		{VariantID: 100, ProductID: 1, SellerID: 10, ProductName: "Tea", VariantName: "500g", Price: 50000, Stock: 5},
		{VariantID: 200, ProductID: 2, SellerID: 20, ProductName: "Mug", VariantName: "White", Price: 10000, Stock: 3},
	}, nil)

	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(true, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(200), int64(1)).Return(true, nil)

	// 決済は全注文の合計: 130,000 + 40,000
	f.payments.On("Create", mock.Anything, mock.MatchedBy(func(p model.Payment) bool {
		return p.BuyerID == "buyer-1" &&
			p.Amount == 170000 &&
			p.Method == model.PaymentMethodCashOnDelivery &&
			p.Status == model.PaymentStatusPending &&
			p.IdempotencyKey == "key-1"
	})).Return(int64(900), nil)

	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.SellerID == 10 &&
			o.PaymentID == 900 &&
			o.Subtotal == 100000 &&
			o.PlatformFee == 2000 &&
			o.SellerEarnings == 98000 &&
			o.TotalPrice == 130000 &&
			o.Status == model.OrderStatusPending &&
			o.ShipName == "Taro Yamada"
	})).Return(int64(501), nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.SellerID == 20 &&
			o.PaymentID == 900 &&
			o.Subtotal == 10000 &&
			o.PlatformFee == 200 &&
			o.SellerEarnings == 9800 &&
			o.TotalPrice == 40000
	})).Return(int64(502), nil)

	f.orderItems.On("CreateBulk", mock.Anything, int64(501), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 && items[0].VariantID == 100 && items[0].UnitPriceSnapshot == 50000 && items[0].Subtotal == 100000
	})).Return(nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(502), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 && items[0].VariantID == 200 && items[0].UnitPriceSnapshot == 10000
	})).Return(nil)

	f.carts.On("Clear", mock.Anything, "buyer-1").Return(nil)

	out, err := f.uc.CommitCheckout(ctx, "buyer-1", lines, validForm(), model.PaymentMethodCashOnDelivery, "key-1")
	assert.NoError(t, err)

	assert.Equal(t, int64(900), out.PaymentID)
	assert.Equal(t, int64(170000), out.TotalAmount)
	assert.Equal(t, 2, len(out.Orders))
	assert.Equal(t, "Shop A", out.Orders[0].SellerName)
	assert.Equal(t, "Shop B", out.Orders[1].SellerName)
	assert.Equal(t, model.OrderStatusPending, out.Orders[0].Status)
	assert.NotEmpty(t, out.Orders[0].OrderNumber)

	// 代引きはキャプチャ通知しない
	f.notifier.AssertNotCalled(t, "NotifyCaptureRequested", mock.Anything, mock.Anything)

	f.payments.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.orderItems.AssertExpectations(t)
	f.inventory.AssertExpectations(t)
	f.carts.AssertExpectations(t)
}

func TestCommitCheckout_PrepaidStartsPendingPaymentAndNotifies(t *testing.T) {
	f := newCheckoutFixture()

	lines := []model.CartLine{{ProductID: 1, VariantID: 100, SellerID: 10, Quantity: 1}}

	f.sellers.On("FindByIDs", mock.Anything, []int64{10}).Return([]model.Seller{{ID: 10, Name: "Shop A", IsActive: true}}, nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.payments.On("FindByIdempotencyKey", mock.Anything, "buyer-1", "key-1").Return(model.Payment{}, false, nil)
	f.variants.On("FindInfoByIDsForUpdate", mock.Anything, []int64{100}).Return([]repo.VariantInfo{
		{VariantID: 100, ProductID: 1, SellerID: 10, ProductName: "Tea", Price: 10000, Stock: 1},
	}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(1)).Return(true, nil)
	f.payments.On("Create", mock.Anything, mock.Anything).Return(int64(901), nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.Status == model.OrderStatusPendingPayment
	})).Return(int64(600), nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(600), mock.Anything).Return(nil)
	f.carts.On("Clear", mock.Anything, "buyer-1").Return(nil)

	f.notifier.On("NotifyCaptureRequested", mock.Anything, usecase.CaptureRequest{
		PaymentID: 901,
		BuyerID:   "buyer-1",
		OrderIDs:  []int64{600},
		Amount:    40000,
	}).Return(nil)

	out, err := f.uc.CommitCheckout(context.Background(), "buyer-1", lines, validForm(), model.PaymentMethodPrepaid, "key-1")
	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusPendingPayment, out.Orders[0].Status)

	f.notifier.AssertExpectations(t)
}

// =====================
// 在庫不足
// =====================

func TestCommitCheckout_StockConflictAbortsEverything(t *testing.T) {
	f := newCheckoutFixture()

	lines := []model.CartLine{
		{ProductID: 1, VariantID: 100, SellerID: 10, Name: "Tea", Quantity: 5},
		{ProductID: 2, VariantID: 200, SellerID: 20, Name: "Mug", Quantity: 1},
	}

	f.sellers.On("FindByIDs", mock.Anything, []int64{10, 20}).Return([]model.Seller{
		{ID: 10, Name: "Shop A", IsActive: true},
		{ID: 20, Name: "Shop B", IsActive: true},
	}, nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.payments.On("FindByIdempotencyKey", mock.Anything, "buyer-1", "key-1").Return(model.Payment{}, false, nil)
	f.variants.On("FindInfoByIDsForUpdate", mock.Anything, []int64{100, 200}).Return([]repo.VariantInfo{
		{VariantID: 100, ProductName: "Tea", Price: 10000, Stock: 3},
		{VariantID: 200, ProductName: "Mug", Price: 5000, Stock: 10},
	}, nil)

	_, err := f.uc.CommitCheckout(context.Background(), "buyer-1", lines, validForm(), model.PaymentMethodCashOnDelivery, "key-1")

	sc, ok := usecase.AsStockConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, 1, len(sc.Items))
	assert.Equal(t, int64(100), sc.Items[0].VariantID)
	assert.Equal(t, int64(5), sc.Items[0].RequestedQuantity)
	assert.Equal(t, int64(3), sc.Items[0].AvailableStock)

	// 片方の出店者だけの注文も作らない。減算もカート削除もしない
	f.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestCommitCheckout_DecreaseRaceReportsConflict(t *testing.T) {
	f := newCheckoutFixture()

	lines := []model.CartLine{{ProductID: 1, VariantID: 100, SellerID: 10, Name: "Tea", Quantity: 2}}

	f.sellers.On("FindByIDs", mock.Anything, []int64{10}).Return([]model.Seller{{ID: 10, Name: "Shop A", IsActive: true}}, nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.payments.On("FindByIdempotencyKey", mock.Anything, "buyer-1", "key-1").Return(model.Payment{}, false, nil)
	f.variants.On("FindInfoByIDsForUpdate", mock.Anything, []int64{100}).Return([]repo.VariantInfo{
		{VariantID: 100, ProductName: "Tea", Price: 10000, Stock: 2},
	}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(false, nil)

	_, err := f.uc.CommitCheckout(context.Background(), "buyer-1", lines, validForm(), model.PaymentMethodCashOnDelivery, "key-1")

	_, ok := usecase.AsStockConflictError(err)
	assert.True(t, ok)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// =====================
// 冪等性
// =====================

func TestCommitCheckout_ReplaySameKeyReturnsSameResult(t *testing.T) {
	f := newCheckoutFixture()

	lines := []model.CartLine{{ProductID: 1, VariantID: 100, SellerID: 10, Quantity: 1}}

	f.sellers.On("FindByIDs", mock.Anything, []int64{10}).Return([]model.Seller{{ID: 10, Name: "Shop A", IsActive: true}}, nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	f.payments.On("FindByIdempotencyKey", mock.Anything, "buyer-1", "key-1").Return(model.Payment{
		ID: 900, BuyerID: "buyer-1", Amount: 40000, Method: model.PaymentMethodCashOnDelivery,
	}, true, nil)
	f.orders.On("ListByPaymentID", mock.Anything, int64(900)).Return([]model.Order{
		{ID: 501, OrderNumber: "ORD-20260829-AAAA1111", SellerID: 10, TotalPrice: 40000, Status: model.OrderStatusPending},
	}, nil)

	out, err := f.uc.CommitCheckout(context.Background(), "buyer-1", lines, validForm(), model.PaymentMethodCashOnDelivery, "key-1")
	assert.NoError(t, err)

	assert.Equal(t, int64(900), out.PaymentID)
	assert.Equal(t, int64(40000), out.TotalAmount)
	assert.Equal(t, "ORD-20260829-AAAA1111", out.Orders[0].OrderNumber)

	// 2回目は何も作らない・減らさない
	f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.variants.AssertNotCalled(t, "FindInfoByIDsForUpdate", mock.Anything, mock.Anything)
	f.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)

	// 今回commitしたわけではないのでカートは消さない
	// （初回のチェックアウト後に追加された商品が消えてしまう）
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

// PREPAIDのリプレイでもキャプチャ要求を二重に流さない
func TestCommitCheckout_ReplayDoesNotRepublishCapture(t *testing.T) {
	f := newCheckoutFixture()

	lines := []model.CartLine{{ProductID: 1, VariantID: 100, SellerID: 10, Quantity: 1}}

	f.sellers.On("FindByIDs", mock.Anything, []int64{10}).Return([]model.Seller{{ID: 10, Name: "Shop A", IsActive: true}}, nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	f.payments.On("FindByIdempotencyKey", mock.Anything, "buyer-1", "key-1").Return(model.Payment{
		ID: 901, BuyerID: "buyer-1", Amount: 40000, Method: model.PaymentMethodPrepaid,
	}, true, nil)
	f.orders.On("ListByPaymentID", mock.Anything, int64(901)).Return([]model.Order{
		{ID: 600, SellerID: 10, TotalPrice: 40000, Status: model.OrderStatusPendingPayment},
	}, nil)

	out, err := f.uc.CommitCheckout(context.Background(), "buyer-1", lines, validForm(), model.PaymentMethodPrepaid, "key-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(901), out.PaymentID)

	f.notifier.AssertNotCalled(t, "NotifyCaptureRequested", mock.Anything, mock.Anything)
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}
