package usecase_test

import (
	"context"
	"strings"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	payments   repo.PaymentRepository
	variants   repo.VariantRepository
	inventory  repo.InventoryRepository
	statusLogs repo.OrderStatusLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository              { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository      { return r.orderItems }
func (r *TxReposMock) Payments() repo.PaymentRepository          { return r.payments }
func (r *TxReposMock) Variants() repo.VariantRepository          { return r.variants }
func (r *TxReposMock) Inventory() repo.InventoryRepository       { return r.inventory }
func (r *TxReposMock) StatusLogs() repo.OrderStatusLogRepository { return r.statusLogs }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByBuyerID(ctx context.Context, buyerID string, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, buyerID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) ListByPaymentID(ctx context.Context, paymentID int64) ([]model.Order, error) {
	args := m.Called(ctx, paymentID)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdateTrackingNumber(ctx context.Context, orderID int64, trackingNumber string) error {
	args := m.Called(ctx, orderID, trackingNumber)
	return args.Error(0)
}

func (m *OrderRepoMock) ListBySeller(ctx context.Context, sellerID int64, f repo.SellerOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, sellerID, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type PaymentRepoMock struct{ mock.Mock }

func (m *PaymentRepoMock) FindByID(ctx context.Context, paymentID int64) (model.Payment, error) {
	args := m.Called(ctx, paymentID)
	p, _ := args.Get(0).(model.Payment)
	return p, args.Error(1)
}

func (m *PaymentRepoMock) Create(ctx context.Context, payment model.Payment) (int64, error) {
	args := m.Called(ctx, payment)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PaymentRepoMock) UpdateStatus(ctx context.Context, paymentID int64, status model.PaymentStatus) error {
	args := m.Called(ctx, paymentID, status)
	return args.Error(0)
}

func (m *PaymentRepoMock) FindByIdempotencyKey(ctx context.Context, buyerID string, key string) (model.Payment, bool, error) {
	args := m.Called(ctx, buyerID, key)
	p, _ := args.Get(0).(model.Payment)
	return p, args.Bool(1), args.Error(2)
}

type VariantRepoMock struct{ mock.Mock }

func (m *VariantRepoMock) FindInfoByIDs(ctx context.Context, variantIDs []int64) ([]repo.VariantInfo, error) {
	args := m.Called(ctx, variantIDs)
	infos, _ := args.Get(0).([]repo.VariantInfo)
	return infos, args.Error(1)
}

func (m *VariantRepoMock) FindInfoByIDsForUpdate(ctx context.Context, variantIDs []int64) ([]repo.VariantInfo, error) {
	args := m.Called(ctx, variantIDs)
	infos, _ := args.Get(0).([]repo.VariantInfo)
	return infos, args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error) {
	args := m.Called(ctx, variantID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, variantID int64, qty int64) error {
	args := m.Called(ctx, variantID, qty)
	return args.Error(0)
}

func (m *InventoryRepoMock) SetStockWithAdjustment(ctx context.Context, actorID string, variantID int64, newStock int64, reason string) error {
	args := m.Called(ctx, actorID, variantID, newStock, reason)
	return args.Error(0)
}

type StatusLogRepoMock struct{ mock.Mock }

func (m *StatusLogRepoMock) Create(ctx context.Context, log model.OrderStatusLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *StatusLogRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusLog, error) {
	args := m.Called(ctx, orderID)
	logs, _ := args.Get(0).([]model.OrderStatusLog)
	return logs, args.Error(1)
}

type SellerRepoMock struct{ mock.Mock }

func (m *SellerRepoMock) FindByID(ctx context.Context, sellerID int64) (model.Seller, error) {
	args := m.Called(ctx, sellerID)
	s, _ := args.Get(0).(model.Seller)
	return s, args.Error(1)
}

func (m *SellerRepoMock) FindByIDs(ctx context.Context, sellerIDs []int64) ([]model.Seller, error) {
	args := m.Called(ctx, sellerIDs)
	sellers, _ := args.Get(0).([]model.Seller)
	return sellers, args.Error(1)
}

type CartStoreMock struct{ mock.Mock }

func (m *CartStoreMock) Get(ctx context.Context, buyerID string) ([]model.CartLine, error) {
	args := m.Called(ctx, buyerID)
	lines, _ := args.Get(0).([]model.CartLine)
	return lines, args.Error(1)
}

func (m *CartStoreMock) Save(ctx context.Context, buyerID string, lines []model.CartLine) error {
	args := m.Called(ctx, buyerID, lines)
	return args.Error(0)
}

func (m *CartStoreMock) Clear(ctx context.Context, buyerID string) error {
	args := m.Called(ctx, buyerID)
	return args.Error(0)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) NotifyCaptureRequested(ctx context.Context, req usecase.CaptureRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
