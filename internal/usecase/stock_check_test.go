package usecase_test

import (
	"context"
	"errors"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAggregateRequested_MergesDuplicates(t *testing.T) {
	lines := []model.CartLine{
		{VariantID: 5, Quantity: 2},
		{VariantID: 7, Quantity: 1},
		{VariantID: 5, Quantity: 3},
	}

	ids, requested := usecase.AggregateRequested(lines)

	// IDは初出順、数量は合算
	assert.Equal(t, []int64{5, 7}, ids)
	assert.Equal(t, int64(5), requested[5])
	assert.Equal(t, int64(1), requested[7])
}

func TestShortfalls_AllSufficient(t *testing.T) {
	lines := []model.CartLine{{VariantID: 1, Quantity: 2, Name: "Tea"}}
	ids, requested := usecase.AggregateRequested(lines)
	available := map[int64]repo.VariantInfo{
		1: {VariantID: 1, ProductName: "Tea", Stock: 2},
	}

	assert.Empty(t, usecase.Shortfalls(ids, requested, available, lines))
}

func TestShortfalls_Insufficient(t *testing.T) {
	lines := []model.CartLine{{VariantID: 1, Quantity: 5, Name: "Tea"}}
	ids, requested := usecase.AggregateRequested(lines)
	available := map[int64]repo.VariantInfo{
		1: {VariantID: 1, ProductName: "Green Tea", Stock: 3},
	}

	invalid := usecase.Shortfalls(ids, requested, available, lines)
	assert.Equal(t, 1, len(invalid))
	assert.Equal(t, int64(1), invalid[0].VariantID)
	assert.Equal(t, "Green Tea", invalid[0].ProductName)
	assert.Equal(t, int64(5), invalid[0].RequestedQuantity)
	assert.Equal(t, int64(3), invalid[0].AvailableStock)
}

// 同一SKUが複数行でも合算後の数量で1回だけ判定する
func TestShortfalls_DuplicateLinesCheckedOnce(t *testing.T) {
	lines := []model.CartLine{
		{VariantID: 1, Quantity: 2, Name: "Tea"},
		{VariantID: 1, Quantity: 2, Name: "Tea"},
	}
	ids, requested := usecase.AggregateRequested(lines)
	available := map[int64]repo.VariantInfo{
		1: {VariantID: 1, ProductName: "Tea", Stock: 3},
	}

	invalid := usecase.Shortfalls(ids, requested, available, lines)
	assert.Equal(t, 1, len(invalid))
	assert.Equal(t, int64(4), invalid[0].RequestedQuantity)
}

// 削除済みSKUは在庫0として報告する。名前はカートの表示名で補う
func TestShortfalls_MissingVariantTreatedAsZeroStock(t *testing.T) {
	lines := []model.CartLine{{VariantID: 9, Quantity: 1, Name: "Old Item"}}
	ids, requested := usecase.AggregateRequested(lines)

	invalid := usecase.Shortfalls(ids, requested, map[int64]repo.VariantInfo{}, lines)
	assert.Equal(t, 1, len(invalid))
	assert.Equal(t, "Old Item", invalid[0].ProductName)
	assert.Equal(t, int64(0), invalid[0].AvailableStock)
}

func TestStockValidator_EmptyCartIsValid(t *testing.T) {
	variants := new(VariantRepoMock)
	v := usecase.NewStockValidator(variants)

	result, err := v.ValidateCart(context.Background(), nil)
	assert.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.InvalidItems)
	variants.AssertNotCalled(t, "FindInfoByIDs", mock.Anything, mock.Anything)
}

func TestStockValidator_ReportsAllShortfalls(t *testing.T) {
	variants := new(VariantRepoMock)
	lines := []model.CartLine{
		{VariantID: 1, Quantity: 5, Name: "Tea"},
		{VariantID: 2, Quantity: 1, Name: "Coffee"},
		{VariantID: 3, Quantity: 2, Name: "Sugar"},
	}

	variants.On("FindInfoByIDs", mock.Anything, []int64{1, 2, 3}).Return([]repo.VariantInfo{
		{VariantID: 1, ProductName: "Tea", Stock: 3},
		{VariantID: 2, ProductName: "Coffee", Stock: 10},
		{VariantID: 3, ProductName: "Sugar", Stock: 0},
	}, nil)

	v := usecase.NewStockValidator(variants)
	result, err := v.ValidateCart(context.Background(), lines)

	assert.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, 2, len(result.InvalidItems))
	assert.Equal(t, int64(1), result.InvalidItems[0].VariantID)
	assert.Equal(t, int64(3), result.InvalidItems[1].VariantID)
	variants.AssertExpectations(t)
}

func TestStockValidator_DBError(t *testing.T) {
	variants := new(VariantRepoMock)
	variants.On("FindInfoByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	v := usecase.NewStockValidator(variants)
	_, err := v.ValidateCart(context.Background(), []model.CartLine{{VariantID: 1, Quantity: 1}})
	assertErrContains(t, err, "db error")
}
