package usecase_test

import (
	"testing"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestPartitionBySeller_GroupsAndOrder(t *testing.T) {
	lines := []model.CartLine{
		{VariantID: 1, SellerID: 20, Quantity: 1},
		{VariantID: 2, SellerID: 10, Quantity: 2},
		{VariantID: 3, SellerID: 20, Quantity: 3},
		{VariantID: 4, SellerID: 30, Quantity: 4},
	}

	groups := usecase.PartitionBySeller(lines)

	// グループは初出順
	assert.Equal(t, 3, len(groups))
	assert.Equal(t, int64(20), groups[0].SellerID)
	assert.Equal(t, int64(10), groups[1].SellerID)
	assert.Equal(t, int64(30), groups[2].SellerID)

	// グループ内は入力順のまま
	assert.Equal(t, []model.CartLine{lines[0], lines[2]}, groups[0].Lines)
	assert.Equal(t, []model.CartLine{lines[1]}, groups[1].Lines)
	assert.Equal(t, []model.CartLine{lines[3]}, groups[2].Lines)
}

func TestPartitionBySeller_NoLossNoDuplication(t *testing.T) {
	lines := []model.CartLine{
		{VariantID: 1, SellerID: 1, Quantity: 1},
		{VariantID: 2, SellerID: 2, Quantity: 1},
		{VariantID: 3, SellerID: 1, Quantity: 1},
		{VariantID: 4, SellerID: 3, Quantity: 1},
		{VariantID: 5, SellerID: 2, Quantity: 1},
	}

	groups := usecase.PartitionBySeller(lines)

	total := 0
	seen := map[int64]bool{}
	for _, g := range groups {
		for _, l := range g.Lines {
			total++
			assert.False(t, seen[l.VariantID], "variant %d duplicated", l.VariantID)
			seen[l.VariantID] = true
			assert.Equal(t, g.SellerID, l.SellerID)
		}
	}
	assert.Equal(t, len(lines), total)
}

func TestPartitionBySeller_SingleSeller(t *testing.T) {
	lines := []model.CartLine{
		{VariantID: 1, SellerID: 7},
		{VariantID: 2, SellerID: 7},
	}
	groups := usecase.PartitionBySeller(lines)
	assert.Equal(t, 1, len(groups))
	assert.Equal(t, 2, len(groups[0].Lines))
}

func TestPartitionBySeller_Empty(t *testing.T) {
	assert.Equal(t, 0, len(usecase.PartitionBySeller(nil)))
	assert.Equal(t, 0, len(usecase.PartitionBySeller([]model.CartLine{})))
}
