package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品一覧の絞り込み条件。
// 型なしのmapを積み上げる代わりに、条件ごとに型を分けてANDで合成する。
// PriceRangeはMin/Maxを1つの条件として持つので、片方がもう片方を
// 上書きする事故が起きない。
type ProductFilter interface {
	isProductFilter()
}

type TextSearch struct {
	Query string
}

type PriceRange struct {
	Min *int64
	Max *int64
}

type SellerEquals struct {
	SellerID int64
}

func (TextSearch) isProductFilter()   {}
func (PriceRange) isProductFilter()   {}
func (SellerEquals) isProductFilter() {}

type ProductListQuery struct {
	Page    int
	Limit   int
	Sort    string // "", "new", "price_asc", "price_desc"
	Filters []ProductFilter
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	ListVariantsByProductID(ctx context.Context, productID int64) ([]model.ProductVariant, error)
	FindVariantByID(ctx context.Context, variantID int64) (model.ProductVariant, error)
}
