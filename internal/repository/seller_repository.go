package repository

import (
	"context"

	"app/internal/domain/model"
)

type SellerRepository interface {
	FindByID(ctx context.Context, sellerID int64) (model.Seller, error)

	// まとめて取得。見つからなかったIDは結果に含まれない
	FindByIDs(ctx context.Context, sellerIDs []int64) ([]model.Seller, error)
}
