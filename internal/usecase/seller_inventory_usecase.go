package usecase

import (
	"context"
	"net/http"
	"strings"

	repo "app/internal/repository"
)

// 出店者の在庫管理。現在値の設定だけで、チェックアウトの減算とは別経路
type SellerInventoryUsecase struct {
	inventory repo.InventoryRepository
	products  repo.ProductRepository
}

func NewSellerInventoryUsecase(inventory repo.InventoryRepository, products repo.ProductRepository) *SellerInventoryUsecase {
	return &SellerInventoryUsecase{inventory: inventory, products: products}
}

type SetStockInput struct {
	VariantID int64
	NewStock  int64
	Reason    string
}

func (u *SellerInventoryUsecase) SetStock(ctx context.Context, sellerID int64, actorID string, in SetStockInput) error {
	if sellerID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.VariantID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid variant_id")
	}
	if in.NewStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid stock")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" || len(reason) > 255 {
		return NewHTTPError(http.StatusBadRequest, "invalid reason")
	}

	// 自分の商品のSKUかを確認
	v, err := u.products.FindVariantByID(ctx, in.VariantID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	p, err := u.products.FindByID(ctx, v.ProductID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if p.SellerID != sellerID {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}

	if err := u.inventory.SetStockWithAdjustment(ctx, actorID, in.VariantID, in.NewStock, reason); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
