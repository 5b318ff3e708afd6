package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// CartUsecase は /cart の業務ロジック。
// カートはRedis置きの一時データで、表示用の名前・画像・追加時点の価格を持つ。
// 確定時の計算には使われない（チェックアウト側がカタログを取り直す）
type CartUsecase struct {
	store    repo.CartStore
	variants repo.VariantRepository
}

func NewCartUsecase(store repo.CartStore, variants repo.VariantRepository) *CartUsecase {
	return &CartUsecase{store: store, variants: variants}
}

type CartResponse struct {
	Items []model.CartLine `json:"items"`
	Total int64            `json:"total"`
}

type AddCartInput struct {
	VariantID int64
	Quantity  int64
}

func (u *CartUsecase) GetCart(ctx context.Context, buyerID string) (CartResponse, error) {
	if buyerID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	lines, err := u.store.Get(ctx, buyerID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	return toCartResponse(lines), nil
}

// AddToCart はカートに追加（同一SKUは数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, buyerID string, in AddCartInput) (CartResponse, error) {
	if buyerID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.VariantID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid variant_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	infos, err := u.variants.FindInfoByIDs(ctx, []int64{in.VariantID})
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(infos) == 0 {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "variant not found")
	}
	info := infos[0]

	lines, err := u.store.Get(ctx, buyerID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	merged := false
	for i := range lines {
		if lines[i].VariantID == in.VariantID {
			lines[i].Quantity += in.Quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, model.CartLine{
			ProductID: info.ProductID,
			VariantID: info.VariantID,
			SellerID:  info.SellerID,
			Name:      info.ProductName,
			ImageURL:  info.ImageURL,
			UnitPrice: info.Price,
			Quantity:  in.Quantity,
		})
	}

	if err := u.store.Save(ctx, buyerID, lines); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	return toCartResponse(lines), nil
}

func (u *CartUsecase) UpdateQuantity(ctx context.Context, buyerID string, variantID int64, qty int64) (CartResponse, error) {
	if buyerID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if qty < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	lines, err := u.store.Get(ctx, buyerID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	found := false
	for i := range lines {
		if lines[i].VariantID == variantID {
			lines[i].Quantity = qty
			found = true
			break
		}
	}
	if !found {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not in cart")
	}

	if err := u.store.Save(ctx, buyerID, lines); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	return toCartResponse(lines), nil
}

func (u *CartUsecase) RemoveItem(ctx context.Context, buyerID string, variantID int64) (CartResponse, error) {
	if buyerID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	lines, err := u.store.Get(ctx, buyerID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	kept := make([]model.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.VariantID != variantID {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(lines) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not in cart")
	}

	if err := u.store.Save(ctx, buyerID, kept); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	return toCartResponse(kept), nil
}

func (u *CartUsecase) ClearCart(ctx context.Context, buyerID string) error {
	if buyerID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.store.Clear(ctx, buyerID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	return nil
}

func toCartResponse(lines []model.CartLine) CartResponse {
	var total int64
	for _, l := range lines {
		total += l.UnitPrice * l.Quantity
	}
	if lines == nil {
		lines = []model.CartLine{}
	}
	return CartResponse{Items: lines, Total: total}
}
