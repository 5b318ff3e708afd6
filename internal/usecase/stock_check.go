package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 在庫不足1件ぶん
type InvalidItem struct {
	VariantID         int64  `json:"variant_id"`
	ProductName       string `json:"product_name"`
	RequestedQuantity int64  `json:"requested_quantity"`
	AvailableStock    int64  `json:"available_stock"`
}

type StockCheckResult struct {
	IsValid      bool          `json:"is_valid"`
	InvalidItems []InvalidItem `json:"invalid_items"`
}

// AggregateRequested はSKUごとの要求数量を合算する。
// 同じSKUが複数行に出てきても1回だけチェック・1回だけ減算するための形。
// 戻りのIDはカート内の初出順。
func AggregateRequested(lines []model.CartLine) ([]int64, map[int64]int64) {
	ids := make([]int64, 0, len(lines))
	requested := make(map[int64]int64, len(lines))

	for _, line := range lines {
		if _, ok := requested[line.VariantID]; !ok {
			ids = append(ids, line.VariantID)
		}
		requested[line.VariantID] += line.Quantity
	}

	return ids, requested
}

// Shortfalls は要求数量と現在庫を突き合わせて不足を列挙する。
// 事前チェックと確定チェックの両方がこれを使う（実装を二重に持たない）。
// availableに無いSKU＝削除済みは在庫0として扱い、名前はカートの表示名で補う。
func Shortfalls(ids []int64, requested map[int64]int64, available map[int64]repo.VariantInfo, lines []model.CartLine) []InvalidItem {
	displayName := make(map[int64]string, len(lines))
	for _, line := range lines {
		if _, ok := displayName[line.VariantID]; !ok {
			displayName[line.VariantID] = line.Name
		}
	}

	invalid := make([]InvalidItem, 0)
	for _, id := range ids {
		want := requested[id]
		info, ok := available[id]
		if !ok {
			invalid = append(invalid, InvalidItem{
				VariantID:         id,
				ProductName:       displayName[id],
				RequestedQuantity: want,
				AvailableStock:    0,
			})
			continue
		}
		if want > info.Stock {
			invalid = append(invalid, InvalidItem{
				VariantID:         id,
				ProductName:       info.ProductName,
				RequestedQuantity: want,
				AvailableStock:    info.Stock,
			})
		}
	}

	return invalid
}

func infoByID(infos []repo.VariantInfo) map[int64]repo.VariantInfo {
	m := make(map[int64]repo.VariantInfo, len(infos))
	for _, info := range infos {
		m[info.VariantID] = info
	}
	return m
}

// StockValidator は支払い前の事前チェック。
// ロックせず読んで即返すだけなので、ここが通っても確定時に落ちることはある。
// 本物のゲートはCheckoutUsecaseのトランザクション内チェック。
type StockValidator struct {
	variants repo.VariantRepository
}

func NewStockValidator(variants repo.VariantRepository) *StockValidator {
	return &StockValidator{variants: variants}
}

func (v *StockValidator) ValidateCart(ctx context.Context, lines []model.CartLine) (StockCheckResult, error) {
	if len(lines) == 0 {
		return StockCheckResult{IsValid: true, InvalidItems: []InvalidItem{}}, nil
	}

	ids, requested := AggregateRequested(lines)

	infos, err := v.variants.FindInfoByIDs(ctx, ids)
	if err != nil {
		return StockCheckResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	invalid := Shortfalls(ids, requested, infoByID(infos), lines)
	return StockCheckResult{
		IsValid:      len(invalid) == 0,
		InvalidItems: invalid,
	}, nil
}
