package repository

import "context"

// チェックアウトで使うSKUの読み取りモデル（productをjoinした形）
type VariantInfo struct {
	VariantID   int64
	ProductID   int64
	SellerID    int64
	ProductName string
	VariantName string
	ImageURL    string
	Price       int64
	Stock       int64
}

type VariantRepository interface {
	// ロックなしの読み取り（事前チェック用）。
	// 削除済みのIDは結果に含まれない＝在庫0扱いにするのは呼び出し側。
	FindInfoByIDs(ctx context.Context, variantIDs []int64) ([]VariantInfo, error)

	// FOR UPDATEで行ロックして読む（確定トランザクション内専用）。
	// デッドロック回避のためID昇順でロックする。
	FindInfoByIDsForUpdate(ctx context.Context, variantIDs []int64) ([]VariantInfo, error)
}
