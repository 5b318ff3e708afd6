package repository

import "context"

type InventoryRepository interface {
	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, variantID int64, qty int64) error

	// 在庫の現在値を設定＋調整履歴作成
	SetStockWithAdjustment(ctx context.Context, actorID string, variantID int64, newStock int64, reason string) error
}
