package repository

import (
	"context"

	"app/internal/domain/model"
)

// 買い手ごとの一時カート置き場。確定が成功するまで消さない
type CartStore interface {
	Get(ctx context.Context, buyerID string) ([]model.CartLine, error)
	Save(ctx context.Context, buyerID string, lines []model.CartLine) error
	Clear(ctx context.Context, buyerID string) error
}
