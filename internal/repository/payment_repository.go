package repository

import (
	"context"

	"app/internal/domain/model"
)

type PaymentRepository interface {
	FindByID(ctx context.Context, paymentID int64) (model.Payment, error)
	Create(ctx context.Context, payment model.Payment) (int64, error)
	UpdateStatus(ctx context.Context, paymentID int64, status model.PaymentStatus) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, buyerID string, key string) (model.Payment, bool, error)
}
