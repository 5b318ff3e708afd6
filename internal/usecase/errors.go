package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 確定時の在庫不足。どの商品が何個足りないかを持つ。
// ユーザーが数量を直して再送すれば通り得るのでリトライ可能扱い（409）
type StockConflictError struct {
	Items []InvalidItem
}

func (e *StockConflictError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		parts = append(parts, fmt.Sprintf("%s (requested %d, available %d)", it.ProductName, it.RequestedQuantity, it.AvailableStock))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}

func AsStockConflictError(err error) (*StockConflictError, bool) {
	var sc *StockConflictError
	ok := errors.As(err, &sc)
	return sc, ok
}

// handlerがHTTPErrorに落とすときのステータス
func (e *StockConflictError) HTTPStatus() int {
	return http.StatusConflict
}
