package pricing

import "github.com/shopspring/decimal"

// 1行ぶんの(単価, 数量)
type Line struct {
	UnitPrice int64
	Quantity  int64
}

// 1注文の金額内訳。通貨は整数（端数なし）
type Money struct {
	Subtotal       int64 `json:"subtotal"`
	ShippingFee    int64 `json:"shipping_fee"`
	PlatformFee    int64 `json:"platform_fee"`
	SellerEarnings int64 `json:"seller_earnings"`
	Total          int64 `json:"total"`
}

// Split は1出店者グループの金額を確定する。
// PlatformFee は subtotal×rate を四捨五入、SellerEarnings は必ず引き算で出す。
// 両方を別々に丸めると PlatformFee+SellerEarnings != Subtotal になり得るため。
func Split(lines []Line, rate decimal.Decimal, shippingFee int64) Money {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.UnitPrice * l.Quantity
	}

	// Round(0)は正の値に対して四捨五入（half up）
	fee := decimal.NewFromInt(subtotal).Mul(rate).Round(0).IntPart()

	return Money{
		Subtotal:       subtotal,
		ShippingFee:    shippingFee,
		PlatformFee:    fee,
		SellerEarnings: subtotal - fee,
		Total:          subtotal + shippingFee,
	}
}

// LineSubtotal は明細小計
func LineSubtotal(unitPrice int64, qty int64) int64 {
	return unitPrice * qty
}
