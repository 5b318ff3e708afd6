package model

// カート明細。RedisにJSONで置くだけでDBには保存しない。
// 表示用のName/ImageURLとUnitPriceは追加時点のスナップショットで、
// 確定時の金額計算には使わない（カタログを取り直す）。
type CartLine struct {
	ProductID int64  `json:"product_id"`
	VariantID int64  `json:"variant_id"`
	SellerID  int64  `json:"seller_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
}

// 同一出店者の明細まとめ。1グループ=1注文になる
type SellerGroup struct {
	SellerID int64
	Lines    []CartLine
}
