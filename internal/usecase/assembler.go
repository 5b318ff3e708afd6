package usecase

import (
	"app/internal/domain/model"
	"app/internal/pricing"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// 配送フォーム。検証はvalidator側で済んでいる前提で、ここではコピーするだけ
type ShippingForm struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Ward     string `json:"ward"`
	District string `json:"district"`
	City     string `json:"city"`
	Note     string `json:"note"`
}

type DraftLine struct {
	ProductID           int64
	VariantID           int64
	ProductNameSnapshot string
	VariantNameSnapshot string
	UnitPrice           int64
	Quantity            int64
	LineSubtotal        int64
}

// 1出店者ぶんの注文下書き。保存はしない
type OrderDraft struct {
	SellerID int64
	BuyerID  string
	Lines    []DraftLine
	Money    pricing.Money
	Shipping ShippingForm
}

// BuildOrderDraft は1グループを注文下書きにする。
// 単価と商品名はカートではなくcatalog（確定トランザクション内で読んだ行）から
// スナップショットするので、後からカタログを編集しても過去の注文は変わらない。
func BuildOrderDraft(group model.SellerGroup, buyerID string, form ShippingForm, catalog map[int64]repo.VariantInfo, feeRate decimal.Decimal, shippingFee int64) OrderDraft {
	lines := make([]DraftLine, 0, len(group.Lines))
	priced := make([]pricing.Line, 0, len(group.Lines))

	for _, l := range group.Lines {
		info := catalog[l.VariantID]
		lines = append(lines, DraftLine{
			ProductID:           info.ProductID,
			VariantID:           l.VariantID,
			ProductNameSnapshot: info.ProductName,
			VariantNameSnapshot: info.VariantName,
			UnitPrice:           info.Price,
			Quantity:            l.Quantity,
			LineSubtotal:        pricing.LineSubtotal(info.Price, l.Quantity),
		})
		priced = append(priced, pricing.Line{UnitPrice: info.Price, Quantity: l.Quantity})
	}

	return OrderDraft{
		SellerID: group.SellerID,
		BuyerID:  buyerID,
		Lines:    lines,
		Money:    pricing.Split(priced, feeRate, shippingFee),
		Shipping: form, // 値コピー
	}
}
