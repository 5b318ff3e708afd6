package validator

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"app/internal/usecase"
)

// 配送フォームの入力検証。フィールド名→メッセージで返す。
// ここを通った構造体をusecase側は信用してそのままスナップショットする
func ValidateShippingForm(f usecase.ShippingForm) map[string]string {
	errs := make(map[string]string)

	name := strings.TrimSpace(f.Name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		errs["name"] = "name must be 2-100 characters"
	}

	if !isTenDigits(f.Phone) {
		errs["phone"] = "phone must be exactly 10 digits"
	}

	if _, err := mail.ParseAddress(f.Email); err != nil {
		errs["email"] = "invalid email"
	}

	addr := strings.TrimSpace(f.Address)
	if n := utf8.RuneCountInString(addr); n < 5 || n > 200 {
		errs["address"] = "address must be 5-200 characters"
	}

	checkRegion(errs, "ward", f.Ward)
	checkRegion(errs, "district", f.District)
	checkRegion(errs, "city", f.City)

	if utf8.RuneCountInString(f.Note) > 500 {
		errs["note"] = "note must be at most 500 characters"
	}

	return errs
}

func checkRegion(errs map[string]string, field string, v string) {
	v = strings.TrimSpace(v)
	if n := utf8.RuneCountInString(v); n < 1 || n > 50 {
		errs[field] = field + " must be 1-50 characters"
	}
}

func isTenDigits(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
