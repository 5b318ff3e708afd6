package usecase

import "app/internal/domain/model"

// PartitionBySeller はカートを出店者ごとに分ける。
// グループの並びはカート内で最初に出てきた出店者の順、
// グループ内の明細の並びは入力のまま。行の欠落も重複もしない。
func PartitionBySeller(lines []model.CartLine) []model.SellerGroup {
	groups := make([]model.SellerGroup, 0)
	index := make(map[int64]int)

	for _, line := range lines {
		i, ok := index[line.SellerID]
		if !ok {
			i = len(groups)
			index[line.SellerID] = i
			groups = append(groups, model.SellerGroup{SellerID: line.SellerID})
		}
		groups[i].Lines = append(groups[i].Lines, line)
	}

	return groups
}
