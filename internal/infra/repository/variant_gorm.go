package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VariantGormRepository struct {
	db *gorm.DB
}

func NewVariantGormRepository(db *gorm.DB) *VariantGormRepository {
	return &VariantGormRepository{db: db}
}

// productをjoinした読み取りモデルに詰める。
// 商品側が削除/非公開になったSKUは返さない（呼び出し側で在庫0扱い）
func (r *VariantGormRepository) FindInfoByIDs(ctx context.Context, variantIDs []int64) ([]repo.VariantInfo, error) {
	return r.findInfo(ctx, variantIDs, false)
}

// FOR UPDATEで行ロック。確定トランザクション内からのみ呼ぶこと
func (r *VariantGormRepository) FindInfoByIDsForUpdate(ctx context.Context, variantIDs []int64) ([]repo.VariantInfo, error) {
	return r.findInfo(ctx, variantIDs, true)
}

func (r *VariantGormRepository) findInfo(ctx context.Context, variantIDs []int64, lock bool) ([]repo.VariantInfo, error) {
	if len(variantIDs) == 0 {
		return []repo.VariantInfo{}, nil
	}

	q := r.db.WithContext(ctx).
		Model(&model.ProductVariant{}).
		Select(`product_variants.id AS variant_id,
			product_variants.product_id,
			products.seller_id,
			products.name AS product_name,
			product_variants.name AS variant_name,
			products.image_url,
			product_variants.price,
			product_variants.stock`).
		Joins("JOIN products ON products.id = product_variants.product_id AND products.deleted_at IS NULL").
		Where("product_variants.id IN ?", variantIDs).
		Where("products.is_active = ?", true).
		Order("product_variants.id asc")

	if lock {
		// joinした行はロックせず、在庫を持つSKU行だけロックする
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "product_variants"}})
	}

	var infos []repo.VariantInfo
	if err := q.Scan(&infos).Error; err != nil {
		return []repo.VariantInfo{}, err
	}
	return infos, nil
}
