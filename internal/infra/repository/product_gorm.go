package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 公開商品のみを、フィルタ/ソート/ページング付きで返す。
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	// 公開（is_active=true）かつ、商品削除されていないものだけ
	tx = tx.Where("is_active = ?", true)

	for _, f := range q.Filters {
		tx = applyFilter(tx, f)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	//sort。価格はSKUの最安値で並べる
	switch q.Sort {
	case "price_asc":
		tx = tx.Order(minPriceExpr + " asc").Order("id asc")
	case "price_desc":
		tx = tx.Order(minPriceExpr + " desc").Order("id desc")
	default:
		tx = tx.Order("created_at desc").Order("id desc")
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Offset(offset).Limit(q.Limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

const minPriceExpr = "(SELECT MIN(v.price) FROM product_variants v WHERE v.product_id = products.id AND v.deleted_at IS NULL)"

// フィルタは型でANDに落とす。PriceRangeは両端が同じ条件に入るので
// minとmaxが互いを上書きする余地がない
func applyFilter(tx *gorm.DB, f repo.ProductFilter) *gorm.DB {
	switch v := f.(type) {
	case repo.TextSearch:
		return tx.Where("name ILIKE ?", "%"+v.Query+"%")
	case repo.PriceRange:
		sub := "EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id AND v.deleted_at IS NULL"
		args := make([]interface{}, 0, 2)
		if v.Min != nil {
			sub += " AND v.price >= ?"
			args = append(args, *v.Min)
		}
		if v.Max != nil {
			sub += " AND v.price <= ?"
			args = append(args, *v.Max)
		}
		sub += ")"
		return tx.Where(sub, args...)
	case repo.SellerEquals:
		return tx.Where("seller_id = ?", v.SellerID)
	default:
		return tx
	}
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) ListVariantsByProductID(ctx context.Context, productID int64) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id asc").
		Find(&variants).Error
	if err != nil {
		return []model.ProductVariant{}, err
	}
	return variants, nil
}

func (r *ProductGormRepository) FindVariantByID(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).First(&v, variantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ProductVariant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ProductVariant{}, err
	}
	return v, nil
}
