package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type SellerGormRepository struct {
	db *gorm.DB
}

func NewSellerGormRepository(db *gorm.DB) *SellerGormRepository {
	return &SellerGormRepository{db: db}
}

func (r *SellerGormRepository) FindByID(ctx context.Context, sellerID int64) (model.Seller, error) {
	var s model.Seller
	err := r.db.WithContext(ctx).Where("id = ?", sellerID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Seller{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Seller{}, err
	}
	return s, nil
}

func (r *SellerGormRepository) FindByIDs(ctx context.Context, sellerIDs []int64) ([]model.Seller, error) {
	if len(sellerIDs) == 0 {
		return []model.Seller{}, nil
	}

	var sellers []model.Seller
	err := r.db.WithContext(ctx).
		Where("id IN ?", sellerIDs).
		Find(&sellers).Error
	if err != nil {
		return []model.Seller{}, err
	}
	return sellers, nil
}
