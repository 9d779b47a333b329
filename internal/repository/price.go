package repository

import (
	"context"
	"errors"
	"prepdeck-server/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PriceRepository interface {
	Get(ctx context.Context, key string) (*model.Price, error)
	Upsert(ctx context.Context, price *model.Price) error
}

// ErrPriceNotFound means no price document exists for the key; callers fall
// back to the compiled-in default for the scope.
var ErrPriceNotFound = errors.New("price record not found")

type priceRepoImpl struct {
	db *gorm.DB
}

func NewPriceRepository(db *gorm.DB) PriceRepository {
	return &priceRepoImpl{
		db: db,
	}
}

func (r *priceRepoImpl) Get(ctx context.Context, key string) (*model.Price, error) {
	var price model.Price
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&price).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPriceNotFound
	}
	if err != nil {
		return nil, err
	}

	return &price, nil
}

func (r *priceRepoImpl) Upsert(ctx context.Context, price *model.Price) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"scope":      price.Scope,
			"amount":     price.Amount,
			"currency":   price.Currency,
			"updated_at": time.Now(),
		}),
	}).Create(&price).Error
}
