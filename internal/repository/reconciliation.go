package repository

import (
	"context"
	"prepdeck-server/internal/model"

	"gorm.io/gorm"
)

type ReconciliationRepository interface {
	Record(ctx context.Context, entry *model.ReconciliationEntry) error
	List(ctx context.Context) ([]*model.ReconciliationEntry, error)
}

type reconciliationRepoImpl struct {
	db *gorm.DB
}

func NewReconciliationRepository(db *gorm.DB) ReconciliationRepository {
	return &reconciliationRepoImpl{db: db}
}

func (r *reconciliationRepoImpl) Record(ctx context.Context, entry *model.ReconciliationEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *reconciliationRepoImpl) List(ctx context.Context) ([]*model.ReconciliationEntry, error) {
	var entries []*model.ReconciliationEntry
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Find(&entries).Error

	if err != nil {
		return nil, err
	}

	return entries, nil
}
