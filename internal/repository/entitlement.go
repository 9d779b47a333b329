package repository

import (
	"context"
	"errors"
	"prepdeck-server/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EntitlementRepository interface {
	// GrantModule records a module purchase. Returns applied=false when the
	// row already existed (an idempotent replay), with no error.
	GrantModule(ctx context.Context, userID, moduleKey, orderID string) (applied bool, err error)
	// GrantGlobal merge-writes global_access (and the legacy is_paid alias)
	// without touching any other field. Returns applied=false when global
	// access was already set.
	GrantGlobal(ctx context.Context, userID string) (applied bool, err error)
	Get(ctx context.Context, userID string) (*model.UserEntitlement, error)
	HasModule(ctx context.Context, userID, moduleKey string) (bool, error)
	ListModules(ctx context.Context, userID string) ([]*model.ModulePurchase, error)
}

type entitlementRepoImpl struct {
	db *gorm.DB
}

func NewEntitlementRepository(db *gorm.DB) EntitlementRepository {
	return &entitlementRepoImpl{
		db: db,
	}
}

func (r *entitlementRepoImpl) GrantModule(ctx context.Context, userID, moduleKey, orderID string) (bool, error) {
	purchase := &model.ModulePurchase{
		UserID:    userID,
		ModuleKey: moduleKey,
		OrderID:   orderID,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_key"}},
		DoNothing: true,
	}).Create(purchase)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *entitlementRepoImpl) GrantGlobal(ctx context.Context, userID string) (bool, error) {
	var applied bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.UserEntitlement{}).
			Where("user_id = ? AND global_access = ?", userID, false).
			Updates(map[string]interface{}{
				"global_access": true,
				"is_paid":       true,
				"updated_at":    time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			applied = true
			return nil
		}

		// Either no record yet, or global access already granted.
		var existing model.UserEntitlement
		err := tx.Where("user_id = ?", userID).First(&existing).Error
		if err == nil {
			return nil // already granted, idempotent no-op
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		applied = true
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"global_access": true,
				"is_paid":       true,
				"updated_at":    time.Now(),
			}),
		}).Create(&model.UserEntitlement{
			UserID:       userID,
			GlobalAccess: true,
			IsPaid:       true,
		}).Error
	})

	return applied, err
}

func (r *entitlementRepoImpl) Get(ctx context.Context, userID string) (*model.UserEntitlement, error) {
	var ent model.UserEntitlement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&ent).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.UserEntitlement{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}

	return &ent, nil
}

func (r *entitlementRepoImpl) HasModule(ctx context.Context, userID, moduleKey string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ModulePurchase{}).
		Where("user_id = ?", userID).
		Where("module_key = ?", moduleKey).
		Count(&count).Error

	return count > 0, err
}

func (r *entitlementRepoImpl) ListModules(ctx context.Context, userID string) ([]*model.ModulePurchase, error) {
	var purchases []*model.ModulePurchase
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&purchases).Error

	if err != nil {
		return nil, err
	}

	return purchases, nil
}
