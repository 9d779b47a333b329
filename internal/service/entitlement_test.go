package service

import (
	"context"
	"fmt"
	"log/slog"
	"prepdeck-server/internal/apperr"
	"prepdeck-server/internal/model"
	"prepdeck-server/internal/repository"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.UserEntitlement{},
		&model.ModulePurchase{},
		&model.Price{},
		&model.Question{},
		&model.ReconciliationEntry{},
	))

	return db
}

func newEntitlement(t *testing.T) (EntitlementService, *gorm.DB) {
	db := newTestDB(t)
	repo := repository.NewEntitlementRepository(db)
	return NewEntitlementService(repo, slog.New(slog.DiscardHandler)), db
}

func TestGrant_ModuleScopeTouchesOnlyThatModule(t *testing.T) {
	svc, _ := newEntitlement(t)
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, "user-1", model.ScopeModule, "sql_basics", "order_1"))

	ent, purchases, err := svc.GetEntitlements(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ent.GlobalAccess, "module grant must not set global access")
	require.Len(t, purchases, 1)
	assert.Equal(t, "sql_basics", purchases[0].ModuleKey)
}

func TestGrant_TwiceIsANoOp(t *testing.T) {
	svc, _ := newEntitlement(t)
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, "user-1", model.ScopeModule, "sql_basics", "order_1"))
	require.NoError(t, svc.Grant(ctx, "user-1", model.ScopeModule, "sql_basics", "order_1"))

	_, purchases, err := svc.GetEntitlements(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, purchases, 1)
}

func TestGrant_UnknownScopeRejected(t *testing.T) {
	svc, _ := newEntitlement(t)

	err := svc.Grant(context.Background(), "user-1", "weekly", "", "order_1")
	assert.True(t, apperr.IsValidation(err))
}

func TestHasAccess_FreeTierAlwaysAccessible(t *testing.T) {
	svc, _ := newEntitlement(t)

	ok, err := svc.HasAccess(context.Background(), "", model.TierFree, "sql_basics")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAccess_GlobalImpliesAnyModule(t *testing.T) {
	svc, _ := newEntitlement(t)
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, "user-1", model.ScopeGlobal, "", "order_1"))

	for _, key := range []string{"sql_basics", "system_design", "never_purchased"} {
		ok, err := svc.HasAccess(ctx, "user-1", model.TierPaid, key)
		require.NoError(t, err)
		assert.True(t, ok, "module %s", key)
	}
}

func TestHasAccess_PaidTierRequiresEntitlement(t *testing.T) {
	svc, _ := newEntitlement(t)
	ctx := context.Background()

	ok, err := svc.HasAccess(ctx, "user-1", model.TierPaid, "sql_basics")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Grant(ctx, "user-1", model.ScopeModule, "sql_basics", "order_1"))

	ok, err = svc.HasAccess(ctx, "user-1", model.TierPaid, "sql_basics")
	require.NoError(t, err)
	assert.True(t, ok)

	// Anonymous callers never see paid content.
	ok, err = svc.HasAccess(ctx, "", model.TierPaid, "sql_basics")
	require.NoError(t, err)
	assert.False(t, ok)
}
