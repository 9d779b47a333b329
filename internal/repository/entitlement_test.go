package repository

import (
	"context"
	"fmt"
	"prepdeck-server/internal/model"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory db alive and
	// serializes concurrent writes.
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

func TestGrantModule_Idempotent(t *testing.T) {
	repo := NewEntitlementRepository(newTestDB(t))
	ctx := context.Background()

	applied, err := repo.GrantModule(ctx, "user-1", "sql_basics", "order_1")
	require.NoError(t, err)
	assert.True(t, applied)

	// Re-applying the same grant is a no-op, not an error.
	applied, err = repo.GrantModule(ctx, "user-1", "sql_basics", "order_1")
	require.NoError(t, err)
	assert.False(t, applied)

	has, err := repo.HasModule(ctx, "user-1", "sql_basics")
	require.NoError(t, err)
	assert.True(t, has)

	purchases, err := repo.ListModules(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, purchases, 1)
}

func TestGrantModule_ReplayWithDifferentOrderIsNoOp(t *testing.T) {
	repo := NewEntitlementRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.GrantModule(ctx, "user-1", "sql_basics", "order_1")
	require.NoError(t, err)

	applied, err := repo.GrantModule(ctx, "user-1", "sql_basics", "order_2")
	require.NoError(t, err)
	assert.False(t, applied)

	purchases, err := repo.ListModules(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, "order_1", purchases[0].OrderID)
}

func TestGrantGlobal_Idempotent(t *testing.T) {
	repo := NewEntitlementRepository(newTestDB(t))
	ctx := context.Background()

	applied, err := repo.GrantGlobal(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.GrantGlobal(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, applied)

	ent, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ent.GlobalAccess)
	assert.True(t, ent.IsPaid, "legacy alias tracks global_access")
}

func TestGrants_DifferentScopesDoNotClobber(t *testing.T) {
	repo := NewEntitlementRepository(newTestDB(t))
	ctx := context.Background()

	// Concurrent grants for different scopes on the same user.
	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = repo.GrantModule(ctx, "user-1", "sql_basics", "order_1")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = repo.GrantGlobal(ctx, "user-1")
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	ent, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ent.GlobalAccess)

	has, err := repo.HasModule(ctx, "user-1", "sql_basics")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestGet_UnknownUserHasNoEntitlements(t *testing.T) {
	repo := NewEntitlementRepository(newTestDB(t))

	ent, err := repo.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, ent.GlobalAccess)
	assert.False(t, ent.IsPaid)
}

func TestPriceRepository_GetAndUpsert(t *testing.T) {
	repo := NewPriceRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Get(ctx, "sql_basics")
	assert.ErrorIs(t, err, ErrPriceNotFound)

	require.NoError(t, repo.Upsert(ctx, &model.Price{
		Key: "sql_basics", Scope: model.ScopeModule, Amount: 149, Currency: "INR",
	}))

	price, err := repo.Get(ctx, "sql_basics")
	require.NoError(t, err)
	assert.Equal(t, 149.0, price.Amount)

	require.NoError(t, repo.Upsert(ctx, &model.Price{
		Key: "sql_basics", Scope: model.ScopeModule, Amount: 199, Currency: "INR",
	}))

	price, err = repo.Get(ctx, "sql_basics")
	require.NoError(t, err)
	assert.Equal(t, 199.0, price.Amount)
}

func TestReconciliationRepository_RecordAndList(t *testing.T) {
	repo := NewReconciliationRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, &model.ReconciliationEntry{
		UserID:    "user-1",
		Scope:     model.ScopeModule,
		ModuleKey: "sql_basics",
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Reason:    "entitlement write exhausted retries after verified payment",
	}))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "order_1", entries[0].OrderID)
}
