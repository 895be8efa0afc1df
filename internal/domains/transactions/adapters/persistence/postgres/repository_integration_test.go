//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/ports"
	"github.com/Apurer/supplychain-tracker/internal/platform/migrations"
	platformpostgres "github.com/Apurer/supplychain-tracker/internal/platform/postgres"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

func setupTransactionsPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("tracker_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := platformpostgres.Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

var (
	seller = identity.Actor{ID: "u-sup", Role: identity.RoleSupplier, DisplayName: "Parts Co"}
	buyer  = identity.Actor{ID: "u-cust", Role: identity.RoleCustomer, DisplayName: "Jane"}
)

func newTransaction(t *testing.T, i int, productName string) *domain.Transaction {
	t.Helper()
	tx, err := domain.NewTransaction(fmt.Sprintf("t-%d", i), fmt.Sprintf("TXN-%08d", i),
		identity.Reference{ID: "p-1", DisplayName: productName},
		domain.Party{Reference: seller.Reference(), Role: seller.Role},
		domain.Party{Reference: buyer.Reference(), Role: buyer.Role},
		5, "", seller.Reference(), time.Now().UTC())
	require.NoError(t, err)
	return tx
}

func TestRepository_CreateUpdateGuarded(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupTransactionsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTransaction(t, 1, "Hex bolt"))
	require.NoError(t, err)

	tx := created.Entity
	require.NoError(t, tx.UpdateStatus(seller, domain.StatusInTransit, "left the dock", time.Now().UTC()))
	updated, err := repo.Update(ctx, tx, created.Metadata.Version)
	require.NoError(t, err)
	assert.Len(t, updated.Entity.Notes, 2)
	assert.Equal(t, identity.RoleCustomer, updated.Entity.To.Role)

	_, err = repo.Update(ctx, tx, created.Metadata.Version)
	assert.ErrorIs(t, err, ports.ErrVersionConflict)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ListFiltersSortsAndPages(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupTransactionsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		name := "Hex bolt"
		if i%2 == 0 {
			name = "Washer"
		}
		_, err := repo.Create(ctx, newTransaction(t, i, name))
		require.NoError(t, err)
	}

	page, total, err := repo.List(ctx, ports.ListFilter{SortBy: ports.SortByCreatedAt, Descending: true, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 2)

	page, total, err = repo.List(ctx, ports.ListFilter{Search: "washer", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, page, 2)

	_, total, err = repo.List(ctx, ports.ListFilter{UserID: "u-cust", Status: domain.StatusPending, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}
