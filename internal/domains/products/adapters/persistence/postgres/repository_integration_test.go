//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/Apurer/supplychain-tracker/internal/domains/products/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
	"github.com/Apurer/supplychain-tracker/internal/platform/migrations"
	platformpostgres "github.com/Apurer/supplychain-tracker/internal/platform/postgres"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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
	acme      = identity.Reference{ID: "u-maker", DisplayName: "Acme Steel"}
	distActor = identity.Actor{ID: "u-dist", Role: identity.RoleDistributor, DisplayName: "FastFreight"}
	supActor  = identity.Actor{ID: "u-sup", Role: identity.RoleSupplier, DisplayName: "Parts Co"}
)

func newProduct(t *testing.T, id, tracking string) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(id, tracking, "Hex bolt", "Plant 1", acme, time.Now().UTC())
	require.NoError(t, err)
	p.Describe("M8 bolt", "fasteners", "bolts")
	require.NoError(t, p.UpdateStock(100, 0.2))
	p.UpdateSpecifications(domain.Specifications{Material: "steel", Standards: []string{"ISO 4017", "DIN 933"}})
	return p
}

func TestPostgresRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newProduct(t, "p-1", "PRD-00000001"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, created.Metadata.Version)
	assert.False(t, created.Metadata.CreatedAt.IsZero())

	got, err := repo.GetByTrackingNumber(ctx, "PRD-00000001")
	require.NoError(t, err)
	assert.Equal(t, "p-1", got.Entity.ID)
	assert.Equal(t, acme, got.Entity.Manufacturer)
	assert.Equal(t, []string{"ISO 4017", "DIN 933"}, got.Entity.Specifications.Standards)
	require.Len(t, got.Entity.Timeline, 1)
	assert.Equal(t, domain.StatusManufactured, got.Entity.Timeline[0].Status)

	_, err = repo.Create(ctx, newProduct(t, "p-2", "PRD-00000001"))
	assert.ErrorIs(t, err, ports.ErrDuplicate)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPostgresRepository_UpdateIsVersionGuarded(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newProduct(t, "p-1", "PRD-00000001"))
	require.NoError(t, err)

	current, err := repo.GetByID(ctx, "p-1")
	require.NoError(t, err)
	product := current.Entity
	require.NoError(t, product.Transition(supActor, domain.StatusInSupply, "Warehouse", "", time.Now().UTC()))

	updated, err := repo.Update(ctx, product, current.Metadata.Version)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Metadata.Version)
	assert.Equal(t, domain.StatusInSupply, updated.Entity.Status)
	assert.Len(t, updated.Entity.Timeline, 2)

	_, err = repo.Update(ctx, product, current.Metadata.Version)
	assert.ErrorIs(t, err, ports.ErrVersionConflict)

	_, err = repo.Update(ctx, newProduct(t, "ghost", "PRD-GHOST"), 1)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPostgresRepository_RacingWritersOneWins(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	p := newProduct(t, "p-1", "PRD-00000001")
	require.NoError(t, p.Transition(supActor, domain.StatusInSupply, "Warehouse", "", time.Now().UTC()))
	_, err := repo.Create(ctx, p)
	require.NoError(t, err)

	snapshot, err := repo.GetByID(ctx, "p-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			copy := snapshot.Entity.Clone()
			if err := copy.Transition(distActor, domain.StatusInDistribution, "Hub", "", time.Now().UTC()); err != nil {
				results[i] = err
				return
			}
			_, results[i] = repo.Update(ctx, copy, snapshot.Metadata.Version)
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range results {
		if err != nil {
			failures++
			assert.ErrorIs(t, err, ports.ErrVersionConflict)
		}
	}
	assert.Equal(t, 1, failures)

	final, err := repo.GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Len(t, final.Entity.Timeline, 3)
}

func TestPostgresRepository_ListFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	a := newProduct(t, "p-1", "PRD-00000001")
	b := newProduct(t, "p-2", "PRD-00000002")
	b.Describe("", "panels", "")
	require.NoError(t, b.Transition(supActor, domain.StatusInSupply, "Warehouse", "", time.Now().UTC()))
	for _, p := range []*domain.Product{a, b} {
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)
	}

	byStatus, err := repo.List(ctx, ports.ListFilter{Statuses: []domain.Status{domain.StatusInSupply}})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "p-2", byStatus[0].Entity.ID)

	byCategory, err := repo.List(ctx, ports.ListFilter{Category: "fasteners"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	all, err := repo.List(ctx, ports.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPostgresClaimStore_FirstClaimWins(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	store := NewClaimStore(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	wins := make(chan string, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			productID := fmt.Sprintf("p-%d", i)
			owner, won, err := store.Claim(ctx, ports.Claim{Key: "k1", Fingerprint: "h1", ProductID: productID, ClaimedAt: time.Now()})
			assert.NoError(t, err)
			if won {
				wins <- owner.ProductID
			}
		}(i)
	}
	wg.Wait()
	close(wins)
	require.Len(t, wins, 1)
	winner := <-wins

	owner, won, err := store.Claim(ctx, ports.Claim{Key: "k1", Fingerprint: "h2", ProductID: "p-9"})
	require.NoError(t, err)
	assert.False(t, won)
	assert.Equal(t, winner, owner.ProductID)
	assert.Equal(t, "h1", owner.Fingerprint)

	require.NoError(t, store.Release(ctx, "k1", "p-9"))
	_, won, err = store.Claim(ctx, ports.Claim{Key: "k1", ProductID: "p-9"})
	require.NoError(t, err)
	assert.False(t, won, "release by a non-owner keeps the claim")

	require.NoError(t, store.Release(ctx, "k1", winner))
	_, won, err = store.Claim(ctx, ports.Claim{Key: "k1", ProductID: "p-9"})
	require.NoError(t, err)
	assert.True(t, won)
}
