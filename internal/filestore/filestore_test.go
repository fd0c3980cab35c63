package filestore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adventureworks/storefront/internal/domain/identity"
	"github.com/adventureworks/storefront/internal/domain/order"
	"github.com/adventureworks/storefront/internal/domain/pricing"
)

func newTestOrder(id, ownerID string, createdAt time.Time) *order.Order {
	return &order.Order{
		ID:      id,
		OwnerID: ownerID,
		Items: []pricing.Line{{
			ProductID: "p1",
			Name:      "Widget",
			Quantity:  1,
			UnitPrice: decimal.RequireFromString("10.00"),
			LineTotal: decimal.RequireFromString("10.00"),
		}},
		Shipping:  decimal.Zero,
		Subtotal:  decimal.RequireFromString("10.00"),
		Total:     decimal.RequireFromString("10.00"),
		Status:    order.StatusCreated,
		CreatedAt: createdAt,
	}
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	repo := store.Orders()
	ctx := context.Background()

	o := newTestOrder("o1", "u1", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, o))

	got, err := repo.GetByID(ctx, "o1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)
	assert.True(t, got.Total.Equal(o.Total))
}

func TestOrderRepository_OwnershipIsolation(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	repo := store.Orders()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestOrder("o1", "u1", time.Now().UTC())))

	_, err = repo.GetByID(ctx, "o1", "u2")
	require.ErrorIs(t, err, order.ErrNotFound)

	orders, err := repo.ListByOwner(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderRepository_ListNewestFirst(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	repo := store.Orders()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newTestOrder("oldest", "u1", base)))
	require.NoError(t, repo.Create(ctx, newTestOrder("newest", "u1", base.Add(2*time.Hour))))
	require.NoError(t, repo.Create(ctx, newTestOrder("middle", "u1", base.Add(time.Hour))))

	orders, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "newest", orders[0].ID)
	assert.Equal(t, "middle", orders[1].ID)
	assert.Equal(t, "oldest", orders[2].ID)
}

func TestOrderRepository_ConcurrentCreates(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	repo := store.Orders()
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o := newTestOrder(fmt.Sprintf("o%d", i), "u1", time.Now().UTC())
			assert.NoError(t, repo.Create(ctx, o))
		}()
	}
	wg.Wait()

	orders, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, n, "no create may be lost")
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Orders().Create(ctx, newTestOrder("o1", "u1", time.Now().UTC())))
	require.NoError(t, store.Users().Create(ctx, &identity.User{
		ID:    "u1",
		Email: "jane@example.com",
	}))

	reopened, err := Open(dir)
	require.NoError(t, err)

	got, err := reopened.Orders().GetByID(ctx, "o1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)

	u, err := reopened.Users().GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	repo := store.Users()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &identity.User{ID: "u1", Email: "jane@example.com"}))

	err = repo.Create(ctx, &identity.User{ID: "u2", Email: "JANE@EXAMPLE.COM"})
	require.ErrorIs(t, err, identity.ErrEmailTaken)

	// The failed create must not have been persisted.
	_, err = repo.GetByID(ctx, "u2")
	require.ErrorIs(t, err, identity.ErrNotFound)
}

func TestUserRepository_GetByEmailCaseInsensitive(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	repo := store.Users()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &identity.User{ID: "u1", Email: "Jane@Example.com"}))

	u, err := repo.GetByEmail(ctx, "jane@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}
