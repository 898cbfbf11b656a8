package inventory

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/magacin/internal/db"
	"github.com/erazemk/magacin/internal/model"
	"github.com/erazemk/magacin/internal/store"
)

var fixedNow = time.Date(2025, 3, 5, 9, 30, 0, 0, time.UTC)

type fixture struct {
	db           *sql.DB
	store        *store.Store
	catalog      *Catalog
	reservations *ReservationLedger
	pickups      *PickupLedger
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	st := store.New(database)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, database, "Ana", "", model.RolePickup, "abc123")
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, database, "Brez", "", model.RolePickup, "")
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, database, "Rok", "", model.RoleReservation, "")
	require.NoError(t, err)

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	catalog := NewCatalog(st, nil)
	return &fixture{
		db:           database,
		store:        st,
		catalog:      catalog,
		reservations: NewReservationLedger(catalog, st, opts...),
		pickups:      NewPickupLedger(catalog, NewValidator(st, true), opts...),
	}
}

func (f *fixture) seed(t *testing.T, code string, stock, available int) *model.Item {
	t.Helper()
	item, err := store.CreateItem(context.Background(), f.db, model.Item{
		Code:      code,
		Name:      "Item " + code,
		Project:   "Most",
		Stock:     stock,
		Available: available,
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) reload(t *testing.T, id string) *model.Item {
	t.Helper()
	item, err := f.catalog.Find(context.Background(), id)
	require.NoError(t, err)
	return item
}

func (f *fixture) ledgerCounts(t *testing.T) (reservations, pickups int) {
	t.Helper()
	snap, err := f.store.Snapshot(context.Background())
	require.NoError(t, err)
	return len(snap.Reservations), len(snap.Pickups)
}

// sequence returns a CodeSource replaying suffixes in order, then failing
// the test if drawn again.
func sequence(t *testing.T, suffixes ...string) CodeSource {
	i := 0
	return func(n int) (string, error) {
		if i >= len(suffixes) {
			t.Fatalf("code source exhausted after %d draws", i)
		}
		s := suffixes[i]
		i++
		return s, nil
	}
}
