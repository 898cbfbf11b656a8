package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/magacin/internal/model"
	"github.com/erazemk/magacin/internal/store"
)

func TestCatalogFindMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.Find(context.Background(), "missing")
	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "item", nf.Kind)
}

func TestCatalogFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seed(t, "A", 5, 5)
	f.seed(t, "B", 3, 0)
	f.seed(t, "C", 0, 0)
	_, err := store.CreateItem(ctx, f.db, model.Item{Code: "D", Name: "Loose", Project: "Hala B", Stock: 1, Available: 1})
	require.NoError(t, err)
	_, err = store.CreateItem(ctx, f.db, model.Item{Code: "E", Name: "Unassigned", Stock: 1, Available: 1})
	require.NoError(t, err)

	reservable, err := f.catalog.Reservable(ctx)
	require.NoError(t, err)
	assert.Len(t, reservable, 3)

	pickable, err := f.catalog.Pickable(ctx)
	require.NoError(t, err)
	assert.Len(t, pickable, 4)

	names, err := f.catalog.ProjectNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hala B", "Most"}, names)
}

func TestCatalogAllIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "A", 5, 5)

	first, err := f.catalog.All(ctx)
	require.NoError(t, err)
	second, err := f.catalog.All(ctx)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Stock, second[i].Stock)
		assert.Equal(t, first[i].Available, second[i].Available)
		assert.Equal(t, first[i].Version, second[i].Version)
	}
}

func TestItemChangeDecrements(t *testing.T) {
	tests := []struct {
		name          string
		stock, avail  int
		apply         func(*ItemChange) error
		wantStock     int
		wantAvailable int
		wantField     string
	}{
		{
			name: "available", stock: 10, avail: 10,
			apply:     func(c *ItemChange) error { return c.DecrementAvailable(3) },
			wantStock: 10, wantAvailable: 7,
		},
		{
			name: "stock within unreserved", stock: 10, avail: 7,
			apply:     func(c *ItemChange) error { return c.DecrementStock(2) },
			wantStock: 8, wantAvailable: 7,
		},
		{
			name: "stock into reserved", stock: 10, avail: 7,
			apply:     func(c *ItemChange) error { return c.DecrementStock(5) },
			wantStock: 5, wantAvailable: 5,
		},
		{
			name: "available exhausted", stock: 4, avail: 2,
			apply:     func(c *ItemChange) error { return c.DecrementAvailable(3) },
			wantStock: 4, wantAvailable: 2, wantField: "available",
		},
		{
			name: "stock exhausted", stock: 8, avail: 7,
			apply:     func(c *ItemChange) error { return c.DecrementStock(9) },
			wantStock: 8, wantAvailable: 7, wantField: "stock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change := &ItemChange{item: model.Item{ID: "i", Stock: tt.stock, Available: tt.avail}}
			err := tt.apply(change)

			if tt.wantField != "" {
				var iv *model.InvariantViolation
				require.ErrorAs(t, err, &iv)
				assert.Equal(t, tt.wantField, iv.Field)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantStock, change.Item().Stock)
			assert.Equal(t, tt.wantAvailable, change.Item().Available)
			assert.True(t, change.Item().Consistent())
		})
	}
}

func TestItemChangeRejectsNonPositive(t *testing.T) {
	change := &ItemChange{item: model.Item{Stock: 3, Available: 3}}

	var ve *model.ValidationError
	assert.ErrorAs(t, change.DecrementAvailable(0), &ve)
	assert.ErrorAs(t, change.DecrementStock(-1), &ve)
}
