package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/erazemk/magacin/internal/model"
)

// Catalog holds item quantity state. Quantities change only through an
// ItemChange staged inside Update.
type Catalog struct {
	store  ItemStore
	locker Locker
}

// NewCatalog returns a catalog over store. A nil locker selects an
// in-process LocalLocker.
func NewCatalog(store ItemStore, locker Locker) *Catalog {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Catalog{store: store, locker: locker}
}

// Find returns the item with the given ID.
func (c *Catalog) Find(ctx context.Context, itemID string) (*model.Item, error) {
	item, err := c.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("finding item: %w", err)
	}
	if item == nil {
		return nil, &model.NotFoundError{Kind: "item", ID: itemID}
	}
	return item, nil
}

// All returns every item in the catalog.
func (c *Catalog) All(ctx context.Context) ([]model.Item, error) {
	items, err := c.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// Reservable returns the items with unreserved quantity left.
func (c *Catalog) Reservable(ctx context.Context) ([]model.Item, error) {
	return c.filter(ctx, func(i model.Item) bool { return i.Available > 0 })
}

// Pickable returns the items with physical stock left.
func (c *Catalog) Pickable(ctx context.Context) ([]model.Item, error) {
	return c.filter(ctx, func(i model.Item) bool { return i.Stock > 0 })
}

func (c *Catalog) filter(ctx context.Context, keep func(model.Item) bool) ([]model.Item, error) {
	items, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	out := []model.Item{}
	for _, i := range items {
		if keep(i) {
			out = append(out, i)
		}
	}
	return out, nil
}

// ProjectNames returns the distinct project names items are attached to,
// sorted.
func (c *Catalog) ProjectNames(ctx context.Context) ([]string, error) {
	items, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	names := []string{}
	for _, i := range items {
		if i.Project == "" || seen[i.Project] {
			continue
		}
		seen[i.Project] = true
		names = append(names, i.Project)
	}
	sort.Strings(names)
	return names, nil
}

// Update locks the item, reads it and passes a staged change to fn. fn is
// expected to apply its decrements and commit the staged item together with
// its ledger record. The lock is held until fn returns.
func (c *Catalog) Update(ctx context.Context, itemID string, fn func(*ItemChange) error) error {
	unlock, err := c.locker.Lock(ctx, itemID)
	if err != nil {
		return err
	}
	defer unlock()

	item, err := c.Find(ctx, itemID)
	if err != nil {
		return err
	}
	return fn(&ItemChange{item: *item})
}

// ItemChange is a staged mutation of one item.
type ItemChange struct {
	item model.Item
}

// Item returns the staged item. Its Version is still the version that was
// read, so a commit can detect concurrent writers.
func (c *ItemChange) Item() model.Item {
	return c.item
}

// DecrementAvailable holds qty units of the item's unreserved quantity.
func (c *ItemChange) DecrementAvailable(qty int) error {
	if qty <= 0 {
		return model.Invalid("quantity", "must be a positive integer")
	}
	if c.item.Available < qty {
		return &model.InvariantViolation{ItemID: c.item.ID, Field: "available", Have: c.item.Available, Need: qty}
	}
	c.item.Available -= qty
	return nil
}

// DecrementStock removes qty units of physical stock. Available is lowered
// with it when the remaining stock could no longer cover it.
func (c *ItemChange) DecrementStock(qty int) error {
	if qty <= 0 {
		return model.Invalid("quantity", "must be a positive integer")
	}
	if c.item.Stock < qty {
		return &model.InvariantViolation{ItemID: c.item.ID, Field: "stock", Have: c.item.Stock, Need: qty}
	}
	c.item.Stock -= qty
	if c.item.Available > c.item.Stock {
		c.item.Available = c.item.Stock
	}
	return nil
}
