package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/magacin/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const itemColumns = `id, code, name, project, stock, available, price, location, version, created_at, updated_at`

// CreateItem seeds a new item. Items start with available equal to stock
// unless the caller sets a lower value.
func CreateItem(ctx context.Context, db *sql.DB, item model.Item) (*model.Item, error) {
	if !item.Consistent() {
		return nil, fmt.Errorf("available must be between 0 and stock")
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO items (id, code, name, project, stock, available, price, location, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		id, item.Code, item.Name, item.Project, item.Stock, item.Available, item.Price, item.Location, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items ordered by project, then code.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	return listItems(ctx, db)
}

func listItems(ctx context.Context, q querier) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY project, code`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	err := s.Scan(&item.ID, &item.Code, &item.Name, &item.Project, &item.Stock, &item.Available,
		&item.Price, &item.Location, &item.Version, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// updateQuantities writes the staged quantities of item, provided nobody
// bumped the version since item was read.
func updateQuantities(ctx context.Context, tx *sql.Tx, item model.Item, at time.Time) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE items SET stock = ?, available = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		item.Stock, item.Available, at, item.ID, item.Version,
	)
	if err != nil {
		return fmt.Errorf("updating item quantities: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}
	if n == 0 {
		return &model.ConflictError{ItemID: item.ID, Reason: "item changed since it was read"}
	}
	return nil
}
