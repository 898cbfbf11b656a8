package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/magacin/internal/model"
)

// Snapshot reads items and both ledgers inside one transaction, so a ledger
// entry is either fully visible (record and quantities) or not at all.
func Snapshot(ctx context.Context, db *sql.DB) (*model.Snapshot, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning snapshot: %w", err)
	}
	defer tx.Rollback()

	items, err := listItems(ctx, tx)
	if err != nil {
		return nil, err
	}
	reservations, err := listReservations(ctx, tx, "")
	if err != nil {
		return nil, err
	}
	pickups, err := listPickups(ctx, tx, "")
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []model.Item{}
	}
	if reservations == nil {
		reservations = []model.Reservation{}
	}
	if pickups == nil {
		pickups = []model.Pickup{}
	}
	return &model.Snapshot{Items: items, Reservations: reservations, Pickups: pickups}, nil
}
