package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/magacin/internal/model"
)

// CommitReservation writes the item's new quantities and appends the
// reservation in a single transaction.
func CommitReservation(ctx context.Context, db *sql.DB, item model.Item, r *model.Reservation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updateQuantities(ctx, tx, item, r.ReservedAt); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reservations (id, item_id, quantity, reserved_by, reservation_code, notes, reserved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ItemID, r.Quantity, r.ReservedBy, r.ReservationCode, nullString(r.Notes), r.ReservedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "reservations.reservation_code") {
			return &model.ConflictError{ItemID: item.ID, Reason: "reservation code already issued"}
		}
		return fmt.Errorf("recording reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reservation: %w", err)
	}
	return nil
}

// CommitPickup writes the item's new quantities and appends the pickup in a
// single transaction.
func CommitPickup(ctx context.Context, db *sql.DB, item model.Item, p *model.Pickup) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updateQuantities(ctx, tx, item, p.PickedUpAt); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pickups (id, item_id, quantity, picked_up_by, confirmation_code, notes, picked_up_at, confirmed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ItemID, p.Quantity, p.PickedUpBy, nullString(p.ConfirmationCode), nullString(p.Notes),
		p.PickedUpAt, p.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("recording pickup: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing pickup: %w", err)
	}
	return nil
}

// ReservationCodeExists reports whether code was already issued.
func ReservationCodeExists(ctx context.Context, db *sql.DB, code string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE reservation_code = ?`, code,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking reservation code: %w", err)
	}
	return count > 0, nil
}

// ListReservations returns reservations newest first, optionally for one item.
func ListReservations(ctx context.Context, db *sql.DB, itemID string) ([]model.Reservation, error) {
	return listReservations(ctx, db, itemID)
}

func listReservations(ctx context.Context, q querier, itemID string) ([]model.Reservation, error) {
	query := `SELECT r.id, r.item_id, r.quantity, r.reserved_by, r.reservation_code, r.notes, r.reserved_at,
	                 i.name AS item_name
	          FROM reservations r
	          JOIN items i ON i.id = r.item_id`
	var args []any
	if itemID != "" {
		query += ` WHERE r.item_id = ?`
		args = append(args, itemID)
	}
	query += ` ORDER BY r.reserved_at DESC, r.id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reservations: %w", err)
	}
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		var r model.Reservation
		var notes sql.NullString
		if err := rows.Scan(&r.ID, &r.ItemID, &r.Quantity, &r.ReservedBy, &r.ReservationCode, &notes,
			&r.ReservedAt, &r.ItemName); err != nil {
			return nil, fmt.Errorf("scanning reservation: %w", err)
		}
		r.Notes = notes.String
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// ListPickups returns pickups newest first, optionally for one item.
func ListPickups(ctx context.Context, db *sql.DB, itemID string) ([]model.Pickup, error) {
	return listPickups(ctx, db, itemID)
}

func listPickups(ctx context.Context, q querier, itemID string) ([]model.Pickup, error) {
	query := `SELECT p.id, p.item_id, p.quantity, p.picked_up_by, p.confirmation_code, p.notes,
	                 p.picked_up_at, p.confirmed_at, i.name AS item_name
	          FROM pickups p
	          JOIN items i ON i.id = p.item_id`
	var args []any
	if itemID != "" {
		query += ` WHERE p.item_id = ?`
		args = append(args, itemID)
	}
	query += ` ORDER BY p.picked_up_at DESC, p.id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pickups: %w", err)
	}
	defer rows.Close()

	var pickups []model.Pickup
	for rows.Next() {
		var p model.Pickup
		var code, notes sql.NullString
		if err := rows.Scan(&p.ID, &p.ItemID, &p.Quantity, &p.PickedUpBy, &code, &notes,
			&p.PickedUpAt, &p.ConfirmedAt, &p.ItemName); err != nil {
			return nil, fmt.Errorf("scanning pickup: %w", err)
		}
		p.ConfirmationCode = code.String
		p.Notes = notes.String
		pickups = append(pickups, p)
	}
	return pickups, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isUniqueViolation matches SQLite's "UNIQUE constraint failed: table.column".
func isUniqueViolation(err error, column string) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}
