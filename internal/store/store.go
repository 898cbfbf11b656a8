// Package store persists the catalog, ledgers, projects and users in SQLite.
//
// The package-level functions take the database explicitly. Store wraps a
// database handle so it can be handed to the inventory and schedule
// packages, which only know the collaborator interfaces they consume.
package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/magacin/internal/model"
)

// Store binds the package functions to one database.
type Store struct {
	DB *sql.DB
}

// New returns a Store backed by db.
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	return GetItem(ctx, s.DB, id)
}

func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
	return ListItems(ctx, s.DB)
}

func (s *Store) CommitReservation(ctx context.Context, item model.Item, r *model.Reservation) error {
	return CommitReservation(ctx, s.DB, item, r)
}

func (s *Store) CommitPickup(ctx context.Context, item model.Item, p *model.Pickup) error {
	return CommitPickup(ctx, s.DB, item, p)
}

func (s *Store) ReservationCodeExists(ctx context.Context, code string) (bool, error) {
	return ReservationCodeExists(ctx, s.DB, code)
}

func (s *Store) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	return ListUsersByRole(ctx, s.DB, role)
}

func (s *Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	return ListProjects(ctx, s.DB)
}

func (s *Store) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	return Snapshot(ctx, s.DB)
}
