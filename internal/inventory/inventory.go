// Package inventory is the allocation and confirmation engine. It moves
// item quantities through reservations and pickups, authenticates pickups
// against the picker's assigned code and issues reservation codes.
//
// The engine knows its collaborators only through the interfaces below.
// Every ledger operation runs as one read-validate-mutate-append unit under
// a per-item lock, and the store rejects commits made against a stale item
// version.
package inventory

import (
	"context"
	"time"

	"github.com/erazemk/magacin/internal/model"
)

// ItemStore persists items and appends ledger records.
//
// CommitReservation and CommitPickup must write the item's quantities and
// the record atomically, and must fail with *model.ConflictError when the
// stored item version differs from item.Version. GetItem returns nil when
// the item does not exist.
type ItemStore interface {
	GetItem(ctx context.Context, id string) (*model.Item, error)
	ListItems(ctx context.Context) ([]model.Item, error)
	CommitReservation(ctx context.Context, item model.Item, r *model.Reservation) error
	CommitPickup(ctx context.Context, item model.Item, p *model.Pickup) error
	ReservationCodeExists(ctx context.Context, code string) (bool, error)
}

// UserDirectory lists users by role, ordered by name.
type UserDirectory interface {
	ListByRole(ctx context.Context, role string) ([]model.User, error)
}

// Recorder observes finished ledger operations. err is nil on success.
type Recorder interface {
	Observe(kind string, quantity int, err error)
}

// Ledger kinds passed to a Recorder.
const (
	KindReservation = "reservation"
	KindPickup      = "pickup"
)

type options struct {
	now      func() time.Time
	codes    CodeSource
	recorder Recorder
}

// Option configures a ledger.
type Option func(*options)

// WithClock sets the clock used to stamp ledger records.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithCodeSource sets the source reservation codes are drawn from.
func WithCodeSource(src CodeSource) Option {
	return func(o *options) { o.codes = src }
}

// WithRecorder sets a Recorder that observes every ledger operation.
func WithRecorder(r Recorder) Option {
	return func(o *options) { o.recorder = r }
}

func buildOptions(opts []Option) options {
	o := options{
		now:   func() time.Time { return time.Now().UTC() },
		codes: RandomCode,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) observe(kind string, quantity int, err error) {
	if o.recorder != nil {
		o.recorder.Observe(kind, quantity, err)
	}
}

// findUser returns the user named name among the holders of role, or nil.
func findUser(ctx context.Context, users UserDirectory, role, name string) (*model.User, error) {
	if name == "" {
		return nil, nil
	}
	list, err := users.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Name == name {
			return &list[i], nil
		}
	}
	return nil, nil
}
