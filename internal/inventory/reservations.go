package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/magacin/internal/model"
)

// ReservationRequest is the raw input of a reservation.
type ReservationRequest struct {
	ItemID     string
	Quantity   int
	ReservedBy string
	Notes      string
}

// ReservationLedger creates reservations. A reservation holds part of an
// item's available quantity and is never released.
type ReservationLedger struct {
	catalog *Catalog
	users   UserDirectory
	opts    options
}

// NewReservationLedger returns a ledger writing through catalog.
func NewReservationLedger(catalog *Catalog, users UserDirectory, opts ...Option) *ReservationLedger {
	return &ReservationLedger{catalog: catalog, users: users, opts: buildOptions(opts)}
}

// Create reserves req.Quantity units of an item and issues a reservation
// code. Either the item and the new record are both written or nothing is.
func (l *ReservationLedger) Create(ctx context.Context, req ReservationRequest) (*model.Reservation, error) {
	r, err := l.create(ctx, req)
	l.opts.observe(KindReservation, req.Quantity, err)
	return r, err
}

func (l *ReservationLedger) create(ctx context.Context, req ReservationRequest) (*model.Reservation, error) {
	if req.Quantity <= 0 {
		return nil, model.Invalid("quantity", "must be a positive integer")
	}

	var r *model.Reservation
	err := l.catalog.Update(ctx, req.ItemID, func(change *ItemChange) error {
		user, err := findUser(ctx, l.users, model.RoleReservation, req.ReservedBy)
		if err != nil {
			return fmt.Errorf("resolving reserver: %w", err)
		}
		if user == nil {
			return model.Invalid("reserved_by", "must select a user")
		}

		if err := change.DecrementAvailable(req.Quantity); err != nil {
			return err
		}

		code, err := issueCode(ctx, l.opts.codes, l.catalog.store)
		if err != nil {
			return err
		}

		item := change.Item()
		r = &model.Reservation{
			ID:              uuid.NewString(),
			ItemID:          item.ID,
			Quantity:        req.Quantity,
			ReservedBy:      user.Name,
			ReservationCode: code,
			Notes:           req.Notes,
			ReservedAt:      l.opts.now(),
			ItemName:        item.Name,
		}
		return l.catalog.store.CommitReservation(ctx, item, r)
	})
	if err != nil {
		return nil, itemNotFoundAsInvalid(err)
	}
	return r, nil
}

// itemNotFoundAsInvalid reports an unresolved item in a ledger request as
// malformed input.
func itemNotFoundAsInvalid(err error) error {
	var nf *model.NotFoundError
	if errors.As(err, &nf) && nf.Kind == "item" {
		return model.Invalid("item_id", "item %q not found", nf.ID)
	}
	return err
}
