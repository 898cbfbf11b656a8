package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/magacin/internal/model"
)

// PickupRequest is the raw input of a pickup.
type PickupRequest struct {
	ItemID           string
	Quantity         int
	PickedUpBy       string
	ConfirmationCode string
	Notes            string
}

// PickupLedger creates pickups. A pickup is confirmed when it is created;
// a rejected pickup is never written.
type PickupLedger struct {
	catalog   *Catalog
	validator *Validator
	opts      options
}

// NewPickupLedger returns a ledger writing through catalog and
// authenticating pickers with validator.
func NewPickupLedger(catalog *Catalog, validator *Validator, opts ...Option) *PickupLedger {
	return &PickupLedger{catalog: catalog, validator: validator, opts: buildOptions(opts)}
}

// Create authenticates the picker and removes req.Quantity units from the
// item's stock.
func (l *PickupLedger) Create(ctx context.Context, req PickupRequest) (*model.Pickup, error) {
	p, err := l.create(ctx, req)
	l.opts.observe(KindPickup, req.Quantity, err)
	return p, err
}

func (l *PickupLedger) create(ctx context.Context, req PickupRequest) (*model.Pickup, error) {
	user, err := l.validator.Validate(ctx, req.PickedUpBy, req.ConfirmationCode)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, model.Invalid("quantity", "must be a positive integer")
	}

	var p *model.Pickup
	err = l.catalog.Update(ctx, req.ItemID, func(change *ItemChange) error {
		if err := change.DecrementStock(req.Quantity); err != nil {
			return err
		}

		item := change.Item()
		now := l.opts.now()
		p = &model.Pickup{
			ID:               uuid.NewString(),
			ItemID:           item.ID,
			Quantity:         req.Quantity,
			PickedUpBy:       user.Name,
			ConfirmationCode: strings.ToUpper(req.ConfirmationCode),
			Notes:            req.Notes,
			PickedUpAt:       now,
			ConfirmedAt:      &now,
			ItemName:         item.Name,
		}
		return l.catalog.store.CommitPickup(ctx, item, p)
	})
	if err != nil {
		return nil, itemNotFoundAsInvalid(err)
	}
	return p, nil
}
