package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a stocked article attached to a project. Stock is the physical
// quantity; Available is the part of it not held by reservations.
type Item struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Project   string          `json:"project"`
	Stock     int             `json:"stock"`
	Available int             `json:"available"`
	Price     decimal.Decimal `json:"price"`
	Location  string          `json:"location,omitempty"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Reserved returns the quantity currently held by reservations.
func (i Item) Reserved() int {
	return i.Stock - i.Available
}

// Consistent reports whether the quantity invariant 0 <= available <= stock holds.
func (i Item) Consistent() bool {
	return i.Available >= 0 && i.Available <= i.Stock
}
