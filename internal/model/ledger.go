package model

import "time"

// Reservation is a soft hold against an item's available quantity.
type Reservation struct {
	ID              string    `json:"id"`
	ItemID          string    `json:"item_id"`
	Quantity        int       `json:"quantity"`
	ReservedBy      string    `json:"reserved_by"`
	ReservationCode string    `json:"reservation_code"`
	Notes           string    `json:"notes,omitempty"`
	ReservedAt      time.Time `json:"reserved_at"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
}

// Pickup is a confirmed withdrawal of physical stock.
type Pickup struct {
	ID         string `json:"id"`
	ItemID     string `json:"item_id"`
	Quantity   int    `json:"quantity"`
	PickedUpBy string `json:"picked_up_by"`
	// ConfirmationCode is the code entered at pickup time. It is a user
	// secret and never leaves the server.
	ConfirmationCode string     `json:"-"`
	Notes            string     `json:"notes,omitempty"`
	PickedUpAt       time.Time  `json:"picked_up_at"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
}

// Confirmed reports whether the pickup carries a confirmation stamp.
func (p Pickup) Confirmed() bool {
	return p.ConfirmedAt != nil
}

// Snapshot is a consistent view of the catalog and its ledgers.
type Snapshot struct {
	Items        []Item        `json:"items"`
	Reservations []Reservation `json:"reservations"`
	Pickups      []Pickup      `json:"pickups"`
}
