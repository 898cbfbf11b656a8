package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/magacin/internal/inventory"
	"github.com/erazemk/magacin/internal/model"
	"github.com/erazemk/magacin/internal/store"
)

// ReservationsHandler handles reservation endpoints.
type ReservationsHandler struct {
	DB     *sql.DB
	Ledger *inventory.ReservationLedger
}

type createReservationRequest struct {
	ItemID     string `json:"item_id"`
	Quantity   int    `json:"quantity"`
	ReservedBy string `json:"reserved_by" validate:"max=100"`
	Notes      string `json:"notes" validate:"max=500"`
}

// Create handles POST /api/reservations. The reserver defaults to the
// authenticated user.
func (h *ReservationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	reservedBy := req.ReservedBy
	if reservedBy == "" {
		reservedBy = currentUser(r)
	}

	res, err := h.Ledger.Create(r.Context(), inventory.ReservationRequest{
		ItemID:     req.ItemID,
		Quantity:   req.Quantity,
		ReservedBy: reservedBy,
		Notes:      req.Notes,
	})
	if err != nil {
		engineError(w, err, "create reservation")
		return
	}

	slog.Info("reservation created", "user", currentUser(r),
		"reserved_by", res.ReservedBy, "item", res.ItemName,
		"quantity", res.Quantity, "code", res.ReservationCode)
	jsonResponse(w, http.StatusCreated, res)
}

// List handles GET /api/reservations.
func (h *ReservationsHandler) List(w http.ResponseWriter, r *http.Request) {
	reservations, err := store.ListReservations(r.Context(), h.DB, r.URL.Query().Get("item_id"))
	if err != nil {
		slog.Error("failed to list reservations", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list reservations")
		return
	}
	if reservations == nil {
		reservations = []model.Reservation{}
	}
	jsonResponse(w, http.StatusOK, reservations)
}

// PickupsHandler handles pickup endpoints.
type PickupsHandler struct {
	DB     *sql.DB
	Ledger *inventory.PickupLedger
}

type createPickupRequest struct {
	ItemID           string `json:"item_id"`
	Quantity         int    `json:"quantity"`
	PickedUpBy       string `json:"picked_up_by" validate:"max=100"`
	ConfirmationCode string `json:"confirmation_code" validate:"max=50"`
	Notes            string `json:"notes" validate:"max=500"`
}

// Create handles POST /api/pickups. The picker defaults to the
// authenticated user. A code mismatch only reveals the assigned code to
// the picker themselves.
func (h *PickupsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPickupRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	caller := currentUser(r)
	pickedUpBy := req.PickedUpBy
	if pickedUpBy == "" {
		pickedUpBy = caller
	}

	p, err := h.Ledger.Create(r.Context(), inventory.PickupRequest{
		ItemID:           req.ItemID,
		Quantity:         req.Quantity,
		PickedUpBy:       pickedUpBy,
		ConfirmationCode: req.ConfirmationCode,
		Notes:            req.Notes,
	})
	var authErr *model.AuthorizationError
	if errors.As(err, &authErr) {
		slog.Warn("pickup code mismatch", "user", caller, "picked_up_by", authErr.User)
		if authErr.User != caller {
			err = authErr.Redacted()
		}
	}
	if err != nil {
		engineError(w, err, "create pickup")
		return
	}

	slog.Info("pickup confirmed", "user", caller,
		"picked_up_by", p.PickedUpBy, "item", p.ItemName, "quantity", p.Quantity)
	jsonResponse(w, http.StatusCreated, p)
}

// List handles GET /api/pickups.
func (h *PickupsHandler) List(w http.ResponseWriter, r *http.Request) {
	pickups, err := store.ListPickups(r.Context(), h.DB, r.URL.Query().Get("item_id"))
	if err != nil {
		slog.Error("failed to list pickups", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list pickups")
		return
	}
	if pickups == nil {
		pickups = []model.Pickup{}
	}
	jsonResponse(w, http.StatusOK, pickups)
}

// SnapshotHandler serves a consistent view of the catalog and ledgers.
type SnapshotHandler struct {
	DB *sql.DB
}

// Get handles GET /api/snapshot.
func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := store.Snapshot(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to read snapshot", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to read snapshot")
		return
	}
	jsonResponse(w, http.StatusOK, snap)
}
