package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/erazemk/magacin/internal/inventory"
	"github.com/erazemk/magacin/internal/model"
	"github.com/erazemk/magacin/internal/store"
)

// ItemsHandler handles item catalog endpoints.
type ItemsHandler struct {
	DB      *sql.DB
	Catalog *inventory.Catalog
}

type createItemRequest struct {
	Code      string          `json:"code" validate:"required,max=50"`
	Name      string          `json:"name" validate:"required,max=200"`
	Project   string          `json:"project" validate:"max=200"`
	Stock     int             `json:"stock" validate:"gte=0"`
	Available *int            `json:"available" validate:"omitempty,gte=0"`
	Price     decimal.Decimal `json:"price"`
	Location  string          `json:"location" validate:"max=200"`
}

// List handles GET /api/items. The filter query selects reservable or
// pickable items only.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []model.Item
		err   error
	)
	switch filter := r.URL.Query().Get("filter"); filter {
	case "":
		items, err = h.Catalog.All(r.Context())
	case "reservable":
		items, err = h.Catalog.Reservable(r.Context())
	case "pickable":
		items, err = h.Catalog.Pickable(r.Context())
	default:
		jsonError(w, http.StatusBadRequest, "filter must be reservable or pickable")
		return
	}
	if err != nil {
		engineError(w, err, "list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Catalog.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		engineError(w, err, "get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Projects handles GET /api/items/projects.
func (h *ItemsHandler) Projects(w http.ResponseWriter, r *http.Request) {
	names, err := h.Catalog.ProjectNames(r.Context())
	if err != nil {
		engineError(w, err, "list item projects")
		return
	}
	jsonResponse(w, http.StatusOK, names)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	available := req.Stock
	if req.Available != nil {
		available = *req.Available
	}
	if available > req.Stock {
		jsonError(w, http.StatusBadRequest, "available: must not exceed stock")
		return
	}
	if req.Price.IsNegative() {
		jsonError(w, http.StatusBadRequest, "price: must not be negative")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, model.Item{
		Code:      req.Code,
		Name:      req.Name,
		Project:   req.Project,
		Stock:     req.Stock,
		Available: available,
		Price:     req.Price,
		Location:  req.Location,
	})
	if err != nil {
		jsonError(w, http.StatusConflict, "item code already exists")
		return
	}

	slog.Info("item created", "user", currentUser(r), "item", item.Name, "code", item.Code, "stock", item.Stock)
	jsonResponse(w, http.StatusCreated, item)
}
