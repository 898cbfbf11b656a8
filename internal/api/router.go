package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/magacin/internal/inventory"
	"github.com/erazemk/magacin/internal/metrics"
	"github.com/erazemk/magacin/internal/model"
	"github.com/erazemk/magacin/internal/schedule"
	"github.com/erazemk/magacin/internal/store"
)

// Engine bundles the allocation engine and schedule index the handlers
// call into.
type Engine struct {
	Catalog      *inventory.Catalog
	Reservations *inventory.ReservationLedger
	Pickups      *inventory.PickupLedger
	Schedule     *schedule.Index
}

// NewEngine wires the engine to the SQLite store. A nil locker locks items
// in-process; a nil ledger disables metrics.
func NewEngine(db *sql.DB, locker inventory.Locker, revealCode bool, ledger *metrics.Ledger) *Engine {
	st := store.New(db)
	var opts []inventory.Option
	if ledger != nil {
		opts = append(opts, inventory.WithRecorder(ledger))
	}

	catalog := inventory.NewCatalog(st, locker)
	return &Engine{
		Catalog:      catalog,
		Reservations: inventory.NewReservationLedger(catalog, st, opts...),
		Pickups:      inventory.NewPickupLedger(catalog, inventory.NewValidator(st, revealCode), opts...),
		Schedule:     schedule.NewIndex(st),
	}
}

// NewRouter creates the API router with all endpoints registered. When
// ledger is non-nil its metrics are served on /metrics.
func NewRouter(db *sql.DB, jwtSecret string, engine *Engine, ledger *metrics.Ledger) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	directoryHandler := &DirectoryHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db, Catalog: engine.Catalog}
	reservationsHandler := &ReservationsHandler{DB: db, Ledger: engine.Reservations}
	pickupsHandler := &PickupsHandler{DB: db, Ledger: engine.Pickups}
	projectsHandler := &ProjectsHandler{DB: db, Schedule: engine.Schedule}
	snapshotHandler := &SnapshotHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public: login and metrics.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	if ledger != nil {
		mux.Handle("GET /metrics", ledger.Handler())
	}

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}/code", authMW(requireAdmin(http.HandlerFunc(usersHandler.SetCode))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Directory: names of selectable users (all roles).
	mux.Handle("GET /api/directory/{role}", authMW(http.HandlerFunc(directoryHandler.List)))

	// Items: read (all roles), write (manager+).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("GET /api/items/projects", authMW(http.HandlerFunc(itemsHandler.Projects)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("POST /api/items", authMW(requireManager(http.HandlerFunc(itemsHandler.Create))))

	// Ledgers (all roles).
	mux.Handle("POST /api/reservations", authMW(http.HandlerFunc(reservationsHandler.Create)))
	mux.Handle("GET /api/reservations", authMW(http.HandlerFunc(reservationsHandler.List)))
	mux.Handle("POST /api/pickups", authMW(http.HandlerFunc(pickupsHandler.Create)))
	mux.Handle("GET /api/pickups", authMW(http.HandlerFunc(pickupsHandler.List)))
	mux.Handle("GET /api/snapshot", authMW(http.HandlerFunc(snapshotHandler.Get)))

	// Projects: read (all roles), write (manager+).
	mux.Handle("GET /api/projects", authMW(http.HandlerFunc(projectsHandler.List)))
	mux.Handle("POST /api/projects", authMW(requireManager(http.HandlerFunc(projectsHandler.Create))))
	mux.Handle("GET /api/projects/document", authMW(http.HandlerFunc(projectsHandler.DocumentByName)))
	mux.Handle("GET /api/projects/{id}/document", authMW(http.HandlerFunc(projectsHandler.Document)))

	// Calendar (all roles).
	mux.Handle("GET /api/calendar", authMW(http.HandlerFunc(projectsHandler.Calendar)))
	mux.Handle("GET /api/calendar/{date}", authMW(http.HandlerFunc(projectsHandler.Day)))

	return mux
}
