package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erazemk/magacin/internal/auth"
	"github.com/erazemk/magacin/internal/db"
	"github.com/erazemk/magacin/internal/metrics"
	"github.com/erazemk/magacin/internal/model"
	"github.com/erazemk/magacin/internal/store"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	server *httptest.Server
	db     *sql.DB
	token  string
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)
	ledger := metrics.NewLedger()
	router := NewRouter(database, testJWTSecret, NewEngine(database, nil, true, ledger), ledger)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user and the people selectable in the ledgers.
	ctx := context.Background()
	hash, _ := auth.HashPassword("password")
	store.CreateUser(ctx, database, "admin", hash, model.RoleAdmin, "")
	store.CreateUser(ctx, database, "Ana", "", model.RolePickup, "ABC123")
	store.CreateUser(ctx, database, "Rok", "", model.RoleReservation, "")

	// Get token.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}

	return &testEnv{server: server, db: database, token: token}
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends an authenticated request and decodes a JSON response into out
// when out is non-nil. It returns the status code.
func (e *testEnv) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	req, err := authRequest(method, e.server.URL+path, token, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decoding %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (e *testEnv) createItem(t *testing.T, code string, stock int) model.Item {
	t.Helper()
	var item model.Item
	status := e.do(t, "POST", "/api/items", e.token, map[string]any{
		"code":    code,
		"name":    "Item " + code,
		"project": "Most",
		"stock":   stock,
		"price":   "12.50",
	}, &item)
	if status != http.StatusCreated {
		t.Fatalf("creating item: expected 201, got %d", status)
	}
	return item
}

func TestLoginEndpoint(t *testing.T) {
	env := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(env.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Users without a password cannot log in.
	body, _ = json.Marshal(map[string]string{"username": "Ana", "password": "anything"})
	resp, _ = http.Post(env.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for passwordless user, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Missing fields fail validation.
	body, _ = json.Marshal(map[string]string{"username": "admin"})
	resp, _ = http.Post(env.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setupTestServer(t)

	if status := env.do(t, "POST", "/api/auth/logout", env.token, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", status)
	}
	if status := env.do(t, "GET", "/api/items", env.token, nil, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 with revoked token, got %d", status)
	}
}

func TestItemsAPIFlow(t *testing.T) {
	env := setupTestServer(t)
	item := env.createItem(t, "A-1", 5)

	if item.Available != 5 {
		t.Errorf("expected available to default to stock, got %d", item.Available)
	}
	if item.Price.String() != "12.5" {
		t.Errorf("expected price 12.5, got %s", item.Price)
	}

	var got model.Item
	if status := env.do(t, "GET", "/api/items/"+item.ID, env.token, nil, &got); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if got.Code != "A-1" {
		t.Errorf("expected code A-1, got %q", got.Code)
	}

	if status := env.do(t, "GET", "/api/items/missing", env.token, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 for missing item, got %d", status)
	}

	var names []string
	env.do(t, "GET", "/api/items/projects", env.token, nil, &names)
	if len(names) != 1 || names[0] != "Most" {
		t.Errorf("expected [Most], got %v", names)
	}

	// Available above stock is rejected.
	status := env.do(t, "POST", "/api/items", env.token, map[string]any{
		"code": "A-2", "name": "Broken", "stock": 1, "available": 2,
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for available > stock, got %d", status)
	}

	// Duplicate code.
	status = env.do(t, "POST", "/api/items", env.token, map[string]any{
		"code": "A-1", "name": "Again", "stock": 1,
	}, nil)
	if status != http.StatusConflict {
		t.Errorf("expected 409 for duplicate code, got %d", status)
	}
}

func TestReservationAndPickupFlow(t *testing.T) {
	env := setupTestServer(t)
	item := env.createItem(t, "A-1", 10)

	var res model.Reservation
	status := env.do(t, "POST", "/api/reservations", env.token, map[string]any{
		"item_id": item.ID, "quantity": 3, "reserved_by": "Rok",
	}, &res)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 for reservation, got %d", status)
	}
	if !strings.HasPrefix(res.ReservationCode, "RES") || len(res.ReservationCode) != 9 {
		t.Errorf("unexpected reservation code %q", res.ReservationCode)
	}

	var raw map[string]any
	status = env.do(t, "POST", "/api/pickups", env.token, map[string]any{
		"item_id": item.ID, "quantity": 2, "picked_up_by": "Ana", "confirmation_code": "abc123",
	}, &raw)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 for pickup, got %d", status)
	}
	if raw["confirmed_at"] == nil {
		t.Error("expected confirmed_at in response")
	}
	if _, leaked := raw["confirmation_code"]; leaked {
		t.Error("confirmation code must not be serialised")
	}

	status = env.do(t, "POST", "/api/pickups", env.token, map[string]any{
		"item_id": item.ID, "quantity": 9, "picked_up_by": "Ana", "confirmation_code": "ABC123",
	}, nil)
	if status != http.StatusConflict {
		t.Errorf("expected 409 for pickup beyond stock, got %d", status)
	}

	var got model.Item
	env.do(t, "GET", "/api/items/"+item.ID, env.token, nil, &got)
	if got.Stock != 8 || got.Available != 7 {
		t.Errorf("expected stock 8 / available 7, got %d / %d", got.Stock, got.Available)
	}

	var snap model.Snapshot
	env.do(t, "GET", "/api/snapshot", env.token, nil, &snap)
	if len(snap.Reservations) != 1 || len(snap.Pickups) != 1 {
		t.Errorf("expected one reservation and one pickup, got %d and %d", len(snap.Reservations), len(snap.Pickups))
	}

	var pickups []model.Pickup
	env.do(t, "GET", "/api/pickups?item_id="+item.ID, env.token, nil, &pickups)
	if len(pickups) != 1 || pickups[0].PickedUpBy != "Ana" {
		t.Errorf("unexpected pickups %+v", pickups)
	}
}

func TestReservationValidation(t *testing.T) {
	env := setupTestServer(t)
	item := env.createItem(t, "A-1", 2)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"zero quantity", map[string]any{"item_id": item.ID, "quantity": 0, "reserved_by": "Rok"}, http.StatusBadRequest},
		{"unknown item", map[string]any{"item_id": "nope", "quantity": 1, "reserved_by": "Rok"}, http.StatusBadRequest},
		{"caller is not a reservation user", map[string]any{"item_id": item.ID, "quantity": 1}, http.StatusBadRequest},
		{"too many", map[string]any{"item_id": item.ID, "quantity": 3, "reserved_by": "Rok"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status := env.do(t, "POST", "/api/reservations", env.token, tt.body, nil); status != tt.want {
				t.Errorf("expected %d, got %d", tt.want, status)
			}
		})
	}
}

func TestPickupCodeHintOnlyForPicker(t *testing.T) {
	env := setupTestServer(t)
	item := env.createItem(t, "A-1", 5)
	body := map[string]any{"item_id": item.ID, "quantity": 1, "picked_up_by": "Ana", "confirmation_code": "XYZ789"}

	var errResp map[string]string
	status := env.do(t, "POST", "/api/pickups", env.token, body, &errResp)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}
	if strings.Contains(errResp["error"], "ABC123") {
		t.Errorf("code leaked to another user: %q", errResp["error"])
	}

	anaUser, _ := store.GetUserByName(context.Background(), env.db, "Ana")
	anaToken, _ := auth.GenerateToken(testJWTSecret, anaUser.ID, "Ana", model.RolePickup)
	errResp = nil
	status = env.do(t, "POST", "/api/pickups", anaToken, body, &errResp)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}
	if !strings.Contains(errResp["error"], "ABC123") {
		t.Errorf("expected hint for the picker, got %q", errResp["error"])
	}

	// The picker defaults to the caller.
	delete(body, "picked_up_by")
	body["confirmation_code"] = "ABC123"
	if status := env.do(t, "POST", "/api/pickups", anaToken, body, nil); status != http.StatusCreated {
		t.Errorf("expected 201 for picker defaulting to caller, got %d", status)
	}
}

func TestProjectsAndCalendar(t *testing.T) {
	env := setupTestServer(t)

	var project model.Project
	status := env.do(t, "POST", "/api/projects", env.token, map[string]any{
		"name":         "Most",
		"start_date":   "2025-03-01",
		"end_date":     "2025-03-10",
		"color":        "#3b82f6",
		"pdf_url":      "https://example.com/most.pdf",
		"pdf_document": "Nacrt",
	}, &project)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	status = env.do(t, "POST", "/api/projects", env.token, map[string]any{
		"name": "Backwards", "start_date": "2025-03-10", "end_date": "2025-03-01",
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for inverted range, got %d", status)
	}

	var active []model.Project
	env.do(t, "GET", "/api/calendar/2025-03-10", env.token, nil, &active)
	if len(active) != 1 {
		t.Errorf("expected project active on its last day, got %d", len(active))
	}
	active = nil
	env.do(t, "GET", "/api/calendar/2025-03-11", env.token, nil, &active)
	if len(active) != 0 {
		t.Errorf("expected no project after its end, got %d", len(active))
	}

	var grid struct {
		Offset int    `json:"offset"`
		Next   string `json:"next"`
		Prev   string `json:"prev"`
		Days   []struct {
			Date     string          `json:"date"`
			Projects []model.Project `json:"projects"`
		} `json:"days"`
	}
	if status := env.do(t, "GET", "/api/calendar?month=2025-03", env.token, nil, &grid); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if grid.Offset != 5 || len(grid.Days) != 31 {
		t.Errorf("expected offset 5 and 31 days, got %d and %d", grid.Offset, len(grid.Days))
	}
	if grid.Next != "2025-04-01" || grid.Prev != "2025-02-01" {
		t.Errorf("unexpected navigation %s / %s", grid.Prev, grid.Next)
	}
	if len(grid.Days[0].Projects) != 1 || len(grid.Days[10].Projects) != 0 {
		t.Error("unexpected active projects in grid")
	}

	if status := env.do(t, "GET", "/api/calendar?month=March", env.token, nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed month, got %d", status)
	}

	var doc map[string]string
	env.do(t, "GET", "/api/projects/"+project.ID+"/document", env.token, nil, &doc)
	if doc["title"] != "Most - Nacrt" {
		t.Errorf("unexpected document title %q", doc["title"])
	}
	doc = nil
	env.do(t, "GET", "/api/projects/document?name=Most", env.token, nil, &doc)
	if doc["url"] != "https://example.com/most.pdf" {
		t.Errorf("unexpected document url %q", doc["url"])
	}
}

func TestDirectoryListsNamesOnly(t *testing.T) {
	env := setupTestServer(t)

	req, _ := authRequest("GET", env.server.URL+"/api/directory/pickup", env.token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if strings.Contains(string(raw), "ABC123") {
		t.Error("directory leaked a user code")
	}
	var names []string
	json.Unmarshal(raw, &names)
	if len(names) != 1 || names[0] != "Ana" {
		t.Errorf("expected [Ana], got %v", names)
	}

	if status := env.do(t, "GET", "/api/directory/admin", env.token, nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for admin directory, got %d", status)
	}
}

func TestUserManagement(t *testing.T) {
	env := setupTestServer(t)

	var user model.User
	status := env.do(t, "POST", "/api/users", env.token, map[string]any{
		"name": "Miha", "role": model.RolePickup, "user_code": "qwe456",
	}, &user)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	status = env.do(t, "POST", "/api/users", env.token, map[string]any{
		"name": "Boss", "role": model.RoleManager,
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for manager without password, got %d", status)
	}

	status = env.do(t, "POST", "/api/users", env.token, map[string]any{
		"name": "Short", "role": model.RolePickup, "user_code": "ABC",
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for short code, got %d", status)
	}

	if status := env.do(t, "PUT", "/api/users/"+user.ID+"/code", env.token, map[string]string{"user_code": "zxc987"}, nil); status != http.StatusOK {
		t.Errorf("expected 200 setting code, got %d", status)
	}
	stored, _ := store.GetUser(context.Background(), env.db, user.ID)
	if stored.UserCode != "ZXC987" {
		t.Errorf("expected stored code ZXC987, got %q", stored.UserCode)
	}

	if status := env.do(t, "DELETE", "/api/users/"+user.ID, env.token, nil, nil); status != http.StatusOK {
		t.Errorf("expected 200 deleting user, got %d", status)
	}
	if status := env.do(t, "DELETE", "/api/users/"+user.ID, env.token, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 deleting twice, got %d", status)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	env := setupTestServer(t)

	resp, _ := http.Get(env.server.URL + "/api/items")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	env := setupTestServer(t)

	ana, _ := store.GetUserByName(context.Background(), env.db, "Ana")
	userToken, _ := auth.GenerateToken(testJWTSecret, ana.ID, "Ana", model.RolePickup)

	// Pickup users cannot create items (manager+ required).
	status := env.do(t, "POST", "/api/items", userToken, map[string]any{"code": "X", "name": "Test"}, nil)
	if status != http.StatusForbidden {
		t.Errorf("expected 403 for pickup user creating item, got %d", status)
	}

	// Pickup users cannot access /api/users.
	if status := env.do(t, "GET", "/api/users", userToken, nil, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for pickup user accessing users, got %d", status)
	}

	// But they can read the catalog.
	if status := env.do(t, "GET", "/api/items?filter=pickable", userToken, nil, nil); status != http.StatusOK {
		t.Errorf("expected 200 listing pickable items, got %d", status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t)
	item := env.createItem(t, "A-1", 5)
	env.do(t, "POST", "/api/reservations", env.token, map[string]any{
		"item_id": item.ID, "quantity": 2, "reserved_by": "Rok",
	}, nil)

	resp, err := http.Get(env.server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(raw), `magacin_ledger_operations_total{kind="reservation",outcome="ok"} 1`) {
		t.Errorf("expected reservation counter in metrics output")
	}
}
