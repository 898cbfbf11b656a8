package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/magacin/internal/auth"
	"github.com/erazemk/magacin/internal/model"
	"github.com/erazemk/magacin/internal/store"
)

// UsersHandler handles user management endpoints (admin only).
type UsersHandler struct {
	DB *sql.DB
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password"`
	Role     string `json:"role" validate:"required,oneof=admin manager pickup reservation"`
	UserCode string `json:"user_code" validate:"omitempty,len=6,alphanum"`
}

type setCodeRequest struct {
	UserCode string `json:"user_code" validate:"required,len=6,alphanum"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list users", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users. Admins and managers log in and need a
// password; pickup and reservation users may be created without one.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	needsLogin := model.RoleAtLeast(req.Role, model.RoleManager)
	if needsLogin && req.Password == "" {
		jsonError(w, http.StatusBadRequest, "password required for "+req.Role)
		return
	}

	var hash string
	if req.Password != "" {
		if err := model.ValidatePassword(req.Password); err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		var err error
		if hash, err = auth.HashPassword(req.Password); err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Name, hash, req.Role, req.UserCode)
	if err != nil {
		jsonError(w, http.StatusConflict, "user already exists")
		return
	}

	slog.Info("user created", "user", currentUser(r), "new_user", req.Name, "role", req.Role)
	jsonResponse(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := store.GetUser(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	jsonResponse(w, http.StatusOK, user)
}

// SetCode handles PUT /api/users/{id}/code.
func (h *UsersHandler) SetCode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req setCodeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := store.UpdateUserCode(r.Context(), h.DB, id, req.UserCode); err != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	target := id
	if u, _ := store.GetUser(r.Context(), h.DB, id); u != nil {
		target = u.Name
	}
	slog.Info("user code assigned", "user", currentUser(r), "target_user", target)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "code updated"})
}

// Delete handles DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Prevent self-deletion.
	claims := GetClaims(r.Context())
	if claims != nil && claims.UserID == id {
		jsonError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	// Look up target name before deleting.
	target := id
	if u, _ := store.GetUser(r.Context(), h.DB, id); u != nil {
		target = u.Name
	}

	if err := store.DeleteUser(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	slog.Info("user deleted", "user", currentUser(r), "deleted_user", target)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// DirectoryHandler lists the people who can be selected in the ledgers.
type DirectoryHandler struct {
	DB *sql.DB
}

// List handles GET /api/directory/{role}. Only names are returned.
func (h *DirectoryHandler) List(w http.ResponseWriter, r *http.Request) {
	role := r.PathValue("role")
	if role != model.RolePickup && role != model.RoleReservation {
		jsonError(w, http.StatusBadRequest, "role must be pickup or reservation")
		return
	}

	users, err := store.ListUsersByRole(r.Context(), h.DB, role)
	if err != nil {
		slog.Error("failed to list directory", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}
	jsonResponse(w, http.StatusOK, names)
}
