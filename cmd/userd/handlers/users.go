// Package handlers provides REST API handlers for users.
package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/FrancescoXX/userstack/internal/db"
	"github.com/FrancescoXX/userstack/internal/events"
	"github.com/FrancescoXX/userstack/internal/models"
)

// UserHandler handles user CRUD operations.
type UserHandler struct {
	repo *db.Repository
	feed *events.Hub // optional change feed, may be nil
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(repo *db.Repository, feed *events.Hub) *UserHandler {
	return &UserHandler{repo: repo, feed: feed}
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.writeUserList(w)
}

// CreateUser handles POST /api/users
// The response body is the full updated user list.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var params models.UserParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user := &models.User{Name: params.Name, Email: params.Email}
	if err := h.repo.CreateUser(user); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.feed != nil {
		h.feed.BroadcastUserCreated(*user)
	}

	h.writeUserList(w)
}

// UpdateUser handles PUT /api/users/{id}
// The response body is the full updated user list.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var params models.UserParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateUser(id, params); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.feed != nil {
		h.feed.BroadcastUserUpdated(models.User{ID: &id, Name: params.Name, Email: params.Email})
	}

	h.writeUserList(w)
}

// DeleteUser handles DELETE /api/users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteUser(id); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.feed != nil {
		h.feed.BroadcastUserDeleted(id)
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /api/health
func (h *UserHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","service":"userd"}`))
}

// writeUserList responds with the current full user list.
func (h *UserHandler) writeUserList(w http.ResponseWriter) {
	users, err := h.repo.ListUsers()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// pathID extracts the {id} path segment. Writes a 400 and returns false
// when it is not an integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		raw = r.URL.Path[len("/api/users/"):]
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
