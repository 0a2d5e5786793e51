package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-fileservice/pkg/fileservice"
)

// UsersHandler handles user registry endpoints
type UsersHandler struct {
	service fileservice.Service
}

func NewUsersHandler(service fileservice.Service) *UsersHandler {
	return &UsersHandler{service: service}
}

// Routes returns the router for user endpoints
func (h *UsersHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateUser)
	r.Get("/", h.ListUsers)
	r.Get("/{user_id}", h.GetUser)
	r.Put("/{user_id}", h.UpdateUser)
	return r
}

// CreateUserRequest represents the request to register a user
type CreateUserRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Profile string `json:"profile,omitempty"`
}

// UpdateUserRequest represents the request to change a user
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateUser registers a new user
func (h *UsersHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderBadRequest(w, r, "invalid JSON body")
		return
	}

	user, err := h.service.AddUser(r.Context(), req.Name, req.Email, req.Profile)
	if err != nil {
		renderError(w, r, err)
		return
	}

	slog.Info("User created", "user_id", user.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

// ListUsers lists all users, or looks one up with ?email=
func (h *UsersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("email"); email != "" {
		user, err := h.service.FindUserByEmail(r.Context(), email)
		if err != nil {
			renderError(w, r, err)
			return
		}
		render.JSON(w, r, user)
		return
	}

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, users)
}

// GetUser returns a single user
func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, user)
}

// UpdateUser changes a user's name and email
func (h *UsersHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderBadRequest(w, r, "invalid JSON body")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, req.Name, req.Email)
	if err != nil {
		renderError(w, r, err)
		return
	}

	slog.Info("User updated", "user_id", id)
	render.JSON(w, r, user)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "user_id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		renderBadRequest(w, r, "invalid user ID")
		return 0, false
	}
	return id, true
}
