package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/savor-pos/api/internal/database"
	"github.com/savor-pos/api/internal/enum"
	"github.com/savor-pos/api/internal/fault"
	"golang.org/x/crypto/bcrypt"
)

// UserStore defines the DB methods for staff management.
type UserStore interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (database.User, error)
	ListUsers(ctx context.Context, branchID uuid.UUID) ([]database.User, error)
	UpdateUser(ctx context.Context, arg database.UpdateUserParams) (database.User, error)
	SetUserActive(ctx context.Context, arg database.SetUserActiveParams) error
}

type UserHandler struct {
	store UserStore
}

func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Deactivate)
	})
}

type createUserPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	var payload createUserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}
	if payload.Email == "" || payload.Password == "" || payload.FullName == "" {
		writeError(w, http.StatusBadRequest, fault.Validation, "email, password and full_name are required")
		return
	}
	if !enum.ValidUserRole(payload.Role) {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid role")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		writeFault(w, "hash password", err)
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		BranchID:       bid,
		Email:          payload.Email,
		HashedPassword: string(hashed),
		FullName:       payload.FullName,
		Role:           payload.Role,
	})
	if err != nil {
		writeFault(w, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": user})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	users, err := h.store.ListUsers(r.Context(), bid)
	if err != nil {
		writeFault(w, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

type updateUserPayload struct {
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var payload updateUserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}
	if payload.FullName == "" {
		writeError(w, http.StatusBadRequest, fault.Validation, "full_name is required")
		return
	}
	if !enum.ValidUserRole(payload.Role) {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid role")
		return
	}

	user, err := h.store.UpdateUser(r.Context(), database.UpdateUserParams{
		ID:       id,
		BranchID: bid,
		FullName: payload.FullName,
		Role:     payload.Role,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, fault.NotFound, "user not found")
			return
		}
		writeFault(w, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.SetUserActive(r.Context(), database.SetUserActiveParams{ID: id, BranchID: bid, IsActive: false}); err != nil {
		writeFault(w, "deactivate user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
