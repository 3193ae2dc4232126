package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/savor-pos/api/internal/auth"
	"github.com/savor-pos/api/internal/database"
	"github.com/savor-pos/api/internal/fault"
	"golang.org/x/crypto/bcrypt"
)

// AuthStore defines the DB methods needed by the auth handler.
type AuthStore interface {
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (database.User, error)
}

type AuthHandler struct {
	store     AuthStore
	jwtSecret string
}

func NewAuthHandler(store AuthStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Terminal string `json:"terminal"`
}

type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         database.User `json:"user"`
}

// Login exchanges credentials for a token pair. The terminal label is carried
// in the claims so orders and bills record which till issued them.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, fault.Validation, "email and password are required")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
			return
		}
		writeFault(w, "login", err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
		return
	}

	access, err := auth.GenerateToken(h.jwtSecret, user.ID, user.BranchID, user.Role, req.Terminal)
	if err != nil {
		writeFault(w, "generate token", err)
		return
	}
	refresh, err := auth.GenerateRefreshToken(h.jwtSecret, user.ID)
	if err != nil {
		writeFault(w, "generate refresh token", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refresh, User: user})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	Terminal     string `json:"terminal"`
}

// Refresh issues a new token pair from a valid refresh token. The user is
// re-read so deactivation and role changes take effect on refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}

	userID, err := auth.ValidateRefreshToken(h.jwtSecret, req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid refresh token")
		return
	}

	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "user not found")
			return
		}
		writeFault(w, "refresh", err)
		return
	}
	if !user.IsActive {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "user is deactivated")
		return
	}

	access, err := auth.GenerateToken(h.jwtSecret, user.ID, user.BranchID, user.Role, req.Terminal)
	if err != nil {
		writeFault(w, "generate token", err)
		return
	}
	refresh, err := auth.GenerateRefreshToken(h.jwtSecret, user.ID)
	if err != nil {
		writeFault(w, "generate refresh token", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refresh, User: user})
}
