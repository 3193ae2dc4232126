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
	"github.com/savor-pos/api/internal/fault"
	"github.com/savor-pos/api/internal/service"
)

// BranchStore defines the DB methods for branch administration.
type BranchStore interface {
	CreateBranch(ctx context.Context, arg database.CreateBranchParams) (database.Branch, error)
	GetBranch(ctx context.Context, id uuid.UUID) (database.Branch, error)
	ListBranches(ctx context.Context) ([]database.Branch, error)
}

// BranchHandler serves the ADMIN-only branch registry.
type BranchHandler struct {
	store BranchStore
}

func NewBranchHandler(store BranchStore) *BranchHandler {
	return &BranchHandler{store: store}
}

func (h *BranchHandler) RegisterRoutes(r chi.Router) {
	r.Route("/branches", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
}

type branchPayload struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (h *BranchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload branchPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		writeError(w, http.StatusBadRequest, fault.Validation, "name is required")
		return
	}

	branch, err := h.store.CreateBranch(r.Context(), database.CreateBranchParams{
		Name:    payload.Name,
		Address: service.TextOrNil(payload.Address),
		Phone:   service.TextOrNil(payload.Phone),
	})
	if err != nil {
		writeFault(w, "create branch", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"branch": branch})
}

func (h *BranchHandler) List(w http.ResponseWriter, r *http.Request) {
	branches, err := h.store.ListBranches(r.Context())
	if err != nil {
		writeFault(w, "list branches", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"branches": branches})
}

func (h *BranchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	branch, err := h.store.GetBranch(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, fault.NotFound, "branch not found")
			return
		}
		writeFault(w, "get branch", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"branch": branch})
}
