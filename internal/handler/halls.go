package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/savor-pos/api/internal/database"
	"github.com/savor-pos/api/internal/fault"
)

// HallStore defines the DB methods for the floor plan: halls and tables.
type HallStore interface {
	CreateHall(ctx context.Context, arg database.CreateHallParams) (database.Hall, error)
	GetHall(ctx context.Context, arg database.GetHallParams) (database.Hall, error)
	ListHalls(ctx context.Context, branchID uuid.UUID) ([]database.Hall, error)
	RenameHall(ctx context.Context, arg database.RenameHallParams) (database.Hall, error)
	DeactivateHall(ctx context.Context, arg database.DeactivateHallParams) error
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.Table, error)
	ListTables(ctx context.Context, branchID uuid.UUID) ([]database.Table, error)
	ListHallTables(ctx context.Context, arg database.ListHallTablesParams) ([]database.Table, error)
	RenameTable(ctx context.Context, arg database.RenameTableParams) (database.Table, error)
	DeactivateTable(ctx context.Context, arg database.DeactivateTableParams) (database.Table, error)
}

type HallHandler struct {
	store HallStore
}

func NewHallHandler(store HallStore) *HallHandler {
	return &HallHandler{store: store}
}

func (h *HallHandler) RegisterRoutes(r chi.Router) {
	r.Route("/halls", func(r chi.Router) {
		r.Post("/", h.CreateHall)
		r.Get("/", h.ListHalls)
		r.Patch("/{id}", h.RenameHall)
		r.Delete("/{id}", h.DeactivateHall)
		r.Post("/{id}/tables", h.CreateTable)
		r.Get("/{id}/tables", h.ListHallTables)
	})
	r.Route("/tables", func(r chi.Router) {
		r.Get("/", h.ListTables)
		r.Patch("/{id}", h.RenameTable)
		r.Delete("/{id}", h.DeactivateTable)
	})
}

type hallPayload struct {
	Name string `json:"name"`
}

func (h *HallHandler) CreateHall(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	var payload hallPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		writeError(w, http.StatusBadRequest, fault.Validation, "name is required")
		return
	}

	hall, err := h.store.CreateHall(r.Context(), database.CreateHallParams{BranchID: bid, Name: payload.Name})
	if err != nil {
		writeFault(w, "create hall", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"hall": hall})
}

func (h *HallHandler) ListHalls(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	halls, err := h.store.ListHalls(r.Context(), bid)
	if err != nil {
		writeFault(w, "list halls", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"halls": halls})
}

func (h *HallHandler) RenameHall(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var payload hallPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		writeError(w, http.StatusBadRequest, fault.Validation, "name is required")
		return
	}

	hall, err := h.store.RenameHall(r.Context(), database.RenameHallParams{ID: id, BranchID: bid, Name: payload.Name})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, fault.NotFound, "hall not found")
			return
		}
		writeFault(w, "rename hall", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"hall": hall})
}

func (h *HallHandler) DeactivateHall(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	// Refuse while any table in the hall is seated.
	tables, err := h.store.ListHallTables(r.Context(), database.ListHallTablesParams{HallID: id, BranchID: bid})
	if err != nil {
		writeFault(w, "list hall tables", err)
		return
	}
	for _, t := range tables {
		if t.CurrentOrderID.Valid {
			writeError(w, http.StatusConflict, fault.Conflict, "hall has occupied tables")
			return
		}
	}

	if err := h.store.DeactivateHall(r.Context(), database.DeactivateHallParams{ID: id, BranchID: bid}); err != nil {
		writeFault(w, "deactivate hall", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type tablePayload struct {
	Name   string `json:"name"`
	HallID string `json:"hall_id"`
}

func (h *HallHandler) CreateTable(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	hallID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var payload tablePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		writeError(w, http.StatusBadRequest, fault.Validation, "name is required")
		return
	}

	if _, err := h.store.GetHall(r.Context(), database.GetHallParams{ID: hallID, BranchID: bid}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, fault.NotFound, "hall not found")
			return
		}
		writeFault(w, "get hall", err)
		return
	}

	table, err := h.store.CreateTable(r.Context(), database.CreateTableParams{
		HallID:   hallID,
		BranchID: bid,
		Name:     payload.Name,
	})
	if err != nil {
		writeFault(w, "create table", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"table": table})
}

func (h *HallHandler) ListHallTables(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	hallID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	tables, err := h.store.ListHallTables(r.Context(), database.ListHallTablesParams{HallID: hallID, BranchID: bid})
	if err != nil {
		writeFault(w, "list hall tables", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tables": tables})
}

// ListTables returns the whole floor view: every active table with its
// status and current order.
func (h *HallHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	tables, err := h.store.ListTables(r.Context(), bid)
	if err != nil {
		writeFault(w, "list tables", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tables": tables})
}

func (h *HallHandler) RenameTable(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var payload tablePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		writeError(w, http.StatusBadRequest, fault.Validation, "name is required")
		return
	}

	hallID := pgtype.UUID{}
	if payload.HallID != "" {
		hid, err := uuid.Parse(payload.HallID)
		if err != nil {
			writeError(w, http.StatusBadRequest, fault.Validation, "invalid hall_id")
			return
		}
		if _, err := h.store.GetHall(r.Context(), database.GetHallParams{ID: hid, BranchID: bid}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusNotFound, fault.NotFound, "hall not found")
				return
			}
			writeFault(w, "get hall", err)
			return
		}
		hallID = pgtype.UUID{Bytes: hid, Valid: true}
	}

	table, err := h.store.RenameTable(r.Context(), database.RenameTableParams{
		ID:       id,
		BranchID: bid,
		Name:     payload.Name,
		HallID:   hallID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, fault.NotFound, "table not found")
			return
		}
		writeFault(w, "rename table", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"table": table})
}

func (h *HallHandler) DeactivateTable(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	// The update only matches free tables, so an occupied table comes back
	// as no rows.
	if _, err := h.store.DeactivateTable(r.Context(), database.DeactivateTableParams{ID: id, BranchID: bid}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusConflict, fault.Conflict, "table is occupied or not found")
			return
		}
		writeFault(w, "deactivate table", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
