package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/savor-pos/api/internal/database"
	"github.com/savor-pos/api/internal/fault"
	"github.com/savor-pos/api/internal/service"
	"github.com/shopspring/decimal"
)

// DishStore defines the DB methods for the menu catalog.
type DishStore interface {
	CreateDish(ctx context.Context, arg database.CreateDishParams) (database.Dish, error)
	GetDish(ctx context.Context, arg database.GetDishParams) (database.Dish, error)
	ListDishes(ctx context.Context, arg database.ListDishesParams) ([]database.Dish, error)
	UpdateDish(ctx context.Context, arg database.UpdateDishParams) (database.Dish, error)
	DeactivateDish(ctx context.Context, arg database.DeactivateDishParams) error
}

type DishHandler struct {
	store DishStore
}

func NewDishHandler(store DishStore) *DishHandler {
	return &DishHandler{store: store}
}

func (h *DishHandler) RegisterRoutes(r chi.Router) {
	r.Route("/dishes", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Deactivate)
	})
}

type dishPayload struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
}

func (p dishPayload) validate() error {
	if p.Name == "" {
		return fault.New(fault.Validation, "name is required")
	}
	if p.Price.IsNegative() {
		return fault.New(fault.Validation, "price must not be negative")
	}
	return nil
}

func (h *DishHandler) Create(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	var payload dishPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}
	if err := payload.validate(); err != nil {
		writeFault(w, "create dish", err)
		return
	}

	dish, err := h.store.CreateDish(r.Context(), database.CreateDishParams{
		BranchID: bid,
		Name:     payload.Name,
		Category: service.TextOrNil(payload.Category),
		Price:    service.DecimalToNumeric(payload.Price),
	})
	if err != nil {
		writeFault(w, "create dish", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"dish": dish})
}

func (h *DishHandler) List(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	dishes, err := h.store.ListDishes(r.Context(), database.ListDishesParams{
		BranchID: bid,
		Category: queryText(r, "category"),
	})
	if err != nil {
		writeFault(w, "list dishes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"dishes": dishes})
}

func (h *DishHandler) Get(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	dish, err := h.store.GetDish(r.Context(), database.GetDishParams{ID: id, BranchID: bid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, fault.NotFound, "dish not found")
			return
		}
		writeFault(w, "get dish", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"dish": dish})
}

func (h *DishHandler) Update(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var payload dishPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}
	if err := payload.validate(); err != nil {
		writeFault(w, "update dish", err)
		return
	}

	dish, err := h.store.UpdateDish(r.Context(), database.UpdateDishParams{
		ID:       id,
		BranchID: bid,
		Name:     payload.Name,
		Category: service.TextOrNil(payload.Category),
		Price:    service.DecimalToNumeric(payload.Price),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, fault.NotFound, "dish not found")
			return
		}
		writeFault(w, "update dish", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"dish": dish})
}

// Deactivate retires a dish from the menu. Past order items keep their
// captured name and price.
func (h *DishHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeactivateDish(r.Context(), database.DeactivateDishParams{ID: id, BranchID: bid}); err != nil {
		writeFault(w, "deactivate dish", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
