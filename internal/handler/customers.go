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

// CustomerStore defines the DB methods for the customer ledger.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error)
	GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
	ListCustomers(ctx context.Context, arg database.ListCustomersParams) ([]database.Customer, error)
	UpdateCustomer(ctx context.Context, arg database.UpdateCustomerParams) (database.Customer, error)
	DeactivateCustomer(ctx context.Context, arg database.DeactivateCustomerParams) error
	ListCustomerCreditBills(ctx context.Context, arg database.ListCustomerCreditBillsParams) ([]database.Bill, error)
}

type CustomerHandler struct {
	store CustomerStore
}

func NewCustomerHandler(store CustomerStore) *CustomerHandler {
	return &CustomerHandler{store: store}
}

func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Deactivate)
		r.Get("/{id}/credits", h.Credits)
	})
}

type customerPayload struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

func (p customerPayload) validate() error {
	if p.Name == "" {
		return fault.New(fault.Validation, "name is required")
	}
	if p.Phone == "" {
		return fault.New(fault.Validation, "phone is required")
	}
	return nil
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	var payload customerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}
	if err := payload.validate(); err != nil {
		writeFault(w, "create customer", err)
		return
	}

	customer, err := h.store.CreateCustomer(r.Context(), database.CreateCustomerParams{
		BranchID: bid,
		Name:     payload.Name,
		Phone:    payload.Phone,
		Email:    service.TextOrNil(payload.Email),
		Notes:    service.TextOrNil(payload.Notes),
	})
	if err != nil {
		writeFault(w, "create customer", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"customer": customer})
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	limit, offset := parsePage(r)
	customers, err := h.store.ListCustomers(r.Context(), database.ListCustomersParams{
		BranchID: bid,
		Search:   queryText(r, "search"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeFault(w, "list customers", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"customers": customers})
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	customer, err := h.store.GetCustomer(r.Context(), database.GetCustomerParams{ID: id, BranchID: bid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, fault.NotFound, "customer not found")
			return
		}
		writeFault(w, "get customer", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"customer": customer})
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var payload customerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}
	if err := payload.validate(); err != nil {
		writeFault(w, "update customer", err)
		return
	}

	customer, err := h.store.UpdateCustomer(r.Context(), database.UpdateCustomerParams{
		ID:       id,
		BranchID: bid,
		Name:     payload.Name,
		Phone:    payload.Phone,
		Email:    service.TextOrNil(payload.Email),
		Notes:    service.TextOrNil(payload.Notes),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, fault.NotFound, "customer not found")
			return
		}
		writeFault(w, "update customer", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"customer": customer})
}

func (h *CustomerHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeactivateCustomer(r.Context(), database.DeactivateCustomerParams{ID: id, BranchID: bid}); err != nil {
		writeFault(w, "deactivate customer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type creditsResponse struct {
	Customer    database.Customer `json:"customer"`
	Bills       []database.Bill   `json:"bills"`
	Outstanding string            `json:"outstanding"`
}

// Credits returns the customer's open credit bills and their total.
func (h *CustomerHandler) Credits(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	customer, err := h.store.GetCustomer(r.Context(), database.GetCustomerParams{ID: id, BranchID: bid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, fault.NotFound, "customer not found")
			return
		}
		writeFault(w, "get customer", err)
		return
	}

	bills, err := h.store.ListCustomerCreditBills(r.Context(), database.ListCustomerCreditBillsParams{
		CustomerID: id,
		BranchID:   bid,
	})
	if err != nil {
		writeFault(w, "list credit bills", err)
		return
	}

	outstanding := decimal.Zero
	for _, b := range bills {
		outstanding = outstanding.Add(service.NumericToDecimal(b.GrandTotal))
	}

	writeJSON(w, http.StatusOK, creditsResponse{
		Customer:    customer,
		Bills:       bills,
		Outstanding: outstanding.StringFixed(2),
	})
}
