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
	"github.com/savor-pos/api/internal/middleware"
	"github.com/savor-pos/api/internal/service"
	"github.com/savor-pos/api/internal/ws"
	"github.com/shopspring/decimal"
)

// BillReadStore defines the DB methods for bill reads; settlement goes
// through the billing service.
type BillReadStore interface {
	GetBill(ctx context.Context, arg database.GetBillParams) (database.Bill, error)
	GetBillByOrder(ctx context.Context, arg database.GetBillByOrderParams) (database.Bill, error)
	ListBills(ctx context.Context, arg database.ListBillsParams) ([]database.Bill, error)
}

// BillingFlow is the slice of the billing service the handler uses.
type BillingFlow interface {
	GenerateBill(ctx context.Context, req service.GenerateBillRequest) (*database.Bill, error)
	CapturePayment(ctx context.Context, req service.PaymentRequest) (*service.PaymentResult, error)
}

type BillHandler struct {
	store    BillReadStore
	billing  BillingFlow
	notifier *Notifier
}

func NewBillHandler(store BillReadStore, billing BillingFlow, notifier *Notifier) *BillHandler {
	return &BillHandler{store: store, billing: billing, notifier: notifier}
}

func (h *BillHandler) RegisterRoutes(r chi.Router) {
	r.Route("/bills", func(r chi.Router) {
		r.Post("/", h.Generate)
		r.Get("/", h.List)
		r.Get("/by-order/{orderID}", h.GetByOrder)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/pay", h.Pay)
	})
}

type generateBillPayload struct {
	OrderID            string          `json:"order_id"`
	ServiceCharge      decimal.Decimal `json:"service_charge"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	PaymentMethod      string          `json:"payment_method"`
	CustomerID         string          `json:"customer_id"`
	IsCredit           bool            `json:"is_credit"`
}

func (h *BillHandler) Generate(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	var payload generateBillPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}
	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid order_id")
		return
	}

	bill, err := h.billing.GenerateBill(r.Context(), service.GenerateBillRequest{
		BranchID:           bid,
		OrderID:            orderID,
		GeneratedBy:        claims.UserID,
		Terminal:           claims.Terminal,
		ServiceCharge:      payload.ServiceCharge,
		DiscountPercentage: payload.DiscountPercentage,
		PaymentMethod:      payload.PaymentMethod,
		CustomerID:         payload.CustomerID,
		IsCredit:           payload.IsCredit,
	})
	if err != nil {
		writeFault(w, "generate bill", err)
		return
	}

	h.notifier.Notify(bid, ws.EventBillGenerated, bill)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"bill": bill})
}

func (h *BillHandler) GetByOrder(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "orderID")
	if !ok {
		return
	}

	bill, err := h.store.GetBillByOrder(r.Context(), database.GetBillByOrderParams{OrderID: orderID, BranchID: bid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, fault.NotFound, "order has no bill")
			return
		}
		writeFault(w, "get bill", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bill": bill})
}

func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		writeFault(w, "list bills", err)
		return
	}
	limit, offset := parsePage(r)

	bills, err := h.store.ListBills(r.Context(), database.ListBillsParams{
		BranchID:      bid,
		PaymentStatus: queryText(r, "payment_status"),
		StartDate:     start,
		EndDate:       end,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		writeFault(w, "list bills", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bills": bills})
}

func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	bill, err := h.store.GetBill(r.Context(), database.GetBillParams{ID: id, BranchID: bid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, fault.NotFound, "bill not found")
			return
		}
		writeFault(w, "get bill", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bill": bill})
}

type payPayload struct {
	RequestID    string          `json:"request_id"`
	Method       string          `json:"method"`
	CashReceived decimal.Decimal `json:"cash_received"`
}

type payResponse struct {
	Bill    database.Bill `json:"bill"`
	Warning string        `json:"warning,omitempty"`
}

func (h *BillHandler) Pay(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var payload payPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}

	result, err := h.billing.CapturePayment(r.Context(), service.PaymentRequest{
		BranchID:     bid,
		BillID:       id,
		RequestID:    payload.RequestID,
		Method:       payload.Method,
		CashReceived: payload.CashReceived,
	})
	if err != nil {
		writeFault(w, "capture payment", err)
		return
	}

	h.notifier.Notify(bid, ws.EventPaymentCaptured, result.Bill)
	writeJSON(w, http.StatusOK, payResponse{Bill: result.Bill, Warning: result.Warning})
}
