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
	"github.com/savor-pos/api/internal/middleware"
	"github.com/savor-pos/api/internal/service"
	"github.com/savor-pos/api/internal/ws"
)

// OrderReadStore defines the DB methods for order reads; writes go through
// the order service.
type OrderReadStore interface {
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	GetBillByOrder(ctx context.Context, arg database.GetBillByOrderParams) (database.Bill, error)
}

// OrderLifecycle is the slice of the order service the handler uses.
type OrderLifecycle interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error)
	EditItems(ctx context.Context, req service.EditItemsRequest) (*service.OrderResult, error)
	ChangeStatus(ctx context.Context, req service.ChangeStatusRequest) (*database.Order, error)
	Transfer(ctx context.Context, req service.TransferRequest) (*database.Order, error)
}

type OrderHandler struct {
	store    OrderReadStore
	svc      OrderLifecycle
	notifier *Notifier
}

func NewOrderHandler(store OrderReadStore, svc OrderLifecycle, notifier *Notifier) *OrderHandler {
	return &OrderHandler{store: store, svc: svc, notifier: notifier}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}/status", h.ChangeStatus)
		r.Put("/{id}/items", h.EditItems)
		r.Post("/{id}/transfer", h.Transfer)
		r.Delete("/{id}", h.Cancel)
	})
}

type orderItemPayload struct {
	DishID   string `json:"dish_id"`
	Quantity int32  `json:"quantity"`
	Notes    string `json:"notes"`
}

type createOrderPayload struct {
	OrderType  string             `json:"order_type"`
	TableID    string             `json:"table_id"`
	CustomerID string             `json:"customer_id"`
	Notes      string             `json:"notes"`
	Items      []orderItemPayload `json:"items"`
}

type orderResponse struct {
	Order database.Order       `json:"order"`
	Items []database.OrderItem `json:"items"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	var payload createOrderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}

	items := make([]service.OrderItemRequest, 0, len(payload.Items))
	for _, it := range payload.Items {
		items = append(items, service.OrderItemRequest{DishID: it.DishID, Quantity: it.Quantity, Notes: it.Notes})
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		BranchID:   bid,
		CreatedBy:  claims.UserID,
		Terminal:   claims.Terminal,
		OrderType:  payload.OrderType,
		TableID:    payload.TableID,
		CustomerID: payload.CustomerID,
		Notes:      payload.Notes,
		Items:      items,
	})
	if err != nil {
		writeFault(w, "create order", err)
		return
	}

	h.notifier.Notify(bid, ws.EventOrderCreated, result.Order)
	if result.Order.TableID.Valid {
		h.notifier.Notify(bid, ws.EventTableStatus, result.Order)
	}
	writeJSON(w, http.StatusCreated, orderResponse{Order: result.Order, Items: result.Items})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		writeFault(w, "list orders", err)
		return
	}
	limit, offset := parsePage(r)

	orders, err := h.store.ListOrders(r.Context(), database.ListOrdersParams{
		BranchID:  bid,
		Status:    queryText(r, "status"),
		OrderType: queryText(r, "order_type"),
		StartDate: start,
		EndDate:   end,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeFault(w, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.store.GetOrder(r.Context(), database.GetOrderParams{ID: id, BranchID: bid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, fault.NotFound, "order not found")
			return
		}
		writeFault(w, "get order", err)
		return
	}
	items, err := h.store.ListOrderItems(r.Context(), order.ID)
	if err != nil {
		writeFault(w, "list order items", err)
		return
	}

	resp := map[string]interface{}{"order": order, "items": items}
	bill, err := h.store.GetBillByOrder(r.Context(), database.GetBillByOrderParams{OrderID: order.ID, BranchID: bid})
	switch {
	case err == nil:
		resp["bill"] = bill
	case !errors.Is(err, pgx.ErrNoRows):
		writeFault(w, "get bill", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type changeStatusPayload struct {
	Status string `json:"status"`
}

func (h *OrderHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var payload changeStatusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}

	order, err := h.svc.ChangeStatus(r.Context(), service.ChangeStatusRequest{
		BranchID: bid,
		OrderID:  id,
		Status:   payload.Status,
	})
	if err != nil {
		writeFault(w, "change order status", err)
		return
	}

	h.notifier.Notify(bid, ws.EventOrderStatus, order)
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

type editItemsPayload struct {
	Items []orderItemPayload `json:"items"`
}

func (h *OrderHandler) EditItems(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var payload editItemsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}

	items := make([]service.OrderItemRequest, 0, len(payload.Items))
	for _, it := range payload.Items {
		items = append(items, service.OrderItemRequest{DishID: it.DishID, Quantity: it.Quantity, Notes: it.Notes})
	}

	result, err := h.svc.EditItems(r.Context(), service.EditItemsRequest{
		BranchID: bid,
		OrderID:  id,
		Items:    items,
	})
	if err != nil {
		writeFault(w, "edit order items", err)
		return
	}

	h.notifier.Notify(bid, ws.EventOrderUpdated, result.Order)
	writeJSON(w, http.StatusOK, orderResponse{Order: result.Order, Items: result.Items})
}

// Cancel is shorthand for a status change to CANCELLED.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.svc.ChangeStatus(r.Context(), service.ChangeStatusRequest{
		BranchID: bid,
		OrderID:  id,
		Status:   enum.OrderStatusCancelled,
	})
	if err != nil {
		writeFault(w, "cancel order", err)
		return
	}

	h.notifier.Notify(bid, ws.EventOrderStatus, order)
	if order.TableID.Valid {
		h.notifier.Notify(bid, ws.EventTableStatus, order)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

type transferPayload struct {
	TableID string `json:"table_id"`
}

func (h *OrderHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var payload transferPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}
	tableID, err := uuid.Parse(payload.TableID)
	if err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid table_id")
		return
	}

	order, err := h.svc.Transfer(r.Context(), service.TransferRequest{
		BranchID: bid,
		OrderID:  id,
		TableID:  tableID,
	})
	if err != nil {
		writeFault(w, "transfer order", err)
		return
	}

	h.notifier.Notify(bid, ws.EventTableStatus, order)
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}
