package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/savor-pos/api/internal/database"
	"github.com/savor-pos/api/internal/enum"
	"github.com/savor-pos/api/internal/fault"
	"github.com/savor-pos/api/internal/service"
	"github.com/savor-pos/api/internal/ws"
)

// KitchenStore defines the DB methods for the kitchen board reads.
type KitchenStore interface {
	ListActiveOrders(ctx context.Context, branchID uuid.UUID) ([]database.Order, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

// ItemAdvancer is the slice of the order service the kitchen uses.
type ItemAdvancer interface {
	AdvanceItem(ctx context.Context, req service.AdvanceItemRequest) (*database.OrderItem, error)
}

type KitchenHandler struct {
	store    KitchenStore
	svc      ItemAdvancer
	notifier *Notifier
}

func NewKitchenHandler(store KitchenStore, svc ItemAdvancer, notifier *Notifier) *KitchenHandler {
	return &KitchenHandler{store: store, svc: svc, notifier: notifier}
}

func (h *KitchenHandler) RegisterRoutes(r chi.Router) {
	r.Route("/kitchen", func(r chi.Router) {
		r.Get("/queue", h.Queue)
		r.Patch("/orders/{id}/items/{itemID}/status", h.AdvanceItem)
	})
}

type queueEntry struct {
	Order          database.Order       `json:"order"`
	Items          []database.OrderItem `json:"items"`
	CompletedItems int                  `json:"completed_items"`
	TotalItems     int                  `json:"total_items"`
}

// Queue returns open orders with their items, oldest first, for the kitchen
// board.
func (h *KitchenHandler) Queue(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}

	orders, err := h.store.ListActiveOrders(r.Context(), bid)
	if err != nil {
		writeFault(w, "list active orders", err)
		return
	}

	queue := make([]queueEntry, 0, len(orders))
	for _, o := range orders {
		items, err := h.store.ListOrderItems(r.Context(), o.ID)
		if err != nil {
			writeFault(w, "list order items", err)
			return
		}
		done := 0
		for _, it := range items {
			if it.Status == enum.ItemStatusCompleted {
				done++
			}
		}
		queue = append(queue, queueEntry{Order: o, Items: items, CompletedItems: done, TotalItems: len(items)})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"queue": queue})
}

type advanceItemPayload struct {
	Status string `json:"status"`
}

func (h *KitchenHandler) AdvanceItem(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemID")
	if !ok {
		return
	}

	var payload advanceItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid request body")
		return
	}

	item, err := h.svc.AdvanceItem(r.Context(), service.AdvanceItemRequest{
		BranchID: bid,
		OrderID:  orderID,
		ItemID:   itemID,
		Status:   payload.Status,
	})
	if err != nil {
		writeFault(w, "advance item", err)
		return
	}

	h.notifier.Notify(bid, ws.EventItemStatus, item)
	writeJSON(w, http.StatusOK, map[string]interface{}{"item": item})
}
