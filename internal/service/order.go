package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/savor-pos/api/internal/database"
	"github.com/savor-pos/api/internal/enum"
	"github.com/savor-pos/api/internal/fault"
	"github.com/shopspring/decimal"
)

const maxOrderNumberRetries = 3

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order service.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context, branchID uuid.UUID) (int32, error)
	GetActiveDish(ctx context.Context, arg database.GetDishParams) (database.Dish, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrderForUpdate(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	DeleteOrderItems(ctx context.Context, orderID uuid.UUID) error
	UpdateOrderSubtotal(ctx context.Context, arg database.UpdateOrderSubtotalParams) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	SetOrderTable(ctx context.Context, arg database.SetOrderTableParams) (database.Order, error)
	GetOrderItem(ctx context.Context, arg database.GetOrderItemParams) (database.OrderItem, error)
	UpdateOrderItemStatus(ctx context.Context, arg database.UpdateOrderItemStatusParams) (database.OrderItem, error)
	GetTable(ctx context.Context, arg database.GetTableParams) (database.Table, error)
	OccupyTable(ctx context.Context, arg database.OccupyTableParams) (database.Table, error)
	ReleaseTable(ctx context.Context, arg database.ReleaseTableParams) (database.Table, error)
	GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	BranchID   uuid.UUID
	CreatedBy  uuid.UUID
	Terminal   string
	OrderType  string
	TableID    string
	CustomerID string
	Notes      string
	Items      []OrderItemRequest
}

// OrderItemRequest is a single line on an order.
type OrderItemRequest struct {
	DishID   string
	Quantity int32
	Notes    string
}

// OrderResult is an order together with its items.
type OrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles order lifecycle business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// CreateOrder validates, prices the items from the current dish catalog, and
// creates the order atomically. Dine-in orders seat their table in the same
// transaction. Retries on order number unique violations (concurrent creates
// can read the same MAX).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	if !enum.ValidOrderType(req.OrderType) {
		return nil, fault.New(fault.Validation, "invalid order_type %q", req.OrderType)
	}
	if len(req.Items) == 0 {
		return nil, fault.New(fault.Validation, "items are required")
	}
	if req.OrderType == enum.OrderTypeDineIn && req.TableID == "" {
		return nil, fault.New(fault.Validation, "table_id is required for DINE_IN orders")
	}
	if req.OrderType != enum.OrderTypeDineIn && req.TableID != "" {
		return nil, fault.New(fault.Validation, "table_id is only valid for DINE_IN orders")
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req)
		if err == nil {
			return result, nil
		}
		if isUniqueViolation(err, "orders_branch_id_order_no_key") {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return false
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	nextNum, err := store.GetNextOrderNumber(ctx, req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}
	orderNumber := fmt.Sprintf("ORD-%03d", nextNum)

	// Price the lines against the active catalog; name and unit price are
	// captured on the item so later menu edits do not change past orders.
	subtotal := decimal.Zero
	var itemParams []database.CreateOrderItemParams
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fault.New(fault.Validation, "items[%d]: quantity must be > 0", i)
		}
		dishID, err := uuid.Parse(item.DishID)
		if err != nil {
			return nil, fault.New(fault.Validation, "items[%d]: invalid dish_id", i)
		}
		dish, err := store.GetActiveDish(ctx, database.GetDishParams{ID: dishID, BranchID: req.BranchID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fault.New(fault.NotFound, "items[%d]: dish not found in branch", i)
			}
			return nil, fmt.Errorf("items[%d]: get dish: %w", i, err)
		}

		unitPrice := NumericToDecimal(dish.Price)
		lineTotal := LineTotal(unitPrice, item.Quantity)
		subtotal = subtotal.Add(lineTotal)

		itemParams = append(itemParams, database.CreateOrderItemParams{
			DishID:    dishID,
			DishName:  dish.Name,
			UnitPrice: DecimalToNumeric(unitPrice),
			Quantity:  item.Quantity,
			LineTotal: DecimalToNumeric(lineTotal),
			Notes:     TextOrNil(item.Notes),
		})
	}

	customerID := pgtype.UUID{}
	if req.CustomerID != "" {
		cid, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, fault.New(fault.Validation, "invalid customer_id")
		}
		if _, err := store.GetCustomer(ctx, database.GetCustomerParams{ID: cid, BranchID: req.BranchID}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fault.New(fault.NotFound, "customer not found in branch")
			}
			return nil, fmt.Errorf("get customer: %w", err)
		}
		customerID = pgtype.UUID{Bytes: cid, Valid: true}
	}

	hallID := pgtype.UUID{}
	tableID := pgtype.UUID{}
	var seatTable uuid.UUID
	if req.OrderType == enum.OrderTypeDineIn {
		tid, err := uuid.Parse(req.TableID)
		if err != nil {
			return nil, fault.New(fault.Validation, "invalid table_id")
		}
		table, err := store.GetTable(ctx, database.GetTableParams{ID: tid, BranchID: req.BranchID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fault.New(fault.NotFound, "table not found in branch")
			}
			return nil, fmt.Errorf("get table: %w", err)
		}
		hallID = pgtype.UUID{Bytes: table.HallID, Valid: true}
		tableID = pgtype.UUID{Bytes: tid, Valid: true}
		seatTable = tid
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		BranchID:    req.BranchID,
		OrderNo:     nextNum,
		OrderNumber: orderNumber,
		Terminal:    TextOrNil(req.Terminal),
		OrderType:   req.OrderType,
		HallID:      hallID,
		TableID:     tableID,
		CustomerID:  customerID,
		Notes:       TextOrNil(req.Notes),
		Subtotal:    DecimalToNumeric(subtotal.Round(2)),
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var items []database.OrderItem
	for _, p := range itemParams {
		p.OrderID = order.ID
		item, err := store.CreateOrderItem(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	if req.OrderType == enum.OrderTypeDineIn {
		if _, err := store.OccupyTable(ctx, database.OccupyTableParams{ID: seatTable, OrderID: order.ID}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fault.New(fault.Conflict, "table is already occupied")
			}
			return nil, fmt.Errorf("occupy table: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &OrderResult{Order: order, Items: items}, nil
}

// EditItemsRequest replaces the full item list of an open order.
type EditItemsRequest struct {
	BranchID uuid.UUID
	OrderID  uuid.UUID
	Items    []OrderItemRequest
}

// EditItems replaces the order's items and reprices the subtotal. Editing is
// only allowed while the order is PENDING or RUNNING; once a bill exists the
// contents are frozen.
func (s *OrderService) EditItems(ctx context.Context, req EditItemsRequest) (*OrderResult, error) {
	if len(req.Items) == 0 {
		return nil, fault.New(fault.Validation, "items are required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, database.GetOrderParams{ID: req.OrderID, BranchID: req.BranchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "order not found")
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !OrderEditable(order.Status) {
		return nil, fault.New(fault.InvalidState, "order %s cannot be edited in status %s", order.OrderNumber, order.Status)
	}

	if err := store.DeleteOrderItems(ctx, order.ID); err != nil {
		return nil, fmt.Errorf("delete order items: %w", err)
	}

	subtotal := decimal.Zero
	var items []database.OrderItem
	for i, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, fault.New(fault.Validation, "items[%d]: quantity must be > 0", i)
		}
		dishID, err := uuid.Parse(line.DishID)
		if err != nil {
			return nil, fault.New(fault.Validation, "items[%d]: invalid dish_id", i)
		}
		dish, err := store.GetActiveDish(ctx, database.GetDishParams{ID: dishID, BranchID: req.BranchID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fault.New(fault.NotFound, "items[%d]: dish not found in branch", i)
			}
			return nil, fmt.Errorf("items[%d]: get dish: %w", i, err)
		}

		unitPrice := NumericToDecimal(dish.Price)
		lineTotal := LineTotal(unitPrice, line.Quantity)
		subtotal = subtotal.Add(lineTotal)

		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:   order.ID,
			DishID:    dishID,
			DishName:  dish.Name,
			UnitPrice: DecimalToNumeric(unitPrice),
			Quantity:  line.Quantity,
			LineTotal: DecimalToNumeric(lineTotal),
			Notes:     TextOrNil(line.Notes),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	order, err = store.UpdateOrderSubtotal(ctx, database.UpdateOrderSubtotalParams{
		ID:       order.ID,
		Subtotal: DecimalToNumeric(subtotal.Round(2)),
	})
	if err != nil {
		return nil, fmt.Errorf("update subtotal: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &OrderResult{Order: order, Items: items}, nil
}

// ChangeStatusRequest is a client-initiated status change.
type ChangeStatusRequest struct {
	BranchID uuid.UUID
	OrderID  uuid.UUID
	Status   string
}

// ChangeStatus applies a manual lifecycle transition. Cancelling a dine-in
// order frees its table in the same transaction.
func (s *OrderService) ChangeStatus(ctx context.Context, req ChangeStatusRequest) (*database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, database.GetOrderParams{ID: req.OrderID, BranchID: req.BranchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "order not found")
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := CheckManualTransition(order.Status, req.Status); err != nil {
		return nil, err
	}

	updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:         order.ID,
		BranchID:   req.BranchID,
		Status:     req.Status,
		FromStatus: order.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.Conflict, "order status changed concurrently")
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	if req.Status == enum.OrderStatusCancelled && updated.TableID.Valid {
		_, err := store.ReleaseTable(ctx, database.ReleaseTableParams{
			ID:      updated.TableID.Bytes,
			OrderID: updated.ID,
		})
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("release table: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &updated, nil
}

// TransferRequest moves a dine-in order to another table.
type TransferRequest struct {
	BranchID uuid.UUID
	OrderID  uuid.UUID
	TableID  uuid.UUID
}

// Transfer seats the order at the target table and frees the old one. The
// order must still be open and the target table free.
func (s *OrderService) Transfer(ctx context.Context, req TransferRequest) (*database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, database.GetOrderParams{ID: req.OrderID, BranchID: req.BranchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "order not found")
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.OrderType != enum.OrderTypeDineIn {
		return nil, fault.New(fault.Validation, "only DINE_IN orders can be transferred")
	}
	if IsTerminalOrderStatus(order.Status) {
		return nil, fault.New(fault.InvalidState, "order %s is closed", order.OrderNumber)
	}
	if order.TableID.Valid && order.TableID.Bytes == req.TableID {
		return nil, fault.New(fault.Validation, "order is already at that table")
	}

	target, err := store.GetTable(ctx, database.GetTableParams{ID: req.TableID, BranchID: req.BranchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "table not found in branch")
		}
		return nil, fmt.Errorf("get table: %w", err)
	}
	if _, err := store.OccupyTable(ctx, database.OccupyTableParams{ID: target.ID, OrderID: order.ID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.Conflict, "table is already occupied")
		}
		return nil, fmt.Errorf("occupy table: %w", err)
	}
	if order.TableID.Valid {
		_, err := store.ReleaseTable(ctx, database.ReleaseTableParams{ID: order.TableID.Bytes, OrderID: order.ID})
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("release table: %w", err)
		}
	}

	updated, err := store.SetOrderTable(ctx, database.SetOrderTableParams{
		ID:      order.ID,
		HallID:  pgtype.UUID{Bytes: target.HallID, Valid: true},
		TableID: pgtype.UUID{Bytes: target.ID, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("set order table: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &updated, nil
}

// AdvanceItemRequest moves a single item along the kitchen sequence.
type AdvanceItemRequest struct {
	BranchID uuid.UUID
	OrderID  uuid.UUID
	ItemID   uuid.UUID
	Status   string
}

// AdvanceItem applies one kitchen step to an item. Starting the first item
// promotes a PENDING order to RUNNING.
func (s *OrderService) AdvanceItem(ctx context.Context, req AdvanceItemRequest) (*database.OrderItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, database.GetOrderParams{ID: req.OrderID, BranchID: req.BranchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "order not found")
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if IsTerminalOrderStatus(order.Status) {
		return nil, fault.New(fault.InvalidState, "order %s is closed", order.OrderNumber)
	}

	item, err := store.GetOrderItem(ctx, database.GetOrderItemParams{ID: req.ItemID, OrderID: order.ID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "order item not found")
		}
		return nil, fmt.Errorf("get order item: %w", err)
	}
	if err := CheckItemTransition(item.Status, req.Status); err != nil {
		return nil, err
	}

	updated, err := store.UpdateOrderItemStatus(ctx, database.UpdateOrderItemStatusParams{
		ID:         item.ID,
		OrderID:    order.ID,
		Status:     req.Status,
		FromStatus: item.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.Conflict, "item status changed concurrently")
		}
		return nil, fmt.Errorf("update item status: %w", err)
	}

	// Kitchen picking up the first item starts the order.
	if req.Status == enum.ItemStatusPreparing && order.Status == enum.OrderStatusPending {
		_, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
			ID:         order.ID,
			BranchID:   req.BranchID,
			Status:     enum.OrderStatusRunning,
			FromStatus: enum.OrderStatusPending,
		})
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("promote order: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &updated, nil
}
