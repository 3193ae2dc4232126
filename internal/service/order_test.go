package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/savor-pos/api/internal/database"
	"github.com/savor-pos/api/internal/enum"
	"github.com/savor-pos/api/internal/fault"
	"github.com/shopspring/decimal"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr   error
	rollbackErr error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error          { return m.commitErr }
func (m *mockTx) Rollback(ctx context.Context) error        { return m.rollbackErr }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner implements TxBeginner.
type mockTxBeginner struct {
	tx  pgx.Tx
	err error
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.tx, m.err
}

// mockOrderStore implements OrderStore with configurable behavior.
type mockOrderStore struct {
	getNextOrderNumberFn    func(ctx context.Context, branchID uuid.UUID) (int32, error)
	getActiveDishFn         func(ctx context.Context, arg database.GetDishParams) (database.Dish, error)
	createOrderFn           func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	createOrderItemFn       func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	getOrderForUpdateFn     func(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	deleteOrderItemsFn      func(ctx context.Context, orderID uuid.UUID) error
	updateOrderSubtotalFn   func(ctx context.Context, arg database.UpdateOrderSubtotalParams) (database.Order, error)
	updateOrderStatusFn     func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	setOrderTableFn         func(ctx context.Context, arg database.SetOrderTableParams) (database.Order, error)
	getOrderItemFn          func(ctx context.Context, arg database.GetOrderItemParams) (database.OrderItem, error)
	updateOrderItemStatusFn func(ctx context.Context, arg database.UpdateOrderItemStatusParams) (database.OrderItem, error)
	getTableFn              func(ctx context.Context, arg database.GetTableParams) (database.Table, error)
	occupyTableFn           func(ctx context.Context, arg database.OccupyTableParams) (database.Table, error)
	releaseTableFn          func(ctx context.Context, arg database.ReleaseTableParams) (database.Table, error)
	getCustomerFn           func(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
}

func (m *mockOrderStore) GetNextOrderNumber(ctx context.Context, branchID uuid.UUID) (int32, error) {
	return m.getNextOrderNumberFn(ctx, branchID)
}
func (m *mockOrderStore) GetActiveDish(ctx context.Context, arg database.GetDishParams) (database.Dish, error) {
	return m.getActiveDishFn(ctx, arg)
}
func (m *mockOrderStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	return m.createOrderFn(ctx, arg)
}
func (m *mockOrderStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	return m.createOrderItemFn(ctx, arg)
}
func (m *mockOrderStore) GetOrderForUpdate(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
	return m.getOrderForUpdateFn(ctx, arg)
}
func (m *mockOrderStore) DeleteOrderItems(ctx context.Context, orderID uuid.UUID) error {
	return m.deleteOrderItemsFn(ctx, orderID)
}
func (m *mockOrderStore) UpdateOrderSubtotal(ctx context.Context, arg database.UpdateOrderSubtotalParams) (database.Order, error) {
	return m.updateOrderSubtotalFn(ctx, arg)
}
func (m *mockOrderStore) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	return m.updateOrderStatusFn(ctx, arg)
}
func (m *mockOrderStore) SetOrderTable(ctx context.Context, arg database.SetOrderTableParams) (database.Order, error) {
	return m.setOrderTableFn(ctx, arg)
}
func (m *mockOrderStore) GetOrderItem(ctx context.Context, arg database.GetOrderItemParams) (database.OrderItem, error) {
	return m.getOrderItemFn(ctx, arg)
}
func (m *mockOrderStore) UpdateOrderItemStatus(ctx context.Context, arg database.UpdateOrderItemStatusParams) (database.OrderItem, error) {
	return m.updateOrderItemStatusFn(ctx, arg)
}
func (m *mockOrderStore) GetTable(ctx context.Context, arg database.GetTableParams) (database.Table, error) {
	return m.getTableFn(ctx, arg)
}
func (m *mockOrderStore) OccupyTable(ctx context.Context, arg database.OccupyTableParams) (database.Table, error) {
	return m.occupyTableFn(ctx, arg)
}
func (m *mockOrderStore) ReleaseTable(ctx context.Context, arg database.ReleaseTableParams) (database.Table, error) {
	return m.releaseTableFn(ctx, arg)
}
func (m *mockOrderStore) GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error) {
	return m.getCustomerFn(ctx, arg)
}

// --- Test helpers ---

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	d := NumericToDecimal(n)
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}

func newTestOrderService(store *mockOrderStore) *OrderService {
	tx := &mockTx{}
	pool := &mockTxBeginner{tx: tx}
	newStore := func(db database.DBTX) OrderStore { return store }
	return NewOrderService(pool, newStore)
}

// defaultOrderStore returns a mockOrderStore with sensible defaults for a
// basic takeaway order. Individual tests override what they care about.
func defaultOrderStore(branchID, dishID uuid.UUID) *mockOrderStore {
	return &mockOrderStore{
		getNextOrderNumberFn: func(ctx context.Context, bid uuid.UUID) (int32, error) {
			return 1, nil
		},
		getActiveDishFn: func(ctx context.Context, arg database.GetDishParams) (database.Dish, error) {
			if arg.ID == dishID && arg.BranchID == branchID {
				return database.Dish{
					ID:       dishID,
					BranchID: branchID,
					Name:     "Biryani",
					Price:    makeNumeric("650.00"),
					IsActive: true,
				}, nil
			}
			return database.Dish{}, pgx.ErrNoRows
		},
		createOrderFn: func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
			return database.Order{
				ID:          uuid.New(),
				BranchID:    arg.BranchID,
				OrderNo:     arg.OrderNo,
				OrderNumber: arg.OrderNumber,
				OrderType:   arg.OrderType,
				Status:      enum.OrderStatusPending,
				HallID:      arg.HallID,
				TableID:     arg.TableID,
				Subtotal:    arg.Subtotal,
				CreatedBy:   arg.CreatedBy,
			}, nil
		},
		createOrderItemFn: func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
			return database.OrderItem{
				ID:        uuid.New(),
				OrderID:   arg.OrderID,
				DishID:    arg.DishID,
				DishName:  arg.DishName,
				UnitPrice: arg.UnitPrice,
				Quantity:  arg.Quantity,
				LineTotal: arg.LineTotal,
				Status:    enum.ItemStatusPending,
			}, nil
		},
		getTableFn: func(ctx context.Context, arg database.GetTableParams) (database.Table, error) {
			return database.Table{
				ID:       arg.ID,
				HallID:   uuid.New(),
				BranchID: arg.BranchID,
				Name:     "T1",
				Status:   enum.TableStatusAvailable,
				IsActive: true,
			}, nil
		},
		occupyTableFn: func(ctx context.Context, arg database.OccupyTableParams) (database.Table, error) {
			return database.Table{ID: arg.ID, Status: enum.TableStatusRunning}, nil
		},
		releaseTableFn: func(ctx context.Context, arg database.ReleaseTableParams) (database.Table, error) {
			return database.Table{ID: arg.ID, Status: enum.TableStatusAvailable}, nil
		},
	}
}

func takeawayReq(branchID uuid.UUID, dishID string) CreateOrderRequest {
	return CreateOrderRequest{
		BranchID:  branchID,
		CreatedBy: uuid.New(),
		OrderType: enum.OrderTypeTakeaway,
		Items: []OrderItemRequest{
			{DishID: dishID, Quantity: 2},
		},
	}
}

// =====================
// CreateOrder validation
// =====================

func TestCreateOrder_EmptyItems(t *testing.T) {
	svc := newTestOrderService(defaultOrderStore(uuid.New(), uuid.New()))

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		BranchID:  uuid.New(),
		CreatedBy: uuid.New(),
		OrderType: enum.OrderTypeTakeaway,
	})
	if fault.KindOf(err) != fault.Validation {
		t.Fatalf("expected VALIDATION fault, got: %v", err)
	}
}

func TestCreateOrder_InvalidOrderType(t *testing.T) {
	branchID := uuid.New()
	dishID := uuid.New()
	svc := newTestOrderService(defaultOrderStore(branchID, dishID))

	req := takeawayReq(branchID, dishID.String())
	req.OrderType = "DRIVE_THRU"
	_, err := svc.CreateOrder(context.Background(), req)
	if fault.KindOf(err) != fault.Validation {
		t.Fatalf("expected VALIDATION fault, got: %v", err)
	}
}

func TestCreateOrder_DineInRequiresTable(t *testing.T) {
	branchID := uuid.New()
	dishID := uuid.New()
	svc := newTestOrderService(defaultOrderStore(branchID, dishID))

	req := takeawayReq(branchID, dishID.String())
	req.OrderType = enum.OrderTypeDineIn
	_, err := svc.CreateOrder(context.Background(), req)
	if fault.KindOf(err) != fault.Validation {
		t.Fatalf("expected VALIDATION fault, got: %v", err)
	}
}

func TestCreateOrder_TakeawayRejectsTable(t *testing.T) {
	branchID := uuid.New()
	dishID := uuid.New()
	svc := newTestOrderService(defaultOrderStore(branchID, dishID))

	req := takeawayReq(branchID, dishID.String())
	req.TableID = uuid.New().String()
	_, err := svc.CreateOrder(context.Background(), req)
	if fault.KindOf(err) != fault.Validation {
		t.Fatalf("expected VALIDATION fault, got: %v", err)
	}
}

func TestCreateOrder_ZeroQuantity(t *testing.T) {
	branchID := uuid.New()
	dishID := uuid.New()
	svc := newTestOrderService(defaultOrderStore(branchID, dishID))

	req := takeawayReq(branchID, dishID.String())
	req.Items[0].Quantity = 0
	_, err := svc.CreateOrder(context.Background(), req)
	if fault.KindOf(err) != fault.Validation {
		t.Fatalf("expected VALIDATION fault, got: %v", err)
	}
}

func TestCreateOrder_DishNotFound(t *testing.T) {
	branchID := uuid.New()
	svc := newTestOrderService(defaultOrderStore(branchID, uuid.New()))

	_, err := svc.CreateOrder(context.Background(), takeawayReq(branchID, uuid.New().String()))
	if fault.KindOf(err) != fault.NotFound {
		t.Fatalf("expected NOT_FOUND fault, got: %v", err)
	}
}

// =====================
// CreateOrder pricing and numbering
// =====================

func TestCreateOrder_PricesFromCatalog(t *testing.T) {
	branchID := uuid.New()
	dishID := uuid.New()
	store := defaultOrderStore(branchID, dishID)

	var capturedOrder database.CreateOrderParams
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		capturedOrder = arg
		return database.Order{ID: uuid.New(), OrderNumber: arg.OrderNumber, Subtotal: arg.Subtotal}, nil
	}
	var capturedItem database.CreateOrderItemParams
	store.createOrderItemFn = func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
		capturedItem = arg
		return database.OrderItem{ID: uuid.New(), OrderID: arg.OrderID}, nil
	}

	svc := newTestOrderService(store)
	_, err := svc.CreateOrder(context.Background(), takeawayReq(branchID, dishID.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capturedItem.DishName != "Biryani" {
		t.Errorf("dish_name: got %q, want Biryani", capturedItem.DishName)
	}
	// line total = 650 * 2 = 1300, captured at order time
	if !numericEquals(capturedItem.LineTotal, "1300.00") {
		t.Errorf("line_total: got %v, want 1300.00", NumericToDecimal(capturedItem.LineTotal))
	}
	if !numericEquals(capturedOrder.Subtotal, "1300.00") {
		t.Errorf("subtotal: got %v, want 1300.00", NumericToDecimal(capturedOrder.Subtotal))
	}
	if capturedOrder.OrderNumber != "ORD-001" {
		t.Errorf("order number: got %v, want ORD-001", capturedOrder.OrderNumber)
	}
}

func TestCreateOrder_DineInSeatsTable(t *testing.T) {
	branchID := uuid.New()
	dishID := uuid.New()
	tableID := uuid.New()
	store := defaultOrderStore(branchID, dishID)

	occupied := false
	store.occupyTableFn = func(ctx context.Context, arg database.OccupyTableParams) (database.Table, error) {
		occupied = true
		if arg.ID != tableID {
			t.Errorf("occupy table id: got %v, want %v", arg.ID, tableID)
		}
		return database.Table{ID: arg.ID, Status: enum.TableStatusRunning}, nil
	}

	svc := newTestOrderService(store)
	req := takeawayReq(branchID, dishID.String())
	req.OrderType = enum.OrderTypeDineIn
	req.TableID = tableID.String()
	if _, err := svc.CreateOrder(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !occupied {
		t.Error("expected table to be occupied")
	}
}

func TestCreateOrder_TableAlreadyOccupied(t *testing.T) {
	branchID := uuid.New()
	dishID := uuid.New()
	store := defaultOrderStore(branchID, dishID)
	store.occupyTableFn = func(ctx context.Context, arg database.OccupyTableParams) (database.Table, error) {
		return database.Table{}, pgx.ErrNoRows
	}

	svc := newTestOrderService(store)
	req := takeawayReq(branchID, dishID.String())
	req.OrderType = enum.OrderTypeDineIn
	req.TableID = uuid.New().String()
	_, err := svc.CreateOrder(context.Background(), req)
	if fault.KindOf(err) != fault.Conflict {
		t.Fatalf("expected CONFLICT fault, got: %v", err)
	}
}

func TestCreateOrder_RetryOnUniqueViolation(t *testing.T) {
	branchID := uuid.New()
	dishID := uuid.New()
	store := defaultOrderStore(branchID, dishID)

	createCalls := 0
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		createCalls++
		if createCalls == 1 {
			return database.Order{}, &pgconn.PgError{
				Code:           "23505",
				ConstraintName: "orders_branch_id_order_no_key",
			}
		}
		return database.Order{ID: uuid.New(), OrderNumber: arg.OrderNumber}, nil
	}
	numberCalls := 0
	store.getNextOrderNumberFn = func(ctx context.Context, bid uuid.UUID) (int32, error) {
		numberCalls++
		return int32(numberCalls), nil
	}

	svc := newTestOrderService(store)
	result, err := svc.CreateOrder(context.Background(), takeawayReq(branchID, dishID.String()))
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if result == nil {
		t.Fatal("expected result, got nil")
	}
	if createCalls != 2 {
		t.Errorf("expected 2 CreateOrder calls, got %d", createCalls)
	}
	if numberCalls != 2 {
		t.Errorf("expected 2 GetNextOrderNumber calls, got %d", numberCalls)
	}
}

func TestCreateOrder_NonUniqueErrorNotRetried(t *testing.T) {
	branchID := uuid.New()
	dishID := uuid.New()
	store := defaultOrderStore(branchID, dishID)

	calls := 0
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		calls++
		return database.Order{}, errors.New("some other DB error")
	}

	svc := newTestOrderService(store)
	_, err := svc.CreateOrder(context.Background(), takeawayReq(branchID, dishID.String()))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 1 {
		t.Errorf("non-unique errors should not retry: expected 1 call, got %d", calls)
	}
}

// =====================
// EditItems
// =====================

func TestEditItems_FrozenAfterBill(t *testing.T) {
	branchID := uuid.New()
	dishID := uuid.New()
	orderID := uuid.New()
	store := defaultOrderStore(branchID, dishID)
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{ID: orderID, BranchID: branchID, OrderNumber: "ORD-007", Status: enum.OrderStatusBillGenerated}, nil
	}

	svc := newTestOrderService(store)
	_, err := svc.EditItems(context.Background(), EditItemsRequest{
		BranchID: branchID,
		OrderID:  orderID,
		Items:    []OrderItemRequest{{DishID: dishID.String(), Quantity: 1}},
	})
	if fault.KindOf(err) != fault.InvalidState {
		t.Fatalf("expected INVALID_STATE fault, got: %v", err)
	}
}

func TestEditItems_RepricesSubtotal(t *testing.T) {
	branchID := uuid.New()
	dishID := uuid.New()
	orderID := uuid.New()
	store := defaultOrderStore(branchID, dishID)
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{ID: orderID, BranchID: branchID, Status: enum.OrderStatusRunning}, nil
	}
	deleted := false
	store.deleteOrderItemsFn = func(ctx context.Context, oid uuid.UUID) error {
		deleted = true
		return nil
	}
	var capturedSubtotal database.UpdateOrderSubtotalParams
	store.updateOrderSubtotalFn = func(ctx context.Context, arg database.UpdateOrderSubtotalParams) (database.Order, error) {
		capturedSubtotal = arg
		return database.Order{ID: arg.ID, Status: enum.OrderStatusRunning, Subtotal: arg.Subtotal}, nil
	}

	svc := newTestOrderService(store)
	result, err := svc.EditItems(context.Background(), EditItemsRequest{
		BranchID: branchID,
		OrderID:  orderID,
		Items:    []OrderItemRequest{{DishID: dishID.String(), Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected old items to be deleted")
	}
	// 650 * 3 = 1950
	if !numericEquals(capturedSubtotal.Subtotal, "1950.00") {
		t.Errorf("subtotal: got %v, want 1950.00", NumericToDecimal(capturedSubtotal.Subtotal))
	}
	if len(result.Items) != 1 {
		t.Errorf("items: got %d, want 1", len(result.Items))
	}
}

// =====================
// ChangeStatus
// =====================

func TestChangeStatus_ManualBillingRejected(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	store := defaultOrderStore(branchID, uuid.New())
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{ID: orderID, BranchID: branchID, Status: enum.OrderStatusRunning}, nil
	}

	svc := newTestOrderService(store)
	_, err := svc.ChangeStatus(context.Background(), ChangeStatusRequest{
		BranchID: branchID,
		OrderID:  orderID,
		Status:   enum.OrderStatusBillGenerated,
	})
	if fault.KindOf(err) != fault.Validation {
		t.Fatalf("expected VALIDATION fault, got: %v", err)
	}
}

func TestChangeStatus_CancelReleasesTable(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	tableID := uuid.New()
	store := defaultOrderStore(branchID, uuid.New())
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{ID: orderID, BranchID: branchID, Status: enum.OrderStatusRunning}, nil
	}
	store.updateOrderStatusFn = func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
		return database.Order{
			ID:       arg.ID,
			BranchID: arg.BranchID,
			Status:   arg.Status,
			TableID:  pgtype.UUID{Bytes: tableID, Valid: true},
		}, nil
	}
	released := false
	store.releaseTableFn = func(ctx context.Context, arg database.ReleaseTableParams) (database.Table, error) {
		released = true
		if arg.ID != tableID || arg.OrderID != orderID {
			t.Errorf("release args: got table %v order %v", arg.ID, arg.OrderID)
		}
		return database.Table{ID: arg.ID, Status: enum.TableStatusAvailable}, nil
	}

	svc := newTestOrderService(store)
	order, err := svc.ChangeStatus(context.Background(), ChangeStatusRequest{
		BranchID: branchID,
		OrderID:  orderID,
		Status:   enum.OrderStatusCancelled,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != enum.OrderStatusCancelled {
		t.Errorf("status: got %v, want CANCELLED", order.Status)
	}
	if !released {
		t.Error("expected table to be released on cancel")
	}
}

func TestChangeStatus_ConcurrentChange(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	store := defaultOrderStore(branchID, uuid.New())
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{ID: orderID, BranchID: branchID, Status: enum.OrderStatusPending}, nil
	}
	store.updateOrderStatusFn = func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
		return database.Order{}, pgx.ErrNoRows
	}

	svc := newTestOrderService(store)
	_, err := svc.ChangeStatus(context.Background(), ChangeStatusRequest{
		BranchID: branchID,
		OrderID:  orderID,
		Status:   enum.OrderStatusRunning,
	})
	if fault.KindOf(err) != fault.Conflict {
		t.Fatalf("expected CONFLICT fault, got: %v", err)
	}
}

// =====================
// Transfer
// =====================

func TestTransfer_TargetOccupied(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	oldTable := uuid.New()
	newTable := uuid.New()
	store := defaultOrderStore(branchID, uuid.New())
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{
			ID:        orderID,
			BranchID:  branchID,
			OrderType: enum.OrderTypeDineIn,
			Status:    enum.OrderStatusRunning,
			TableID:   pgtype.UUID{Bytes: oldTable, Valid: true},
		}, nil
	}
	store.occupyTableFn = func(ctx context.Context, arg database.OccupyTableParams) (database.Table, error) {
		return database.Table{}, pgx.ErrNoRows
	}

	svc := newTestOrderService(store)
	_, err := svc.Transfer(context.Background(), TransferRequest{
		BranchID: branchID,
		OrderID:  orderID,
		TableID:  newTable,
	})
	if fault.KindOf(err) != fault.Conflict {
		t.Fatalf("expected CONFLICT fault, got: %v", err)
	}
}

func TestTransfer_MovesTables(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	oldTable := uuid.New()
	newTable := uuid.New()
	newHall := uuid.New()
	store := defaultOrderStore(branchID, uuid.New())
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{
			ID:        orderID,
			BranchID:  branchID,
			OrderType: enum.OrderTypeDineIn,
			Status:    enum.OrderStatusRunning,
			TableID:   pgtype.UUID{Bytes: oldTable, Valid: true},
		}, nil
	}
	store.getTableFn = func(ctx context.Context, arg database.GetTableParams) (database.Table, error) {
		return database.Table{ID: newTable, HallID: newHall, BranchID: branchID, Status: enum.TableStatusAvailable}, nil
	}
	released := false
	store.releaseTableFn = func(ctx context.Context, arg database.ReleaseTableParams) (database.Table, error) {
		released = true
		if arg.ID != oldTable {
			t.Errorf("released table: got %v, want %v", arg.ID, oldTable)
		}
		return database.Table{ID: arg.ID}, nil
	}
	store.setOrderTableFn = func(ctx context.Context, arg database.SetOrderTableParams) (database.Order, error) {
		return database.Order{ID: arg.ID, TableID: arg.TableID, HallID: arg.HallID}, nil
	}

	svc := newTestOrderService(store)
	order, err := svc.Transfer(context.Background(), TransferRequest{
		BranchID: branchID,
		OrderID:  orderID,
		TableID:  newTable,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !released {
		t.Error("expected old table to be released")
	}
	if order.TableID.Bytes != newTable {
		t.Errorf("order table: got %v, want %v", order.TableID.Bytes, newTable)
	}
}

func TestTransfer_TakeawayRejected(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	store := defaultOrderStore(branchID, uuid.New())
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{ID: orderID, BranchID: branchID, OrderType: enum.OrderTypeTakeaway, Status: enum.OrderStatusRunning}, nil
	}

	svc := newTestOrderService(store)
	_, err := svc.Transfer(context.Background(), TransferRequest{
		BranchID: branchID,
		OrderID:  orderID,
		TableID:  uuid.New(),
	})
	if fault.KindOf(err) != fault.Validation {
		t.Fatalf("expected VALIDATION fault, got: %v", err)
	}
}

// =====================
// AdvanceItem
// =====================

func TestAdvanceItem_SkipRejected(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	itemID := uuid.New()
	store := defaultOrderStore(branchID, uuid.New())
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{ID: orderID, BranchID: branchID, Status: enum.OrderStatusRunning}, nil
	}
	store.getOrderItemFn = func(ctx context.Context, arg database.GetOrderItemParams) (database.OrderItem, error) {
		return database.OrderItem{ID: itemID, OrderID: orderID, Status: enum.ItemStatusPending}, nil
	}

	svc := newTestOrderService(store)
	_, err := svc.AdvanceItem(context.Background(), AdvanceItemRequest{
		BranchID: branchID,
		OrderID:  orderID,
		ItemID:   itemID,
		Status:   enum.ItemStatusReady,
	})
	if fault.KindOf(err) != fault.InvalidState {
		t.Fatalf("expected INVALID_STATE fault, got: %v", err)
	}
}

func TestAdvanceItem_FirstPrepStartsOrder(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	itemID := uuid.New()
	store := defaultOrderStore(branchID, uuid.New())
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{ID: orderID, BranchID: branchID, Status: enum.OrderStatusPending}, nil
	}
	store.getOrderItemFn = func(ctx context.Context, arg database.GetOrderItemParams) (database.OrderItem, error) {
		return database.OrderItem{ID: itemID, OrderID: orderID, Status: enum.ItemStatusPending}, nil
	}
	store.updateOrderItemStatusFn = func(ctx context.Context, arg database.UpdateOrderItemStatusParams) (database.OrderItem, error) {
		return database.OrderItem{ID: arg.ID, OrderID: arg.OrderID, Status: arg.Status}, nil
	}
	var promoted database.UpdateOrderStatusParams
	store.updateOrderStatusFn = func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
		promoted = arg
		return database.Order{ID: arg.ID, Status: arg.Status}, nil
	}

	svc := newTestOrderService(store)
	item, err := svc.AdvanceItem(context.Background(), AdvanceItemRequest{
		BranchID: branchID,
		OrderID:  orderID,
		ItemID:   itemID,
		Status:   enum.ItemStatusPreparing,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Status != enum.ItemStatusPreparing {
		t.Errorf("item status: got %v, want PREPARING", item.Status)
	}
	if promoted.Status != enum.OrderStatusRunning || promoted.FromStatus != enum.OrderStatusPending {
		t.Errorf("expected order promotion PENDING -> RUNNING, got %+v", promoted)
	}
}

func TestAdvanceItem_ClosedOrder(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	store := defaultOrderStore(branchID, uuid.New())
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{ID: orderID, BranchID: branchID, Status: enum.OrderStatusCompleted}, nil
	}

	svc := newTestOrderService(store)
	_, err := svc.AdvanceItem(context.Background(), AdvanceItemRequest{
		BranchID: branchID,
		OrderID:  orderID,
		ItemID:   uuid.New(),
		Status:   enum.ItemStatusPreparing,
	})
	if fault.KindOf(err) != fault.InvalidState {
		t.Fatalf("expected INVALID_STATE fault, got: %v", err)
	}
}
