package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/savor-pos/api/internal/database"
	"github.com/savor-pos/api/internal/enum"
	"github.com/savor-pos/api/internal/fault"
)

// mockBillingStore implements BillingStore with configurable behavior.
type mockBillingStore struct {
	getOrderForUpdateFn func(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	setOrderBillingFn   func(ctx context.Context, arg database.SetOrderBillingParams) (database.Order, error)
	completeOrderFn     func(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error)
	getNextBillNumberFn func(ctx context.Context, branchID uuid.UUID) (int32, error)
	createBillFn        func(ctx context.Context, arg database.CreateBillParams) (database.Bill, error)
	updateBillFn        func(ctx context.Context, arg database.UpdateBillParams) (database.Bill, error)
	getBillFn           func(ctx context.Context, arg database.GetBillParams) (database.Bill, error)
	getBillForUpdateFn  func(ctx context.Context, arg database.GetBillParams) (database.Bill, error)
	getBillByOrderFn    func(ctx context.Context, arg database.GetBillByOrderParams) (database.Bill, error)
	settleBillFn        func(ctx context.Context, arg database.SettleBillParams) (database.Bill, error)
	getCustomerFn       func(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
	releaseTableFn      func(ctx context.Context, arg database.ReleaseTableParams) (database.Table, error)
}

func (m *mockBillingStore) GetOrderForUpdate(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
	return m.getOrderForUpdateFn(ctx, arg)
}
func (m *mockBillingStore) SetOrderBilling(ctx context.Context, arg database.SetOrderBillingParams) (database.Order, error) {
	return m.setOrderBillingFn(ctx, arg)
}
func (m *mockBillingStore) CompleteOrder(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error) {
	return m.completeOrderFn(ctx, arg)
}
func (m *mockBillingStore) GetNextBillNumber(ctx context.Context, branchID uuid.UUID) (int32, error) {
	return m.getNextBillNumberFn(ctx, branchID)
}
func (m *mockBillingStore) CreateBill(ctx context.Context, arg database.CreateBillParams) (database.Bill, error) {
	return m.createBillFn(ctx, arg)
}
func (m *mockBillingStore) UpdateBill(ctx context.Context, arg database.UpdateBillParams) (database.Bill, error) {
	return m.updateBillFn(ctx, arg)
}
func (m *mockBillingStore) GetBill(ctx context.Context, arg database.GetBillParams) (database.Bill, error) {
	return m.getBillFn(ctx, arg)
}
func (m *mockBillingStore) GetBillForUpdate(ctx context.Context, arg database.GetBillParams) (database.Bill, error) {
	return m.getBillForUpdateFn(ctx, arg)
}
func (m *mockBillingStore) GetBillByOrder(ctx context.Context, arg database.GetBillByOrderParams) (database.Bill, error) {
	return m.getBillByOrderFn(ctx, arg)
}
func (m *mockBillingStore) SettleBill(ctx context.Context, arg database.SettleBillParams) (database.Bill, error) {
	return m.settleBillFn(ctx, arg)
}
func (m *mockBillingStore) GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error) {
	return m.getCustomerFn(ctx, arg)
}
func (m *mockBillingStore) ReleaseTable(ctx context.Context, arg database.ReleaseTableParams) (database.Table, error) {
	return m.releaseTableFn(ctx, arg)
}

func newTestBillingService(store *mockBillingStore) *BillingService {
	tx := &mockTx{}
	pool := &mockTxBeginner{tx: tx}
	newStore := func(db database.DBTX) BillingStore { return store }
	return NewBillingService(pool, nil, newStore)
}

// defaultBillingStore covers the happy path for a RUNNING takeaway order with
// subtotal 1300. Tests override what they care about.
func defaultBillingStore(branchID, orderID uuid.UUID) *mockBillingStore {
	return &mockBillingStore{
		getOrderForUpdateFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			if arg.ID == orderID && arg.BranchID == branchID {
				return database.Order{
					ID:          orderID,
					BranchID:    branchID,
					OrderNumber: "ORD-001",
					OrderType:   enum.OrderTypeTakeaway,
					Status:      enum.OrderStatusRunning,
					Subtotal:    makeNumeric("1300.00"),
				}, nil
			}
			return database.Order{}, pgx.ErrNoRows
		},
		setOrderBillingFn: func(ctx context.Context, arg database.SetOrderBillingParams) (database.Order, error) {
			return database.Order{ID: arg.ID, Status: arg.Status, TotalAmount: arg.TotalAmount}, nil
		},
		getNextBillNumberFn: func(ctx context.Context, bid uuid.UUID) (int32, error) {
			return 1, nil
		},
		createBillFn: func(ctx context.Context, arg database.CreateBillParams) (database.Bill, error) {
			return database.Bill{
				ID:                 uuid.New(),
				BranchID:           arg.BranchID,
				OrderID:            arg.OrderID,
				BillNumber:         arg.BillNumber,
				TotalAmount:        arg.TotalAmount,
				ServiceCharge:      arg.ServiceCharge,
				DiscountPercentage: arg.DiscountPercentage,
				DiscountAmount:     arg.DiscountAmount,
				GrandTotal:         arg.GrandTotal,
				PaymentMethod:      arg.PaymentMethod,
				PaymentStatus:      enum.PaymentStatusUnpaid,
				CustomerID:         arg.CustomerID,
			}, nil
		},
		getCustomerFn: func(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error) {
			return database.Customer{ID: arg.ID, BranchID: arg.BranchID, Name: "Walk In"}, nil
		},
	}
}

// =====================
// GenerateBill
// =====================

func TestGenerateBill_ComputesTotals(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	store := defaultBillingStore(branchID, orderID)

	var captured database.CreateBillParams
	store.createBillFn = func(ctx context.Context, arg database.CreateBillParams) (database.Bill, error) {
		captured = arg
		return database.Bill{ID: uuid.New(), BillNumber: arg.BillNumber, GrandTotal: arg.GrandTotal}, nil
	}

	svc := newTestBillingService(store)
	bill, err := svc.GenerateBill(context.Background(), GenerateBillRequest{
		BranchID:           branchID,
		OrderID:            orderID,
		GeneratedBy:        uuid.New(),
		ServiceCharge:      dec("100"),
		DiscountPercentage: dec("10"),
		PaymentMethod:      enum.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// (1300 + 100) * 10% = 140 discount, grand total 1260
	if !numericEquals(captured.DiscountAmount, "140.00") {
		t.Errorf("discount_amount: got %v, want 140.00", NumericToDecimal(captured.DiscountAmount))
	}
	if !numericEquals(captured.GrandTotal, "1260.00") {
		t.Errorf("grand_total: got %v, want 1260.00", NumericToDecimal(captured.GrandTotal))
	}
	if captured.BillNumber != "BILL-001" {
		t.Errorf("bill number: got %v, want BILL-001", captured.BillNumber)
	}
	if bill == nil {
		t.Fatal("expected bill, got nil")
	}
}

func TestGenerateBill_PendingOrderRejected(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	store := defaultBillingStore(branchID, orderID)
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{ID: orderID, BranchID: branchID, Status: enum.OrderStatusPending, Subtotal: makeNumeric("1300.00")}, nil
	}

	svc := newTestBillingService(store)
	_, err := svc.GenerateBill(context.Background(), GenerateBillRequest{
		BranchID:      branchID,
		OrderID:       orderID,
		GeneratedBy:   uuid.New(),
		PaymentMethod: enum.PaymentMethodCash,
	})
	if fault.KindOf(err) != fault.InvalidState {
		t.Fatalf("expected INVALID_STATE fault, got: %v", err)
	}
}

func TestGenerateBill_CreditRequiresCustomer(t *testing.T) {
	svc := newTestBillingService(defaultBillingStore(uuid.New(), uuid.New()))

	_, err := svc.GenerateBill(context.Background(), GenerateBillRequest{
		BranchID:      uuid.New(),
		OrderID:       uuid.New(),
		GeneratedBy:   uuid.New(),
		PaymentMethod: enum.PaymentMethodCredit,
	})
	if fault.KindOf(err) != fault.Validation {
		t.Fatalf("expected VALIDATION fault, got: %v", err)
	}
}

func TestGenerateBill_CreditFlagRequiresCustomer(t *testing.T) {
	svc := newTestBillingService(defaultBillingStore(uuid.New(), uuid.New()))

	_, err := svc.GenerateBill(context.Background(), GenerateBillRequest{
		BranchID:      uuid.New(),
		OrderID:       uuid.New(),
		GeneratedBy:   uuid.New(),
		PaymentMethod: enum.PaymentMethodCash,
		IsCredit:      true,
	})
	if fault.KindOf(err) != fault.Validation {
		t.Fatalf("expected VALIDATION fault, got: %v", err)
	}
}

// A credit bill is the settlement: the bill is born CREDIT, the order goes
// straight from RUNNING to CREDIT and the table is freed, with no payment
// step in between.
func TestGenerateBill_CreditSettlesAtGeneration(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	customerID := uuid.New()
	tableID := uuid.New()
	store := defaultBillingStore(branchID, orderID)
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{
			ID:          orderID,
			BranchID:    branchID,
			OrderNumber: "ORD-001",
			OrderType:   enum.OrderTypeDineIn,
			Status:      enum.OrderStatusRunning,
			TableID:     pgtype.UUID{Bytes: tableID, Valid: true},
			Subtotal:    makeNumeric("1300.00"),
		}, nil
	}

	var createdBill database.CreateBillParams
	store.createBillFn = func(ctx context.Context, arg database.CreateBillParams) (database.Bill, error) {
		createdBill = arg
		return database.Bill{
			ID:            uuid.New(),
			BillNumber:    arg.BillNumber,
			PaymentStatus: arg.PaymentStatus,
			GrandTotal:    arg.GrandTotal,
		}, nil
	}
	var orderUpdate database.SetOrderBillingParams
	store.setOrderBillingFn = func(ctx context.Context, arg database.SetOrderBillingParams) (database.Order, error) {
		orderUpdate = arg
		return database.Order{ID: arg.ID, Status: arg.Status}, nil
	}
	released := false
	store.releaseTableFn = func(ctx context.Context, arg database.ReleaseTableParams) (database.Table, error) {
		released = true
		return database.Table{ID: arg.ID, Status: enum.TableStatusAvailable}, nil
	}

	svc := newTestBillingService(store)
	bill, err := svc.GenerateBill(context.Background(), GenerateBillRequest{
		BranchID:      branchID,
		OrderID:       orderID,
		GeneratedBy:   uuid.New(),
		PaymentMethod: enum.PaymentMethodCredit,
		CustomerID:    customerID.String(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if createdBill.PaymentStatus != enum.PaymentStatusCredit {
		t.Errorf("bill payment_status: got %v, want CREDIT", createdBill.PaymentStatus)
	}
	if orderUpdate.Status != enum.OrderStatusCredit {
		t.Errorf("order status: got %v, want CREDIT", orderUpdate.Status)
	}
	if !released {
		t.Error("expected table release in the same transaction")
	}
	if bill.PaymentStatus != enum.PaymentStatusCredit {
		t.Errorf("returned bill status: got %v, want CREDIT", bill.PaymentStatus)
	}
}

func TestGenerateBill_CreditOnBilledOrderRejected(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	store := defaultBillingStore(branchID, orderID)
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{ID: orderID, BranchID: branchID, Status: enum.OrderStatusBillGenerated, Subtotal: makeNumeric("1300.00")}, nil
	}

	svc := newTestBillingService(store)
	_, err := svc.GenerateBill(context.Background(), GenerateBillRequest{
		BranchID:      branchID,
		OrderID:       orderID,
		GeneratedBy:   uuid.New(),
		PaymentMethod: enum.PaymentMethodCredit,
		CustomerID:    uuid.New().String(),
	})
	if fault.KindOf(err) != fault.InvalidState {
		t.Fatalf("expected INVALID_STATE fault, got: %v", err)
	}
}

func TestGenerateBill_RegenerateUpdatesInPlace(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	billID := uuid.New()
	store := defaultBillingStore(branchID, orderID)
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{
			ID:          orderID,
			BranchID:    branchID,
			OrderNumber: "ORD-001",
			Status:      enum.OrderStatusBillGenerated,
			Subtotal:    makeNumeric("1300.00"),
		}, nil
	}
	store.getBillByOrderFn = func(ctx context.Context, arg database.GetBillByOrderParams) (database.Bill, error) {
		return database.Bill{ID: billID, OrderID: orderID, BillNumber: "BILL-001", PaymentStatus: enum.PaymentStatusUnpaid}, nil
	}
	var captured database.UpdateBillParams
	store.updateBillFn = func(ctx context.Context, arg database.UpdateBillParams) (database.Bill, error) {
		captured = arg
		return database.Bill{ID: arg.ID, BillNumber: "BILL-001", GrandTotal: arg.GrandTotal}, nil
	}
	created := false
	store.createBillFn = func(ctx context.Context, arg database.CreateBillParams) (database.Bill, error) {
		created = true
		return database.Bill{}, nil
	}

	svc := newTestBillingService(store)
	bill, err := svc.GenerateBill(context.Background(), GenerateBillRequest{
		BranchID:           branchID,
		OrderID:            orderID,
		GeneratedBy:        uuid.New(),
		DiscountPercentage: dec("50"),
		PaymentMethod:      enum.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("regeneration must not create a second bill")
	}
	if captured.ID != billID {
		t.Errorf("updated bill: got %v, want %v", captured.ID, billID)
	}
	// 1300 * 50% = 650
	if !numericEquals(captured.GrandTotal, "650.00") {
		t.Errorf("grand_total: got %v, want 650.00", NumericToDecimal(captured.GrandTotal))
	}
	if bill.BillNumber != "BILL-001" {
		t.Errorf("bill number: got %v, want BILL-001", bill.BillNumber)
	}
}

func TestGenerateBill_SettledBillNotRegenerated(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	store := defaultBillingStore(branchID, orderID)
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{ID: orderID, BranchID: branchID, Status: enum.OrderStatusBillGenerated, Subtotal: makeNumeric("1300.00")}, nil
	}
	store.getBillByOrderFn = func(ctx context.Context, arg database.GetBillByOrderParams) (database.Bill, error) {
		return database.Bill{ID: uuid.New(), BillNumber: "BILL-001", PaymentStatus: enum.PaymentStatusPaid}, nil
	}
	store.updateBillFn = func(ctx context.Context, arg database.UpdateBillParams) (database.Bill, error) {
		// UNPAID guard in the UPDATE finds no row
		return database.Bill{}, pgx.ErrNoRows
	}

	svc := newTestBillingService(store)
	_, err := svc.GenerateBill(context.Background(), GenerateBillRequest{
		BranchID:      branchID,
		OrderID:       orderID,
		GeneratedBy:   uuid.New(),
		PaymentMethod: enum.PaymentMethodCash,
	})
	if fault.KindOf(err) != fault.InvalidState {
		t.Fatalf("expected INVALID_STATE fault, got: %v", err)
	}
}

// =====================
// CapturePayment
// =====================

func paymentStore(branchID, orderID, billID uuid.UUID) *mockBillingStore {
	store := defaultBillingStore(branchID, orderID)
	bill := database.Bill{
		ID:            billID,
		BranchID:      branchID,
		OrderID:       orderID,
		BillNumber:    "BILL-001",
		GrandTotal:    makeNumeric("1260.00"),
		PaymentMethod: enum.PaymentMethodCash,
		PaymentStatus: enum.PaymentStatusUnpaid,
	}
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{
			ID:          orderID,
			BranchID:    branchID,
			OrderNumber: "ORD-001",
			OrderType:   enum.OrderTypeTakeaway,
			Status:      enum.OrderStatusBillGenerated,
			Subtotal:    makeNumeric("1300.00"),
		}, nil
	}
	store.getBillFn = func(ctx context.Context, arg database.GetBillParams) (database.Bill, error) {
		if arg.ID == billID {
			return bill, nil
		}
		return database.Bill{}, pgx.ErrNoRows
	}
	store.getBillForUpdateFn = func(ctx context.Context, arg database.GetBillParams) (database.Bill, error) {
		return bill, nil
	}
	store.completeOrderFn = func(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error) {
		return database.Order{ID: arg.ID, Status: enum.OrderStatusCompleted}, nil
	}
	return store
}

func TestCapturePayment_CashChange(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	billID := uuid.New()
	store := paymentStore(branchID, orderID, billID)

	var captured database.SettleBillParams
	store.settleBill(t, &captured)

	svc := newTestBillingService(store)
	result, err := svc.CapturePayment(context.Background(), PaymentRequest{
		BranchID:     branchID,
		BillID:       billID,
		Method:       enum.PaymentMethodCash,
		CashReceived: dec("1500"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// change = 1500 - 1260 = 240
	if !numericEquals(captured.ChangeAmount, "240.00") {
		t.Errorf("change_amount: got %v, want 240.00", NumericToDecimal(captured.ChangeAmount))
	}
	if captured.PaymentStatus != enum.PaymentStatusPaid {
		t.Errorf("payment_status: got %v, want PAID", captured.PaymentStatus)
	}
	if result.Warning != "" {
		t.Errorf("unexpected warning: %v", result.Warning)
	}
}

// settleBill installs a settle function that captures its params.
func (m *mockBillingStore) settleBill(t *testing.T, captured *database.SettleBillParams) {
	t.Helper()
	m.settleBillFn = func(ctx context.Context, arg database.SettleBillParams) (database.Bill, error) {
		*captured = arg
		return database.Bill{
			ID:            arg.ID,
			PaymentStatus: arg.PaymentStatus,
			PaymentMethod: arg.PaymentMethod,
			CashReceived:  arg.CashReceived,
			ChangeAmount:  arg.ChangeAmount,
			PayRequestID:  arg.PayRequestID,
		}, nil
	}
}

func TestCapturePayment_InsufficientCash(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	billID := uuid.New()
	store := paymentStore(branchID, orderID, billID)

	svc := newTestBillingService(store)
	_, err := svc.CapturePayment(context.Background(), PaymentRequest{
		BranchID:     branchID,
		BillID:       billID,
		Method:       enum.PaymentMethodCash,
		CashReceived: dec("1000"),
	})
	if fault.KindOf(err) != fault.InsufficientPayment {
		t.Fatalf("expected INSUFFICIENT_PAYMENT fault, got: %v", err)
	}
}

func TestCapturePayment_CreditMethodRejected(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	billID := uuid.New()
	store := paymentStore(branchID, orderID, billID)

	svc := newTestBillingService(store)
	_, err := svc.CapturePayment(context.Background(), PaymentRequest{
		BranchID: branchID,
		BillID:   billID,
		Method:   enum.PaymentMethodCredit,
	})
	if fault.KindOf(err) != fault.Validation {
		t.Fatalf("expected VALIDATION fault, got: %v", err)
	}
}

// A credit bill is settled the moment it is generated, so any payment
// attempt against it lands on the already-settled check.
func TestCapturePayment_CreditBillAlreadySettled(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	billID := uuid.New()
	store := paymentStore(branchID, orderID, billID)
	store.getBillForUpdateFn = func(ctx context.Context, arg database.GetBillParams) (database.Bill, error) {
		return database.Bill{ID: billID, BillNumber: "BILL-001", PaymentStatus: enum.PaymentStatusCredit}, nil
	}

	svc := newTestBillingService(store)
	_, err := svc.CapturePayment(context.Background(), PaymentRequest{
		BranchID:     branchID,
		BillID:       billID,
		Method:       enum.PaymentMethodCash,
		CashReceived: dec("2000"),
	})
	if fault.KindOf(err) != fault.InvalidState {
		t.Fatalf("expected INVALID_STATE fault, got: %v", err)
	}
}

func TestCapturePayment_AlreadySettled(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	billID := uuid.New()
	store := paymentStore(branchID, orderID, billID)
	store.getBillForUpdateFn = func(ctx context.Context, arg database.GetBillParams) (database.Bill, error) {
		return database.Bill{ID: billID, BillNumber: "BILL-001", PaymentStatus: enum.PaymentStatusPaid}, nil
	}

	svc := newTestBillingService(store)
	_, err := svc.CapturePayment(context.Background(), PaymentRequest{
		BranchID:     branchID,
		BillID:       billID,
		Method:       enum.PaymentMethodCash,
		CashReceived: dec("2000"),
	})
	if fault.KindOf(err) != fault.InvalidState {
		t.Fatalf("expected INVALID_STATE fault, got: %v", err)
	}
}

func TestCapturePayment_IdempotentReplay(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	billID := uuid.New()
	store := paymentStore(branchID, orderID, billID)
	store.getBillForUpdateFn = func(ctx context.Context, arg database.GetBillParams) (database.Bill, error) {
		return database.Bill{
			ID:            billID,
			BillNumber:    "BILL-001",
			PaymentStatus: enum.PaymentStatusPaid,
			PayRequestID:  pgtype.Text{String: "req-42", Valid: true},
		}, nil
	}

	svc := newTestBillingService(store)
	result, err := svc.CapturePayment(context.Background(), PaymentRequest{
		BranchID:     branchID,
		BillID:       billID,
		RequestID:    "req-42",
		Method:       enum.PaymentMethodCash,
		CashReceived: dec("2000"),
	})
	if err != nil {
		t.Fatalf("replay should succeed, got: %v", err)
	}
	if result.Bill.PaymentStatus != enum.PaymentStatusPaid {
		t.Errorf("replay should return the settled bill, got status %v", result.Bill.PaymentStatus)
	}
}

func TestCapturePayment_TableReleaseFailureIsWarning(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	billID := uuid.New()
	tableID := uuid.New()
	store := paymentStore(branchID, orderID, billID)
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{
			ID:          orderID,
			BranchID:    branchID,
			OrderNumber: "ORD-001",
			OrderType:   enum.OrderTypeDineIn,
			Status:      enum.OrderStatusBillGenerated,
			TableID:     pgtype.UUID{Bytes: tableID, Valid: true},
		}, nil
	}
	var captured database.SettleBillParams
	store.settleBill(t, &captured)

	releaseCalls := 0
	store.releaseTableFn = func(ctx context.Context, arg database.ReleaseTableParams) (database.Table, error) {
		releaseCalls++
		return database.Table{}, errors.New("connection reset")
	}

	svc := newTestBillingService(store)
	result, err := svc.CapturePayment(context.Background(), PaymentRequest{
		BranchID:     branchID,
		BillID:       billID,
		Method:       enum.PaymentMethodCash,
		CashReceived: dec("1260"),
	})
	if err != nil {
		t.Fatalf("payment must not fail on table release: %v", err)
	}
	if releaseCalls != 2 {
		t.Errorf("expected one retry (2 calls), got %d", releaseCalls)
	}
	if !strings.Contains(result.Warning, "table release failed") {
		t.Errorf("expected table release warning, got %q", result.Warning)
	}
}

func TestCapturePayment_TableReleasedAfterCommit(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	billID := uuid.New()
	tableID := uuid.New()
	store := paymentStore(branchID, orderID, billID)
	store.getOrderForUpdateFn = func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
		return database.Order{
			ID:        orderID,
			BranchID:  branchID,
			OrderType: enum.OrderTypeDineIn,
			Status:    enum.OrderStatusBillGenerated,
			TableID:   pgtype.UUID{Bytes: tableID, Valid: true},
		}, nil
	}
	var captured database.SettleBillParams
	store.settleBill(t, &captured)

	released := false
	store.releaseTableFn = func(ctx context.Context, arg database.ReleaseTableParams) (database.Table, error) {
		released = true
		return database.Table{ID: arg.ID, Status: enum.TableStatusAvailable}, nil
	}

	svc := newTestBillingService(store)
	result, err := svc.CapturePayment(context.Background(), PaymentRequest{
		BranchID: branchID,
		BillID:   billID,
		Method:   enum.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !released {
		t.Error("expected table release after payment")
	}
	if result.Warning != "" {
		t.Errorf("unexpected warning: %v", result.Warning)
	}
}

func TestCapturePayment_BillNotFound(t *testing.T) {
	branchID := uuid.New()
	store := paymentStore(branchID, uuid.New(), uuid.New())

	svc := newTestBillingService(store)
	_, err := svc.CapturePayment(context.Background(), PaymentRequest{
		BranchID:     branchID,
		BillID:       uuid.New(),
		Method:       enum.PaymentMethodCash,
		CashReceived: dec("100"),
	})
	if fault.KindOf(err) != fault.NotFound {
		t.Fatalf("expected NOT_FOUND fault, got: %v", err)
	}
}
