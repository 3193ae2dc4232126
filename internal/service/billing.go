package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/savor-pos/api/internal/classify"
	"github.com/savor-pos/api/internal/database"
	"github.com/savor-pos/api/internal/enum"
	"github.com/savor-pos/api/internal/fault"
	"github.com/shopspring/decimal"
)

const maxBillNumberRetries = 3

// BillingStore defines the DB methods needed by the billing service.
// Satisfied by *database.Queries (and its WithTx variant).
type BillingStore interface {
	GetOrderForUpdate(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	SetOrderBilling(ctx context.Context, arg database.SetOrderBillingParams) (database.Order, error)
	CompleteOrder(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error)
	GetNextBillNumber(ctx context.Context, branchID uuid.UUID) (int32, error)
	CreateBill(ctx context.Context, arg database.CreateBillParams) (database.Bill, error)
	UpdateBill(ctx context.Context, arg database.UpdateBillParams) (database.Bill, error)
	GetBill(ctx context.Context, arg database.GetBillParams) (database.Bill, error)
	GetBillForUpdate(ctx context.Context, arg database.GetBillParams) (database.Bill, error)
	GetBillByOrder(ctx context.Context, arg database.GetBillByOrderParams) (database.Bill, error)
	SettleBill(ctx context.Context, arg database.SettleBillParams) (database.Bill, error)
	GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
	ReleaseTable(ctx context.Context, arg database.ReleaseTableParams) (database.Table, error)
}

// NewBillingStore creates a BillingStore from a DBTX (pool or tx).
type NewBillingStore func(db database.DBTX) BillingStore

// BillingService handles bill generation and settlement.
type BillingService struct {
	pool     TxBeginner
	db       database.DBTX
	newStore NewBillingStore
}

// NewBillingService creates a BillingService. db is the pool itself, used
// for the post-commit table release outside any transaction.
func NewBillingService(pool TxBeginner, db database.DBTX, newStore NewBillingStore) *BillingService {
	return &BillingService{pool: pool, db: db, newStore: newStore}
}

// GenerateBillRequest is the validated input for generating a bill.
type GenerateBillRequest struct {
	BranchID           uuid.UUID
	OrderID            uuid.UUID
	GeneratedBy        uuid.UUID
	Terminal           string
	ServiceCharge      decimal.Decimal
	DiscountPercentage decimal.Decimal
	PaymentMethod      string
	CustomerID         string
	IsCredit           bool
}

// GenerateBill computes the totals for an order and creates its bill. A
// regular bill moves the order to BILL_GENERATED and awaits payment; a credit
// bill is the whole settlement, so it is created already in CREDIT, the order
// goes straight to CREDIT, and the table is freed in the same transaction. An
// order has at most one bill: generating again while the bill is unpaid
// recomputes it in place.
func (s *BillingService) GenerateBill(ctx context.Context, req GenerateBillRequest) (*database.Bill, error) {
	if !enum.ValidPaymentMethod(req.PaymentMethod) {
		return nil, fault.New(fault.Validation, "invalid payment_method %q", req.PaymentMethod)
	}
	if classify.IsCredit(classify.Sale{PaymentMethod: req.PaymentMethod, IsCredit: req.IsCredit}) && req.CustomerID == "" {
		return nil, fault.New(fault.Validation, "customer_id is required for CREDIT bills")
	}

	var lastErr error
	for attempt := 0; attempt < maxBillNumberRetries; attempt++ {
		bill, err := s.generateBillTx(ctx, req)
		if err == nil {
			return bill, nil
		}
		if isUniqueViolation(err, "bills_branch_id_bill_no_key") {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func (s *BillingService) generateBillTx(ctx context.Context, req GenerateBillRequest) (*database.Bill, error) {
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

	credit := classify.IsCredit(classify.Sale{PaymentMethod: req.PaymentMethod, IsCredit: req.IsCredit})
	target := enum.OrderStatusBillGenerated
	if credit {
		target = enum.OrderStatusCredit
	}

	// A credit bill never regenerates: CREDIT is terminal, so an order that
	// already has an unpaid bill cannot be re-billed as credit.
	regenerate := order.Status == enum.OrderStatusBillGenerated && !credit
	if !regenerate {
		if err := CheckTransition(order.Status, target); err != nil {
			return nil, err
		}
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

	totals := ComputeBill(NumericToDecimal(order.Subtotal), req.ServiceCharge, req.DiscountPercentage)

	var bill database.Bill
	if regenerate {
		existing, err := store.GetBillByOrder(ctx, database.GetBillByOrderParams{OrderID: order.ID, BranchID: req.BranchID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fault.New(fault.InvalidState, "order %s has no bill to regenerate", order.OrderNumber)
			}
			return nil, fmt.Errorf("get bill: %w", err)
		}
		bill, err = store.UpdateBill(ctx, database.UpdateBillParams{
			ID:                 existing.ID,
			TotalAmount:        DecimalToNumeric(totals.Subtotal),
			ServiceCharge:      DecimalToNumeric(totals.ServiceCharge),
			DiscountPercentage: DecimalToNumeric(totals.DiscountPercentage),
			DiscountAmount:     DecimalToNumeric(totals.DiscountAmount),
			GrandTotal:         DecimalToNumeric(totals.GrandTotal),
			PaymentMethod:      req.PaymentMethod,
			CustomerID:         customerID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fault.New(fault.InvalidState, "bill %s is already settled", existing.BillNumber)
			}
			return nil, fmt.Errorf("update bill: %w", err)
		}
	} else {
		billStatus := enum.PaymentStatusUnpaid
		if credit {
			billStatus = enum.PaymentStatusCredit
		}
		nextNum, err := store.GetNextBillNumber(ctx, req.BranchID)
		if err != nil {
			return nil, fmt.Errorf("get next bill number: %w", err)
		}
		bill, err = store.CreateBill(ctx, database.CreateBillParams{
			BranchID:           req.BranchID,
			OrderID:            order.ID,
			BillNo:             nextNum,
			BillNumber:         fmt.Sprintf("BILL-%03d", nextNum),
			Terminal:           TextOrNil(req.Terminal),
			TotalAmount:        DecimalToNumeric(totals.Subtotal),
			ServiceCharge:      DecimalToNumeric(totals.ServiceCharge),
			DiscountPercentage: DecimalToNumeric(totals.DiscountPercentage),
			DiscountAmount:     DecimalToNumeric(totals.DiscountAmount),
			GrandTotal:         DecimalToNumeric(totals.GrandTotal),
			PaymentMethod:      req.PaymentMethod,
			PaymentStatus:      billStatus,
			CustomerID:         customerID,
			GeneratedBy:        req.GeneratedBy,
		})
		if err != nil {
			return nil, fmt.Errorf("create bill: %w", err)
		}
	}

	if _, err := store.SetOrderBilling(ctx, database.SetOrderBillingParams{
		ID:                 order.ID,
		Status:             target,
		Subtotal:           DecimalToNumeric(totals.Subtotal),
		ServiceCharge:      DecimalToNumeric(totals.ServiceCharge),
		DiscountPercentage: DecimalToNumeric(totals.DiscountPercentage),
		DiscountAmount:     DecimalToNumeric(totals.DiscountAmount),
		TotalAmount:        DecimalToNumeric(totals.GrandTotal),
		PaymentMethod:      TextOrNil(req.PaymentMethod),
		CustomerID:         customerID,
	}); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	if credit && order.TableID.Valid {
		_, err := store.ReleaseTable(ctx, database.ReleaseTableParams{ID: order.TableID.Bytes, OrderID: order.ID})
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("release table: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &bill, nil
}

// PaymentRequest is the validated input for settling a bill.
type PaymentRequest struct {
	BranchID     uuid.UUID
	BillID       uuid.UUID
	RequestID    string
	Method       string
	CashReceived decimal.Decimal
}

// PaymentResult is the settled bill plus any secondary-effect warning.
// Warning is set when the payment committed but the table release failed;
// the payment itself is never rolled back for that.
type PaymentResult struct {
	Bill    database.Bill
	Warning string
}

// CapturePayment settles an unpaid bill and completes its order. Cash
// payments compute change and reject underpayment. Credit sales never reach
// here: they settle at bill generation, so a credit bill arriving at payment
// is already settled and fails the UNPAID check below. A request_id makes the
// call idempotent: replays return the already-settled bill.
func (s *BillingService) CapturePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if !enum.ValidPaymentMethod(req.Method) {
		return nil, fault.New(fault.Validation, "invalid payment_method %q", req.Method)
	}
	if classify.IsCredit(classify.Sale{PaymentMethod: req.Method}) {
		return nil, fault.New(fault.Validation, "credit sales are settled at bill generation")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	bill, err := store.GetBill(ctx, database.GetBillParams{ID: req.BillID, BranchID: req.BranchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "bill not found")
		}
		return nil, fmt.Errorf("get bill: %w", err)
	}

	// Lock order first, then bill. GenerateBill locks in the same direction.
	order, err := store.GetOrderForUpdate(ctx, database.GetOrderParams{ID: bill.OrderID, BranchID: req.BranchID})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	bill, err = store.GetBillForUpdate(ctx, database.GetBillParams{ID: req.BillID, BranchID: req.BranchID})
	if err != nil {
		return nil, fmt.Errorf("get bill: %w", err)
	}

	if bill.PaymentStatus != enum.PaymentStatusUnpaid {
		if req.RequestID != "" && bill.PayRequestID.Valid && bill.PayRequestID.String == req.RequestID {
			// Replay of a settled payment.
			return &PaymentResult{Bill: bill}, nil
		}
		return nil, fault.New(fault.InvalidState, "bill %s is already settled", bill.BillNumber)
	}

	grandTotal := NumericToDecimal(bill.GrandTotal)
	cashReceived := pgtype.Numeric{}
	changeAmount := pgtype.Numeric{}

	if req.Method == enum.PaymentMethodCash {
		change, err := CashChange(grandTotal, req.CashReceived)
		if err != nil {
			return nil, err
		}
		cashReceived = DecimalToNumeric(req.CashReceived)
		changeAmount = DecimalToNumeric(change)
	}

	settled, err := store.SettleBill(ctx, database.SettleBillParams{
		ID:            bill.ID,
		PaymentStatus: enum.PaymentStatusPaid,
		PaymentMethod: req.Method,
		CashReceived:  cashReceived,
		ChangeAmount:  changeAmount,
		PayRequestID:  TextOrNil(req.RequestID),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.Conflict, "bill settled concurrently")
		}
		return nil, fmt.Errorf("settle bill: %w", err)
	}

	if _, err := store.CompleteOrder(ctx, database.CompleteOrderParams{
		ID:         order.ID,
		FromStatus: enum.OrderStatusBillGenerated,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.New(fault.InvalidState, "order %s is not awaiting payment", order.OrderNumber)
		}
		return nil, fmt.Errorf("close order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	result := &PaymentResult{Bill: settled}
	if order.TableID.Valid {
		result.Warning = s.releaseTable(ctx, order.TableID.Bytes, order.ID)
	}
	return result, nil
}

// releaseTable frees the order's table after the payment has committed. It
// runs outside the payment transaction and retries once; a failure is
// reported as a warning, never as a payment failure.
func (s *BillingService) releaseTable(ctx context.Context, tableID, orderID uuid.UUID) string {
	store := s.newStore(s.db)
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		_, err := store.ReleaseTable(ctx, database.ReleaseTableParams{ID: tableID, OrderID: orderID})
		if err == nil || errors.Is(err, pgx.ErrNoRows) {
			// ErrNoRows means the table was already freed.
			return ""
		}
		lastErr = err
	}
	return fault.New(fault.Upstream, "payment captured but table release failed: %v", lastErr).Error()
}
