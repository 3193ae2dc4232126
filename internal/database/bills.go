package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const billColumns = `id, branch_id, order_id, bill_no, bill_number, terminal, total_amount,
	service_charge, discount_percentage, discount_amount, grand_total,
	payment_method, payment_status, customer_id, cash_received, change_amount,
	pay_request_id, generated_by, created_at, updated_at, paid_at`

func scanBill(row pgx.Row) (Bill, error) {
	var b Bill
	err := row.Scan(
		&b.ID, &b.BranchID, &b.OrderID, &b.BillNo, &b.BillNumber, &b.Terminal, &b.TotalAmount,
		&b.ServiceCharge, &b.DiscountPercentage, &b.DiscountAmount, &b.GrandTotal,
		&b.PaymentMethod, &b.PaymentStatus, &b.CustomerID, &b.CashReceived, &b.ChangeAmount,
		&b.PayRequestID, &b.GeneratedBy, &b.CreatedAt, &b.UpdatedAt, &b.PaidAt,
	)
	return b, err
}

func (q *Queries) GetNextBillNumber(ctx context.Context, branchID uuid.UUID) (int32, error) {
	var next int32
	err := q.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(bill_no), 0) + 1 FROM bills WHERE branch_id = $1`,
		branchID,
	).Scan(&next)
	return next, err
}

type CreateBillParams struct {
	BranchID           uuid.UUID
	OrderID            uuid.UUID
	BillNo             int32
	BillNumber         string
	Terminal           pgtype.Text
	TotalAmount        pgtype.Numeric
	ServiceCharge      pgtype.Numeric
	DiscountPercentage pgtype.Numeric
	DiscountAmount     pgtype.Numeric
	GrandTotal         pgtype.Numeric
	PaymentMethod      string
	PaymentStatus      string
	CustomerID         pgtype.UUID
	GeneratedBy        uuid.UUID
}

// CreateBill inserts a bill. Credit bills are born settled, so paid_at is
// stamped whenever the status is not UNPAID.
func (q *Queries) CreateBill(ctx context.Context, arg CreateBillParams) (Bill, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO bills (
			branch_id, order_id, bill_no, bill_number, terminal, total_amount,
			service_charge, discount_percentage, discount_amount, grand_total,
			payment_method, payment_status, customer_id, generated_by, paid_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			CASE WHEN $12 <> 'UNPAID' THEN now() END)
		RETURNING `+billColumns,
		arg.BranchID, arg.OrderID, arg.BillNo, arg.BillNumber, arg.Terminal, arg.TotalAmount,
		arg.ServiceCharge, arg.DiscountPercentage, arg.DiscountAmount, arg.GrandTotal,
		arg.PaymentMethod, arg.PaymentStatus, arg.CustomerID, arg.GeneratedBy,
	)
	return scanBill(row)
}

type UpdateBillParams struct {
	ID                 uuid.UUID
	TotalAmount        pgtype.Numeric
	ServiceCharge      pgtype.Numeric
	DiscountPercentage pgtype.Numeric
	DiscountAmount     pgtype.Numeric
	GrandTotal         pgtype.Numeric
	PaymentMethod      string
	CustomerID         pgtype.UUID
}

// UpdateBill regenerates an unpaid bill in place. One bill row per order.
func (q *Queries) UpdateBill(ctx context.Context, arg UpdateBillParams) (Bill, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE bills
		SET total_amount = $2, service_charge = $3, discount_percentage = $4,
		    discount_amount = $5, grand_total = $6, payment_method = $7,
		    customer_id = $8, updated_at = now()
		WHERE id = $1 AND payment_status = 'UNPAID'
		RETURNING `+billColumns,
		arg.ID, arg.TotalAmount, arg.ServiceCharge, arg.DiscountPercentage,
		arg.DiscountAmount, arg.GrandTotal, arg.PaymentMethod, arg.CustomerID,
	)
	return scanBill(row)
}

type GetBillParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

func (q *Queries) GetBill(ctx context.Context, arg GetBillParams) (Bill, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = $1 AND branch_id = $2`,
		arg.ID, arg.BranchID,
	)
	return scanBill(row)
}

func (q *Queries) GetBillForUpdate(ctx context.Context, arg GetBillParams) (Bill, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = $1 AND branch_id = $2 FOR NO KEY UPDATE`,
		arg.ID, arg.BranchID,
	)
	return scanBill(row)
}

type GetBillByOrderParams struct {
	OrderID  uuid.UUID
	BranchID uuid.UUID
}

func (q *Queries) GetBillByOrder(ctx context.Context, arg GetBillByOrderParams) (Bill, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+billColumns+` FROM bills WHERE order_id = $1 AND branch_id = $2`,
		arg.OrderID, arg.BranchID,
	)
	return scanBill(row)
}

func (q *Queries) GetBillByPayRequestID(ctx context.Context, requestID string) (Bill, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+billColumns+` FROM bills WHERE pay_request_id = $1`,
		requestID,
	)
	return scanBill(row)
}

type SettleBillParams struct {
	ID            uuid.UUID
	PaymentStatus string
	PaymentMethod string
	CustomerID    pgtype.UUID
	CashReceived  pgtype.Numeric
	ChangeAmount  pgtype.Numeric
	PayRequestID  pgtype.Text
}

// SettleBill closes an unpaid bill as PAID or CREDIT. The UNPAID guard makes
// the settle idempotent-safe: a second attempt finds no row.
func (q *Queries) SettleBill(ctx context.Context, arg SettleBillParams) (Bill, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE bills
		SET payment_status = $2, payment_method = $3,
		    customer_id = COALESCE($4, customer_id),
		    cash_received = $5, change_amount = $6, pay_request_id = $7,
		    paid_at = now(), updated_at = now()
		WHERE id = $1 AND payment_status = 'UNPAID'
		RETURNING `+billColumns,
		arg.ID, arg.PaymentStatus, arg.PaymentMethod, arg.CustomerID,
		arg.CashReceived, arg.ChangeAmount, arg.PayRequestID,
	)
	return scanBill(row)
}

type ListBillsParams struct {
	BranchID      uuid.UUID
	PaymentStatus pgtype.Text
	StartDate     pgtype.Timestamptz
	EndDate       pgtype.Timestamptz
	Limit         int32
	Offset        int32
}

func (q *Queries) ListBills(ctx context.Context, arg ListBillsParams) ([]Bill, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+billColumns+`
		FROM bills
		WHERE branch_id = $1
		  AND ($2::text IS NULL OR payment_status = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6`,
		arg.BranchID, arg.PaymentStatus, arg.StartDate, arg.EndDate, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

type ListCustomerCreditBillsParams struct {
	CustomerID uuid.UUID
	BranchID   uuid.UUID
}

func (q *Queries) ListCustomerCreditBills(ctx context.Context, arg ListCustomerCreditBillsParams) ([]Bill, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+billColumns+`
		FROM bills
		WHERE customer_id = $1 AND branch_id = $2 AND payment_status = 'CREDIT'
		ORDER BY created_at DESC`,
		arg.CustomerID, arg.BranchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}
