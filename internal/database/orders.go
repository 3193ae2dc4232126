package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, branch_id, order_no, order_number, terminal, order_type, status,
	hall_id, table_id, customer_id, notes, subtotal, service_charge,
	discount_percentage, discount_amount, total_amount, payment_method,
	created_by, created_at, updated_at, completed_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.BranchID, &o.OrderNo, &o.OrderNumber, &o.Terminal, &o.OrderType, &o.Status,
		&o.HallID, &o.TableID, &o.CustomerID, &o.Notes, &o.Subtotal, &o.ServiceCharge,
		&o.DiscountPercentage, &o.DiscountAmount, &o.TotalAmount, &o.PaymentMethod,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt,
	)
	return o, err
}

// GetNextOrderNumber returns the next per-branch sequence number. The caller
// must be prepared to retry on a unique violation since two concurrent
// creates can read the same value.
func (q *Queries) GetNextOrderNumber(ctx context.Context, branchID uuid.UUID) (int32, error) {
	var next int32
	err := q.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(order_no), 0) + 1 FROM orders WHERE branch_id = $1`,
		branchID,
	).Scan(&next)
	return next, err
}

type CreateOrderParams struct {
	BranchID    uuid.UUID
	OrderNo     int32
	OrderNumber string
	Terminal    pgtype.Text
	OrderType   string
	HallID      pgtype.UUID
	TableID     pgtype.UUID
	CustomerID  pgtype.UUID
	Notes       pgtype.Text
	Subtotal    pgtype.Numeric
	CreatedBy   uuid.UUID
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO orders (
			branch_id, order_no, order_number, terminal, order_type,
			hall_id, table_id, customer_id, notes, subtotal, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+orderColumns,
		arg.BranchID, arg.OrderNo, arg.OrderNumber, arg.Terminal, arg.OrderType,
		arg.HallID, arg.TableID, arg.CustomerID, arg.Notes, arg.Subtotal, arg.CreatedBy,
	)
	return scanOrder(row)
}

type GetOrderParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND branch_id = $2`,
		arg.ID, arg.BranchID,
	)
	return scanOrder(row)
}

// GetOrderForUpdate takes a row lock so read-then-write sequences on the
// order (billing, item edits, status changes) serialize.
func (q *Queries) GetOrderForUpdate(ctx context.Context, arg GetOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND branch_id = $2 FOR NO KEY UPDATE`,
		arg.ID, arg.BranchID,
	)
	return scanOrder(row)
}

type ListOrdersParams struct {
	BranchID  uuid.UUID
	Status    pgtype.Text
	OrderType pgtype.Text
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
	Limit     int32
	Offset    int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE branch_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::text IS NULL OR order_type = $3)
		  AND ($4::timestamptz IS NULL OR created_at >= $4)
		  AND ($5::timestamptz IS NULL OR created_at < $5)
		ORDER BY created_at DESC
		LIMIT $6 OFFSET $7`,
		arg.BranchID, arg.Status, arg.OrderType, arg.StartDate, arg.EndDate, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListActiveOrders returns the open orders for the kitchen board, oldest first.
func (q *Queries) ListActiveOrders(ctx context.Context, branchID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE branch_id = $1 AND status IN ('PENDING', 'RUNNING')
		ORDER BY created_at ASC`,
		branchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	BranchID   uuid.UUID
	Status     string
	FromStatus string
}

// UpdateOrderStatus is a compare-and-swap: it only succeeds when the order
// is still in FromStatus. pgx.ErrNoRows means the order moved underneath us.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $3, updated_at = now()
		WHERE id = $1 AND branch_id = $2 AND status = $4
		RETURNING `+orderColumns,
		arg.ID, arg.BranchID, arg.Status, arg.FromStatus,
	)
	return scanOrder(row)
}

type SetOrderBillingParams struct {
	ID                 uuid.UUID
	Status             string
	Subtotal           pgtype.Numeric
	ServiceCharge      pgtype.Numeric
	DiscountPercentage pgtype.Numeric
	DiscountAmount     pgtype.Numeric
	TotalAmount        pgtype.Numeric
	PaymentMethod      pgtype.Text
	CustomerID         pgtype.UUID
}

func (q *Queries) SetOrderBilling(ctx context.Context, arg SetOrderBillingParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $2, subtotal = $3, service_charge = $4, discount_percentage = $5,
		    discount_amount = $6, total_amount = $7, payment_method = $8,
		    customer_id = COALESCE($9, customer_id), updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.Status, arg.Subtotal, arg.ServiceCharge, arg.DiscountPercentage,
		arg.DiscountAmount, arg.TotalAmount, arg.PaymentMethod, arg.CustomerID,
	)
	return scanOrder(row)
}

type CompleteOrderParams struct {
	ID         uuid.UUID
	FromStatus string
}

func (q *Queries) CompleteOrder(ctx context.Context, arg CompleteOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders
		SET status = 'COMPLETED', completed_at = now(), updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+orderColumns,
		arg.ID, arg.FromStatus,
	)
	return scanOrder(row)
}

type UpdateOrderSubtotalParams struct {
	ID       uuid.UUID
	Subtotal pgtype.Numeric
}

func (q *Queries) UpdateOrderSubtotal(ctx context.Context, arg UpdateOrderSubtotalParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders
		SET subtotal = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.Subtotal,
	)
	return scanOrder(row)
}

type SetOrderTableParams struct {
	ID      uuid.UUID
	HallID  pgtype.UUID
	TableID pgtype.UUID
}

func (q *Queries) SetOrderTable(ctx context.Context, arg SetOrderTableParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders
		SET hall_id = $2, table_id = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.HallID, arg.TableID,
	)
	return scanOrder(row)
}
