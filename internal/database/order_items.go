package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderItemColumns = `id, order_id, dish_id, dish_name, unit_price, quantity,
	line_total, status, notes, created_at, updated_at`

func scanOrderItem(row pgx.Row) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(
		&i.ID, &i.OrderID, &i.DishID, &i.DishName, &i.UnitPrice, &i.Quantity,
		&i.LineTotal, &i.Status, &i.Notes, &i.CreatedAt, &i.UpdatedAt,
	)
	return i, err
}

type CreateOrderItemParams struct {
	OrderID   uuid.UUID
	DishID    uuid.UUID
	DishName  string
	UnitPrice pgtype.Numeric
	Quantity  int32
	LineTotal pgtype.Numeric
	Notes     pgtype.Text
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, dish_id, dish_name, unit_price, quantity, line_total, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+orderItemColumns,
		arg.OrderID, arg.DishID, arg.DishName, arg.UnitPrice, arg.Quantity, arg.LineTotal, arg.Notes,
	)
	return scanOrderItem(row)
}

func (q *Queries) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY created_at ASC`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		i, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) DeleteOrderItems(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	return err
}

type GetOrderItemParams struct {
	ID      uuid.UUID
	OrderID uuid.UUID
}

func (q *Queries) GetOrderItem(ctx context.Context, arg GetOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE id = $1 AND order_id = $2`,
		arg.ID, arg.OrderID,
	)
	return scanOrderItem(row)
}

type UpdateOrderItemStatusParams struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	Status     string
	FromStatus string
}

// UpdateOrderItemStatus is a compare-and-swap on the item's kitchen status.
func (q *Queries) UpdateOrderItemStatus(ctx context.Context, arg UpdateOrderItemStatusParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE order_items
		SET status = $3, updated_at = now()
		WHERE id = $1 AND order_id = $2 AND status = $4
		RETURNING `+orderItemColumns,
		arg.ID, arg.OrderID, arg.Status, arg.FromStatus,
	)
	return scanOrderItem(row)
}

// CountUnfinishedItems reports how many items on the order have not reached
// a terminal kitchen state yet.
func (q *Queries) CountUnfinishedItems(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM order_items WHERE order_id = $1 AND status NOT IN ('READY', 'COMPLETED')`,
		orderID,
	).Scan(&n)
	return n, err
}
