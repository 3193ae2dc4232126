package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const customerColumns = `id, branch_id, name, phone, email, notes, is_active, created_at, updated_at`

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.BranchID, &c.Name, &c.Phone, &c.Email, &c.Notes, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

type CreateCustomerParams struct {
	BranchID uuid.UUID
	Name     string
	Phone    string
	Email    pgtype.Text
	Notes    pgtype.Text
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO customers (branch_id, name, phone, email, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+customerColumns,
		arg.BranchID, arg.Name, arg.Phone, arg.Email, arg.Notes,
	)
	return scanCustomer(row)
}

type GetCustomerParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

func (q *Queries) GetCustomer(ctx context.Context, arg GetCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1 AND branch_id = $2`,
		arg.ID, arg.BranchID,
	)
	return scanCustomer(row)
}

type ListCustomersParams struct {
	BranchID uuid.UUID
	Search   pgtype.Text
	Limit    int32
	Offset   int32
}

func (q *Queries) ListCustomers(ctx context.Context, arg ListCustomersParams) ([]Customer, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE branch_id = $1 AND is_active
		  AND ($2::text IS NULL OR name ILIKE '%' || $2 || '%' OR phone LIKE '%' || $2 || '%')
		ORDER BY name
		LIMIT $3 OFFSET $4`,
		arg.BranchID, arg.Search, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

type UpdateCustomerParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
	Name     string
	Phone    string
	Email    pgtype.Text
	Notes    pgtype.Text
}

func (q *Queries) UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE customers
		SET name = $3, phone = $4, email = $5, notes = $6, updated_at = now()
		WHERE id = $1 AND branch_id = $2
		RETURNING `+customerColumns,
		arg.ID, arg.BranchID, arg.Name, arg.Phone, arg.Email, arg.Notes,
	)
	return scanCustomer(row)
}

type DeactivateCustomerParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

func (q *Queries) DeactivateCustomer(ctx context.Context, arg DeactivateCustomerParams) error {
	_, err := q.db.Exec(ctx,
		`UPDATE customers SET is_active = false, updated_at = now() WHERE id = $1 AND branch_id = $2`,
		arg.ID, arg.BranchID,
	)
	return err
}
