package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const dishColumns = `id, branch_id, name, category, price, is_active, created_at, updated_at`

func scanDish(row pgx.Row) (Dish, error) {
	var d Dish
	err := row.Scan(&d.ID, &d.BranchID, &d.Name, &d.Category, &d.Price, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

type CreateDishParams struct {
	BranchID uuid.UUID
	Name     string
	Category pgtype.Text
	Price    pgtype.Numeric
}

func (q *Queries) CreateDish(ctx context.Context, arg CreateDishParams) (Dish, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO dishes (branch_id, name, category, price) VALUES ($1, $2, $3, $4)
		RETURNING `+dishColumns,
		arg.BranchID, arg.Name, arg.Category, arg.Price,
	)
	return scanDish(row)
}

type GetDishParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

func (q *Queries) GetDish(ctx context.Context, arg GetDishParams) (Dish, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+dishColumns+` FROM dishes WHERE id = $1 AND branch_id = $2`,
		arg.ID, arg.BranchID,
	)
	return scanDish(row)
}

// GetActiveDish is used when pricing order items; retired dishes cannot be ordered.
func (q *Queries) GetActiveDish(ctx context.Context, arg GetDishParams) (Dish, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+dishColumns+` FROM dishes WHERE id = $1 AND branch_id = $2 AND is_active`,
		arg.ID, arg.BranchID,
	)
	return scanDish(row)
}

type ListDishesParams struct {
	BranchID uuid.UUID
	Category pgtype.Text
}

func (q *Queries) ListDishes(ctx context.Context, arg ListDishesParams) ([]Dish, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+dishColumns+`
		FROM dishes
		WHERE branch_id = $1 AND is_active
		  AND ($2::text IS NULL OR category = $2)
		ORDER BY category NULLS LAST, name`,
		arg.BranchID, arg.Category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dishes []Dish
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		dishes = append(dishes, d)
	}
	return dishes, rows.Err()
}

type UpdateDishParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
	Name     string
	Category pgtype.Text
	Price    pgtype.Numeric
}

func (q *Queries) UpdateDish(ctx context.Context, arg UpdateDishParams) (Dish, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE dishes
		SET name = $3, category = $4, price = $5, updated_at = now()
		WHERE id = $1 AND branch_id = $2
		RETURNING `+dishColumns,
		arg.ID, arg.BranchID, arg.Name, arg.Category, arg.Price,
	)
	return scanDish(row)
}

type DeactivateDishParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

func (q *Queries) DeactivateDish(ctx context.Context, arg DeactivateDishParams) error {
	_, err := q.db.Exec(ctx,
		`UPDATE dishes SET is_active = false, updated_at = now() WHERE id = $1 AND branch_id = $2`,
		arg.ID, arg.BranchID,
	)
	return err
}
