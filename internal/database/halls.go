package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type CreateHallParams struct {
	BranchID uuid.UUID
	Name     string
}

func (q *Queries) CreateHall(ctx context.Context, arg CreateHallParams) (Hall, error) {
	var h Hall
	err := q.db.QueryRow(ctx, `
		INSERT INTO halls (branch_id, name) VALUES ($1, $2)
		RETURNING id, branch_id, name, is_active, created_at`,
		arg.BranchID, arg.Name,
	).Scan(&h.ID, &h.BranchID, &h.Name, &h.IsActive, &h.CreatedAt)
	return h, err
}

type GetHallParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

func (q *Queries) GetHall(ctx context.Context, arg GetHallParams) (Hall, error) {
	var h Hall
	err := q.db.QueryRow(ctx,
		`SELECT id, branch_id, name, is_active, created_at FROM halls WHERE id = $1 AND branch_id = $2`,
		arg.ID, arg.BranchID,
	).Scan(&h.ID, &h.BranchID, &h.Name, &h.IsActive, &h.CreatedAt)
	return h, err
}

func (q *Queries) ListHalls(ctx context.Context, branchID uuid.UUID) ([]Hall, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, branch_id, name, is_active, created_at FROM halls
		 WHERE branch_id = $1 AND is_active ORDER BY name`,
		branchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var halls []Hall
	for rows.Next() {
		var h Hall
		if err := rows.Scan(&h.ID, &h.BranchID, &h.Name, &h.IsActive, &h.CreatedAt); err != nil {
			return nil, err
		}
		halls = append(halls, h)
	}
	return halls, rows.Err()
}

type RenameHallParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
	Name     string
}

func (q *Queries) RenameHall(ctx context.Context, arg RenameHallParams) (Hall, error) {
	var h Hall
	err := q.db.QueryRow(ctx, `
		UPDATE halls SET name = $3 WHERE id = $1 AND branch_id = $2
		RETURNING id, branch_id, name, is_active, created_at`,
		arg.ID, arg.BranchID, arg.Name,
	).Scan(&h.ID, &h.BranchID, &h.Name, &h.IsActive, &h.CreatedAt)
	return h, err
}

type DeactivateHallParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

func (q *Queries) DeactivateHall(ctx context.Context, arg DeactivateHallParams) error {
	_, err := q.db.Exec(ctx,
		`UPDATE halls SET is_active = false WHERE id = $1 AND branch_id = $2`,
		arg.ID, arg.BranchID,
	)
	return err
}

const tableColumns = `id, hall_id, branch_id, name, status, current_order_id, is_active, created_at, updated_at`

func scanTable(row pgx.Row) (Table, error) {
	var t Table
	err := row.Scan(
		&t.ID, &t.HallID, &t.BranchID, &t.Name, &t.Status, &t.CurrentOrderID,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

type CreateTableParams struct {
	HallID   uuid.UUID
	BranchID uuid.UUID
	Name     string
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO tables (hall_id, branch_id, name) VALUES ($1, $2, $3)
		RETURNING `+tableColumns,
		arg.HallID, arg.BranchID, arg.Name,
	)
	return scanTable(row)
}

type GetTableParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

func (q *Queries) GetTable(ctx context.Context, arg GetTableParams) (Table, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE id = $1 AND branch_id = $2`,
		arg.ID, arg.BranchID,
	)
	return scanTable(row)
}

func (q *Queries) ListTables(ctx context.Context, branchID uuid.UUID) ([]Table, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+tableColumns+` FROM tables
		 WHERE branch_id = $1 AND is_active ORDER BY hall_id, name`,
		branchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

type ListHallTablesParams struct {
	HallID   uuid.UUID
	BranchID uuid.UUID
}

func (q *Queries) ListHallTables(ctx context.Context, arg ListHallTablesParams) ([]Table, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+tableColumns+` FROM tables
		 WHERE hall_id = $1 AND branch_id = $2 AND is_active ORDER BY name`,
		arg.HallID, arg.BranchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

type OccupyTableParams struct {
	ID      uuid.UUID
	OrderID uuid.UUID
}

// OccupyTable seats an order at a table only if the table is still free,
// so two concurrent dine-in creates cannot double-seat it.
func (q *Queries) OccupyTable(ctx context.Context, arg OccupyTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE tables
		SET status = 'RUNNING', current_order_id = $2, updated_at = now()
		WHERE id = $1 AND status = 'AVAILABLE' AND is_active
		RETURNING `+tableColumns,
		arg.ID, arg.OrderID,
	)
	return scanTable(row)
}

type ReleaseTableParams struct {
	ID      uuid.UUID
	OrderID uuid.UUID
}

// ReleaseTable frees a table only while it is still held by the given order.
func (q *Queries) ReleaseTable(ctx context.Context, arg ReleaseTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE tables
		SET status = 'AVAILABLE', current_order_id = NULL, updated_at = now()
		WHERE id = $1 AND current_order_id = $2
		RETURNING `+tableColumns,
		arg.ID, arg.OrderID,
	)
	return scanTable(row)
}

type RenameTableParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
	Name     string
	HallID   pgtype.UUID
}

func (q *Queries) RenameTable(ctx context.Context, arg RenameTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE tables
		SET name = $3, hall_id = COALESCE($4, hall_id), updated_at = now()
		WHERE id = $1 AND branch_id = $2
		RETURNING `+tableColumns,
		arg.ID, arg.BranchID, arg.Name, arg.HallID,
	)
	return scanTable(row)
}

type DeactivateTableParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

// DeactivateTable soft-deletes a table, but never one that is occupied.
func (q *Queries) DeactivateTable(ctx context.Context, arg DeactivateTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE tables
		SET is_active = false, updated_at = now()
		WHERE id = $1 AND branch_id = $2 AND status = 'AVAILABLE'
		RETURNING `+tableColumns,
		arg.ID, arg.BranchID,
	)
	return scanTable(row)
}
