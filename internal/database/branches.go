package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const branchColumns = `id, name, address, phone, is_active, created_at`

func scanBranch(row pgx.Row) (Branch, error) {
	var b Branch
	err := row.Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.IsActive, &b.CreatedAt)
	return b, err
}

type CreateBranchParams struct {
	Name    string
	Address pgtype.Text
	Phone   pgtype.Text
}

func (q *Queries) CreateBranch(ctx context.Context, arg CreateBranchParams) (Branch, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO branches (name, address, phone) VALUES ($1, $2, $3)
		RETURNING `+branchColumns,
		arg.Name, arg.Address, arg.Phone,
	)
	return scanBranch(row)
}

func (q *Queries) GetBranch(ctx context.Context, id uuid.UUID) (Branch, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE id = $1`,
		id,
	)
	return scanBranch(row)
}

func (q *Queries) ListBranches(ctx context.Context) ([]Branch, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE is_active ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}
