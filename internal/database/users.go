package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, branch_id, email, hashed_password, full_name, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.BranchID, &u.Email, &u.HashedPassword, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

type CreateUserParams struct {
	BranchID       uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (branch_id, email, hashed_password, full_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		arg.BranchID, arg.Email, arg.HashedPassword, arg.FullName, arg.Role,
	)
	return scanUser(row)
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND is_active`,
		email,
	)
	return scanUser(row)
}

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

func (q *Queries) ListUsers(ctx context.Context, branchID uuid.UUID) ([]User, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE branch_id = $1 ORDER BY full_name`,
		branchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type UpdateUserParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
	FullName string
	Role     string
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE users
		SET full_name = $3, role = $4, updated_at = now()
		WHERE id = $1 AND branch_id = $2
		RETURNING `+userColumns,
		arg.ID, arg.BranchID, arg.FullName, arg.Role,
	)
	return scanUser(row)
}

type SetUserActiveParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
	IsActive bool
}

func (q *Queries) SetUserActive(ctx context.Context, arg SetUserActiveParams) error {
	_, err := q.db.Exec(ctx,
		`UPDATE users SET is_active = $3, updated_at = now() WHERE id = $1 AND branch_id = $2`,
		arg.ID, arg.BranchID, arg.IsActive,
	)
	return err
}
