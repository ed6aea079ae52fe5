package directory

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresStore keeps both collections in one users table; approved=false
// rows are the pending collection. The unique index on username enforces
// the one-collection-at-a-time invariant, and Approve is a single UPDATE
// so the move cannot partially apply.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, username, password_hash, role, approved, department, quarter, created_at`

func (s *PostgresStore) CreatePending(ctx context.Context, u User) error {
	return s.insert(ctx, u, false)
}

func (s *PostgresStore) CreateApproved(ctx context.Context, u User) error {
	return s.insert(ctx, u, true)
}

func (s *PostgresStore) insert(ctx context.Context, u User, approved bool) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, role, approved, department, quarter)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (username) DO NOTHING
	`, u.ID, u.Username, u.PasswordHash, u.Role, approved, u.Department, u.Quarter)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (s *PostgresStore) Approve(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET approved = TRUE
		WHERE id = $1 AND approved = FALSE
		RETURNING `+userColumns+`
	`, id)
	return scanUser(row)
}

func (s *PostgresStore) ListPending(ctx context.Context) ([]User, error) {
	return s.list(ctx, false)
}

func (s *PostgresStore) ListApproved(ctx context.Context) ([]User, error) {
	return s.list(ctx, true)
}

func (s *PostgresStore) list(ctx context.Context, approved bool) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE approved = $1
		ORDER BY created_at, id
	`, approved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Approved, &u.Department, &u.Quarter, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE username = $1
	`, username)
	return scanUser(row)
}

func (s *PostgresStore) GetApprovedByID(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1 AND approved = TRUE
	`, id)
	return scanUser(row)
}

func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2 WHERE id = $1 AND approved = TRUE
	`, id, hash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Approved, &u.Department, &u.Quarter, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
