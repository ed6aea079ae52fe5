package attendance

import (
	"context"
	"database/sql"
)

// PostgresLedger stores records in attendance_records. The unique index
// on (user_id, day) enforces the daily rule; ON CONFLICT DO NOTHING turns
// a duplicate into a reported no-op instead of an error.
type PostgresLedger struct {
	db *sql.DB
}

// NewPostgresLedger creates a ledger over an open connection pool.
func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Insert(ctx context.Context, rec Record) (bool, error) {
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, user_id, username, department, quarter, day, time_of_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, day) DO NOTHING
	`, rec.ID, rec.UserID, rec.Username, rec.Department, rec.Quarter, rec.Day, rec.Time)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *PostgresLedger) HasRecord(ctx context.Context, userID, day string) (bool, error) {
	var exists bool
	err := l.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM attendance_records WHERE user_id = $1 AND day = $2)
	`, userID, day).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (l *PostgresLedger) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	// Record ids are ULIDs, so lexical order is insertion order.
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, user_id, username, department, quarter, day, time_of_day
		FROM attendance_records
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Username, &rec.Department, &rec.Quarter, &rec.Day, &rec.Time); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
