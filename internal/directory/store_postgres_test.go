package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresCreatePendingConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()
	store := NewPostgresStore(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("u-1", "alice", "hash", "student", false, "CS", "Q1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	err = store.CreatePending(context.Background(), User{
		ID: "u-1", Username: "alice", PasswordHash: "hash", Role: "student",
		Department: "CS", Quarter: "Q1",
	})
	if err != nil {
		t.Fatalf("CreatePending() error: %v", err)
	}

	// ON CONFLICT DO NOTHING reports zero rows for a duplicate username.
	mock.ExpectExec("INSERT INTO users").
		WithArgs("u-2", "alice", "hash2", "student", false, "", "").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = store.CreatePending(context.Background(), User{
		ID: "u-2", Username: "alice", PasswordHash: "hash2", Role: "student",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresApprove(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()
	store := NewPostgresStore(db)

	cols := []string{"id", "username", "password_hash", "role", "approved", "department", "quarter", "created_at"}
	mock.ExpectQuery("UPDATE users SET approved = TRUE").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u-1", "alice", "hash", "student", true, "CS", "Q1", time.Now()))

	u, err := store.Approve(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Approve() error: %v", err)
	}
	if !u.Approved || u.Username != "alice" {
		t.Fatalf("unexpected approved user: %+v", u)
	}

	// No pending row with that id: the RETURNING query yields no rows.
	mock.ExpectQuery("UPDATE users SET approved = TRUE").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(cols))
	if _, err := store.Approve(context.Background(), "u-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on re-approve, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresUpdatePasswordHashNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()
	store := NewPostgresStore(db)

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("no-such-id", "newhash").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.UpdatePasswordHash(context.Background(), "no-such-id", "newhash"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
