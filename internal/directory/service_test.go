package directory

import (
	"context"
	"errors"
	"testing"

	"rollcall/internal/auth"
)

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewService(store), store
}

func TestRegisterAndConflict(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	u, err := svc.Register(ctx, "alice", "pw1", Profile{Department: "CS", Quarter: "Q1"})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if u.Approved {
		t.Fatalf("new registrants must start unapproved")
	}
	if u.Role != auth.RoleStudent {
		t.Fatalf("expected role student, got %q", u.Role)
	}
	if u.PasswordHash == "pw1" || u.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}

	if _, err := svc.Register(ctx, "alice", "pw2", Profile{}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// The first registration's hash must be untouched by the rejected one.
	stored, err := store.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername() error: %v", err)
	}
	if stored.PasswordHash != u.PasswordHash {
		t.Fatalf("conflicting register altered the stored hash")
	}
}

func TestRegisterConflictsWithApproved(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if err := svc.SeedAdmin(ctx, "admin", "adminpw"); err != nil {
		t.Fatalf("SeedAdmin() error: %v", err)
	}
	if _, err := svc.Register(ctx, "admin", "pw", Profile{}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict against approved username, got %v", err)
	}
}

func TestApproveMovesExactlyOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	u, err := svc.Register(ctx, "bob", "pw", Profile{})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	approved, err := svc.Approve(ctx, u.ID)
	if err != nil {
		t.Fatalf("Approve() error: %v", err)
	}
	if !approved.Approved {
		t.Fatalf("approved user must carry approved=true")
	}

	pending, err := svc.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending() error: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty pending list, got %d entries", len(pending))
	}

	users, err := svc.ApprovedUsers(ctx)
	if err != nil {
		t.Fatalf("ApprovedUsers() error: %v", err)
	}
	count := 0
	for _, au := range users {
		if au.Username == "bob" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected bob exactly once in approved, got %d", count)
	}

	// A second approve of the same id is a NotFound and changes nothing.
	if _, err := svc.Approve(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on re-approve, got %v", err)
	}
	if _, err := svc.Approve(ctx, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on unknown id, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	u, err := svc.Register(ctx, "carol", "pw1", Profile{})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	// Pending users do not resolve as approved.
	if _, err := svc.FindApprovedByUsername(ctx, "carol"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for pending user, got %v", err)
	}

	// Unapproved accounts fail with ErrNotApproved regardless of password.
	if _, err := svc.Authenticate(ctx, "carol", "pw1"); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("expected ErrNotApproved, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "carol", "wrong"); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("expected ErrNotApproved with wrong password too, got %v", err)
	}

	if _, err := svc.Approve(ctx, u.ID); err != nil {
		t.Fatalf("Approve() error: %v", err)
	}

	got, err := svc.Authenticate(ctx, "carol", "pw1")
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("authenticated wrong user: %q", got.ID)
	}
	if found, err := svc.FindApprovedByUsername(ctx, "carol"); err != nil || found.ID != u.ID {
		t.Fatalf("FindApprovedByUsername: got %+v err %v", found, err)
	}

	// Unknown user and wrong password are indistinguishable.
	if _, err := svc.Authenticate(ctx, "carol", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "pw1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestResetAndChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	u, err := svc.Register(ctx, "dave", "old-pw", Profile{})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if _, err := svc.Approve(ctx, u.ID); err != nil {
		t.Fatalf("Approve() error: %v", err)
	}

	// Admin reset needs no old password.
	if err := svc.ResetPassword(ctx, u.ID, "reset-pw"); err != nil {
		t.Fatalf("ResetPassword() error: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "dave", "reset-pw"); err != nil {
		t.Fatalf("login with reset password failed: %v", err)
	}
	if err := svc.ResetPassword(ctx, "no-such-id", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Self-service change verifies the current password first.
	if err := svc.ChangePassword(ctx, u.ID, "wrong", "new-pw"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "reset-pw", "new-pw"); err != nil {
		t.Fatalf("ChangePassword() error: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "dave", "new-pw"); err != nil {
		t.Fatalf("login with changed password failed: %v", err)
	}
	if err := svc.ChangePassword(ctx, "no-such-id", "a", "b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeedAdminIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if err := svc.SeedAdmin(ctx, "admin", "adminpw"); err != nil {
		t.Fatalf("SeedAdmin() error: %v", err)
	}
	if err := svc.SeedAdmin(ctx, "admin", "other"); err != nil {
		t.Fatalf("second SeedAdmin() must be a no-op, got %v", err)
	}

	u, err := svc.Authenticate(ctx, "admin", "adminpw")
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	if u.Role != auth.RoleAdmin {
		t.Fatalf("expected role admin, got %q", u.Role)
	}
}
