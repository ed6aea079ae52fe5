package directory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/auth"
)

// Profile carries the optional registration fields.
type Profile struct {
	Department string
	Quarter    string
}

// Service owns user lifecycle: registration, approval, credential checks
// and password changes. It is the only writer of password hashes.
type Service struct {
	store Store
}

// NewService creates a directory service over a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register hashes the password and files a pending user. ErrConflict if
// the username is taken in either collection (case-sensitive).
func (s *Service) Register(ctx context.Context, username, password string, p Profile) (User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         auth.RoleStudent,
		Approved:     false,
		Department:   p.Department,
		Quarter:      p.Quarter,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreatePending(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate resolves login credentials to an approved user.
// Unknown username and wrong password both yield ErrInvalidCredentials;
// a known but unapproved account yields ErrNotApproved before any
// password result is revealed.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.store.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if !u.Approved {
		return User{}, ErrNotApproved
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Approve moves a pending user into the approved collection.
func (s *Service) Approve(ctx context.Context, pendingID string) (User, error) {
	return s.store.Approve(ctx, pendingID)
}

// Pending lists users awaiting approval.
func (s *Service) Pending(ctx context.Context) ([]User, error) {
	return s.store.ListPending(ctx)
}

// ApprovedUsers lists approved users.
func (s *Service) ApprovedUsers(ctx context.Context) ([]User, error) {
	return s.store.ListApproved(ctx)
}

// FindApprovedByID resolves an approved user by id.
func (s *Service) FindApprovedByID(ctx context.Context, id string) (User, error) {
	return s.store.GetApprovedByID(ctx, id)
}

// FindApprovedByUsername resolves an approved user by exact username.
// A pending user is reported as not found.
func (s *Service) FindApprovedByUsername(ctx context.Context, username string) (User, error) {
	u, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return User{}, err
	}
	if !u.Approved {
		return User{}, ErrNotFound
	}
	return u, nil
}

// ResetPassword force-overwrites a user's password without knowing the
// old one. Admin-only at the HTTP layer.
func (s *Service) ResetPassword(ctx context.Context, userID, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.UpdatePasswordHash(ctx, userID, hash)
}

// ChangePassword verifies the current password before overwriting.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.store.GetApprovedByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(currentPassword, u.PasswordHash) {
		return ErrWrongPassword
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.UpdatePasswordHash(ctx, userID, hash)
}

// SeedAdmin ensures the boot-time admin account exists. A no-op when the
// username is already present.
func (s *Service) SeedAdmin(ctx context.Context, username, password string) error {
	if _, err := s.store.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.store.CreateApproved(ctx, User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		Approved:     true,
		CreatedAt:    time.Now().UTC(),
	})
}
