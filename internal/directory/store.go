package directory

import "context"

// Store persists users across the pending and approved collections.
// Implementations must keep a username in at most one collection and must
// apply Approve atomically: the pending entry is removed and the approved
// entry inserted as one step, or nothing changes.
type Store interface {
	// CreatePending inserts a new pending user. ErrConflict if the
	// username exists in either collection.
	CreatePending(ctx context.Context, u User) error
	// CreateApproved inserts directly into the approved collection
	// (used for the seeded admin). ErrConflict on duplicate username.
	CreateApproved(ctx context.Context, u User) error
	// Approve moves a pending user into the approved collection and
	// returns the updated record. ErrNotFound if no pending user has
	// the id.
	Approve(ctx context.Context, id string) (User, error)
	ListPending(ctx context.Context) ([]User, error)
	ListApproved(ctx context.Context) ([]User, error)
	// GetByUsername searches both collections.
	GetByUsername(ctx context.Context, username string) (User, error)
	// GetApprovedByID searches the approved collection only.
	GetApprovedByID(ctx context.Context, id string) (User, error)
	// UpdatePasswordHash overwrites the stored hash of an approved user.
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
