package directory

import (
	"context"
	"sync"
)

// MemoryStore keeps both collections in process memory. Slices preserve
// insertion order so listings are deterministic. All access is serialized
// behind one mutex; the uniqueness invariants depend on that.
type MemoryStore struct {
	mu       sync.Mutex
	pending  []User
	approved []User
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) CreatePending(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usernameTakenLocked(u.Username) {
		return ErrConflict
	}
	u.Approved = false
	s.pending = append(s.pending, u)
	return nil
}

func (s *MemoryStore) CreateApproved(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usernameTakenLocked(u.Username) {
		return ErrConflict
	}
	u.Approved = true
	s.approved = append(s.approved, u)
	return nil
}

func (s *MemoryStore) Approve(ctx context.Context, id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.pending {
		if u.ID == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			u.Approved = true
			s.approved = append(s.approved, u)
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *MemoryStore) ListPending(ctx context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]User, len(s.pending))
	copy(out, s.pending)
	return out, nil
}

func (s *MemoryStore) ListApproved(ctx context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]User, len(s.approved))
	copy(out, s.approved)
	return out, nil
}

func (s *MemoryStore) GetByUsername(ctx context.Context, username string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.approved {
		if u.Username == username {
			return u, nil
		}
	}
	for _, u := range s.pending {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *MemoryStore) GetApprovedByID(ctx context.Context, id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.approved {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *MemoryStore) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.approved {
		if s.approved[i].ID == id {
			s.approved[i].PasswordHash = hash
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) usernameTakenLocked(username string) bool {
	for _, u := range s.approved {
		if u.Username == username {
			return true
		}
	}
	for _, u := range s.pending {
		if u.Username == username {
			return true
		}
	}
	return false
}
