package attendance

import (
	"context"
	"sync"
)

// Ledger persists attendance records. Implementations must treat
// (UserID, Day) as unique: Insert reports false instead of writing a
// duplicate, and nothing is ever updated or deleted.
type Ledger interface {
	Insert(ctx context.Context, rec Record) (bool, error)
	HasRecord(ctx context.Context, userID, day string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]Record, error)
}

// MemoryLedger is the in-process ledger. The slice preserves insertion
// order; the seen set makes the daily check O(1).
type MemoryLedger struct {
	mu      sync.Mutex
	records []Record
	seen    map[string]struct{}
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seen: make(map[string]struct{})}
}

func (l *MemoryLedger) Insert(ctx context.Context, rec Record) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := rec.UserID + "|" + rec.Day
	if _, ok := l.seen[key]; ok {
		return false, nil
	}
	l.seen[key] = struct{}{}
	l.records = append(l.records, rec)
	return true, nil
}

func (l *MemoryLedger) HasRecord(ctx context.Context, userID, day string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[userID+"|"+day]
	return ok, nil
}

func (l *MemoryLedger) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Record
	for _, rec := range l.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}
