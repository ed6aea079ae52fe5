package attendance

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"rollcall/internal/directory"
)

// Record is one time-in. The ledger is append-only: records are never
// mutated or deleted, and at most one exists per (user, calendar day).
type Record struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Department string `json:"department,omitempty"`
	Quarter    string `json:"quarter,omitempty"`
	Day        string `json:"date"`
	Time       string `json:"time"`
}

const (
	dayLayout  = "2006-01-02"
	timeLayout = "15:04:05"
)

// Service computes "today" and enforces the one-record-per-day rule on
// top of a ledger store, with an optional redis day cache in front.
type Service struct {
	ledger Ledger
	cache  *DayCache
	loc    *time.Location
	now    func() time.Time
}

// NewService creates a ledger service. cache may be nil; loc defaults to
// the process-local zone.
func NewService(ledger Ledger, cache *DayCache, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		ledger: ledger,
		cache:  cache,
		loc:    loc,
		now:    time.Now,
	}
}

// TimeIn appends today's record for the user. When one already exists it
// is an idempotent no-op and recorded is false.
func (s *Service) TimeIn(ctx context.Context, u directory.User) (Record, bool, error) {
	now := s.now().In(s.loc)
	day := now.Format(dayLayout)

	if s.cache.Marked(ctx, u.ID, day) {
		return Record{}, false, nil
	}

	rec := Record{
		ID:         ulid.Make().String(),
		UserID:     u.ID,
		Username:   u.Username,
		Department: u.Department,
		Quarter:    u.Quarter,
		Day:        day,
		Time:       now.Format(timeLayout),
	}
	inserted, err := s.ledger.Insert(ctx, rec)
	if err != nil {
		return Record{}, false, err
	}
	s.cache.Mark(ctx, u.ID, day, s.untilNextDay(now))
	if !inserted {
		return Record{}, false, nil
	}
	return rec, true, nil
}

// StatusFor reports whether the user already timed in today.
func (s *Service) StatusFor(ctx context.Context, userID string) (bool, error) {
	now := s.now().In(s.loc)
	day := now.Format(dayLayout)
	if s.cache.Marked(ctx, userID, day) {
		return true, nil
	}
	has, err := s.ledger.HasRecord(ctx, userID, day)
	if err != nil {
		return false, err
	}
	if has {
		s.cache.Mark(ctx, userID, day, s.untilNextDay(now))
	}
	return has, nil
}

// HistoryFor returns the user's records in insertion order.
func (s *Service) HistoryFor(ctx context.Context, userID string) ([]Record, error) {
	return s.ledger.ListByUser(ctx, userID)
}

// untilNextDay bounds cache entries to the current calendar day.
func (s *Service) untilNextDay(now time.Time) time.Duration {
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, s.loc)
	return next.Sub(now)
}
