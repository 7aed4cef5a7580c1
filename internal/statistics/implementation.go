package statistics

import (
	"context"
	"time"
)

const defaultRankLimit = 10

// service implements the Service interface.
type service struct {
	store Store
	now   func() time.Time
}

// Option configures the statistics service.
type Option func(*service)

// WithClock replaces the wall clock used for overdue detection.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// NewService creates a new statistics service instance.
func NewService(store Store, opts ...Option) Service {
	s := &service{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot aggregates the current library state. Nothing is cached between
// calls; overdue counts reflect the clock at call time.
func (s *service) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	var err error
	if snap.TotalBooks, err = s.store.CountBooks(ctx); err != nil {
		return nil, err
	}
	if snap.TotalCopies, err = s.store.CountCopies(ctx); err != nil {
		return nil, err
	}
	if snap.AvailableCopies, err = s.store.CountAvailableCopies(ctx); err != nil {
		return nil, err
	}
	snap.OnLoanCopies = snap.TotalCopies - snap.AvailableCopies

	if snap.TotalReaders, err = s.store.CountReaders(ctx); err != nil {
		return nil, err
	}
	if snap.ActiveReaders, err = s.store.CountActiveReaders(ctx); err != nil {
		return nil, err
	}
	if snap.ActiveLoans, err = s.store.CountActiveLoans(ctx); err != nil {
		return nil, err
	}
	if snap.OverdueLoans, err = s.store.CountOverdueLoans(ctx, startOfDay(s.now())); err != nil {
		return nil, err
	}

	return snap, nil
}

// startOfDay truncates t to midnight UTC. Due dates are calendar days, so the
// overdue cutoff must be a day boundary; a raw instant would count loans due
// today as overdue.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PopularBooks ranks books by loan count descending, ties broken by book id
// ascending so the ranking is deterministic.
func (s *service) PopularBooks(ctx context.Context, limit int) ([]PopularBook, error) {
	if limit <= 0 {
		limit = defaultRankLimit
	}
	return s.store.RankPopularBooks(ctx, limit)
}

// ActiveReaders ranks readers by total loan count descending, ties broken by
// reader id ascending.
func (s *service) ActiveReaders(ctx context.Context, limit int) ([]ActiveReader, error) {
	if limit <= 0 {
		limit = defaultRankLimit
	}
	return s.store.RankActiveReaders(ctx, limit)
}
