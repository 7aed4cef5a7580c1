package statistics

import (
	"context"
	"time"
)

// Service defines the interface for the statistics service.
type Service interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
	PopularBooks(ctx context.Context, limit int) ([]PopularBook, error)
	ActiveReaders(ctx context.Context, limit int) ([]ActiveReader, error)
}

// Store is the read-only aggregation surface the statistics service uses.
type Store interface {
	CountBooks(ctx context.Context) (int, error)
	CountCopies(ctx context.Context) (int, error)
	CountAvailableCopies(ctx context.Context) (int, error)
	CountReaders(ctx context.Context) (int, error)
	CountActiveReaders(ctx context.Context) (int, error)
	CountActiveLoans(ctx context.Context) (int, error)
	CountOverdueLoans(ctx context.Context, asOf time.Time) (int, error)

	RankPopularBooks(ctx context.Context, limit int) ([]PopularBook, error)
	RankActiveReaders(ctx context.Context, limit int) ([]ActiveReader, error)
}
