package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"biblios/internal/catalog"
	"biblios/internal/circulation"
	"biblios/internal/membership"
	"biblios/internal/statistics"
)

var _ statistics.Store = (*Store)(nil)

// CountBooks counts catalog titles.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	return count(ctx, s.db, tableBooks, goqu.Ex{})
}

// CountCopies counts physical copies across all titles.
func (s *Store) CountCopies(ctx context.Context) (int, error) {
	return count(ctx, s.db, tableBookCopies, goqu.Ex{})
}

// CountAvailableCopies counts copies currently in the library.
func (s *Store) CountAvailableCopies(ctx context.Context) (int, error) {
	return count(ctx, s.db, tableBookCopies, goqu.Ex{"status": catalog.CopyInLibrary})
}

// CountReaders counts registered readers.
func (s *Store) CountReaders(ctx context.Context) (int, error) {
	return count(ctx, s.db, tableReaders, goqu.Ex{})
}

// CountActiveReaders counts readers whose membership is active.
func (s *Store) CountActiveReaders(ctx context.Context) (int, error) {
	return count(ctx, s.db, tableReaders, goqu.Ex{"status": membership.ReaderActive})
}

// CountActiveLoans counts loans not yet returned.
func (s *Store) CountActiveLoans(ctx context.Context) (int, error) {
	return count(ctx, s.db, tableLoans, goqu.Ex{"status": circulation.LoanActive})
}

// CountOverdueLoans counts active loans due strictly before asOf.
func (s *Store) CountOverdueLoans(ctx context.Context, asOf time.Time) (int, error) {
	query, args, err := qb.From(tableLoans).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.And(
			goqu.C("status").Eq(circulation.LoanActive),
			goqu.C("due_date").Lt(asOf),
		)).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count overdue loans query: %w", err)
	}

	var n int
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count overdue loans: %w", err)
	}
	return n, nil
}

// RankPopularBooks ranks books by all-time loan count, descending. Ties
// break on book id so repeated calls return the same order.
func (s *Store) RankPopularBooks(ctx context.Context, limit int) ([]statistics.PopularBook, error) {
	query, args, err := qb.From(goqu.T(tableBooks).As("b")).
		Join(goqu.T(tableBookCopies).As("c"), goqu.On(goqu.Ex{"c.book_id": goqu.I("b.id")})).
		Join(goqu.T(tableLoans).As("l"), goqu.On(goqu.Ex{"l.copy_id": goqu.I("c.id")})).
		Select(
			goqu.I("b.id").As("book_id"),
			goqu.I("b.title").As("title"),
			goqu.COUNT(goqu.I("l.id")).As("loan_count"),
		).
		GroupBy(goqu.I("b.id"), goqu.I("b.title")).
		Order(goqu.C("loan_count").Desc(), goqu.I("b.id").Asc()).
		Limit(uint(limit)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build rank popular books query: %w", err)
	}

	books := []statistics.PopularBook{}
	if err := s.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("rank popular books: %w", err)
	}
	return books, nil
}

// RankActiveReaders ranks readers by all-time loan count, descending, with
// reader id as tiebreak.
func (s *Store) RankActiveReaders(ctx context.Context, limit int) ([]statistics.ActiveReader, error) {
	query, args, err := qb.From(goqu.T(tableReaders).As("r")).
		Join(goqu.T(tableLoans).As("l"), goqu.On(goqu.Ex{"l.reader_id": goqu.I("r.id")})).
		Select(
			goqu.I("r.id").As("reader_id"),
			goqu.L("r.first_name || ' ' || r.last_name").As("name"),
			goqu.I("r.library_card_number").As("card_number"),
			goqu.COUNT(goqu.I("l.id")).As("loan_count"),
		).
		GroupBy(goqu.I("r.id"), goqu.I("r.first_name"), goqu.I("r.last_name"), goqu.I("r.library_card_number")).
		Order(goqu.C("loan_count").Desc(), goqu.I("r.id").Asc()).
		Limit(uint(limit)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build rank active readers query: %w", err)
	}

	readers := []statistics.ActiveReader{}
	if err := s.db.SelectContext(ctx, &readers, query, args...); err != nil {
		return nil, fmt.Errorf("rank active readers: %w", err)
	}
	return readers, nil
}
