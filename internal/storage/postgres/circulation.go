package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"biblios/internal/catalog"
	"biblios/internal/circulation"
	"biblios/internal/membership"
)

var (
	_ circulation.Store   = (*Store)(nil)
	_ circulation.StoreTx = (*storeTx)(nil)
)

// GetLoan returns one loan by id.
func (s *Store) GetLoan(ctx context.Context, id uuid.UUID) (*circulation.Loan, error) {
	query, args, err := qb.From(tableLoans).
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get loan query: %w", err)
	}

	var loan circulation.Loan
	if err := s.db.GetContext(ctx, &loan, query, args...); err != nil {
		return nil, mapGetErr(err, "loan")
	}
	return &loan, nil
}

// ListOverdueLoans returns active loans due strictly before asOf.
func (s *Store) ListOverdueLoans(ctx context.Context, asOf time.Time) ([]circulation.Loan, error) {
	return s.listLoans(ctx, goqu.And(
		goqu.C("status").Eq(circulation.LoanActive),
		goqu.C("due_date").Lt(asOf),
	))
}

// ListLoansForReader returns the full loan history of a reader.
func (s *Store) ListLoansForReader(ctx context.Context, readerID uuid.UUID) ([]circulation.Loan, error) {
	return s.listLoans(ctx, goqu.C("reader_id").Eq(readerID))
}

// ListActiveLoansForReader returns the loans a reader has not returned.
func (s *Store) ListActiveLoansForReader(ctx context.Context, readerID uuid.UUID) ([]circulation.Loan, error) {
	return s.listLoans(ctx, goqu.And(
		goqu.C("reader_id").Eq(readerID),
		goqu.C("status").Eq(circulation.LoanActive),
	))
}

func (s *Store) listLoans(ctx context.Context, where goqu.Expression) ([]circulation.Loan, error) {
	query, args, err := qb.From(tableLoans).
		Where(where).
		Order(goqu.C("loan_date").Asc(), goqu.C("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list loans query: %w", err)
	}

	loans := []circulation.Loan{}
	if err := s.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return loans, nil
}

// ListActiveReservationsForBook returns the reservation queue for a book.
// Order is reservation date ascending with id as tiebreak; it defines
// fulfillment priority and must stay stable.
func (s *Store) ListActiveReservationsForBook(ctx context.Context, bookID uuid.UUID) ([]circulation.Reservation, error) {
	query, args, err := qb.From(tableReservations).
		Where(goqu.Ex{"book_id": bookID, "status": circulation.ReservationActive}).
		Order(goqu.C("reservation_date").Asc(), goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list reservations query: %w", err)
	}

	reservations := []circulation.Reservation{}
	if err := s.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return reservations, nil
}

// ListExpiredReservations returns reservations still marked active whose
// expiry date lies strictly before asOf. Their status is not touched.
func (s *Store) ListExpiredReservations(ctx context.Context, asOf time.Time) ([]circulation.Reservation, error) {
	query, args, err := qb.From(tableReservations).
		Where(goqu.And(
			goqu.C("status").Eq(circulation.ReservationActive),
			goqu.C("expiry_date").Lt(asOf),
		)).
		Order(goqu.C("expiry_date").Asc(), goqu.C("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list expired reservations query: %w", err)
	}

	reservations := []circulation.Reservation{}
	if err := s.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, fmt.Errorf("list expired reservations: %w", err)
	}
	return reservations, nil
}

// CopyForUpdate reads a copy row and locks it for the transaction, so a
// concurrent loan attempt on the same copy blocks until this one decides.
func (t *storeTx) CopyForUpdate(ctx context.Context, copyID uuid.UUID) (*catalog.BookCopy, error) {
	query, args, err := qb.From(tableBookCopies).
		Where(goqu.Ex{"id": copyID}).
		ForUpdate(exp.Wait).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build copy for update query: %w", err)
	}

	var copy catalog.BookCopy
	if err := t.tx.GetContext(ctx, &copy, query, args...); err != nil {
		return nil, mapGetErr(err, "copy")
	}
	return &copy, nil
}

// SetCopyStatus flips a copy's status.
func (t *storeTx) SetCopyStatus(ctx context.Context, copyID uuid.UUID, status catalog.CopyStatus) error {
	query, args, err := qb.Update(tableBookCopies).
		Set(goqu.Record{"status": status, "updated_at": time.Now().UTC()}).
		Where(goqu.Ex{"id": copyID}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build set copy status query: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set copy status: %w", err)
	}
	return nil
}

// GetReader reads a reader row inside the transaction.
func (t *storeTx) GetReader(ctx context.Context, readerID uuid.UUID) (*membership.Reader, error) {
	return getReader(ctx, t.tx, readerID, false)
}

// CountActiveLoansForReader counts the reader's open loans.
func (t *storeTx) CountActiveLoansForReader(ctx context.Context, readerID uuid.UUID) (int, error) {
	return count(ctx, t.tx, tableLoans, goqu.Ex{
		"reader_id": readerID,
		"status":    circulation.LoanActive,
	})
}

// LibrarianExists reports whether the staff account exists.
func (t *storeTx) LibrarianExists(ctx context.Context, librarianID uuid.UUID) (bool, error) {
	n, err := count(ctx, t.tx, tableLibrarians, goqu.Ex{"id": librarianID})
	return n > 0, err
}

// BookExists reports whether the book exists.
func (t *storeTx) BookExists(ctx context.Context, bookID uuid.UUID) (bool, error) {
	n, err := count(ctx, t.tx, tableBooks, goqu.Ex{"id": bookID})
	return n > 0, err
}

// CountAvailableCopies counts the book's copies currently in the library.
func (t *storeTx) CountAvailableCopies(ctx context.Context, bookID uuid.UUID) (int, error) {
	return count(ctx, t.tx, tableBookCopies, goqu.Ex{
		"book_id": bookID,
		"status":  catalog.CopyInLibrary,
	})
}

// InsertLoan stores a new loan row. The partial unique index on active loans
// backstops the row lock: even a missed lock cannot produce two active loans
// for one copy.
func (t *storeTx) InsertLoan(ctx context.Context, loan *circulation.Loan) error {
	query, args, err := qb.Insert(tableLoans).Rows(goqu.Record{
		"id":           loan.ID,
		"copy_id":      loan.CopyID,
		"reader_id":    loan.ReaderID,
		"librarian_id": loan.LibrarianID,
		"loan_date":    loan.LoanDate,
		"due_date":     loan.DueDate,
		"status":       loan.Status,
		"fine_amount":  loan.FineAmount,
		"notes":        loan.Notes,
		"created_at":   loan.CreatedAt,
		"updated_at":   loan.UpdatedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert loan query: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return mapInsertErr(err, "copy", "copy already has an active loan")
	}
	return nil
}

// LoanForUpdate reads a loan row and locks it for the transaction.
func (t *storeTx) LoanForUpdate(ctx context.Context, loanID uuid.UUID) (*circulation.Loan, error) {
	query, args, err := qb.From(tableLoans).
		Where(goqu.Ex{"id": loanID}).
		ForUpdate(exp.Wait).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build loan for update query: %w", err)
	}

	var loan circulation.Loan
	if err := t.tx.GetContext(ctx, &loan, query, args...); err != nil {
		return nil, mapGetErr(err, "loan")
	}
	return &loan, nil
}

// UpdateLoan persists the mutable loan fields.
func (t *storeTx) UpdateLoan(ctx context.Context, loan *circulation.Loan) error {
	query, args, err := qb.Update(tableLoans).
		Set(goqu.Record{
			"status":      loan.Status,
			"return_date": loan.ReturnDate,
			"fine_amount": loan.FineAmount,
			"updated_at":  loan.UpdatedAt,
		}).
		Where(goqu.Ex{"id": loan.ID}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build update loan query: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	return nil
}

// FindActiveReservation returns the active reservation for (book, reader),
// or nil when none exists.
func (t *storeTx) FindActiveReservation(ctx context.Context, bookID, readerID uuid.UUID) (*circulation.Reservation, error) {
	query, args, err := qb.From(tableReservations).
		Where(goqu.Ex{
			"book_id":   bookID,
			"reader_id": readerID,
			"status":    circulation.ReservationActive,
		}).
		Limit(1).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build find reservation query: %w", err)
	}

	var reservation circulation.Reservation
	if err := t.tx.GetContext(ctx, &reservation, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return &reservation, nil
}

// InsertReservation stores a new reservation row. The partial unique index on
// active reservations backstops the re-request check: two concurrent inserts
// for the same (book, reader) cannot both land.
func (t *storeTx) InsertReservation(ctx context.Context, reservation *circulation.Reservation) error {
	query, args, err := qb.Insert(tableReservations).Rows(goqu.Record{
		"id":                reservation.ID,
		"book_id":           reservation.BookID,
		"reader_id":         reservation.ReaderID,
		"reservation_date":  reservation.ReservationDate,
		"expiry_date":       reservation.ExpiryDate,
		"status":            reservation.Status,
		"notification_sent": reservation.NotificationSent,
		"created_at":        reservation.CreatedAt,
		"updated_at":        reservation.UpdatedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert reservation query: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return mapInsertErr(err, "reservation", "reader already has an active reservation for this book")
	}
	return nil
}

// ReservationForUpdate reads a reservation row and locks it.
func (t *storeTx) ReservationForUpdate(ctx context.Context, id uuid.UUID) (*circulation.Reservation, error) {
	query, args, err := qb.From(tableReservations).
		Where(goqu.Ex{"id": id}).
		ForUpdate(exp.Wait).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build reservation for update query: %w", err)
	}

	var reservation circulation.Reservation
	if err := t.tx.GetContext(ctx, &reservation, query, args...); err != nil {
		return nil, mapGetErr(err, "reservation")
	}
	return &reservation, nil
}

// UpdateReservation persists the mutable reservation fields.
func (t *storeTx) UpdateReservation(ctx context.Context, reservation *circulation.Reservation) error {
	query, args, err := qb.Update(tableReservations).
		Set(goqu.Record{
			"status":            reservation.Status,
			"expiry_date":       reservation.ExpiryDate,
			"notification_sent": reservation.NotificationSent,
			"updated_at":        reservation.UpdatedAt,
		}).
		Where(goqu.Ex{"id": reservation.ID}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build update reservation query: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	return nil
}

// DeleteReservation removes a reservation row.
func (t *storeTx) DeleteReservation(ctx context.Context, id uuid.UUID) error {
	query, args, err := qb.Delete(tableReservations).
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete reservation query: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}

// count runs SELECT COUNT(*) against one table with the given filter.
func count(ctx context.Context, q sqlx.QueryerContext, table string, where goqu.Ex) (int, error) {
	query, args, err := qb.From(table).
		Select(goqu.COUNT(goqu.Star())).
		Where(where).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err := sqlx.GetContext(ctx, q, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
