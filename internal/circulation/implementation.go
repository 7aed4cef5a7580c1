package circulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"biblios/internal/apperror"
	"biblios/internal/catalog"
	"biblios/internal/membership"
)

const (
	defaultLoanDays   = 14
	defaultExpiryDays = 7
)

// service implements the Service interface.
type service struct {
	store      Store
	logger     *slog.Logger
	now        func() time.Time
	loanDays   int
	expiryDays int
}

// Option configures the circulation service.
type Option func(*service)

// WithClock replaces the wall clock, used by tests to move "today" around.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithLoanDays sets the default loan period applied when a request carries none.
func WithLoanDays(days int) Option {
	return func(s *service) {
		if days > 0 {
			s.loanDays = days
		}
	}
}

// WithExpiryDays sets the default reservation lifetime applied when a request
// carries none.
func WithExpiryDays(days int) Option {
	return func(s *service) {
		if days > 0 {
			s.expiryDays = days
		}
	}
}

// NewService creates a new circulation service instance.
func NewService(store Store, logger *slog.Logger, opts ...Option) Service {
	s := &service{
		store:      store,
		logger:     logger,
		now:        time.Now,
		loanDays:   defaultLoanDays,
		expiryDays: defaultExpiryDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateLoan issues a copy to a reader. All checks run against rows read
// inside one transaction, the copy row locked, so two concurrent calls for
// the same copy cannot both succeed. Check order: copy exists, copy in
// library, reader exists, reader active, reader under limit, librarian
// exists. No write happens until every check has passed.
func (s *service) CreateLoan(ctx context.Context, params CreateLoanParams) (*Loan, error) {
	loanDays := params.LoanDays
	if loanDays <= 0 {
		loanDays = s.loanDays
	}

	var loan *Loan
	err := s.store.WithTx(ctx, func(tx StoreTx) error {
		copy, err := tx.CopyForUpdate(ctx, params.CopyID)
		if err != nil {
			return err
		}
		if copy.Status != catalog.CopyInLibrary {
			return apperror.Conflict("copy", "copy is not available for loan")
		}

		reader, err := tx.GetReader(ctx, params.ReaderID)
		if err != nil {
			return err
		}
		if reader.Status != membership.ReaderActive {
			return apperror.Conflict("reader", "reader is not active")
		}

		activeCount, err := tx.CountActiveLoansForReader(ctx, params.ReaderID)
		if err != nil {
			return err
		}
		if activeCount >= reader.MaxBooks {
			return apperror.LimitExceeded("reader",
				fmt.Sprintf("loan limit exceeded, maximum is %d", reader.MaxBooks))
		}

		ok, err := tx.LibrarianExists(ctx, params.LibrarianID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound("librarian")
		}

		today := dateOnly(s.now())
		loan = &Loan{
			ID:          uuid.New(),
			CopyID:      params.CopyID,
			ReaderID:    params.ReaderID,
			LibrarianID: params.LibrarianID,
			LoanDate:    today,
			DueDate:     today.AddDate(0, 0, loanDays),
			Status:      LoanActive,
			Notes:       params.Notes,
			CreatedAt:   s.now().UTC(),
			UpdatedAt:   s.now().UTC(),
		}

		if err := tx.SetCopyStatus(ctx, params.CopyID, catalog.CopyOnLoan); err != nil {
			return err
		}
		return tx.InsertLoan(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan created",
		"loan_id", loan.ID, "copy_id", loan.CopyID, "reader_id", loan.ReaderID,
		"due_date", loan.DueDate)
	return loan, nil
}

// GetLoan returns a single loan by id.
func (s *service) GetLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	return s.store.GetLoan(ctx, loanID)
}

// ReturnLoan closes an active loan and puts the copy back in the library.
// A second call for the same loan fails with a conflict; returns are not
// idempotent by design.
func (s *service) ReturnLoan(ctx context.Context, loanID uuid.UUID, fineAmount float64) (*Loan, error) {
	if fineAmount < 0 {
		return nil, apperror.Invalid("loan", "fine amount cannot be negative")
	}

	var loan *Loan
	err := s.store.WithTx(ctx, func(tx StoreTx) error {
		var err error
		loan, err = tx.LoanForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if loan.Status != LoanActive {
			return apperror.Conflict("loan", "loan is already closed")
		}

		today := dateOnly(s.now())
		loan.Status = LoanReturned
		loan.ReturnDate = &today
		loan.FineAmount = fineAmount
		loan.UpdatedAt = s.now().UTC()

		if err := tx.UpdateLoan(ctx, loan); err != nil {
			return err
		}
		return tx.SetCopyStatus(ctx, loan.CopyID, catalog.CopyInLibrary)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan returned",
		"loan_id", loan.ID, "copy_id", loan.CopyID, "fine_amount", fineAmount)
	return loan, nil
}

// OverdueLoans returns active loans whose due date has passed, evaluated
// against the clock at call time.
func (s *service) OverdueLoans(ctx context.Context) ([]Loan, error) {
	return s.store.ListOverdueLoans(ctx, dateOnly(s.now()))
}

// LoansForReader returns the full loan history of a reader.
func (s *service) LoansForReader(ctx context.Context, readerID uuid.UUID) ([]Loan, error) {
	return s.store.ListLoansForReader(ctx, readerID)
}

// ActiveLoansForReader returns the loans a reader has not yet returned.
func (s *service) ActiveLoansForReader(ctx context.Context, readerID uuid.UUID) ([]Loan, error) {
	return s.store.ListActiveLoansForReader(ctx, readerID)
}

// CreateReservation queues a reader for a book. The boolean result reports
// whether a new reservation was created; re-requesting while one is active
// returns the existing row unchanged. Check order matters: availability
// first (a book with a copy in the library is rejected as "not needed"),
// then the idempotent re-request, then reader and book existence.
func (s *service) CreateReservation(ctx context.Context, params CreateReservationParams) (*Reservation, bool, error) {
	expiryDays := params.ExpiryDays
	if expiryDays <= 0 {
		expiryDays = s.expiryDays
	}

	var (
		reservation *Reservation
		created     bool
	)
	err := s.store.WithTx(ctx, func(tx StoreTx) error {
		available, err := tx.CountAvailableCopies(ctx, params.BookID)
		if err != nil {
			return err
		}
		if available > 0 {
			return apperror.Available("reservation", "book is available, reservation is not needed")
		}

		existing, err := tx.FindActiveReservation(ctx, params.BookID, params.ReaderID)
		if err != nil {
			return err
		}
		if existing != nil {
			reservation = existing
			return nil
		}

		if _, err := tx.GetReader(ctx, params.ReaderID); err != nil {
			return err
		}
		ok, err := tx.BookExists(ctx, params.BookID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound("book")
		}

		today := dateOnly(s.now())
		reservation = &Reservation{
			ID:              uuid.New(),
			BookID:          params.BookID,
			ReaderID:        params.ReaderID,
			ReservationDate: today,
			ExpiryDate:      today.AddDate(0, 0, expiryDays),
			Status:          ReservationActive,
			CreatedAt:       s.now().UTC(),
			UpdatedAt:       s.now().UTC(),
		}
		created = true
		return tx.InsertReservation(ctx, reservation)
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Info("reservation created",
			"reservation_id", reservation.ID, "book_id", reservation.BookID,
			"reader_id", reservation.ReaderID, "expiry_date", reservation.ExpiryDate)
	}
	return reservation, created, nil
}

// ActiveReservationsForBook returns the reservation queue for a book,
// ordered by reservation date ascending. The order defines fulfillment
// priority.
func (s *service) ActiveReservationsForBook(ctx context.Context, bookID uuid.UUID) ([]Reservation, error) {
	return s.store.ListActiveReservationsForBook(ctx, bookID)
}

// FulfillReservation marks an active reservation fulfilled. Which reservation
// to fulfill is the caller's decision; there is no automatic matching to a
// returned copy.
func (s *service) FulfillReservation(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation *Reservation
	err := s.store.WithTx(ctx, func(tx StoreTx) error {
		var err error
		reservation, err = tx.ReservationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if reservation.Status != ReservationActive {
			return apperror.Conflict("reservation", "reservation is not active")
		}

		reservation.Status = ReservationFulfilled
		reservation.UpdatedAt = s.now().UTC()
		return tx.UpdateReservation(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation fulfilled", "reservation_id", reservation.ID)
	return reservation, nil
}

// ExpiredReservations reports active reservations whose expiry date has
// passed. It never flips their status; expiry stays advisory.
func (s *service) ExpiredReservations(ctx context.Context) ([]Reservation, error) {
	return s.store.ListExpiredReservations(ctx, dateOnly(s.now()))
}

// UpdateReservation applies a whitelisted patch to a reservation resolved by
// id. A missing reservation is a not-found error, never a silent no-op.
func (s *service) UpdateReservation(ctx context.Context, id uuid.UUID, patch ReservationPatch) (*Reservation, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperror.Invalid("reservation", fmt.Sprintf("unknown status %q", *patch.Status))
	}

	var reservation *Reservation
	err := s.store.WithTx(ctx, func(tx StoreTx) error {
		var err error
		reservation, err = tx.ReservationForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if patch.Status != nil {
			reservation.Status = *patch.Status
		}
		if patch.ExpiryDate != nil {
			reservation.ExpiryDate = dateOnly(*patch.ExpiryDate)
		}
		if patch.NotificationSent != nil {
			reservation.NotificationSent = *patch.NotificationSent
		}
		reservation.UpdatedAt = s.now().UTC()
		return tx.UpdateReservation(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// DeleteReservation removes a reservation resolved by id, failing when it
// does not exist.
func (s *service) DeleteReservation(ctx context.Context, id uuid.UUID) error {
	return s.store.WithTx(ctx, func(tx StoreTx) error {
		if _, err := tx.ReservationForUpdate(ctx, id); err != nil {
			return err
		}
		return tx.DeleteReservation(ctx, id)
	})
}
