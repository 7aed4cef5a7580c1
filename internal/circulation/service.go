package circulation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"biblios/internal/catalog"
	"biblios/internal/membership"
)

// Service defines the interface for the circulation service.
type Service interface {
	CreateLoan(ctx context.Context, params CreateLoanParams) (*Loan, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error)
	ReturnLoan(ctx context.Context, loanID uuid.UUID, fineAmount float64) (*Loan, error)
	OverdueLoans(ctx context.Context) ([]Loan, error)
	LoansForReader(ctx context.Context, readerID uuid.UUID) ([]Loan, error)
	ActiveLoansForReader(ctx context.Context, readerID uuid.UUID) ([]Loan, error)

	CreateReservation(ctx context.Context, params CreateReservationParams) (*Reservation, bool, error)
	ActiveReservationsForBook(ctx context.Context, bookID uuid.UUID) ([]Reservation, error)
	FulfillReservation(ctx context.Context, id uuid.UUID) (*Reservation, error)
	ExpiredReservations(ctx context.Context) ([]Reservation, error)
	UpdateReservation(ctx context.Context, id uuid.UUID, patch ReservationPatch) (*Reservation, error)
	DeleteReservation(ctx context.Context, id uuid.UUID) error
}

// Store is the persistence surface for circulation. Reads outside a lifecycle
// mutation go through the direct methods; every mutation runs inside WithTx so
// validation and writes share one transaction.
type Store interface {
	WithTx(ctx context.Context, fn func(tx StoreTx) error) error

	GetLoan(ctx context.Context, id uuid.UUID) (*Loan, error)
	ListOverdueLoans(ctx context.Context, asOf time.Time) ([]Loan, error)
	ListLoansForReader(ctx context.Context, readerID uuid.UUID) ([]Loan, error)
	ListActiveLoansForReader(ctx context.Context, readerID uuid.UUID) ([]Loan, error)

	ListActiveReservationsForBook(ctx context.Context, bookID uuid.UUID) ([]Reservation, error)
	ListExpiredReservations(ctx context.Context, asOf time.Time) ([]Reservation, error)
}

// StoreTx is the transaction-scoped view of the store. The ForUpdate reads
// take row locks so concurrent lifecycle mutations serialize on the rows they
// touch.
type StoreTx interface {
	CopyForUpdate(ctx context.Context, copyID uuid.UUID) (*catalog.BookCopy, error)
	SetCopyStatus(ctx context.Context, copyID uuid.UUID, status catalog.CopyStatus) error

	GetReader(ctx context.Context, readerID uuid.UUID) (*membership.Reader, error)
	CountActiveLoansForReader(ctx context.Context, readerID uuid.UUID) (int, error)
	LibrarianExists(ctx context.Context, librarianID uuid.UUID) (bool, error)
	BookExists(ctx context.Context, bookID uuid.UUID) (bool, error)
	CountAvailableCopies(ctx context.Context, bookID uuid.UUID) (int, error)

	InsertLoan(ctx context.Context, loan *Loan) error
	LoanForUpdate(ctx context.Context, loanID uuid.UUID) (*Loan, error)
	UpdateLoan(ctx context.Context, loan *Loan) error

	FindActiveReservation(ctx context.Context, bookID, readerID uuid.UUID) (*Reservation, error)
	InsertReservation(ctx context.Context, reservation *Reservation) error
	ReservationForUpdate(ctx context.Context, id uuid.UUID) (*Reservation, error)
	UpdateReservation(ctx context.Context, reservation *Reservation) error
	DeleteReservation(ctx context.Context, id uuid.UUID) error
}

// CreateLoanParams carries the fields accepted when issuing a loan.
type CreateLoanParams struct {
	CopyID      uuid.UUID `json:"copy_id"`
	ReaderID    uuid.UUID `json:"reader_id"`
	LibrarianID uuid.UUID `json:"librarian_id"`
	LoanDays    int       `json:"loan_days"`
	Notes       string    `json:"notes"`
}

// CreateReservationParams carries the fields accepted when queuing a reservation.
type CreateReservationParams struct {
	BookID     uuid.UUID `json:"book_id"`
	ReaderID   uuid.UUID `json:"reader_id"`
	ExpiryDays int       `json:"expiry_days"`
}

// ReservationPatch is the whitelist of fields an explicit update may touch.
// Nil fields are left unchanged.
type ReservationPatch struct {
	Status           *ReservationStatus `json:"status"`
	ExpiryDate       *time.Time         `json:"expiry_date"`
	NotificationSent *bool              `json:"notification_sent"`
}
