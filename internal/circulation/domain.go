package circulation

import (
	"time"

	"github.com/google/uuid"
)

// LoanStatus is the lifecycle state of a loan. A loan transitions
// active -> returned exactly once and never back.
type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
)

// ReservationStatus is the lifecycle state of a reservation. Expiry is
// derived from the clock at query time and never persisted automatically;
// ReservationExpired exists for explicit updates only.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationFulfilled ReservationStatus = "fulfilled"
	ReservationExpired   ReservationStatus = "expired"
)

// Valid reports whether s is a known reservation status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationActive, ReservationFulfilled, ReservationExpired:
		return true
	}
	return false
}

// Loan binds one book copy, one reader and one librarian. At most one active
// loan references a given copy at any time.
type Loan struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CopyID      uuid.UUID  `json:"copy_id" db:"copy_id"`
	ReaderID    uuid.UUID  `json:"reader_id" db:"reader_id"`
	LibrarianID uuid.UUID  `json:"librarian_id" db:"librarian_id"`
	LoanDate    time.Time  `json:"loan_date" db:"loan_date"`
	DueDate     time.Time  `json:"due_date" db:"due_date"`
	ReturnDate  *time.Time `json:"return_date,omitempty" db:"return_date"`
	Status      LoanStatus `json:"status" db:"status"`
	FineAmount  float64    `json:"fine_amount" db:"fine_amount"`
	Notes       string     `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// OverdueAt reports whether the loan is overdue as of the given day:
// still active with a due date strictly before it.
func (l Loan) OverdueAt(day time.Time) bool {
	return l.Status == LoanActive && l.DueDate.Before(dateOnly(day))
}

// Reservation queues one reader for one book while no copy is in the library.
type Reservation struct {
	ID               uuid.UUID         `json:"id" db:"id"`
	BookID           uuid.UUID         `json:"book_id" db:"book_id"`
	ReaderID         uuid.UUID         `json:"reader_id" db:"reader_id"`
	ReservationDate  time.Time         `json:"reservation_date" db:"reservation_date"`
	ExpiryDate       time.Time         `json:"expiry_date" db:"expiry_date"`
	Status           ReservationStatus `json:"status" db:"status"`
	NotificationSent bool              `json:"notification_sent" db:"notification_sent"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at"`
}

// ExpiredAt reports whether the reservation has lapsed as of the given day:
// still marked active with an expiry date strictly before it.
func (r Reservation) ExpiredAt(day time.Time) bool {
	return r.Status == ReservationActive && r.ExpiryDate.Before(dateOnly(day))
}

// dateOnly truncates t to midnight UTC. Loan and reservation dates are
// calendar days, not instants.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
