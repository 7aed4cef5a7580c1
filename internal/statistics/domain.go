package statistics

import "github.com/google/uuid"

// Snapshot is the library-wide aggregate state, recomputed on every call.
// OnLoanCopies is always TotalCopies - AvailableCopies.
type Snapshot struct {
	TotalBooks      int `json:"total_books"`
	TotalCopies     int `json:"total_copies"`
	AvailableCopies int `json:"available_copies"`
	OnLoanCopies    int `json:"on_loan_copies"`
	TotalReaders    int `json:"total_readers"`
	ActiveReaders   int `json:"active_readers"`
	ActiveLoans     int `json:"active_loans"`
	OverdueLoans    int `json:"overdue_loans"`
}

// PopularBook is one row of the loan-count ranking of books.
type PopularBook struct {
	BookID    uuid.UUID `json:"book_id" db:"book_id"`
	Title     string    `json:"title" db:"title"`
	LoanCount int       `json:"loan_count" db:"loan_count"`
}

// ActiveReader is one row of the loan-count ranking of readers.
type ActiveReader struct {
	ReaderID   uuid.UUID `json:"reader_id" db:"reader_id"`
	Name       string    `json:"name" db:"name"`
	CardNumber string    `json:"card_number" db:"card_number"`
	LoanCount  int       `json:"loan_count" db:"loan_count"`
}
