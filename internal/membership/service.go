package membership

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the membership service.
type Service interface {
	ListReaders(ctx context.Context, skip, limit int) ([]Reader, error)
	GetReader(ctx context.Context, id uuid.UUID) (*Reader, error)
	GetReaderByCardNumber(ctx context.Context, cardNumber string) (*Reader, error)
	CreateReader(ctx context.Context, params CreateReaderParams) (*Reader, error)

	GetLibrarian(ctx context.Context, id uuid.UUID) (*Librarian, error)
	CreateLibrarian(ctx context.Context, params CreateLibrarianParams) (*Librarian, error)
	Authenticate(ctx context.Context, employeeNumber, password string) (*Librarian, error)
}

// Store is the persistence surface the membership service relies on.
type Store interface {
	ListReaders(ctx context.Context, skip, limit int) ([]Reader, error)
	GetReader(ctx context.Context, id uuid.UUID) (*Reader, error)
	GetReaderByCardNumber(ctx context.Context, cardNumber string) (*Reader, error)
	InsertReader(ctx context.Context, reader *Reader) error

	GetLibrarian(ctx context.Context, id uuid.UUID) (*Librarian, error)
	GetLibrarianByEmployeeNumber(ctx context.Context, employeeNumber string) (*Librarian, error)
	InsertLibrarian(ctx context.Context, librarian *Librarian) error
}

// CreateReaderParams carries the fields accepted when registering a reader.
type CreateReaderParams struct {
	LibraryCardNumber string `json:"library_card_number"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	MiddleName        string `json:"middle_name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	MaxBooks          int    `json:"max_books"`
}

// CreateLibrarianParams carries the fields accepted when creating a staff account.
type CreateLibrarianParams struct {
	EmployeeNumber string `json:"employee_number"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	MiddleName     string `json:"middle_name"`
	Position       string `json:"position"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Password       string `json:"password"`
}
