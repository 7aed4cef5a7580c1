package membership

import (
	"time"

	"github.com/google/uuid"
)

// ReaderStatus is the lifecycle state of a reader account.
type ReaderStatus string

const (
	ReaderActive   ReaderStatus = "active"
	ReaderInactive ReaderStatus = "inactive"
)

// LibrarianStatus is the employment state of a staff account.
type LibrarianStatus string

const (
	LibrarianWorking  LibrarianStatus = "working"
	LibrarianInactive LibrarianStatus = "inactive"
)

// Reader is a library borrower. MaxBooks caps concurrent active loans.
type Reader struct {
	ID                uuid.UUID    `json:"id" db:"id"`
	LibraryCardNumber string       `json:"library_card_number" db:"library_card_number"`
	FirstName         string       `json:"first_name" db:"first_name"`
	LastName          string       `json:"last_name" db:"last_name"`
	MiddleName        string       `json:"middle_name,omitempty" db:"middle_name"`
	Email             string       `json:"email,omitempty" db:"email"`
	Phone             string       `json:"phone,omitempty" db:"phone"`
	Address           string       `json:"address,omitempty" db:"address"`
	RegistrationDate  time.Time    `json:"registration_date" db:"registration_date"`
	Status            ReaderStatus `json:"status" db:"status"`
	MaxBooks          int          `json:"max_books" db:"max_books"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
}

// Librarian is a staff member recorded on each loan for audit.
type Librarian struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	EmployeeNumber string          `json:"employee_number" db:"employee_number"`
	FirstName      string          `json:"first_name" db:"first_name"`
	LastName       string          `json:"last_name" db:"last_name"`
	MiddleName     string          `json:"middle_name,omitempty" db:"middle_name"`
	Position       string          `json:"position" db:"position"`
	Email          string          `json:"email,omitempty" db:"email"`
	Phone          string          `json:"phone,omitempty" db:"phone"`
	HireDate       time.Time       `json:"hire_date" db:"hire_date"`
	Status         LibrarianStatus `json:"status" db:"status"`
	PasswordHash   string          `json:"-" db:"password_hash"`
	Salt           string          `json:"-" db:"salt"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}
