package catalog

import (
	"time"

	"github.com/google/uuid"
)

// BookStatus is the catalog-level availability flag on a book record.
// It is informational; real availability is derived from copy state.
type BookStatus string

const (
	BookAvailable   BookStatus = "available"
	BookUnavailable BookStatus = "unavailable"
)

// CopyStatus is the state of one physical copy.
type CopyStatus string

const (
	CopyInLibrary CopyStatus = "in_library"
	CopyOnLoan    CopyStatus = "on_loan"
	CopyLost      CopyStatus = "lost"
	CopyDamaged   CopyStatus = "damaged"
)

// Valid reports whether s is a known copy status.
func (s CopyStatus) Valid() bool {
	switch s {
	case CopyInLibrary, CopyOnLoan, CopyLost, CopyDamaged:
		return true
	}
	return false
}

// Book is a catalog record. Physical instances live in BookCopy.
type Book struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ISBN        string     `json:"isbn,omitempty" db:"isbn"`
	Title       string     `json:"title" db:"title"`
	PublisherID *uuid.UUID `json:"publisher_id,omitempty" db:"publisher_id"`
	Year        int        `json:"year,omitempty" db:"year"`
	Genre       string     `json:"genre,omitempty" db:"genre"`
	Pages       int        `json:"pages,omitempty" db:"pages"`
	Language    string     `json:"language" db:"language"`
	Description string     `json:"description,omitempty" db:"description"`
	Location    string     `json:"location,omitempty" db:"location"`
	Status      BookStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// BookCopy is one physical instance of a Book.
type BookCopy struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	BookID          uuid.UUID  `json:"book_id" db:"book_id"`
	InventoryNumber string     `json:"inventory_number" db:"inventory_number"`
	Condition       string     `json:"condition" db:"condition"`
	Status          CopyStatus `json:"status" db:"status"`
	AcquisitionDate time.Time  `json:"acquisition_date" db:"acquisition_date"`
	Price           float64    `json:"price,omitempty" db:"price"`
	Notes           string     `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Author of zero or more books, linked via the book_authors table.
type Author struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	FirstName   string     `json:"first_name" db:"first_name"`
	LastName    string     `json:"last_name" db:"last_name"`
	MiddleName  string     `json:"middle_name,omitempty" db:"middle_name"`
	BirthDate   *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	Biography   string     `json:"biography,omitempty" db:"biography"`
	Nationality string     `json:"nationality,omitempty" db:"nationality"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Publisher of books. Name is unique.
type Publisher struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Country      string    `json:"country,omitempty" db:"country"`
	City         string    `json:"city,omitempty" db:"city"`
	Website      string    `json:"website,omitempty" db:"website"`
	ContactEmail string    `json:"contact_email,omitempty" db:"contact_email"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
