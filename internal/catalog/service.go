package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the catalog service.
type Service interface {
	ListBooks(ctx context.Context, skip, limit int) ([]Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (*Book, error)
	SearchBooks(ctx context.Context, query string) ([]Book, error)
	CreateBook(ctx context.Context, params CreateBookParams) (*Book, error)
	ListBooksByAuthor(ctx context.Context, authorID uuid.UUID) ([]Book, error)

	ListCopies(ctx context.Context, bookID uuid.UUID) ([]BookCopy, error)
	ListAvailableCopies(ctx context.Context, bookID uuid.UUID) ([]BookCopy, error)
	GetCopyByInventoryNumber(ctx context.Context, inventoryNumber string) (*BookCopy, error)
	AddCopy(ctx context.Context, params AddCopyParams) (*BookCopy, error)

	CreateAuthor(ctx context.Context, params CreateAuthorParams) (*Author, error)
	CreatePublisher(ctx context.Context, params CreatePublisherParams) (*Publisher, error)
}

// Store is the persistence surface the catalog service relies on.
type Store interface {
	ListBooks(ctx context.Context, skip, limit int) ([]Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (*Book, error)
	SearchBooksByTitle(ctx context.Context, query string, limit int) ([]Book, error)
	InsertBook(ctx context.Context, book *Book, authorIDs []uuid.UUID) error
	ListBooksByAuthor(ctx context.Context, authorID uuid.UUID) ([]Book, error)

	ListCopies(ctx context.Context, bookID uuid.UUID) ([]BookCopy, error)
	ListAvailableCopies(ctx context.Context, bookID uuid.UUID) ([]BookCopy, error)
	GetCopyByInventoryNumber(ctx context.Context, inventoryNumber string) (*BookCopy, error)
	InsertCopy(ctx context.Context, copy *BookCopy) error

	InsertAuthor(ctx context.Context, author *Author) error
	InsertPublisher(ctx context.Context, publisher *Publisher) error
}

// CreateBookParams carries the fields accepted when cataloging a new book.
type CreateBookParams struct {
	ISBN        string      `json:"isbn"`
	Title       string      `json:"title"`
	PublisherID *uuid.UUID  `json:"publisher_id"`
	AuthorIDs   []uuid.UUID `json:"author_ids"`
	Year        int         `json:"year"`
	Genre       string      `json:"genre"`
	Pages       int         `json:"pages"`
	Language    string      `json:"language"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
}

// AddCopyParams carries the fields accepted when registering a physical copy.
type AddCopyParams struct {
	BookID          uuid.UUID `json:"book_id"`
	InventoryNumber string    `json:"inventory_number"`
	Condition       string    `json:"condition"`
	Price           float64   `json:"price"`
	Notes           string    `json:"notes"`
}

// CreateAuthorParams carries the fields accepted when creating an author.
type CreateAuthorParams struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	MiddleName  string `json:"middle_name"`
	Biography   string `json:"biography"`
	Nationality string `json:"nationality"`
}

// CreatePublisherParams carries the fields accepted when creating a publisher.
type CreatePublisherParams struct {
	Name         string `json:"name"`
	Country      string `json:"country"`
	City         string `json:"city"`
	Website      string `json:"website"`
	ContactEmail string `json:"contact_email"`
}
