package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"biblios/internal/apperror"
)

const (
	defaultListLimit   = 100
	defaultSearchLimit = 50
	defaultCondition   = "good"
	defaultLanguage    = "ru"
)

// service implements the Service interface.
type service struct {
	store  Store
	search Searcher
	logger *slog.Logger
}

// Option configures the catalog service.
type Option func(*service)

// WithSearcher plugs in an external search index. Without it all searches go
// to the relational store.
func WithSearcher(s Searcher) Option {
	return func(svc *service) {
		svc.search = s
	}
}

// NewService creates a new catalog service instance.
func NewService(store Store, logger *slog.Logger, opts ...Option) Service {
	svc := &service{
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ListBooks returns a page of the catalog.
func (s *service) ListBooks(ctx context.Context, skip, limit int) ([]Book, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	if skip < 0 {
		skip = 0
	}
	return s.store.ListBooks(ctx, skip, limit)
}

// GetBook returns a single book by id.
func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	return s.store.GetBook(ctx, id)
}

// GetBookByISBN returns a single book by ISBN.
func (s *service) GetBookByISBN(ctx context.Context, isbn string) (*Book, error) {
	if isbn == "" {
		return nil, apperror.Invalid("book", "isbn is required")
	}
	return s.store.GetBookByISBN(ctx, isbn)
}

// SearchBooks finds books by title. When an external index is configured it is
// consulted first; any failure there degrades to the relational ILIKE search.
func (s *service) SearchBooks(ctx context.Context, query string) ([]Book, error) {
	if s.search != nil {
		books, err := s.search.Search(ctx, query, defaultSearchLimit)
		if err == nil {
			return books, nil
		}
		s.logger.Warn("search index unavailable, falling back to store",
			"query", query, "error", err)
	}
	return s.store.SearchBooksByTitle(ctx, query, defaultSearchLimit)
}

// CreateBook catalogs a new book and links its authors.
func (s *service) CreateBook(ctx context.Context, params CreateBookParams) (*Book, error) {
	if params.Title == "" {
		return nil, apperror.Invalid("book", "title is required")
	}

	now := time.Now().UTC()
	book := &Book{
		ID:          uuid.New(),
		ISBN:        params.ISBN,
		Title:       params.Title,
		PublisherID: params.PublisherID,
		Year:        params.Year,
		Genre:       params.Genre,
		Pages:       params.Pages,
		Language:    params.Language,
		Description: params.Description,
		Location:    params.Location,
		Status:      BookAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if book.Language == "" {
		book.Language = defaultLanguage
	}

	if err := s.store.InsertBook(ctx, book, params.AuthorIDs); err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}

	if s.search != nil {
		if err := s.search.IndexBook(ctx, *book); err != nil {
			// Indexing is best effort; the catalog row is the source of truth.
			s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
		}
	}

	return book, nil
}

// ListBooksByAuthor returns all books linked to the given author.
func (s *service) ListBooksByAuthor(ctx context.Context, authorID uuid.UUID) ([]Book, error) {
	return s.store.ListBooksByAuthor(ctx, authorID)
}

// ListCopies returns every physical copy of a book.
func (s *service) ListCopies(ctx context.Context, bookID uuid.UUID) ([]BookCopy, error) {
	return s.store.ListCopies(ctx, bookID)
}

// ListAvailableCopies returns the copies of a book currently in the library.
func (s *service) ListAvailableCopies(ctx context.Context, bookID uuid.UUID) ([]BookCopy, error) {
	return s.store.ListAvailableCopies(ctx, bookID)
}

// GetCopyByInventoryNumber returns a single copy by its inventory number.
func (s *service) GetCopyByInventoryNumber(ctx context.Context, inventoryNumber string) (*BookCopy, error) {
	if inventoryNumber == "" {
		return nil, apperror.Invalid("copy", "inventory number is required")
	}
	return s.store.GetCopyByInventoryNumber(ctx, inventoryNumber)
}

// AddCopy registers a physical copy for an existing book.
func (s *service) AddCopy(ctx context.Context, params AddCopyParams) (*BookCopy, error) {
	if params.InventoryNumber == "" {
		return nil, apperror.Invalid("copy", "inventory number is required")
	}
	if _, err := s.store.GetBook(ctx, params.BookID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	copy := &BookCopy{
		ID:              uuid.New(),
		BookID:          params.BookID,
		InventoryNumber: params.InventoryNumber,
		Condition:       params.Condition,
		Status:          CopyInLibrary,
		AcquisitionDate: now,
		Price:           params.Price,
		Notes:           params.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if copy.Condition == "" {
		copy.Condition = defaultCondition
	}

	if err := s.store.InsertCopy(ctx, copy); err != nil {
		return nil, fmt.Errorf("insert copy: %w", err)
	}
	return copy, nil
}

// CreateAuthor adds an author record.
func (s *service) CreateAuthor(ctx context.Context, params CreateAuthorParams) (*Author, error) {
	if params.FirstName == "" || params.LastName == "" {
		return nil, apperror.Invalid("author", "first and last name are required")
	}

	now := time.Now().UTC()
	author := &Author{
		ID:          uuid.New(),
		FirstName:   params.FirstName,
		LastName:    params.LastName,
		MiddleName:  params.MiddleName,
		Biography:   params.Biography,
		Nationality: params.Nationality,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertAuthor(ctx, author); err != nil {
		return nil, fmt.Errorf("insert author: %w", err)
	}
	return author, nil
}

// CreatePublisher adds a publisher record. Name is unique.
func (s *service) CreatePublisher(ctx context.Context, params CreatePublisherParams) (*Publisher, error) {
	if params.Name == "" {
		return nil, apperror.Invalid("publisher", "name is required")
	}

	now := time.Now().UTC()
	publisher := &Publisher{
		ID:           uuid.New(),
		Name:         params.Name,
		Country:      params.Country,
		City:         params.City,
		Website:      params.Website,
		ContactEmail: params.ContactEmail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.InsertPublisher(ctx, publisher); err != nil {
		return nil, fmt.Errorf("insert publisher: %w", err)
	}
	return publisher, nil
}
