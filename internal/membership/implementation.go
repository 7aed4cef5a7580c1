package membership

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"biblios/internal/apperror"
)

const (
	defaultListLimit = 100
	defaultMaxBooks  = 5
)

// ErrRateLimited is returned when reader registration exceeds the limiter.
var ErrRateLimited = apperror.Invalid("reader", "registration rate limit exceeded")

// service implements the Service interface.
type service struct {
	store       Store
	logger      *slog.Logger
	rateLimiter *rate.Limiter
	maxBooks    int
}

// Option configures the membership service.
type Option func(*service)

// WithDefaultMaxBooks sets the borrowing limit applied to readers registered
// without an explicit one.
func WithDefaultMaxBooks(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.maxBooks = n
		}
	}
}

// NewService creates a new membership service instance.
func NewService(store Store, logger *slog.Logger, opts ...Option) Service {
	s := &service{
		store:       store,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 20), // registration burst guard
		maxBooks:    defaultMaxBooks,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListReaders returns a page of readers.
func (s *service) ListReaders(ctx context.Context, skip, limit int) ([]Reader, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	if skip < 0 {
		skip = 0
	}
	return s.store.ListReaders(ctx, skip, limit)
}

// GetReader returns a reader by id.
func (s *service) GetReader(ctx context.Context, id uuid.UUID) (*Reader, error) {
	return s.store.GetReader(ctx, id)
}

// GetReaderByCardNumber returns a reader by library card number.
func (s *service) GetReaderByCardNumber(ctx context.Context, cardNumber string) (*Reader, error) {
	return s.store.GetReaderByCardNumber(ctx, cardNumber)
}

// CreateReader registers a new reader. The card number is unique; a duplicate
// surfaces as a Duplicate error from the store.
func (s *service) CreateReader(ctx context.Context, params CreateReaderParams) (*Reader, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}
	if params.LibraryCardNumber == "" {
		return nil, apperror.Invalid("reader", "library card number is required")
	}
	if params.FirstName == "" || params.LastName == "" {
		return nil, apperror.Invalid("reader", "first and last name are required")
	}

	now := time.Now().UTC()
	reader := &Reader{
		ID:                uuid.New(),
		LibraryCardNumber: params.LibraryCardNumber,
		FirstName:         params.FirstName,
		LastName:          params.LastName,
		MiddleName:        params.MiddleName,
		Email:             params.Email,
		Phone:             params.Phone,
		Address:           params.Address,
		RegistrationDate:  now,
		Status:            ReaderActive,
		MaxBooks:          params.MaxBooks,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if reader.MaxBooks <= 0 {
		reader.MaxBooks = s.maxBooks
	}

	if err := s.store.InsertReader(ctx, reader); err != nil {
		return nil, fmt.Errorf("insert reader: %w", err)
	}

	s.logger.Info("reader registered", "reader_id", reader.ID, "card_number", reader.LibraryCardNumber)
	return reader, nil
}

// GetLibrarian returns a staff account by id.
func (s *service) GetLibrarian(ctx context.Context, id uuid.UUID) (*Librarian, error) {
	return s.store.GetLibrarian(ctx, id)
}

// CreateLibrarian creates a staff account with a hashed password.
func (s *service) CreateLibrarian(ctx context.Context, params CreateLibrarianParams) (*Librarian, error) {
	if params.EmployeeNumber == "" {
		return nil, apperror.Invalid("librarian", "employee number is required")
	}
	if params.Password == "" {
		return nil, apperror.Invalid("librarian", "password is required")
	}

	hash, salt, err := hashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	librarian := &Librarian{
		ID:             uuid.New(),
		EmployeeNumber: params.EmployeeNumber,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		MiddleName:     params.MiddleName,
		Position:       params.Position,
		Email:          params.Email,
		Phone:          params.Phone,
		HireDate:       now,
		Status:         LibrarianWorking,
		PasswordHash:   hash,
		Salt:           salt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.InsertLibrarian(ctx, librarian); err != nil {
		return nil, fmt.Errorf("insert librarian: %w", err)
	}

	s.logger.Info("librarian created", "librarian_id", librarian.ID, "employee_number", librarian.EmployeeNumber)
	return librarian, nil
}

// Authenticate verifies a staff login. The same error is returned for an
// unknown employee number and a wrong password.
func (s *service) Authenticate(ctx context.Context, employeeNumber, password string) (*Librarian, error) {
	librarian, err := s.store.GetLibrarianByEmployeeNumber(ctx, employeeNumber)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.Invalid("librarian", "invalid credentials")
		}
		return nil, err
	}

	ok, err := verifyPassword(password, librarian.Salt, librarian.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, apperror.Invalid("librarian", "invalid credentials")
	}

	return librarian, nil
}
