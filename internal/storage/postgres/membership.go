package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"biblios/internal/membership"
)

var _ membership.Store = (*Store)(nil)

// ListReaders returns a page of readers in registration order.
func (s *Store) ListReaders(ctx context.Context, skip, limit int) ([]membership.Reader, error) {
	query, args, err := qb.From(tableReaders).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Offset(uint(skip)).
		Limit(uint(limit)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list readers query: %w", err)
	}

	readers := []membership.Reader{}
	if err := s.db.SelectContext(ctx, &readers, query, args...); err != nil {
		return nil, fmt.Errorf("list readers: %w", err)
	}
	return readers, nil
}

// GetReader returns one reader by id.
func (s *Store) GetReader(ctx context.Context, id uuid.UUID) (*membership.Reader, error) {
	return getReader(ctx, s.db, id, false)
}

// GetReaderByCardNumber returns one reader by library card number.
func (s *Store) GetReaderByCardNumber(ctx context.Context, cardNumber string) (*membership.Reader, error) {
	query, args, err := qb.From(tableReaders).
		Where(goqu.Ex{"library_card_number": cardNumber}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get reader by card query: %w", err)
	}

	var reader membership.Reader
	if err := s.db.GetContext(ctx, &reader, query, args...); err != nil {
		return nil, mapGetErr(err, "reader")
	}
	return &reader, nil
}

// InsertReader stores a reader. The card number is unique.
func (s *Store) InsertReader(ctx context.Context, reader *membership.Reader) error {
	query, args, err := qb.Insert(tableReaders).Rows(goqu.Record{
		"id":                  reader.ID,
		"library_card_number": reader.LibraryCardNumber,
		"first_name":          reader.FirstName,
		"last_name":           reader.LastName,
		"middle_name":         reader.MiddleName,
		"email":               reader.Email,
		"phone":               reader.Phone,
		"address":             reader.Address,
		"registration_date":   reader.RegistrationDate,
		"status":              reader.Status,
		"max_books":           reader.MaxBooks,
		"created_at":          reader.CreatedAt,
		"updated_at":          reader.UpdatedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert reader query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return mapInsertErr(err, "reader", "a reader with this card number already exists")
	}
	return nil
}

// GetLibrarian returns one staff account by id.
func (s *Store) GetLibrarian(ctx context.Context, id uuid.UUID) (*membership.Librarian, error) {
	query, args, err := qb.From(tableLibrarians).
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get librarian query: %w", err)
	}

	var librarian membership.Librarian
	if err := s.db.GetContext(ctx, &librarian, query, args...); err != nil {
		return nil, mapGetErr(err, "librarian")
	}
	return &librarian, nil
}

// GetLibrarianByEmployeeNumber returns one staff account by employee number.
func (s *Store) GetLibrarianByEmployeeNumber(ctx context.Context, employeeNumber string) (*membership.Librarian, error) {
	query, args, err := qb.From(tableLibrarians).
		Where(goqu.Ex{"employee_number": employeeNumber}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get librarian by employee number query: %w", err)
	}

	var librarian membership.Librarian
	if err := s.db.GetContext(ctx, &librarian, query, args...); err != nil {
		return nil, mapGetErr(err, "librarian")
	}
	return &librarian, nil
}

// InsertLibrarian stores a staff account. The employee number is unique.
func (s *Store) InsertLibrarian(ctx context.Context, librarian *membership.Librarian) error {
	query, args, err := qb.Insert(tableLibrarians).Rows(goqu.Record{
		"id":              librarian.ID,
		"employee_number": librarian.EmployeeNumber,
		"first_name":      librarian.FirstName,
		"last_name":       librarian.LastName,
		"middle_name":     librarian.MiddleName,
		"position":        librarian.Position,
		"email":           librarian.Email,
		"phone":           librarian.Phone,
		"hire_date":       librarian.HireDate,
		"status":          librarian.Status,
		"password_hash":   librarian.PasswordHash,
		"salt":            librarian.Salt,
		"created_at":      librarian.CreatedAt,
		"updated_at":      librarian.UpdatedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert librarian query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return mapInsertErr(err, "librarian", "a librarian with this employee number already exists")
	}
	return nil
}

// getReader serves both the pool-backed store and the transaction view.
// forUpdate takes a row lock inside a transaction.
func getReader(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID, forUpdate bool) (*membership.Reader, error) {
	ds := qb.From(tableReaders).Where(goqu.Ex{"id": id})
	if forUpdate {
		ds = ds.ForUpdate(exp.Wait)
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get reader query: %w", err)
	}

	var reader membership.Reader
	if err := sqlx.GetContext(ctx, q, &reader, query, args...); err != nil {
		return nil, mapGetErr(err, "reader")
	}
	return &reader, nil
}
