package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"biblios/internal/catalog"
)

var _ catalog.Store = (*Store)(nil)

// ListBooks returns a page of the catalog in insertion order.
func (s *Store) ListBooks(ctx context.Context, skip, limit int) ([]catalog.Book, error) {
	query, args, err := qb.From(tableBooks).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Offset(uint(skip)).
		Limit(uint(limit)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list books query: %w", err)
	}

	books := []catalog.Book{}
	if err := s.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetBook returns one book by id.
func (s *Store) GetBook(ctx context.Context, id uuid.UUID) (*catalog.Book, error) {
	query, args, err := qb.From(tableBooks).
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get book query: %w", err)
	}

	var book catalog.Book
	if err := s.db.GetContext(ctx, &book, query, args...); err != nil {
		return nil, mapGetErr(err, "book")
	}
	return &book, nil
}

// GetBookByISBN returns one book by ISBN.
func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*catalog.Book, error) {
	query, args, err := qb.From(tableBooks).
		Where(goqu.Ex{"isbn": isbn}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get book by isbn query: %w", err)
	}

	var book catalog.Book
	if err := s.db.GetContext(ctx, &book, query, args...); err != nil {
		return nil, mapGetErr(err, "book")
	}
	return &book, nil
}

// SearchBooksByTitle finds books whose title contains the query,
// case-insensitive.
func (s *Store) SearchBooksByTitle(ctx context.Context, titleQuery string, limit int) ([]catalog.Book, error) {
	query, args, err := qb.From(tableBooks).
		Where(goqu.C("title").ILike("%" + titleQuery + "%")).
		Order(goqu.C("title").Asc()).
		Limit(uint(limit)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build search books query: %w", err)
	}

	books := []catalog.Book{}
	if err := s.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

// InsertBook stores a book and its author links in one transaction.
func (s *Store) InsertBook(ctx context.Context, book *catalog.Book, authorIDs []uuid.UUID) error {
	txx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = txx.Rollback() }()

	query, args, err := qb.Insert(tableBooks).Rows(goqu.Record{
		"id":           book.ID,
		"isbn":         book.ISBN,
		"title":        book.Title,
		"publisher_id": book.PublisherID,
		"year":         book.Year,
		"genre":        book.Genre,
		"pages":        book.Pages,
		"language":     book.Language,
		"description":  book.Description,
		"location":     book.Location,
		"status":       book.Status,
		"created_at":   book.CreatedAt,
		"updated_at":   book.UpdatedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert book query: %w", err)
	}

	if _, err := txx.ExecContext(ctx, query, args...); err != nil {
		return mapInsertErr(err, "book", "a book with this ISBN already exists")
	}

	for _, authorID := range authorIDs {
		linkQuery, linkArgs, linkErr := qb.Insert(tableBookAuthors).Rows(goqu.Record{
			"id":        uuid.New(),
			"book_id":   book.ID,
			"author_id": authorID,
		}).Prepared(true).ToSQL()
		if linkErr != nil {
			return fmt.Errorf("build insert book author query: %w", linkErr)
		}
		if _, err := txx.ExecContext(ctx, linkQuery, linkArgs...); err != nil {
			return fmt.Errorf("link author %s: %w", authorID, err)
		}
	}

	return txx.Commit()
}

// ListBooksByAuthor returns every book linked to the author.
func (s *Store) ListBooksByAuthor(ctx context.Context, authorID uuid.UUID) ([]catalog.Book, error) {
	query, args, err := qb.From(goqu.T(tableBooks).As("b")).
		Join(goqu.T(tableBookAuthors).As("ba"), goqu.On(goqu.Ex{"ba.book_id": goqu.I("b.id")})).
		Where(goqu.Ex{"ba.author_id": authorID}).
		Select("b.*").
		Order(goqu.I("b.title").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list books by author query: %w", err)
	}

	books := []catalog.Book{}
	if err := s.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("list books by author: %w", err)
	}
	return books, nil
}

// ListCopies returns every copy of a book.
func (s *Store) ListCopies(ctx context.Context, bookID uuid.UUID) ([]catalog.BookCopy, error) {
	return s.listCopies(ctx, goqu.Ex{"book_id": bookID})
}

// ListAvailableCopies returns the copies of a book currently in the library.
func (s *Store) ListAvailableCopies(ctx context.Context, bookID uuid.UUID) ([]catalog.BookCopy, error) {
	return s.listCopies(ctx, goqu.Ex{"book_id": bookID, "status": catalog.CopyInLibrary})
}

func (s *Store) listCopies(ctx context.Context, where goqu.Ex) ([]catalog.BookCopy, error) {
	query, args, err := qb.From(tableBookCopies).
		Where(where).
		Order(goqu.C("inventory_number").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list copies query: %w", err)
	}

	copies := []catalog.BookCopy{}
	if err := s.db.SelectContext(ctx, &copies, query, args...); err != nil {
		return nil, fmt.Errorf("list copies: %w", err)
	}
	return copies, nil
}

// GetCopyByInventoryNumber returns one copy by its inventory number.
func (s *Store) GetCopyByInventoryNumber(ctx context.Context, inventoryNumber string) (*catalog.BookCopy, error) {
	query, args, err := qb.From(tableBookCopies).
		Where(goqu.Ex{"inventory_number": inventoryNumber}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get copy by inventory number query: %w", err)
	}

	var copy catalog.BookCopy
	if err := s.db.GetContext(ctx, &copy, query, args...); err != nil {
		return nil, mapGetErr(err, "copy")
	}
	return &copy, nil
}

// InsertCopy stores one physical copy.
func (s *Store) InsertCopy(ctx context.Context, copy *catalog.BookCopy) error {
	query, args, err := qb.Insert(tableBookCopies).Rows(goqu.Record{
		"id":               copy.ID,
		"book_id":          copy.BookID,
		"inventory_number": copy.InventoryNumber,
		"condition":        copy.Condition,
		"status":           copy.Status,
		"acquisition_date": copy.AcquisitionDate,
		"price":            copy.Price,
		"notes":            copy.Notes,
		"created_at":       copy.CreatedAt,
		"updated_at":       copy.UpdatedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert copy query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return mapInsertErr(err, "copy", "a copy with this inventory number already exists")
	}
	return nil
}

// InsertAuthor stores one author.
func (s *Store) InsertAuthor(ctx context.Context, author *catalog.Author) error {
	query, args, err := qb.Insert(tableAuthors).Rows(goqu.Record{
		"id":          author.ID,
		"first_name":  author.FirstName,
		"last_name":   author.LastName,
		"middle_name": author.MiddleName,
		"birth_date":  author.BirthDate,
		"biography":   author.Biography,
		"nationality": author.Nationality,
		"created_at":  author.CreatedAt,
		"updated_at":  author.UpdatedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert author query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert author: %w", err)
	}
	return nil
}

// InsertPublisher stores one publisher. Name is unique.
func (s *Store) InsertPublisher(ctx context.Context, publisher *catalog.Publisher) error {
	query, args, err := qb.Insert(tablePublishers).Rows(goqu.Record{
		"id":            publisher.ID,
		"name":          publisher.Name,
		"country":       publisher.Country,
		"city":          publisher.City,
		"website":       publisher.Website,
		"contact_email": publisher.ContactEmail,
		"created_at":    publisher.CreatedAt,
		"updated_at":    publisher.UpdatedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert publisher query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return mapInsertErr(err, "publisher", "a publisher with this name already exists")
	}
	return nil
}
