// Package postgres implements the persistence interfaces of all services on
// a PostgreSQL database. SQL is built with goqu and executed through sqlx;
// the driver underneath is selectable (pgx stdlib or lib/pq).
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/jackc/pgx/v5/stdlib"                  // pgx database/sql driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // pq database/sql driver
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"biblios/internal/circulation"
)

//go:embed schema.sql
var schemaSQL string

const (
	tableBooks        = "books"
	tableBookAuthors  = "book_authors"
	tableBookCopies   = "book_copies"
	tableAuthors      = "authors"
	tablePublishers   = "publishers"
	tableReaders      = "readers"
	tableLibrarians   = "librarians"
	tableLoans        = "loans"
	tableReservations = "reservations"

	// DriverPGX selects the pgx stdlib driver, DriverPQ the lib/pq one.
	DriverPGX = "pgx"
	DriverPQ  = "postgres"
)

var qb = goqu.Dialect("postgres")

// Store provides a PostgreSQL-backed implementation of the catalog,
// membership, circulation and statistics storage interfaces. Every lifecycle
// mutation runs in its own transaction; there is no ambient session state.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
	tracer trace.Tracer
}

// Open connects to the database with the chosen driver and verifies the
// connection. Both drivers speak the same SQL; the choice is operational.
func Open(driver, url string, logger *slog.Logger) (*Store, error) {
	if driver != DriverPGX && driver != DriverPQ {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sqlx.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewStore(db, logger), nil
}

// NewStore wraps an already-open connection pool.
func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
		tracer: otel.Tracer("biblios/storage"),
	}
}

// Migrate applies the embedded schema. All statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside one transaction. The transaction commits only when
// fn returns nil; any error rolls every write back.
func (s *Store) WithTx(ctx context.Context, fn func(tx circulation.StoreTx) error) error {
	ctx, span := s.tracer.Start(ctx, "store.WithTx")
	defer span.End()

	txx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&storeTx{tx: txx}); err != nil {
		if rbErr := txx.Rollback(); rbErr != nil {
			s.logger.Warn("transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := txx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// storeTx is the transaction-scoped view handed to circulation logic.
type storeTx struct {
	tx *sqlx.Tx
}
