package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblios/internal/apperror"
	"biblios/internal/catalog"
	"biblios/internal/circulation"
	"biblios/internal/membership"
)

// openTestStore connects to the database named by BIBLIOS_TEST_DATABASE_URL.
// Without it the integration tests are skipped.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("BIBLIOS_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("BIBLIOS_TEST_DATABASE_URL not set")
	}

	store, err := Open(DriverPGX, url, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func seedReader(t *testing.T, store *Store, maxBooks int) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	reader := &membership.Reader{
		ID:                uuid.New(),
		LibraryCardNumber: "LIB-" + uuid.NewString(),
		FirstName:         "Анна",
		LastName:          "Иванова",
		RegistrationDate:  now,
		Status:            membership.ReaderActive,
		MaxBooks:          maxBooks,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, store.InsertReader(context.Background(), reader))
	return reader.ID
}

func seedLibrarian(t *testing.T, store *Store) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	librarian := &membership.Librarian{
		ID:             uuid.New(),
		EmployeeNumber: "EMP-" + uuid.NewString(),
		FirstName:      "Мария",
		LastName:       "Петрова",
		HireDate:       now,
		Status:         membership.LibrarianWorking,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, store.InsertLibrarian(context.Background(), librarian))
	return librarian.ID
}

func seedBookWithCopy(t *testing.T, store *Store) (uuid.UUID, uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()
	book := &catalog.Book{
		ID:        uuid.New(),
		Title:     "Преступление и наказание",
		Language:  "ru",
		Status:    catalog.BookAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.InsertBook(context.Background(), book, nil))

	copy := &catalog.BookCopy{
		ID:              uuid.New(),
		BookID:          book.ID,
		InventoryNumber: "INV-" + uuid.NewString(),
		Condition:       "good",
		Status:          catalog.CopyInLibrary,
		AcquisitionDate: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, store.InsertCopy(context.Background(), copy))
	return book.ID, copy.ID
}

func TestStore_BookRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	bookID, copyID := seedBookWithCopy(t, store)

	book, err := store.GetBook(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, "Преступление и наказание", book.Title)

	copies, err := store.ListAvailableCopies(ctx, bookID)
	require.NoError(t, err)
	require.Len(t, copies, 1)
	assert.Equal(t, copyID, copies[0].ID)

	_, err = store.GetBook(ctx, uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestStore_DuplicateCardNumber(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	reader := &membership.Reader{
		ID:                uuid.New(),
		LibraryCardNumber: "LIB-" + uuid.NewString(),
		FirstName:         "Анна",
		LastName:          "Иванова",
		RegistrationDate:  now,
		Status:            membership.ReaderActive,
		MaxBooks:          5,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, store.InsertReader(ctx, reader))

	dup := *reader
	dup.ID = uuid.New()
	err := store.InsertReader(ctx, &dup)
	assert.Equal(t, apperror.KindDuplicate, apperror.KindOf(err))
}

func TestStore_LoanLifecycle(t *testing.T) {
	store := openTestStore(t)
	svc := circulation.NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	_, copyID := seedBookWithCopy(t, store)
	readerID := seedReader(t, store, 5)
	librarianID := seedLibrarian(t, store)

	loan, err := svc.CreateLoan(ctx, circulation.CreateLoanParams{
		CopyID: copyID, ReaderID: readerID, LibrarianID: librarianID,
	})
	require.NoError(t, err)
	assert.Equal(t, circulation.LoanActive, loan.Status)

	// the copy is out, a second loan on it conflicts
	otherReader := seedReader(t, store, 5)
	_, err = svc.CreateLoan(ctx, circulation.CreateLoanParams{
		CopyID: copyID, ReaderID: otherReader, LibrarianID: librarianID,
	})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	returned, err := svc.ReturnLoan(ctx, loan.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, circulation.LoanReturned, returned.Status)

	// and a second return conflicts too
	_, err = svc.ReturnLoan(ctx, loan.ID, 0)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	history, err := store.ListLoansForReader(ctx, readerID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestStore_ReservationLifecycle(t *testing.T) {
	store := openTestStore(t)
	svc := circulation.NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	bookID, copyID := seedBookWithCopy(t, store)
	readerID := seedReader(t, store, 5)
	librarianID := seedLibrarian(t, store)

	// take the only copy out so the reservation is accepted
	borrower := seedReader(t, store, 5)
	_, err := svc.CreateLoan(ctx, circulation.CreateLoanParams{
		CopyID: copyID, ReaderID: borrower, LibrarianID: librarianID,
	})
	require.NoError(t, err)

	reservation, created, err := svc.CreateReservation(ctx, circulation.CreateReservationParams{
		BookID: bookID, ReaderID: readerID,
	})
	require.NoError(t, err)
	require.True(t, created)

	// re-requesting returns the same row
	again, created, err := svc.CreateReservation(ctx, circulation.CreateReservationParams{
		BookID: bookID, ReaderID: readerID,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, reservation.ID, again.ID)

	queue, err := store.ListActiveReservationsForBook(ctx, bookID)
	require.NoError(t, err)
	require.Len(t, queue, 1)

	fulfilled, err := svc.FulfillReservation(ctx, reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, circulation.ReservationFulfilled, fulfilled.Status)
}

func TestStore_DuplicateActiveReservation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	bookID, _ := seedBookWithCopy(t, store)
	readerID := seedReader(t, store, 5)

	insert := func() error {
		return store.WithTx(ctx, func(tx circulation.StoreTx) error {
			now := time.Now().UTC()
			return tx.InsertReservation(ctx, &circulation.Reservation{
				ID:              uuid.New(),
				BookID:          bookID,
				ReaderID:        readerID,
				ReservationDate: now,
				ExpiryDate:      now.AddDate(0, 0, 7),
				Status:          circulation.ReservationActive,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
		})
	}

	require.NoError(t, insert())

	// the unique index rejects a second active row even when the insert
	// bypasses the service-level re-request check
	err := insert()
	assert.Equal(t, apperror.KindDuplicate, apperror.KindOf(err))
}

func TestStore_StatisticsCounts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	seedBookWithCopy(t, store)

	books, err := store.CountBooks(ctx)
	require.NoError(t, err)
	copies, err := store.CountCopies(ctx)
	require.NoError(t, err)
	available, err := store.CountAvailableCopies(ctx)
	require.NoError(t, err)

	assert.Positive(t, books)
	assert.Positive(t, copies)
	assert.LessOrEqual(t, available, copies)
}
