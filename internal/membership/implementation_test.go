package membership

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblios/internal/apperror"
)

type fakeStore struct {
	readers    map[uuid.UUID]*Reader
	librarians map[uuid.UUID]*Librarian
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		readers:    map[uuid.UUID]*Reader{},
		librarians: map[uuid.UUID]*Librarian{},
	}
}

func (f *fakeStore) ListReaders(_ context.Context, _, limit int) ([]Reader, error) {
	out := []Reader{}
	for _, r := range f.readers {
		if len(out) == limit {
			break
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) GetReader(_ context.Context, id uuid.UUID) (*Reader, error) {
	r, ok := f.readers[id]
	if !ok {
		return nil, apperror.NotFound("reader")
	}
	rr := *r
	return &rr, nil
}

func (f *fakeStore) GetReaderByCardNumber(_ context.Context, cardNumber string) (*Reader, error) {
	for _, r := range f.readers {
		if r.LibraryCardNumber == cardNumber {
			rr := *r
			return &rr, nil
		}
	}
	return nil, apperror.NotFound("reader")
}

func (f *fakeStore) InsertReader(_ context.Context, reader *Reader) error {
	for _, r := range f.readers {
		if r.LibraryCardNumber == reader.LibraryCardNumber {
			return apperror.Duplicate("reader", "a reader with this card number already exists", nil)
		}
	}
	r := *reader
	f.readers[reader.ID] = &r
	return nil
}

func (f *fakeStore) GetLibrarian(_ context.Context, id uuid.UUID) (*Librarian, error) {
	l, ok := f.librarians[id]
	if !ok {
		return nil, apperror.NotFound("librarian")
	}
	ll := *l
	return &ll, nil
}

func (f *fakeStore) GetLibrarianByEmployeeNumber(_ context.Context, employeeNumber string) (*Librarian, error) {
	for _, l := range f.librarians {
		if l.EmployeeNumber == employeeNumber {
			ll := *l
			return &ll, nil
		}
	}
	return nil, apperror.NotFound("librarian")
}

func (f *fakeStore) InsertLibrarian(_ context.Context, librarian *Librarian) error {
	l := *librarian
	f.librarians[librarian.ID] = &l
	return nil
}

var _ Store = (*fakeStore)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateReader(t *testing.T) {
	svc := NewService(newFakeStore(), testLogger())

	reader, err := svc.CreateReader(context.Background(), CreateReaderParams{
		LibraryCardNumber: "LIB-2026-001",
		FirstName:         "Анна",
		LastName:          "Иванова",
	})

	require.NoError(t, err)
	assert.Equal(t, ReaderActive, reader.Status)
	assert.Equal(t, defaultMaxBooks, reader.MaxBooks)
}

func TestCreateReader_Validation(t *testing.T) {
	svc := NewService(newFakeStore(), testLogger())

	_, err := svc.CreateReader(context.Background(), CreateReaderParams{
		FirstName: "Анна", LastName: "Иванова",
	})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))

	_, err = svc.CreateReader(context.Background(), CreateReaderParams{
		LibraryCardNumber: "LIB-2026-001",
	})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))
}

func TestCreateReader_DuplicateCardNumber(t *testing.T) {
	svc := NewService(newFakeStore(), testLogger())

	params := CreateReaderParams{
		LibraryCardNumber: "LIB-2026-001",
		FirstName:         "Анна",
		LastName:          "Иванова",
	}
	_, err := svc.CreateReader(context.Background(), params)
	require.NoError(t, err)

	_, err = svc.CreateReader(context.Background(), params)
	assert.Equal(t, apperror.KindDuplicate, apperror.KindOf(err))
}

func TestCreateReader_ConfiguredDefaultMaxBooks(t *testing.T) {
	svc := NewService(newFakeStore(), testLogger(), WithDefaultMaxBooks(8))

	reader, err := svc.CreateReader(context.Background(), CreateReaderParams{
		LibraryCardNumber: "LIB-2026-003",
		FirstName:         "Ольга",
		LastName:          "Кузнецова",
	})

	require.NoError(t, err)
	assert.Equal(t, 8, reader.MaxBooks)

	// an explicit per-reader limit still wins over the configured default
	reader, err = svc.CreateReader(context.Background(), CreateReaderParams{
		LibraryCardNumber: "LIB-2026-004",
		FirstName:         "Игорь",
		LastName:          "Соколов",
		MaxBooks:          2,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, reader.MaxBooks)
}

func TestCreateReader_CustomMaxBooks(t *testing.T) {
	svc := NewService(newFakeStore(), testLogger())

	reader, err := svc.CreateReader(context.Background(), CreateReaderParams{
		LibraryCardNumber: "LIB-2026-002",
		FirstName:         "Пётр",
		LastName:          "Смирнов",
		MaxBooks:          3,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, reader.MaxBooks)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, salt, err := hashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	ok, err := verifyPassword("s3cret-pass", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyPassword("wrong-pass", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHash_UniqueSalt(t *testing.T) {
	hash1, salt1, err := hashPassword("same-pass")
	require.NoError(t, err)
	hash2, salt2, err := hashPassword("same-pass")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
}

func TestCreateLibrarianAndAuthenticate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testLogger())

	librarian, err := svc.CreateLibrarian(context.Background(), CreateLibrarianParams{
		EmployeeNumber: "EMP-001",
		FirstName:      "Мария",
		LastName:       "Петрова",
		Password:       "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, LibrarianWorking, librarian.Status)
	assert.NotEmpty(t, store.librarians[librarian.ID].PasswordHash)

	authed, err := svc.Authenticate(context.Background(), "EMP-001", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, librarian.ID, authed.ID)
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	svc := NewService(newFakeStore(), testLogger())

	_, err := svc.CreateLibrarian(context.Background(), CreateLibrarianParams{
		EmployeeNumber: "EMP-001",
		Password:       "s3cret-pass",
	})
	require.NoError(t, err)

	// wrong password and unknown employee number fail identically
	_, err = svc.Authenticate(context.Background(), "EMP-001", "wrong")
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))

	_, err = svc.Authenticate(context.Background(), "EMP-999", "s3cret-pass")
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))
}

func TestCreateLibrarian_Validation(t *testing.T) {
	svc := NewService(newFakeStore(), testLogger())

	_, err := svc.CreateLibrarian(context.Background(), CreateLibrarianParams{Password: "x"})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))

	_, err = svc.CreateLibrarian(context.Background(), CreateLibrarianParams{EmployeeNumber: "EMP-001"})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))
}
