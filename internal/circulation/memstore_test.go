package circulation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"biblios/internal/apperror"
	"biblios/internal/catalog"
	"biblios/internal/membership"
)

var (
	errCopyNotFound        = apperror.NotFound("copy")
	errReaderNotFound      = apperror.NotFound("reader")
	errLoanNotFound        = apperror.NotFound("loan")
	errReservationNotFound = apperror.NotFound("reservation")
)

// memStore is an in-memory Store used by the lifecycle tests. WithTx holds
// one lock for the whole callback and restores a snapshot on error, matching
// the serialization and rollback the real store gets from row locks and
// transactions.
type memStore struct {
	mu           sync.Mutex
	copies       map[uuid.UUID]*catalog.BookCopy
	readers      map[uuid.UUID]*membership.Reader
	librarians   map[uuid.UUID]bool
	books        map[uuid.UUID]bool
	loans        map[uuid.UUID]*Loan
	reservations map[uuid.UUID]*Reservation
}

func newMemStore() *memStore {
	return &memStore{
		copies:       map[uuid.UUID]*catalog.BookCopy{},
		readers:      map[uuid.UUID]*membership.Reader{},
		librarians:   map[uuid.UUID]bool{},
		books:        map[uuid.UUID]bool{},
		loans:        map[uuid.UUID]*Loan{},
		reservations: map[uuid.UUID]*Reservation{},
	}
}

func (m *memStore) addBook(id uuid.UUID) {
	m.books[id] = true
}

func (m *memStore) addCopy(bookID uuid.UUID, status catalog.CopyStatus) uuid.UUID {
	id := uuid.New()
	m.copies[id] = &catalog.BookCopy{ID: id, BookID: bookID, Status: status}
	m.books[bookID] = true
	return id
}

func (m *memStore) addReader(status membership.ReaderStatus, maxBooks int) uuid.UUID {
	id := uuid.New()
	m.readers[id] = &membership.Reader{ID: id, Status: status, MaxBooks: maxBooks}
	return id
}

func (m *memStore) addLibrarian() uuid.UUID {
	id := uuid.New()
	m.librarians[id] = true
	return id
}

func (m *memStore) snapshot() *memStore {
	snap := newMemStore()
	for id, c := range m.copies {
		cc := *c
		snap.copies[id] = &cc
	}
	for id, r := range m.readers {
		rr := *r
		snap.readers[id] = &rr
	}
	for id := range m.librarians {
		snap.librarians[id] = true
	}
	for id := range m.books {
		snap.books[id] = true
	}
	for id, l := range m.loans {
		ll := *l
		snap.loans[id] = &ll
	}
	for id, r := range m.reservations {
		rr := *r
		snap.reservations[id] = &rr
	}
	return snap
}

func (m *memStore) restore(snap *memStore) {
	m.copies = snap.copies
	m.readers = snap.readers
	m.librarians = snap.librarians
	m.books = snap.books
	m.loans = snap.loans
	m.reservations = snap.reservations
}

func (m *memStore) WithTx(_ context.Context, fn func(tx StoreTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn((*memTx)(m)); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memStore) GetLoan(_ context.Context, id uuid.UUID) (*Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.loans[id]
	if !ok {
		return nil, errLoanNotFound
	}
	l := *loan
	return &l, nil
}

func (m *memStore) ListOverdueLoans(_ context.Context, asOf time.Time) ([]Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Loan
	for _, l := range m.loans {
		if l.Status == LoanActive && l.DueDate.Before(asOf) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memStore) ListLoansForReader(_ context.Context, readerID uuid.UUID) ([]Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Loan
	for _, l := range m.loans {
		if l.ReaderID == readerID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memStore) ListActiveLoansForReader(_ context.Context, readerID uuid.UUID) ([]Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Loan
	for _, l := range m.loans {
		if l.ReaderID == readerID && l.Status == LoanActive {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memStore) ListActiveReservationsForBook(_ context.Context, bookID uuid.UUID) ([]Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Reservation
	for _, r := range m.reservations {
		if r.BookID == bookID && r.Status == ReservationActive {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReservationDate.Equal(out[j].ReservationDate) {
			return out[i].ReservationDate.Before(out[j].ReservationDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) ListExpiredReservations(_ context.Context, asOf time.Time) ([]Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Reservation
	for _, r := range m.reservations {
		if r.Status == ReservationActive && r.ExpiryDate.Before(asOf) {
			out = append(out, *r)
		}
	}
	return out, nil
}

// memTx is the transaction view over memStore. The store lock is already
// held when any of these run.
type memTx memStore

func (t *memTx) CopyForUpdate(_ context.Context, copyID uuid.UUID) (*catalog.BookCopy, error) {
	c, ok := t.copies[copyID]
	if !ok {
		return nil, errCopyNotFound
	}
	cc := *c
	return &cc, nil
}

func (t *memTx) SetCopyStatus(_ context.Context, copyID uuid.UUID, status catalog.CopyStatus) error {
	t.copies[copyID].Status = status
	return nil
}

func (t *memTx) GetReader(_ context.Context, readerID uuid.UUID) (*membership.Reader, error) {
	r, ok := t.readers[readerID]
	if !ok {
		return nil, errReaderNotFound
	}
	rr := *r
	return &rr, nil
}

func (t *memTx) CountActiveLoansForReader(_ context.Context, readerID uuid.UUID) (int, error) {
	n := 0
	for _, l := range t.loans {
		if l.ReaderID == readerID && l.Status == LoanActive {
			n++
		}
	}
	return n, nil
}

func (t *memTx) LibrarianExists(_ context.Context, librarianID uuid.UUID) (bool, error) {
	return t.librarians[librarianID], nil
}

func (t *memTx) BookExists(_ context.Context, bookID uuid.UUID) (bool, error) {
	return t.books[bookID], nil
}

func (t *memTx) CountAvailableCopies(_ context.Context, bookID uuid.UUID) (int, error) {
	n := 0
	for _, c := range t.copies {
		if c.BookID == bookID && c.Status == catalog.CopyInLibrary {
			n++
		}
	}
	return n, nil
}

func (t *memTx) InsertLoan(_ context.Context, loan *Loan) error {
	l := *loan
	t.loans[loan.ID] = &l
	return nil
}

func (t *memTx) LoanForUpdate(_ context.Context, loanID uuid.UUID) (*Loan, error) {
	l, ok := t.loans[loanID]
	if !ok {
		return nil, errLoanNotFound
	}
	ll := *l
	return &ll, nil
}

func (t *memTx) UpdateLoan(_ context.Context, loan *Loan) error {
	l := *loan
	t.loans[loan.ID] = &l
	return nil
}

func (t *memTx) FindActiveReservation(_ context.Context, bookID, readerID uuid.UUID) (*Reservation, error) {
	for _, r := range t.reservations {
		if r.BookID == bookID && r.ReaderID == readerID && r.Status == ReservationActive {
			rr := *r
			return &rr, nil
		}
	}
	return nil, nil
}

func (t *memTx) InsertReservation(_ context.Context, reservation *Reservation) error {
	r := *reservation
	t.reservations[reservation.ID] = &r
	return nil
}

func (t *memTx) ReservationForUpdate(_ context.Context, id uuid.UUID) (*Reservation, error) {
	r, ok := t.reservations[id]
	if !ok {
		return nil, errReservationNotFound
	}
	rr := *r
	return &rr, nil
}

func (t *memTx) UpdateReservation(_ context.Context, reservation *Reservation) error {
	r := *reservation
	t.reservations[reservation.ID] = &r
	return nil
}

func (t *memTx) DeleteReservation(_ context.Context, id uuid.UUID) error {
	delete(t.reservations, id)
	return nil
}

var (
	_ Store   = (*memStore)(nil)
	_ StoreTx = (*memTx)(nil)
)
