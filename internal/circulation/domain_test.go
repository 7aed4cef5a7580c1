package circulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func genDay(t *rapid.T, label string) time.Time {
	secs := rapid.Int64Range(0, 4102444800).Draw(t, label) // up to year 2100
	return time.Unix(secs, 0).UTC()
}

func TestDateOnly_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		day := genDay(t, "day")
		truncated := dateOnly(day)

		// idempotent, never after the input, always midnight UTC
		assert.Equal(t, truncated, dateOnly(truncated))
		assert.False(t, truncated.After(day))
		h, m, s := truncated.Clock()
		assert.Zero(t, h)
		assert.Zero(t, m)
		assert.Zero(t, s)
	})
}

func TestLoanOverdueAt_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		due := dateOnly(genDay(t, "due"))
		asOf := genDay(t, "asOf")

		active := Loan{Status: LoanActive, DueDate: due}
		returned := Loan{Status: LoanReturned, DueDate: due}

		// a closed loan is never overdue
		assert.False(t, returned.OverdueAt(asOf))

		// an active loan is overdue exactly when the day is past the due date
		assert.Equal(t, due.Before(dateOnly(asOf)), active.OverdueAt(asOf))

		// never overdue on the due date itself
		assert.False(t, active.OverdueAt(due))

		// once overdue, overdue on every later day
		if active.OverdueAt(asOf) {
			assert.True(t, active.OverdueAt(asOf.AddDate(0, 0, rapid.IntRange(0, 365).Draw(t, "later"))))
		}
	})
}

func TestReservationExpiredAt_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		expiry := dateOnly(genDay(t, "expiry"))
		asOf := genDay(t, "asOf")

		active := Reservation{Status: ReservationActive, ExpiryDate: expiry}
		fulfilled := Reservation{Status: ReservationFulfilled, ExpiryDate: expiry}

		assert.False(t, fulfilled.ExpiredAt(asOf))
		assert.Equal(t, expiry.Before(dateOnly(asOf)), active.ExpiredAt(asOf))
		assert.False(t, active.ExpiredAt(expiry))
	})
}
