package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mny-engine/mny/internal/common"
	"github.com/mny-engine/mny/internal/model"
)

func july(d int) time.Time {
	return time.Date(2026, time.July, d, 0, 0, 0, 0, time.UTC)
}

func deposit(day time.Time, cents int64) model.Transaction {
	return model.Transaction{Type: model.Deposit, Amount: cents, TransactedAt: day}
}

func withdrawal(day time.Time, cents int64) model.Transaction {
	return model.Transaction{Type: model.Withdrawal, Amount: cents, TransactedAt: day}
}

func TestReportSortsByOccurrence(t *testing.T) {
	r := New([]model.Transaction{
		withdrawal(july(9), 100),
		deposit(july(1), 500),
		withdrawal(july(4), 200),
	}, Options{})

	txns := r.Transactions()
	require.Len(t, txns, 3)
	assert.Equal(t, july(1), txns[0].TransactedAt)
	assert.Equal(t, july(4), txns[1].TransactedAt)
	assert.Equal(t, july(9), txns[2].TransactedAt)

	start := r.StartDate()
	end := r.EndDate()
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, july(1), *start)
	assert.Equal(t, july(9), *end)
}

func TestReportGapFill(t *testing.T) {
	r := New([]model.Transaction{
		deposit(july(1), 1000),
		withdrawal(july(5), 300),
	}, Options{})

	// Every calendar day between the first and last activity gets a
	// balance; quiet days carry the prior day's value forward.
	want := map[int]int64{1: 1000, 2: 1000, 3: 1000, 4: 1000, 5: 700}
	for d, cents := range want {
		got, err := r.Balance(july(d))
		require.NoError(t, err, "day %d", d)
		assert.Equal(t, cents, got, "day %d", d)
	}
}

func TestReportWindow(t *testing.T) {
	t.Run("widens past the set's activity", func(t *testing.T) {
		r := New([]model.Transaction{
			deposit(july(3), 1000),
			withdrawal(july(5), 300),
		}, Options{Start: july(1), End: july(9), StartingBalance: 250})

		// Days before the first activity hold the starting balance;
		// days after the last carry its balance through the window end.
		want := map[int]int64{1: 250, 2: 250, 3: 1250, 5: 950, 9: 950}
		for d, cents := range want {
			got, err := r.Balance(july(d))
			require.NoError(t, err, "day %d", d)
			assert.Equal(t, cents, got, "day %d", d)
		}

		_, err := r.Balance(july(10))
		assert.ErrorIs(t, err, ErrDateAfterEnd)
	})

	t.Run("covers a window with no transactions at all", func(t *testing.T) {
		r := New(nil, Options{Start: july(1), End: july(4), StartingBalance: 500})

		for d := 1; d <= 4; d++ {
			got, err := r.Balance(july(d))
			require.NoError(t, err, "day %d", d)
			assert.Equal(t, int64(500), got, "day %d", d)
		}

		low, err := r.Low(time.Time{})
		require.NoError(t, err)
		assert.Equal(t, int64(500), low)
	})

	t.Run("never narrows below the activity range", func(t *testing.T) {
		r := New([]model.Transaction{
			deposit(july(2), 100),
			deposit(july(8), 100),
		}, Options{Start: july(4), End: july(6)})

		got, err := r.Balance(july(2))
		require.NoError(t, err)
		assert.Equal(t, int64(100), got)

		got, err = r.Balance(july(8))
		require.NoError(t, err)
		assert.Equal(t, int64(200), got)
	})
}

func TestReportBalanceBounds(t *testing.T) {
	r := New([]model.Transaction{
		deposit(july(10), 100),
		deposit(july(20), 100),
	}, Options{})

	t.Run("zero date means the last day", func(t *testing.T) {
		got, err := r.Balance(time.Time{})
		require.NoError(t, err)
		assert.Equal(t, int64(200), got)
	})

	t.Run("before the first day fails", func(t *testing.T) {
		_, err := r.Balance(july(9))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDateBeforeStart)
		assert.ErrorIs(t, err, common.ErrOutOfRange)
	})

	t.Run("after the last day fails", func(t *testing.T) {
		_, err := r.Balance(july(21))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDateAfterEnd)
		assert.ErrorIs(t, err, common.ErrOutOfRange)
	})

	t.Run("time of day within a bound day is fine", func(t *testing.T) {
		_, err := r.Balance(july(20).Add(23 * time.Hour))
		assert.NoError(t, err)
	})
}

func TestReportEmptySet(t *testing.T) {
	r := New(nil, Options{})

	assert.Nil(t, r.StartDate())
	assert.Nil(t, r.EndDate())
	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.Rows())

	for name, query := range map[string]func() error{
		"balance": func() error { _, err := r.Balance(time.Time{}); return err },
		"high":    func() error { _, err := r.High(time.Time{}); return err },
		"low":     func() error { _, err := r.Low(time.Time{}); return err },
		"negatives": func() error {
			_, err := r.NegativeBalances(time.Time{})
			return err
		},
	} {
		assert.ErrorIs(t, query(), ErrEmptySet, name)
	}
}

func TestReportHighLowVariation(t *testing.T) {
	r := New([]model.Transaction{
		deposit(july(1), 1000),
		withdrawal(july(3), 1500),
		deposit(july(6), 2000),
	}, Options{})

	high, err := r.High(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), high)

	low, err := r.Low(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(-500), low)

	variation, err := r.Variation(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), variation)

	t.Run("bounded by date", func(t *testing.T) {
		high, err := r.High(july(5))
		require.NoError(t, err)
		assert.Equal(t, int64(1000), high)

		low, err := r.Low(july(2))
		require.NoError(t, err)
		assert.Equal(t, int64(1000), low)
	})
}

func TestReportNegativeBalances(t *testing.T) {
	r := New([]model.Transaction{
		deposit(july(1), 100),
		withdrawal(july(3), 150),
		deposit(july(6), 75),
	}, Options{})

	negatives, err := r.NegativeBalances(time.Time{})
	require.NoError(t, err)

	// Balance dips to -50 on day 3 and stays there until day 6.
	want := map[time.Time]int64{
		july(3): -50,
		july(4): -50,
		july(5): -50,
	}
	assert.Equal(t, want, negatives)

	t.Run("bounded by date", func(t *testing.T) {
		negatives, err := r.NegativeBalances(july(3))
		require.NoError(t, err)
		assert.Equal(t, map[time.Time]int64{july(3): -50}, negatives)
	})
}

func TestReportNegativeBalanceWindow(t *testing.T) {
	base := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	at := func(d int) time.Time { return base.AddDate(0, 0, d) }

	// A month of paychecks with one oversized payment on day 20 that dips
	// the balance negative until day 24's deposits recover it.
	txns := []model.Transaction{
		deposit(at(0), 5), withdrawal(at(0), 5),
		deposit(at(2), 15), deposit(at(4), 15), deposit(at(6), 15), deposit(at(8), 15),
		deposit(at(10), 25),
		deposit(at(12), 15), deposit(at(14), 15), deposit(at(16), 15), deposit(at(18), 15),
		withdrawal(at(20), 165),
		deposit(at(22), 15), deposit(at(24), 15), deposit(at(25), 25), deposit(at(26), 15),
		deposit(at(28), 15), deposit(at(30), 45),
	}
	r := New(txns, Options{})

	wantBalances := []int64{
		0, 0, 15, 15, 30, 30, 45, 45, 60, 60, 85, 85, 100, 100, 115, 115,
		130, 130, 145, 145, -20, -20, -5, -5, 10, 35, 50, 50, 65, 65, 110,
	}
	for d, cents := range wantBalances {
		got, err := r.Balance(at(d))
		require.NoError(t, err, "day %d", d)
		assert.Equal(t, cents, got, "day %d", d)
	}

	negatives, err := r.NegativeBalances(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, map[time.Time]int64{
		at(20): -20,
		at(21): -20,
		at(22): -5,
		at(23): -5,
	}, negatives)
}

func TestReportStartingBalance(t *testing.T) {
	r := New([]model.Transaction{
		withdrawal(july(1), 300),
	}, Options{StartingBalance: 1000})

	got, err := r.Balance(july(1))
	require.NoError(t, err)
	assert.Equal(t, int64(700), got)
}

func TestReportRows(t *testing.T) {
	txns := []model.Transaction{
		{
			ID: "t1", Type: model.Deposit, Amount: 100000,
			AccountName: "Checking", EndpointName: "Employer",
			CategoryName: "Income", Currency: model.DefaultCurrency,
			Status: model.StatusCleared, TransactedAt: july(1),
		},
		{
			ID: "t2", Type: model.Withdrawal, Amount: 2550,
			AccountName: "Checking", EndpointName: "Corner Store",
			Currency: model.DefaultCurrency, TransactedAt: july(2),
		},
	}

	rows := New(txns, Options{}).Rows()
	require.Len(t, rows, 2)

	assert.Equal(t, "Employer", rows[0].From)
	assert.Equal(t, "Checking", rows[0].To)
	assert.Equal(t, "Income", rows[0].Category)
	assert.Equal(t, "$1000.00", rows[0].Amount)
	assert.Equal(t, "$1000.00", rows[0].Balance)
	assert.Equal(t, model.StatusCleared, rows[0].Status)

	assert.Equal(t, "Checking", rows[1].From)
	assert.Equal(t, "Corner Store", rows[1].To)
	assert.Equal(t, model.Uncategorized, rows[1].Category, "missing category renders as uncategorized")
	assert.Equal(t, "$25.50", rows[1].Amount)
	assert.Equal(t, "$974.50", rows[1].Balance)
}

func TestReportRowsAgreeWithDayMap(t *testing.T) {
	txns := []model.Transaction{
		deposit(july(1), 500),
		withdrawal(july(1), 200),
		deposit(july(4), 50),
	}
	r := New(txns, Options{StartingBalance: 100})

	rows := r.Rows()
	require.Len(t, rows, 3)

	// The last row on each day matches the day map's end-of-day value.
	dayOne, err := r.Balance(july(1))
	require.NoError(t, err)
	assert.Equal(t, model.DisplayCents(dayOne, model.DefaultCurrency), rows[1].Balance)

	dayFour, err := r.Balance(july(4))
	require.NoError(t, err)
	assert.Equal(t, model.DisplayCents(dayFour, model.DefaultCurrency), rows[2].Balance)
}
