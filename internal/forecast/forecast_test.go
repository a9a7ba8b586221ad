package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mny-engine/mny/internal/model"
	"github.com/mny-engine/mny/internal/report"
	"github.com/mny-engine/mny/internal/schedule"
)

type fakeStore struct {
	scheduled     []model.ScheduledTransaction
	netWorth      int64
	netWorthErr   error
	listErr       error
	listCalls     int
	netWorthCalls int
}

func (f *fakeStore) ListScheduledTransactions(_ context.Context, _ string) ([]model.ScheduledTransaction, error) {
	f.listCalls++
	return f.scheduled, f.listErr
}

func (f *fakeStore) NetWorth(_ context.Context, _ string, _ time.Time) (int64, error) {
	f.netWorthCalls++
	return f.netWorth, f.netWorthErr
}

func fixedNow() time.Time {
	return time.Date(2026, time.August, 1, 10, 30, 0, 0, time.UTC)
}

func august(d int) time.Time {
	return time.Date(2026, time.August, d, 0, 0, 0, 0, time.UTC)
}

func TestForecastProjection(t *testing.T) {
	ctx := context.Background()
	payday := august(1)
	store := &fakeStore{
		scheduled: []model.ScheduledTransaction{
			{Type: model.Deposit, Amount: 100000, EndpointName: "Employer", On: &payday},
			{
				Type: model.Withdrawal, Amount: 10000, EndpointName: "Groceries",
				Schedule: schedule.New(august(1), schedule.Rule{Every: schedule.Daily, Interval: 2}),
			},
		},
	}

	fc := New(store, "user-1", Options{Now: fixedNow, Days: 5})

	// Day zero carries both the one-off deposit and the recurrence
	// anchor; every second day after subtracts the withdrawal.
	want := map[int]int64{1: 90000, 2: 90000, 3: 80000, 4: 80000, 5: 70000, 6: 70000}
	for d, cents := range want {
		got, err := fc.Balance(ctx, august(d))
		require.NoError(t, err, "august %d", d)
		assert.Equal(t, cents, got, "august %d", d)
	}

	low, err := fc.Low(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(70000), low)
}

func TestForecastCoversWholeHorizon(t *testing.T) {
	ctx := context.Background()
	rent := august(3)
	store := &fakeStore{
		netWorth: 50000,
		scheduled: []model.ScheduledTransaction{
			{Type: model.Withdrawal, Amount: 20000, EndpointName: "Landlord", On: &rent},
		},
	}

	fc := New(store, "user-1", Options{Now: fixedNow, Days: 5})

	// Neither horizon edge has an occurrence: the first day holds the
	// opening balance and the last carries the post-rent balance forward.
	got, err := fc.Balance(ctx, august(1))
	require.NoError(t, err)
	assert.Equal(t, int64(50000), got)

	got, err = fc.Balance(ctx, august(6))
	require.NoError(t, err)
	assert.Equal(t, int64(30000), got)

	_, err = fc.Balance(ctx, august(7))
	assert.ErrorIs(t, err, report.ErrDateAfterEnd)
}

func TestForecastWithoutScheduledActivity(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{netWorth: 12500}

	fc := New(store, "user-1", Options{Now: fixedNow, Days: 3})

	for d := 1; d <= 4; d++ {
		got, err := fc.Balance(ctx, august(d))
		require.NoError(t, err, "august %d", d)
		assert.Equal(t, int64(12500), got, "august %d", d)
	}
}

func TestForecastStartingBalance(t *testing.T) {
	ctx := context.Background()
	rent := august(3)

	t.Run("defaults to net worth", func(t *testing.T) {
		store := &fakeStore{
			netWorth: 50000,
			scheduled: []model.ScheduledTransaction{
				{Type: model.Withdrawal, Amount: 20000, EndpointName: "Landlord", On: &rent},
			},
		}
		fc := New(store, "user-1", Options{Now: fixedNow, Days: 5})

		got, err := fc.Balance(ctx, august(3))
		require.NoError(t, err)
		assert.Equal(t, int64(30000), got)
		assert.Equal(t, 1, store.netWorthCalls)
	})

	t.Run("override skips net worth entirely", func(t *testing.T) {
		starting := int64(1000)
		store := &fakeStore{
			netWorth: 50000,
			scheduled: []model.ScheduledTransaction{
				{Type: model.Withdrawal, Amount: 20000, EndpointName: "Landlord", On: &rent},
			},
		}
		fc := New(store, "user-1", Options{Now: fixedNow, Days: 5, StartingBalance: &starting})

		got, err := fc.Balance(ctx, august(3))
		require.NoError(t, err)
		assert.Equal(t, int64(-19000), got)
		assert.Equal(t, 0, store.netWorthCalls)
	})
}

func TestForecastHorizon(t *testing.T) {
	fc := New(&fakeStore{}, "user-1", Options{Now: fixedNow})
	assert.Equal(t, fixedNow(), fc.StartDate())
	assert.Equal(t, fixedNow().AddDate(0, 0, DefaultHorizonDays), fc.EndDate())
}

func TestForecastExcludesOccurrencesPastHorizon(t *testing.T) {
	ctx := context.Background()
	inside := august(6)
	outside := august(7)
	store := &fakeStore{
		scheduled: []model.ScheduledTransaction{
			{Type: model.Deposit, Amount: 100, EndpointName: "A", On: &inside},
			{Type: model.Deposit, Amount: 900, EndpointName: "B", On: &outside},
		},
	}

	fc := New(store, "user-1", Options{Now: fixedNow, Days: 5})
	txns, err := fc.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, august(6), txns[0].Date)
}

func TestForecastMemoizes(t *testing.T) {
	ctx := context.Background()
	payday := august(2)
	store := &fakeStore{
		scheduled: []model.ScheduledTransaction{
			{Type: model.Deposit, Amount: 100, EndpointName: "Employer", On: &payday},
		},
	}

	fc := New(store, "user-1", Options{Now: fixedNow, Days: 5})
	_, err := fc.Balance(ctx, time.Time{})
	require.NoError(t, err)
	_, err = fc.Rows(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, store.listCalls)
	assert.Equal(t, 1, store.netWorthCalls)
}

func TestForecastDeterminism(t *testing.T) {
	ctx := context.Background()
	build := func() (int64, error) {
		store := &fakeStore{
			netWorth: 12345,
			scheduled: []model.ScheduledTransaction{
				{
					Type: model.Withdrawal, Amount: 500, EndpointName: "Gym",
					Schedule: schedule.New(august(1), schedule.Rule{Every: schedule.Weekly}),
				},
			},
		}
		return New(store, "user-1", Options{Now: fixedNow, Days: 14}).Balance(ctx, time.Time{})
	}

	first, err := build()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := build()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestForecastStoreErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("scheduled listing failure", func(t *testing.T) {
		store := &fakeStore{listErr: errors.New("db closed")}
		fc := New(store, "user-1", Options{Now: fixedNow})
		_, err := fc.Report(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scheduled transactions")
	})

	t.Run("net worth failure", func(t *testing.T) {
		payday := august(2)
		store := &fakeStore{
			netWorthErr: errors.New("db closed"),
			scheduled: []model.ScheduledTransaction{
				{Type: model.Deposit, Amount: 100, EndpointName: "Employer", On: &payday},
			},
		}
		fc := New(store, "user-1", Options{Now: fixedNow})
		_, err := fc.Balance(ctx, time.Time{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "net worth")
	})
}
