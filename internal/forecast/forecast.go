// Package forecast projects future balances by materializing scheduled
// transactions day by day and feeding them through the report engine.
package forecast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mny-engine/mny/internal/model"
	"github.com/mny-engine/mny/internal/report"
)

// DefaultHorizonDays is used when no horizon is given.
const DefaultHorizonDays = 30

// Store supplies the scheduled transactions and the starting net worth for
// a projection.
type Store interface {
	ListScheduledTransactions(ctx context.Context, userID string) ([]model.ScheduledTransaction, error)
	NetWorth(ctx context.Context, userID string, asOf time.Time) (int64, error)
}

// Options configures a forecast.
type Options struct {
	// StartingBalance overrides the user's current net worth as the
	// projection's opening balance.
	StartingBalance *int64
	// Now overrides the projection's starting instant; defaults to
	// time.Now.
	Now func() time.Time
	// Days is the projection horizon; defaults to DefaultHorizonDays.
	Days int
}

// Forecast is a lazily evaluated projection for one user. The simulated
// transactions exist only inside the projection's report and are never
// written to the store. Like filter.Set, a Forecast memoizes its first
// evaluation and is not safe for concurrent first use.
type Forecast struct {
	store  Store
	rep    *report.Report
	err    error
	now    time.Time
	end    time.Time
	userID string
	opts   Options
	once   sync.Once
}

// New builds an unevaluated forecast for the given user.
func New(store Store, userID string, opts Options) *Forecast {
	if opts.Days <= 0 {
		opts.Days = DefaultHorizonDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	now := opts.Now()
	return &Forecast{
		store:  store,
		userID: userID,
		opts:   opts,
		now:    now,
		end:    now.AddDate(0, 0, opts.Days),
	}
}

// StartDate is the first projected instant.
func (f *Forecast) StartDate() time.Time {
	return f.now
}

// EndDate is the last projected instant.
func (f *Forecast) EndDate() time.Time {
	return f.end
}

// run steps one calendar day at a time from now through the horizon's last
// day inclusive, materializing every scheduled transaction that occurs on
// the stepped day.
func (f *Forecast) run(ctx context.Context) (*report.Report, error) {
	f.once.Do(func() {
		scheduled, err := f.store.ListScheduledTransactions(ctx, f.userID)
		if err != nil {
			f.err = fmt.Errorf("failed to load scheduled transactions: %w", err)
			return
		}

		var simulated []model.Transaction
		last := model.DayOf(f.end)
		for day := model.DayOf(f.now); !day.After(last); day = day.AddDate(0, 0, 1) {
			for i := range scheduled {
				if scheduled[i].OccursOn(day) {
					simulated = append(simulated, scheduled[i].Materialize(day))
				}
			}
		}

		starting := int64(0)
		if f.opts.StartingBalance != nil {
			starting = *f.opts.StartingBalance
		} else {
			starting, err = f.store.NetWorth(ctx, f.userID, f.now)
			if err != nil {
				f.err = fmt.Errorf("failed to compute net worth: %w", err)
				return
			}
		}

		// The report window spans the whole horizon so every projected
		// day is queryable, not just the days with occurrences.
		f.rep = report.New(simulated, report.Options{
			Start:           f.now,
			End:             f.end,
			StartingBalance: starting,
		})
	})
	return f.rep, f.err
}

// Report evaluates the projection and returns its report.
func (f *Forecast) Report(ctx context.Context) (*report.Report, error) {
	return f.run(ctx)
}

// Balance returns the projected end-of-day balance on the given date; a
// zero date means the last projected day.
func (f *Forecast) Balance(ctx context.Context, date time.Time) (int64, error) {
	rep, err := f.run(ctx)
	if err != nil {
		return 0, err
	}
	return rep.Balance(date)
}

// High returns the highest projected balance up to the given date.
func (f *Forecast) High(ctx context.Context, date time.Time) (int64, error) {
	rep, err := f.run(ctx)
	if err != nil {
		return 0, err
	}
	return rep.High(date)
}

// Low returns the lowest projected balance up to the given date.
func (f *Forecast) Low(ctx context.Context, date time.Time) (int64, error) {
	rep, err := f.run(ctx)
	if err != nil {
		return 0, err
	}
	return rep.Low(date)
}

// Variation returns high minus low up to the given date.
func (f *Forecast) Variation(ctx context.Context, date time.Time) (int64, error) {
	rep, err := f.run(ctx)
	if err != nil {
		return 0, err
	}
	return rep.Variation(date)
}

// NegativeBalances returns the projected days whose balance is negative.
func (f *Forecast) NegativeBalances(ctx context.Context, date time.Time) (map[time.Time]int64, error) {
	rep, err := f.run(ctx)
	if err != nil {
		return nil, err
	}
	return rep.NegativeBalances(date)
}

// Rows returns the projection's tabular report.
func (f *Forecast) Rows(ctx context.Context) ([]report.Row, error) {
	rep, err := f.run(ctx)
	if err != nil {
		return nil, err
	}
	return rep.Rows(), nil
}
