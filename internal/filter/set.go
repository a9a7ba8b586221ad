package filter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mny-engine/mny/internal/model"
	"github.com/mny-engine/mny/internal/report"
)

// Store supplies the transaction universe a set resolves against.
type Store interface {
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
}

// Set is a lazily evaluated transaction set described by a Spec. The first
// accessor call fetches the universe from the store, applies every active
// predicate (logical AND across dimensions) and memoizes the result; later
// calls reuse it. A Set is not safe for concurrent first use; build one
// per request.
type Set struct {
	store Store
	rep   *report.Report
	err   error
	spec  Spec
	once  sync.Once
}

// NewSet builds an unresolved set over the given store and specification.
func NewSet(store Store, spec Spec) *Set {
	return &Set{store: store, spec: spec}
}

// Spec returns the specification describing this set.
func (s *Set) Spec() Spec {
	return s.spec
}

// Intersect derives a new unresolved set from the dimension-wise
// intersection of both specifications. The result is a new query, not an
// intersection of materialized contents.
func (s *Set) Intersect(o *Set) *Set {
	return NewSet(s.store, s.spec.Intersect(o.spec))
}

// Union derives a new unresolved set from the dimension-wise union of both
// specifications.
func (s *Set) Union(o *Set) *Set {
	return NewSet(s.store, s.spec.Union(o.spec))
}

func (s *Set) resolve(ctx context.Context) (*report.Report, error) {
	s.once.Do(func() {
		if err := s.spec.Validate(); err != nil {
			s.err = err
			return
		}

		universe, err := s.store.ListTransactions(ctx)
		if err != nil {
			s.err = fmt.Errorf("failed to load transaction universe: %w", err)
			return
		}

		txns := universe
		for _, p := range registry {
			if p.Active(&s.spec) {
				txns = p.Apply(&s.spec, txns)
			}
		}

		s.rep = report.New(txns, report.Options{})
	})
	return s.rep, s.err
}

// Transactions returns the resolved set ordered by occurrence time.
func (s *Set) Transactions(ctx context.Context) ([]model.Transaction, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return rep.Transactions(), nil
}

// Count returns the number of transactions in the resolved set.
func (s *Set) Count(ctx context.Context) (int, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return 0, err
	}
	return rep.Count(), nil
}

// StartDate returns the occurrence time of the earliest transaction, nil
// for an empty set.
func (s *Set) StartDate(ctx context.Context) (*time.Time, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return rep.StartDate(), nil
}

// EndDate returns the occurrence time of the latest transaction, nil for
// an empty set.
func (s *Set) EndDate(ctx context.Context) (*time.Time, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return rep.EndDate(), nil
}

// Accounts returns the account IDs touched by the set.
func (s *Set) Accounts(ctx context.Context) ([]string, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return rep.Accounts(), nil
}

// Endpoints returns the endpoint IDs touched by the set.
func (s *Set) Endpoints(ctx context.Context) ([]string, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return rep.Endpoints(), nil
}

// Categories returns the category IDs touched by the set.
func (s *Set) Categories(ctx context.Context) ([]string, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return rep.Categories(), nil
}

// Types returns the transaction types present in the set.
func (s *Set) Types(ctx context.Context) ([]model.TransactionType, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return rep.Types(), nil
}

// Statuses returns the status values present in the set.
func (s *Set) Statuses(ctx context.Context) ([]model.Status, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return rep.Statuses(), nil
}

// Balance returns the end-of-day balance on the given date; zero date
// means the set's last day.
func (s *Set) Balance(ctx context.Context, date time.Time) (int64, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return 0, err
	}
	return rep.Balance(date)
}

// High returns the highest end-of-day balance up to the given date.
func (s *Set) High(ctx context.Context, date time.Time) (int64, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return 0, err
	}
	return rep.High(date)
}

// Low returns the lowest end-of-day balance up to the given date.
func (s *Set) Low(ctx context.Context, date time.Time) (int64, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return 0, err
	}
	return rep.Low(date)
}

// Variation returns high minus low up to the given date.
func (s *Set) Variation(ctx context.Context, date time.Time) (int64, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return 0, err
	}
	return rep.Variation(date)
}

// NegativeBalances returns the days up to the given date whose end-of-day
// balance is negative.
func (s *Set) NegativeBalances(ctx context.Context, date time.Time) (map[time.Time]int64, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return rep.NegativeBalances(date)
}

// Rows returns the tabular report for the resolved set.
func (s *Set) Rows(ctx context.Context) ([]report.Row, error) {
	rep, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return rep.Rows(), nil
}

// Report exposes the underlying report engine for the resolved set.
func (s *Set) Report(ctx context.Context) (*report.Report, error) {
	return s.resolve(ctx)
}
