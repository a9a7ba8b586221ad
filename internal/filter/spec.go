// Package filter implements the declarative transaction query algebra:
// per-dimension predicates, AND-composition across dimensions, and set
// operations on the specifications themselves.
package filter

import (
	"fmt"
	"time"

	"github.com/mny-engine/mny/internal/common"
	"github.com/mny-engine/mny/internal/model"
)

// AmountFilter constrains the amount dimension. Either Exact is set, or
// any combination of Min/Max forms an inclusive range; a nil end is
// unbounded.
type AmountFilter struct {
	Exact *int64
	Min   *int64
	Max   *int64
}

// Exactly matches a single amount.
func Exactly(cents int64) *AmountFilter {
	return &AmountFilter{Exact: &cents}
}

// Between matches amounts in the inclusive range [min, max]. Pass nil for
// an unbounded end.
func Between(min, max *int64) *AmountFilter {
	return &AmountFilter{Min: min, Max: max}
}

// Cents returns a pointer to the given amount, for range ends.
func Cents(v int64) *int64 {
	return &v
}

// Matches reports whether the given amount satisfies the filter.
func (a *AmountFilter) Matches(cents int64) bool {
	if a.Exact != nil {
		return cents == *a.Exact
	}
	if a.Min != nil && cents < *a.Min {
		return false
	}
	if a.Max != nil && cents > *a.Max {
		return false
	}
	return true
}

func (a *AmountFilter) validate() error {
	if a.Exact != nil && (a.Min != nil || a.Max != nil) {
		return fmt.Errorf("%w: amount cannot combine an exact value with a range", common.ErrInvalidFilter)
	}
	if a.Min != nil && a.Max != nil && *a.Min > *a.Max {
		return fmt.Errorf("%w: amount range minimum %d exceeds maximum %d", common.ErrInvalidFilter, *a.Min, *a.Max)
	}
	return nil
}

// Spec is a filter specification: a value per filter dimension. A nil or
// empty dimension is inactive and leaves the universe unconstrained along
// it. List dimensions match any of their values.
type Spec struct {
	After   *time.Time
	Before  *time.Time
	Amount  *AmountFilter
	UserIDs []string
	// AccountIDs matches the owning account.
	AccountIDs []string
	// TransferTo matches the receiving account of transfer_out records.
	TransferTo []string
	// TransferFrom matches the sending account of transfer_in records.
	TransferFrom []string
	EndpointIDs  []string
	CategoryIDs  []string
	Types        []model.TransactionType
	Statuses     []model.Status
}

// ForUser returns a specification scoped to one user. Sets should be
// built through this so transaction data never leaks between users.
func ForUser(userID string) Spec {
	return Spec{UserIDs: []string{userID}}
}

// Validate rejects malformed filter values before any evaluation.
func (s *Spec) Validate() error {
	if s.Amount != nil {
		if err := s.Amount.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Intersect merges two specifications dimension by dimension, keeping only
// dimensions present in both. List values are intersected; amount ranges
// are overlapped; date windows are narrowed. A dimension whose merge comes
// up empty is dropped entirely, leaving it unconstrained in the result —
// callers composing disjoint specs get a wider set, not an empty one.
func (s Spec) Intersect(o Spec) Spec {
	return Spec{
		UserIDs:      intersectList(s.UserIDs, o.UserIDs),
		AccountIDs:   intersectList(s.AccountIDs, o.AccountIDs),
		TransferTo:   intersectList(s.TransferTo, o.TransferTo),
		TransferFrom: intersectList(s.TransferFrom, o.TransferFrom),
		EndpointIDs:  intersectList(s.EndpointIDs, o.EndpointIDs),
		CategoryIDs:  intersectList(s.CategoryIDs, o.CategoryIDs),
		Types:        intersectList(s.Types, o.Types),
		Statuses:     intersectList(s.Statuses, o.Statuses),
		After:        laterOf(s.After, o.After),
		Before:       earlierOf(s.Before, o.Before),
		Amount:       intersectAmount(s.Amount, o.Amount),
	}
}

// Union merges two specifications keeping every dimension present in
// either. List values are concatenated and deduplicated; amount filters
// widen to their envelope; date windows widen.
func (s Spec) Union(o Spec) Spec {
	return Spec{
		UserIDs:      unionList(s.UserIDs, o.UserIDs),
		AccountIDs:   unionList(s.AccountIDs, o.AccountIDs),
		TransferTo:   unionList(s.TransferTo, o.TransferTo),
		TransferFrom: unionList(s.TransferFrom, o.TransferFrom),
		EndpointIDs:  unionList(s.EndpointIDs, o.EndpointIDs),
		CategoryIDs:  unionList(s.CategoryIDs, o.CategoryIDs),
		Types:        unionList(s.Types, o.Types),
		Statuses:     unionList(s.Statuses, o.Statuses),
		After:        oneOrEarlier(s.After, o.After),
		Before:       oneOrLater(s.Before, o.Before),
		Amount:       unionAmount(s.Amount, o.Amount),
	}
}

// intersectList keeps values present in both lists, preserving a's order.
// Dimensions absent from either side, or with no common values, drop out.
func intersectList[T comparable](a, b []T) []T {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	inB := make(map[T]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}
	var out []T
	for _, v := range a {
		if inB[v] {
			out = append(out, v)
			inB[v] = false
		}
	}
	return out
}

// unionList concatenates and deduplicates, a's values first.
func unionList[T comparable](a, b []T) []T {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[T]bool, len(a)+len(b))
	out := make([]T, 0, len(a)+len(b))
	for _, v := range append(append([]T{}, a...), b...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func laterOf(a, b *time.Time) *time.Time {
	if a == nil || b == nil {
		return nil
	}
	if a.After(*b) {
		return a
	}
	return b
}

func earlierOf(a, b *time.Time) *time.Time {
	if a == nil || b == nil {
		return nil
	}
	if a.Before(*b) {
		return a
	}
	return b
}

func oneOrEarlier(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Before(*b) {
		return a
	}
	return b
}

func oneOrLater(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.After(*b) {
		return a
	}
	return b
}

// intersectAmount overlaps two amount filters; a disjoint pair drops the
// dimension, matching the list rule.
func intersectAmount(a, b *AmountFilter) *AmountFilter {
	if a == nil || b == nil {
		return nil
	}

	min, max := a.bounds()
	bmin, bmax := b.bounds()

	if bmin != nil && (min == nil || *bmin > *min) {
		min = bmin
	}
	if bmax != nil && (max == nil || *bmax < *max) {
		max = bmax
	}
	if min != nil && max != nil {
		if *min > *max {
			return nil
		}
		if *min == *max {
			return &AmountFilter{Exact: min}
		}
	}
	return &AmountFilter{Min: min, Max: max}
}

// unionAmount widens to the envelope of both filters.
func unionAmount(a, b *AmountFilter) *AmountFilter {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	min, max := a.bounds()
	bmin, bmax := b.bounds()

	if min == nil || bmin == nil {
		min = nil
	} else if *bmin < *min {
		min = bmin
	}
	if max == nil || bmax == nil {
		max = nil
	} else if *bmax > *max {
		max = bmax
	}
	if min != nil && max != nil && *min == *max {
		return &AmountFilter{Exact: min}
	}
	return &AmountFilter{Min: min, Max: max}
}

// bounds reduces the filter to an inclusive range; an exact value is a
// degenerate range.
func (a *AmountFilter) bounds() (*int64, *int64) {
	if a.Exact != nil {
		return a.Exact, a.Exact
	}
	return a.Min, a.Max
}
