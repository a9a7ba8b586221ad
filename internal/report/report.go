// Package report computes balance histories and tabular reports from an
// ordered collection of transactions, real or simulated.
package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mny-engine/mny/internal/common"
	"github.com/mny-engine/mny/internal/model"
)

// Query errors. Date-bounded queries outside the set's range are
// precondition failures, never silently clamped.
var (
	ErrEmptySet        = errors.New("transaction set is empty")
	ErrDateBeforeStart = fmt.Errorf("transaction set begins after this date: %w", common.ErrOutOfRange)
	ErrDateAfterEnd    = fmt.Errorf("transaction set ends before this date: %w", common.ErrOutOfRange)
)

// Options configures report construction.
type Options struct {
	// Start and End bound the dense day map explicitly, widening it
	// beyond the days that carry transactions. Days before the first
	// transaction hold the starting balance; days after the last carry
	// its balance forward. Zero values default to the first and last
	// transaction days.
	Start time.Time
	End   time.Time

	// StartingBalance is the balance before the first transaction, in
	// cents. Defaults to 0.
	StartingBalance int64
}

// Row is one line of the tabular report.
type Row struct {
	Date     time.Time
	ID       string
	Account  string
	From     string
	To       string
	Category string
	Amount   string
	Balance  string
	Type     model.TransactionType
	Status   model.Status
}

// Report holds a transaction sequence plus its derived dense day-by-day
// balance map. The map is computed once at construction; a Report is
// immutable afterwards and safe for concurrent reads.
type Report struct {
	balances        map[time.Time]int64
	txns            []model.Transaction
	days            []time.Time
	start           time.Time
	end             time.Time
	startingBalance int64
}

// New builds a report over the given transactions. The input is copied and
// sorted by occurrence time; the sort is stable so records sharing a
// timestamp keep their input order.
func New(txns []model.Transaction, opts Options) *Report {
	sorted := make([]model.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TransactedAt.Before(sorted[j].TransactedAt)
	})

	r := &Report{
		txns:            sorted,
		start:           dayOrZero(opts.Start),
		end:             dayOrZero(opts.End),
		startingBalance: opts.StartingBalance,
	}
	r.buildBalances()
	return r
}

func dayOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return model.DayOf(t)
}

// buildBalances walks the sorted transactions accumulating a running total,
// records the total at the end of each day with activity, then fills the
// calendar gaps by carrying the prior day's balance forward. The filled
// range spans from the earlier of the window start and the first activity
// day through the later of the window end and the last activity day; days
// before any activity hold the starting balance.
func (r *Report) buildBalances() {
	r.balances = make(map[time.Time]int64)

	balance := r.startingBalance
	for i := range r.txns {
		balance += r.txns[i].AdjustedAmount()
		r.balances[model.DayOf(r.txns[i].TransactedAt)] = balance
	}

	first, last, ok := r.span()
	if !ok {
		return
	}

	carried := r.startingBalance
	r.days = make([]time.Time, 0, int(last.Sub(first).Hours()/24)+1)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if b, ok := r.balances[day]; ok {
			carried = b
		} else {
			r.balances[day] = carried
		}
		r.days = append(r.days, day)
	}
}

// span resolves the day range the dense map must cover. With neither a
// window nor any transactions there is nothing to cover.
func (r *Report) span() (first, last time.Time, ok bool) {
	if len(r.txns) > 0 {
		first = model.DayOf(r.txns[0].TransactedAt)
		last = model.DayOf(r.txns[len(r.txns)-1].TransactedAt)
	}
	if !r.start.IsZero() && (first.IsZero() || r.start.Before(first)) {
		first = r.start
	}
	if !r.end.IsZero() && (last.IsZero() || r.end.After(last)) {
		last = r.end
	}
	if first.IsZero() {
		first = last
	}
	if last.IsZero() {
		last = first
	}
	return first, last, !first.IsZero()
}

// Transactions returns the set ordered by occurrence time.
func (r *Report) Transactions() []model.Transaction {
	return r.txns
}

// Count returns the number of transactions in the set.
func (r *Report) Count() int {
	return len(r.txns)
}

// StartDate returns the occurrence time of the earliest transaction, or
// nil for an empty set.
func (r *Report) StartDate() *time.Time {
	if len(r.txns) == 0 {
		return nil
	}
	t := r.txns[0].TransactedAt
	return &t
}

// EndDate returns the occurrence time of the latest transaction, or nil
// for an empty set.
func (r *Report) EndDate() *time.Time {
	if len(r.txns) == 0 {
		return nil
	}
	t := r.txns[len(r.txns)-1].TransactedAt
	return &t
}

// Accounts returns the IDs of all accounts touched by the set, deduplicated
// in first-seen order.
func (r *Report) Accounts() []string {
	return r.collect(func(t *model.Transaction) string { return t.AccountID })
}

// Endpoints returns the IDs of all transaction endpoints touched by the set.
func (r *Report) Endpoints() []string {
	return r.collect(func(t *model.Transaction) string { return t.EndpointID })
}

// Categories returns the IDs of all categories touched by the set.
func (r *Report) Categories() []string {
	return r.collect(func(t *model.Transaction) string { return t.CategoryID })
}

// Types returns the transaction types present in the set.
func (r *Report) Types() []model.TransactionType {
	seen := make(map[model.TransactionType]bool)
	var out []model.TransactionType
	for i := range r.txns {
		if v := r.txns[i].Type; v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Statuses returns the status values present in the set. Simulated
// transactions carry no status and contribute nothing.
func (r *Report) Statuses() []model.Status {
	seen := make(map[model.Status]bool)
	var out []model.Status
	for i := range r.txns {
		if v := r.txns[i].Status; v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func (r *Report) collect(field func(*model.Transaction) string) []string {
	seen := make(map[string]bool)
	var out []string
	for i := range r.txns {
		if v := field(&r.txns[i]); v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Balance returns the end-of-day balance for the given date. A zero date
// means the last date in the set.
func (r *Report) Balance(date time.Time) (int64, error) {
	day, err := r.boundedDay(date)
	if err != nil {
		return 0, err
	}
	return r.balances[day], nil
}

// High returns the highest end-of-day balance up to and including the
// given date. A zero date means the last date in the set.
func (r *Report) High(date time.Time) (int64, error) {
	return r.edge(date, func(b, memo int64) bool { return b > memo })
}

// Low returns the lowest end-of-day balance up to and including the given
// date. A zero date means the last date in the set.
func (r *Report) Low(date time.Time) (int64, error) {
	return r.edge(date, func(b, memo int64) bool { return b < memo })
}

// Variation returns the difference between the highest and lowest balance
// up to and including the given date.
func (r *Report) Variation(date time.Time) (int64, error) {
	high, err := r.High(date)
	if err != nil {
		return 0, err
	}
	low, err := r.Low(date)
	if err != nil {
		return 0, err
	}
	return high - low, nil
}

// NegativeBalances returns every day up to and including the given date
// whose end-of-day balance is negative. A zero date means the last date in
// the set.
func (r *Report) NegativeBalances(date time.Time) (map[time.Time]int64, error) {
	day, err := r.boundedDay(date)
	if err != nil {
		return nil, err
	}

	negatives := make(map[time.Time]int64)
	for _, d := range r.days {
		if d.After(day) {
			break
		}
		if b := r.balances[d]; b < 0 {
			negatives[d] = b
		}
	}
	return negatives, nil
}

// Rows produces the tabular report: one row per transaction with a
// formatted running balance. This is a second accumulation pass from the
// same starting balance as the day map; both views stay numerically
// identical. Status is only populated for persisted records.
func (r *Report) Rows() []Row {
	balance := r.startingBalance
	rows := make([]Row, 0, len(r.txns))

	for i := range r.txns {
		t := &r.txns[i]
		balance += t.AdjustedAmount()

		category := t.CategoryName
		if category == "" {
			category = model.Uncategorized
		}

		rows = append(rows, Row{
			ID:       t.ID,
			Account:  t.AccountName,
			Date:     model.DayOf(t.TransactedAt),
			Type:     t.Type,
			From:     t.FromName(),
			To:       t.ToName(),
			Category: category,
			Amount:   model.DisplayCents(t.Amount, t.Currency),
			Balance:  model.DisplayCents(balance, t.Currency),
			Status:   t.Status,
		})
	}

	return rows
}

// boundedDay validates a query date against the set's range and returns
// the day to look up. A zero date defaults to the last day.
func (r *Report) boundedDay(date time.Time) (time.Time, error) {
	if len(r.days) == 0 {
		return time.Time{}, ErrEmptySet
	}

	first := r.days[0]
	last := r.days[len(r.days)-1]

	if date.IsZero() {
		return last, nil
	}

	day := model.DayOf(date)
	if day.Before(first) {
		return time.Time{}, ErrDateBeforeStart
	}
	if day.After(last) {
		return time.Time{}, ErrDateAfterEnd
	}
	return day, nil
}

func (r *Report) edge(date time.Time, better func(b, memo int64) bool) (int64, error) {
	day, err := r.boundedDay(date)
	if err != nil {
		return 0, err
	}

	memo := r.balances[r.days[0]]
	for _, d := range r.days[1:] {
		if d.After(day) {
			break
		}
		if b := r.balances[d]; better(b, memo) {
			memo = b
		}
	}
	return memo, nil
}
