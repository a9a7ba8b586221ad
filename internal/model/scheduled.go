package model

import (
	"time"

	"github.com/mny-engine/mny/internal/schedule"
)

// ScheduledTransaction is a template for future transactions. It carries
// either a single future occurrence date (On) or a recurrence Schedule,
// never both. Scheduled transactions are read-only input to forecasting
// and never become real transactions automatically.
type ScheduledTransaction struct {
	On                  *time.Time
	Schedule            *schedule.Schedule
	ID                  string
	UserID              string
	AccountID           string
	AccountName         string
	EndpointID          string
	EndpointName        string
	TransferAccountID   string
	TransferAccountName string
	CategoryID          string
	CategoryName        string
	Type                TransactionType
	Currency            string
	Amount              int64
}

// OccursOn reports whether this template produces a transaction on the
// given calendar day. A one-off occurs only on its exact date; a recurring
// template occurs once its anchor has been reached and a rule matches.
func (s *ScheduledTransaction) OccursOn(day time.Time) bool {
	d := DayOf(day)
	if s.On != nil {
		return DayOf(*s.On).Equal(d)
	}
	if s.Schedule != nil {
		return !DayOf(s.Schedule.Anchor).After(d) && s.Schedule.OccursOn(d)
	}
	return false
}

// Materialize synthesizes an unsaved transaction from this template for
// the given day. The result has no ID and no status; callers must never
// persist it.
func (s *ScheduledTransaction) Materialize(day time.Time) Transaction {
	return Transaction{
		UserID:              s.UserID,
		AccountID:           s.AccountID,
		AccountName:         s.AccountName,
		EndpointID:          s.EndpointID,
		EndpointName:        s.EndpointName,
		TransferAccountID:   s.TransferAccountID,
		TransferAccountName: s.TransferAccountName,
		CategoryID:          s.CategoryID,
		CategoryName:        s.CategoryName,
		Type:                s.Type,
		Currency:            s.Currency,
		Amount:              s.Amount,
		TransactedAt:        DayOf(day),
	}
}
