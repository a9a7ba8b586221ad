// Package ledger implements the accounting operations: deposits,
// withdrawals, atomic transfers, their scheduled counterparts, and the
// user-facing query entry points.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mny-engine/mny/internal/common"
	"github.com/mny-engine/mny/internal/filter"
	"github.com/mny-engine/mny/internal/forecast"
	"github.com/mny-engine/mny/internal/model"
	"github.com/mny-engine/mny/internal/schedule"
	"github.com/mny-engine/mny/internal/service"
)

// Ledger coordinates accounting operations against the transaction store.
type Ledger struct {
	store service.Storage
	now   func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a ledger over the given store.
func New(store service.Storage, opts ...Option) *Ledger {
	l := &Ledger{store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TransactionParams carries the optional attributes of an accounting
// operation. Account names an account by its name; empty means the user's
// default account. From/To name the counterparty: an endpoint label for
// deposits and withdrawals, an account name for transfers.
type TransactionParams struct {
	At       time.Time
	From     string
	To       string
	Account  string
	Category string
	Currency string
}

// Deposit records money arriving into an account from an external payer.
// The payer endpoint is created if it does not exist yet.
func (l *Ledger) Deposit(ctx context.Context, userID string, amount int64, p TransactionParams) (*model.Transaction, error) {
	if p.From == "" {
		return nil, fmt.Errorf("%w: missing the source of this deposit", common.ErrMissingCounterparty)
	}

	account, err := l.resolveAccount(ctx, userID, p.Account)
	if err != nil {
		return nil, err
	}
	endpoint, err := l.store.FindOrCreateEndpoint(ctx, userID, p.From)
	if err != nil {
		return nil, err
	}

	txn := l.buildTransaction(userID, account, model.Deposit, amount, p)
	txn.EndpointID = endpoint.ID
	txn.EndpointName = endpoint.Label

	if err := l.attachCategory(ctx, userID, p.Category, txn); err != nil {
		return nil, err
	}
	if err := l.store.InsertTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record deposit: %w", err)
	}
	return txn, nil
}

// Withdraw records money leaving an account toward an external payee.
func (l *Ledger) Withdraw(ctx context.Context, userID string, amount int64, p TransactionParams) (*model.Transaction, error) {
	if p.To == "" {
		return nil, fmt.Errorf("%w: missing the destination of this withdrawal", common.ErrMissingCounterparty)
	}

	account, err := l.resolveAccount(ctx, userID, p.Account)
	if err != nil {
		return nil, err
	}
	endpoint, err := l.store.FindOrCreateEndpoint(ctx, userID, p.To)
	if err != nil {
		return nil, err
	}

	txn := l.buildTransaction(userID, account, model.Withdrawal, amount, p)
	txn.EndpointID = endpoint.ID
	txn.EndpointName = endpoint.Label

	if err := l.attachCategory(ctx, userID, p.Category, txn); err != nil {
		return nil, err
	}
	if err := l.store.InsertTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record withdrawal: %w", err)
	}
	return txn, nil
}

// Transfer moves money between two of the user's accounts, writing the
// transfer_out record and its transfer_in mirror as one atomic unit. The
// returned transaction is the out record.
func (l *Ledger) Transfer(ctx context.Context, userID string, amount int64, p TransactionParams) (*model.Transaction, error) {
	if p.To == "" {
		return nil, fmt.Errorf("%w: missing the destination account of this transfer", common.ErrMissingCounterparty)
	}

	source, err := l.resolveAccount(ctx, userID, p.Account)
	if err != nil {
		return nil, err
	}
	dest, err := l.store.GetAccountByName(ctx, userID, p.To)
	if err != nil {
		return nil, fmt.Errorf("could not find an account named %q: %w", p.To, err)
	}
	if dest.ID == source.ID {
		return nil, fmt.Errorf("cannot transfer from account %q to itself", source.Name)
	}

	out := l.buildTransaction(userID, source, model.TransferOut, amount, p)
	out.TransferAccountID = dest.ID
	out.TransferAccountName = dest.Name

	in := l.buildTransaction(userID, dest, model.TransferIn, amount, p)
	in.TransferAccountID = source.ID
	in.TransferAccountName = source.Name
	in.TransactedAt = out.TransactedAt

	if err := l.attachCategory(ctx, userID, p.Category, out); err != nil {
		return nil, err
	}
	in.CategoryID = out.CategoryID
	in.CategoryName = out.CategoryName

	if err := l.store.InsertTransferPair(ctx, out, in); err != nil {
		return nil, fmt.Errorf("transfer failed, nothing was applied: %w", err)
	}
	return out, nil
}

// ScheduleParams carries the attributes of a scheduled operation. Exactly
// one of On and Schedule must be set.
type ScheduleParams struct {
	On       *time.Time
	Schedule *schedule.Schedule
	From     string
	To       string
	Account  string
	Category string
	Currency string
}

// WillDeposit schedules a future deposit.
func (l *Ledger) WillDeposit(ctx context.Context, userID string, amount int64, p ScheduleParams) (*model.ScheduledTransaction, error) {
	if p.From == "" {
		return nil, fmt.Errorf("%w: missing the source of this deposit", common.ErrMissingCounterparty)
	}
	return l.schedule(ctx, userID, model.Deposit, amount, p.From, p)
}

// WillWithdraw schedules a future withdrawal.
func (l *Ledger) WillWithdraw(ctx context.Context, userID string, amount int64, p ScheduleParams) (*model.ScheduledTransaction, error) {
	if p.To == "" {
		return nil, fmt.Errorf("%w: missing the destination of this withdrawal", common.ErrMissingCounterparty)
	}
	return l.schedule(ctx, userID, model.Withdrawal, amount, p.To, p)
}

// WillTransfer schedules a future transfer out of an account. Projections
// materialize only the outflow record.
func (l *Ledger) WillTransfer(ctx context.Context, userID string, amount int64, p ScheduleParams) (*model.ScheduledTransaction, error) {
	if p.To == "" {
		return nil, fmt.Errorf("%w: missing the destination account of this transfer", common.ErrMissingCounterparty)
	}

	account, err := l.resolveAccount(ctx, userID, p.Account)
	if err != nil {
		return nil, err
	}
	dest, err := l.store.GetAccountByName(ctx, userID, p.To)
	if err != nil {
		return nil, fmt.Errorf("could not find an account named %q: %w", p.To, err)
	}

	st := &model.ScheduledTransaction{
		UserID:              userID,
		AccountID:           account.ID,
		AccountName:         account.Name,
		TransferAccountID:   dest.ID,
		TransferAccountName: dest.Name,
		Type:                model.TransferOut,
		Amount:              amount,
		Currency:            p.Currency,
		On:                  p.On,
		Schedule:            p.Schedule,
	}
	if err := l.store.InsertScheduledTransaction(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to schedule transfer: %w", err)
	}
	return st, nil
}

func (l *Ledger) schedule(ctx context.Context, userID string, typ model.TransactionType, amount int64, endpointLabel string, p ScheduleParams) (*model.ScheduledTransaction, error) {
	account, err := l.resolveAccount(ctx, userID, p.Account)
	if err != nil {
		return nil, err
	}
	endpoint, err := l.store.FindOrCreateEndpoint(ctx, userID, endpointLabel)
	if err != nil {
		return nil, err
	}

	st := &model.ScheduledTransaction{
		UserID:       userID,
		AccountID:    account.ID,
		AccountName:  account.Name,
		EndpointID:   endpoint.ID,
		EndpointName: endpoint.Label,
		Type:         typ,
		Amount:       amount,
		Currency:     p.Currency,
		On:           p.On,
		Schedule:     p.Schedule,
	}
	if p.Category != "" {
		category, err := l.store.GetCategoryByName(ctx, userID, p.Category)
		if err == nil {
			st.CategoryID = category.ID
			st.CategoryName = category.Name
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
	}
	if err := l.store.InsertScheduledTransaction(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to schedule %s: %w", typ, err)
	}
	return st, nil
}

// Balance returns an account's balance as of the given day; a zero time
// means now.
func (l *Ledger) Balance(ctx context.Context, userID, accountName string, asOf time.Time) (int64, error) {
	account, err := l.resolveAccount(ctx, userID, accountName)
	if err != nil {
		return 0, err
	}
	if asOf.IsZero() {
		asOf = l.now()
	}
	return l.store.AccountBalance(ctx, account.ID, asOf)
}

// NetWorth returns the user's balance across all accounts as of the given
// day; a zero time means now.
func (l *Ledger) NetWorth(ctx context.Context, userID string, asOf time.Time) (int64, error) {
	if asOf.IsZero() {
		asOf = l.now()
	}
	return l.store.NetWorth(ctx, userID, asOf)
}

// TransactionSet builds a lazily evaluated transaction set for the user.
// The user dimension is forced so data never leaks between users.
func (l *Ledger) TransactionSet(userID string, spec filter.Spec) *filter.Set {
	spec.UserIDs = []string{userID}
	return filter.NewSet(l.store, spec)
}

// Forecast builds a projection for the user.
func (l *Ledger) Forecast(userID string, opts forecast.Options) *forecast.Forecast {
	if opts.Now == nil {
		opts.Now = l.now
	}
	return forecast.New(l.store, userID, opts)
}

// resolveAccount finds the named account, or the user's default account
// when name is empty.
func (l *Ledger) resolveAccount(ctx context.Context, userID, name string) (*model.Account, error) {
	var account *model.Account
	var err error
	if name == "" {
		account, err = l.store.DefaultAccount(ctx, userID)
	} else {
		account, err = l.store.GetAccountByName(ctx, userID, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNoAccount, err)
	}
	return account, nil
}

func (l *Ledger) buildTransaction(userID string, account *model.Account, typ model.TransactionType, amount int64, p TransactionParams) *model.Transaction {
	at := p.At
	if at.IsZero() {
		at = l.now()
	}
	currency := p.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}
	return &model.Transaction{
		UserID:       userID,
		AccountID:    account.ID,
		AccountName:  account.Name,
		Type:         typ,
		Amount:       amount,
		Currency:     currency,
		TransactedAt: at,
		Status:       model.StatusUnknown,
	}
}

func (l *Ledger) attachCategory(ctx context.Context, userID, name string, txn *model.Transaction) error {
	if name == "" {
		return nil
	}
	category, err := l.store.GetCategoryByName(ctx, userID, name)
	if errors.Is(err, common.ErrNotFound) {
		// Unknown category names are ignored rather than auto-created.
		return nil
	}
	if err != nil {
		return err
	}
	txn.CategoryID = category.ID
	txn.CategoryName = category.Name
	return nil
}
