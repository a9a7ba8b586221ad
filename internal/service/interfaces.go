// Package service defines the interfaces between the core engines and
// their collaborators.
package service

import (
	"context"
	"time"

	"github.com/mny-engine/mny/internal/model"
)

// Storage is the transaction store contract. Implementations must be safe
// for concurrent reads.
type Storage interface {
	UserStore
	AccountStore
	EndpointStore
	CategoryStore
	TransactionStore
	ScheduledStore

	Migrate(ctx context.Context) error
	Close() error
}

// UserStore manages users.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// AccountStore manages accounts and derives their balances.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	GetAccountByName(ctx context.Context, userID, name string) (*model.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]model.Account, error)
	DefaultAccount(ctx context.Context, userID string) (*model.Account, error)

	// AccountBalance replays the account's transactions up to the end of
	// the given day and returns the resulting balance in cents.
	AccountBalance(ctx context.Context, accountID string, asOf time.Time) (int64, error)

	// NetWorth sums the balances of all the user's accounts as of the
	// given day.
	NetWorth(ctx context.Context, userID string, asOf time.Time) (int64, error)
}

// EndpointStore manages external counterparties.
type EndpointStore interface {
	FindOrCreateEndpoint(ctx context.Context, userID, label string) (*model.TransactionEndpoint, error)
	GetEndpoint(ctx context.Context, id string) (*model.TransactionEndpoint, error)
	ListEndpoints(ctx context.Context, userID string) ([]model.TransactionEndpoint, error)
}

// CategoryStore manages categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategoryByName(ctx context.Context, userID, name string) (*model.Category, error)
	ListCategories(ctx context.Context, userID string) ([]model.Category, error)
}

// TransactionStore manages persisted transactions.
type TransactionStore interface {
	// InsertTransaction saves a single transaction, assigning an ID and
	// fingerprint if unset.
	InsertTransaction(ctx context.Context, txn *model.Transaction) error

	// InsertTransferPair atomically saves a transfer_out record and its
	// transfer_in mirror. Either both records are written or neither is.
	InsertTransferPair(ctx context.Context, out, in *model.Transaction) error

	// ListTransactions returns the full transaction universe ordered by
	// occurrence time, with account, endpoint and category names resolved.
	ListTransactions(ctx context.Context) ([]model.Transaction, error)

	// FingerprintExists reports whether a transaction with the given
	// fingerprint is already stored.
	FingerprintExists(ctx context.Context, fingerprint string) (bool, error)
}

// ScheduledStore manages scheduled transaction templates.
type ScheduledStore interface {
	InsertScheduledTransaction(ctx context.Context, st *model.ScheduledTransaction) error
	ListScheduledTransactions(ctx context.Context, userID string) ([]model.ScheduledTransaction, error)
}

// RetryOptions configures retry behavior for operations against flaky
// collaborators.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
