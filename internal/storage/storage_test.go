package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mny-engine/mny/internal/common"
	"github.com/mny-engine/mny/internal/model"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedUser(t *testing.T, store *SQLiteStorage) *model.User {
	t.Helper()

	user := &model.User{Email: "tester@example.com"}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func seedAccount(t *testing.T, store *SQLiteStorage, userID, name string, isDefault bool) *model.Account {
	t.Helper()

	account := &model.Account{UserID: userID, Name: name, IsDefault: isDefault}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	return account
}

func TestUserCRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	user := &model.User{Email: "alice@example.com"}
	require.NoError(t, store.CreateUser(ctx, user))
	assert.NotEmpty(t, user.ID)

	got, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	t.Run("missing user", func(t *testing.T) {
		_, err := store.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := store.CreateUser(ctx, &model.User{Email: "alice@example.com"})
		assert.Error(t, err)
	})
}

func TestAccountCRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	user := seedUser(t, store)

	checking := seedAccount(t, store, user.ID, "Checking", true)
	savings := seedAccount(t, store, user.ID, "Savings", false)

	got, err := store.GetAccountByName(ctx, user.ID, "Savings")
	require.NoError(t, err)
	assert.Equal(t, savings.ID, got.ID)

	t.Run("default account resolution", func(t *testing.T) {
		def, err := store.DefaultAccount(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, checking.ID, def.ID)
	})

	t.Run("list accounts", func(t *testing.T) {
		accounts, err := store.ListAccounts(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, accounts, 2)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := store.GetAccountByName(ctx, user.ID, "Mattress")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestEndpointFindOrCreate(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	user := seedUser(t, store)

	first, err := store.FindOrCreateEndpoint(ctx, user.ID, "Corner Store")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	again, err := store.FindOrCreateEndpoint(ctx, user.ID, "Corner Store")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "same label must resolve to the same endpoint")

	endpoints, err := store.ListEndpoints(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, endpoints, 1)
}

func TestCategoryCRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	user := seedUser(t, store)

	category := &model.Category{UserID: user.ID, Name: "Groceries"}
	require.NoError(t, store.CreateCategory(ctx, category))

	got, err := store.GetCategoryByName(ctx, user.ID, "Groceries")
	require.NoError(t, err)
	assert.Equal(t, category.ID, got.ID)

	_, err = store.GetCategoryByName(ctx, user.ID, "Yachts")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestInsertTransaction(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	user := seedUser(t, store)
	account := seedAccount(t, store, user.ID, "Checking", true)
	endpoint, err := store.FindOrCreateEndpoint(ctx, user.ID, "Employer")
	require.NoError(t, err)

	txn := &model.Transaction{
		UserID:       user.ID,
		AccountID:    account.ID,
		EndpointID:   endpoint.ID,
		EndpointName: endpoint.Label,
		Type:         model.Deposit,
		Amount:       100000,
		Number:       "204",
		TransactedAt: time.Date(2026, time.July, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.InsertTransaction(ctx, txn))

	assert.NotEmpty(t, txn.ID)
	assert.Equal(t, model.DefaultCurrency, txn.Currency)
	assert.Equal(t, model.StatusUnknown, txn.Status)
	assert.NotEmpty(t, txn.Fingerprint)

	t.Run("names are resolved on listing", func(t *testing.T) {
		txns, err := store.ListTransactions(ctx)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "Checking", txns[0].AccountName)
		assert.Equal(t, "Employer", txns[0].EndpointName)
		assert.Equal(t, "204", txns[0].Number)
	})

	t.Run("fingerprint lookup", func(t *testing.T) {
		exists, err := store.FingerprintExists(ctx, txn.Fingerprint)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = store.FingerprintExists(ctx, "no-such-fingerprint")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestInsertTransactionValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	user := seedUser(t, store)
	account := seedAccount(t, store, user.ID, "Checking", true)

	base := model.Transaction{
		UserID:       user.ID,
		AccountID:    account.ID,
		EndpointID:   "ep-1",
		Type:         model.Deposit,
		Amount:       100,
		TransactedAt: time.Now(),
	}

	tests := []struct {
		name    string
		mutate  func(*model.Transaction)
		wantErr error
	}{
		{
			name:    "zero amount",
			mutate:  func(x *model.Transaction) { x.Amount = 0 },
			wantErr: nil,
		},
		{
			name:    "unknown type",
			mutate:  func(x *model.Transaction) { x.Type = "loan" },
			wantErr: nil,
		},
		{
			name: "deposit without endpoint",
			mutate: func(x *model.Transaction) {
				x.EndpointID = ""
			},
			wantErr: common.ErrMissingCounterparty,
		},
		{
			name: "transfer without mirror account",
			mutate: func(x *model.Transaction) {
				x.Type = model.TransferOut
				x.EndpointID = ""
			},
			wantErr: common.ErrMissingCounterparty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := base
			tt.mutate(&txn)
			err := store.InsertTransaction(ctx, &txn)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestInsertTransferPair(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	user := seedUser(t, store)
	checking := seedAccount(t, store, user.ID, "Checking", true)
	savings := seedAccount(t, store, user.ID, "Savings", false)
	at := time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)

	pair := func(amount int64) (*model.Transaction, *model.Transaction) {
		out := &model.Transaction{
			UserID: user.ID, AccountID: checking.ID, TransferAccountID: savings.ID,
			Type: model.TransferOut, Amount: amount, TransactedAt: at,
		}
		in := &model.Transaction{
			UserID: user.ID, AccountID: savings.ID, TransferAccountID: checking.ID,
			Type: model.TransferIn, Amount: amount, TransactedAt: at,
		}
		return out, in
	}

	t.Run("writes both records atomically", func(t *testing.T) {
		out, in := pair(5000)
		require.NoError(t, store.InsertTransferPair(ctx, out, in))

		txns, err := store.ListTransactions(ctx)
		require.NoError(t, err)
		assert.Len(t, txns, 2)
	})

	t.Run("rejects mismatched amounts", func(t *testing.T) {
		out, in := pair(5000)
		in.Amount = 4999
		assert.Error(t, store.InsertTransferPair(ctx, out, in))
	})

	t.Run("rejects unmirrored accounts", func(t *testing.T) {
		out, in := pair(5000)
		in.TransferAccountID = savings.ID
		assert.Error(t, store.InsertTransferPair(ctx, out, in))
	})

	t.Run("rejects wrong types", func(t *testing.T) {
		out, in := pair(5000)
		in.Type = model.Deposit
		in.EndpointID = "ep-1"
		assert.Error(t, store.InsertTransferPair(ctx, out, in))
	})
}

func TestAccountBalanceAndNetWorth(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	user := seedUser(t, store)
	checking := seedAccount(t, store, user.ID, "Checking", true)
	savings := seedAccount(t, store, user.ID, "Savings", false)
	endpoint, err := store.FindOrCreateEndpoint(ctx, user.ID, "Employer")
	require.NoError(t, err)

	day := func(d int) time.Time {
		return time.Date(2026, time.July, d, 12, 0, 0, 0, time.UTC)
	}

	require.NoError(t, store.InsertTransaction(ctx, &model.Transaction{
		UserID: user.ID, AccountID: checking.ID, EndpointID: endpoint.ID,
		Type: model.Deposit, Amount: 100000, TransactedAt: day(1),
	}))
	require.NoError(t, store.InsertTransaction(ctx, &model.Transaction{
		UserID: user.ID, AccountID: checking.ID, EndpointID: endpoint.ID,
		Type: model.Withdrawal, Amount: 25000, TransactedAt: day(5),
	}))
	require.NoError(t, store.InsertTransferPair(ctx,
		&model.Transaction{
			UserID: user.ID, AccountID: checking.ID, TransferAccountID: savings.ID,
			Type: model.TransferOut, Amount: 30000, TransactedAt: day(8),
		},
		&model.Transaction{
			UserID: user.ID, AccountID: savings.ID, TransferAccountID: checking.ID,
			Type: model.TransferIn, Amount: 30000, TransactedAt: day(8),
		},
	))

	t.Run("per-account balances", func(t *testing.T) {
		got, err := store.AccountBalance(ctx, checking.ID, day(10))
		require.NoError(t, err)
		assert.Equal(t, int64(45000), got)

		got, err = store.AccountBalance(ctx, savings.ID, day(10))
		require.NoError(t, err)
		assert.Equal(t, int64(30000), got)
	})

	t.Run("as-of date excludes later activity", func(t *testing.T) {
		got, err := store.AccountBalance(ctx, checking.ID, day(4))
		require.NoError(t, err)
		assert.Equal(t, int64(100000), got)
	})

	t.Run("transfers cancel out of net worth", func(t *testing.T) {
		got, err := store.NetWorth(ctx, user.ID, day(10))
		require.NoError(t, err)
		assert.Equal(t, int64(75000), got)
	})
}
