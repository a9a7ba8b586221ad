// Package testutil provides shared helpers for storage-backed tests.
package testutil

import (
	"context"
	"testing"

	"github.com/mny-engine/mny/internal/model"
	"github.com/mny-engine/mny/internal/storage"
)

// NewTestStorage creates a migrated in-memory SQLite store that closes
// itself when the test ends.
func NewTestStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// SeedUser creates a user for tests.
func SeedUser(t *testing.T, store *storage.SQLiteStorage, email string) *model.User {
	t.Helper()

	user := &model.User{Email: email}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// SeedAccount creates an account for tests.
func SeedAccount(t *testing.T, store *storage.SQLiteStorage, userID, name string, isDefault bool) *model.Account {
	t.Helper()

	account := &model.Account{UserID: userID, Name: name, IsDefault: isDefault}
	if err := store.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
	return account
}
