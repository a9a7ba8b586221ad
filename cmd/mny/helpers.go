package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/mny-engine/mny/internal/common"
	"github.com/mny-engine/mny/internal/ledger"
	"github.com/mny-engine/mny/internal/model"
	"github.com/mny-engine/mny/internal/storage"
)

// openStorage opens (and migrates) the configured database.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	path := viper.GetString("database.path")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, ".local", "share", "mny", "mny.db")
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// currentUser resolves the acting user by configured email, creating the
// user on first use.
func currentUser(ctx context.Context, store *storage.SQLiteStorage) (*model.User, error) {
	email := viper.GetString("user.email")
	if email == "" {
		return nil, common.NewUserError("no user configured; set --user or MNY_USER_EMAIL", common.ErrMissingConfig)
	}

	user, err := store.GetUserByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		user = &model.User{Email: email}
		if createErr := store.CreateUser(ctx, user); createErr != nil {
			return nil, createErr
		}
		return user, nil
	}
	return user, err
}

// ledgerFor opens the store and builds a ledger plus the acting user.
// The caller must close the returned store.
func ledgerFor(ctx context.Context) (*storage.SQLiteStorage, *ledger.Ledger, *model.User, error) {
	store, err := openStorage(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	user, err := currentUser(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}
	return store, ledger.New(store), user, nil
}

// parseCents converts a decimal money argument like "123.45" to cents.
func parseCents(arg string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(arg, "$"))
	if err != nil {
		return 0, common.NewUserError(fmt.Sprintf("invalid amount %q", arg), err)
	}
	cents := d.Mul(decimal.NewFromInt(100)).IntPart()
	if cents <= 0 {
		return 0, common.NewUserError("amount must be positive", nil)
	}
	return cents, nil
}

// parseSignedCents is parseCents without the positivity requirement, for
// balances that may legitimately be negative.
func parseSignedCents(arg string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(arg, "$"))
	if err != nil {
		return 0, common.NewUserError(fmt.Sprintf("invalid amount %q", arg), err)
	}
	return d.Mul(decimal.NewFromInt(100)).IntPart(), nil
}

// parseDateFlag parses a --date style value; empty means zero time.
func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", value), err)
	}
	return t, nil
}
