package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mny-engine/mny/internal/common"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a
// fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: users, accounts, endpoints, categories, transactions",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					email TEXT UNIQUE NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id),
					name TEXT NOT NULL,
					is_default INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(user_id, name)
				)`,

				`CREATE TABLE IF NOT EXISTS transaction_endpoints (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id),
					label TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(user_id, label)
				)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id),
					parent_id TEXT REFERENCES categories(id),
					name TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(user_id, name)
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id),
					account_id TEXT NOT NULL REFERENCES accounts(id),
					endpoint_id TEXT REFERENCES transaction_endpoints(id),
					transfer_account_id TEXT REFERENCES accounts(id),
					category_id TEXT REFERENCES categories(id),
					type TEXT NOT NULL,
					amount INTEGER NOT NULL,
					currency TEXT NOT NULL DEFAULT 'usd',
					transacted_at DATETIME NOT NULL,
					status TEXT NOT NULL DEFAULT 'unknown',
					fingerprint TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_transacted_at ON transactions(transacted_at)`,
				`CREATE INDEX idx_transactions_user ON transactions(user_id)`,
				`CREATE INDEX idx_transactions_account ON transactions(account_id)`,
				`CREATE INDEX idx_transactions_fingerprint ON transactions(fingerprint)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Scheduled transactions",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS scheduled_transactions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id),
					account_id TEXT NOT NULL REFERENCES accounts(id),
					endpoint_id TEXT REFERENCES transaction_endpoints(id),
					transfer_account_id TEXT REFERENCES accounts(id),
					category_id TEXT REFERENCES categories(id),
					type TEXT NOT NULL,
					amount INTEGER NOT NULL,
					currency TEXT NOT NULL DEFAULT 'usd',
					on_date DATETIME,
					repeats TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_scheduled_user ON scheduled_transactions(user_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Check numbers on transactions",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`ALTER TABLE transactions ADD COLUMN number TEXT NOT NULL DEFAULT ''`); err != nil {
				return fmt.Errorf("failed to execute query: %w", err)
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}

		// PRAGMA doesn't accept bind parameters
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		common.LogInfo("Applied migration", common.Fields{
			"version":     m.Version,
			"description": m.Description,
		})
	}

	return nil
}
