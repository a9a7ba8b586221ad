package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mny-engine/mny/internal/model"
)

const transactionColumns = `
	t.id, t.user_id, t.account_id, a.name,
	COALESCE(t.endpoint_id, ''), COALESCE(e.label, ''),
	COALESCE(t.transfer_account_id, ''), COALESCE(ta.name, ''),
	COALESCE(t.category_id, ''), COALESCE(c.name, ''),
	t.type, t.amount, t.currency, t.number, t.transacted_at, t.status, t.fingerprint`

const transactionJoins = `
	FROM transactions t
	JOIN accounts a ON a.id = t.account_id
	LEFT JOIN transaction_endpoints e ON e.id = t.endpoint_id
	LEFT JOIN accounts ta ON ta.id = t.transfer_account_id
	LEFT JOIN categories c ON c.id = t.category_id`

// InsertTransaction saves a single transaction, assigning an ID and
// fingerprint if unset. Status defaults to unknown.
func (s *SQLiteStorage) InsertTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.insertTransactionTx(ctx, tx, txn); err != nil {
		return err
	}

	return tx.Commit()
}

// InsertTransferPair atomically saves a transfer_out record and its
// transfer_in mirror. Both inserts share one database transaction: if the
// second write fails nothing is persisted and the error is surfaced.
func (s *SQLiteStorage) InsertTransferPair(ctx context.Context, out, in *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(out); err != nil {
		return fmt.Errorf("invalid transfer_out record: %w", err)
	}
	if err := validateTransaction(in); err != nil {
		return fmt.Errorf("invalid transfer_in record: %w", err)
	}
	if out.Type != model.TransferOut || in.Type != model.TransferIn {
		return fmt.Errorf("transfer pair must be transfer_out + transfer_in, got %s + %s", out.Type, in.Type)
	}
	if out.Amount != in.Amount {
		return fmt.Errorf("transfer pair amounts differ: %d != %d", out.Amount, in.Amount)
	}
	if out.AccountID != in.TransferAccountID || in.AccountID != out.TransferAccountID {
		return fmt.Errorf("transfer pair account references are not mirrored")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.insertTransactionTx(ctx, tx, out); err != nil {
		return fmt.Errorf("failed to write transfer_out: %w", err)
	}
	if err := s.insertTransactionTx(ctx, tx, in); err != nil {
		return fmt.Errorf("failed to write transfer_in mirror: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStorage) insertTransactionTx(ctx context.Context, tx *sql.Tx, txn *model.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if txn.Currency == "" {
		txn.Currency = model.DefaultCurrency
	}
	if txn.Status == "" {
		txn.Status = model.StatusUnknown
	}
	if txn.Fingerprint == "" {
		txn.Fingerprint = txn.GenerateFingerprint()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (
			id, user_id, account_id, endpoint_id, transfer_account_id,
			category_id, type, amount, currency, number, transacted_at, status, fingerprint
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.UserID,
		txn.AccountID,
		nullable(txn.EndpointID),
		nullable(txn.TransferAccountID),
		nullable(txn.CategoryID),
		string(txn.Type),
		txn.Amount,
		txn.Currency,
		txn.Number,
		txn.TransactedAt,
		string(txn.Status),
		txn.Fingerprint,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
	}
	return nil
}

// ListTransactions returns the full transaction universe ordered by
// occurrence time, with account, endpoint and category names resolved.
func (s *SQLiteStorage) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+transactionJoins+`
		 ORDER BY t.transacted_at ASC, t.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var typ, status string
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.AccountID, &t.AccountName,
			&t.EndpointID, &t.EndpointName,
			&t.TransferAccountID, &t.TransferAccountName,
			&t.CategoryID, &t.CategoryName,
			&typ, &t.Amount, &t.Currency, &t.Number, &t.TransactedAt, &status, &t.Fingerprint,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Type = model.TransactionType(typ)
		t.Status = model.Status(status)
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// FingerprintExists reports whether a transaction with the given
// fingerprint is already stored. Imports use this to skip duplicates.
func (s *SQLiteStorage) FingerprintExists(ctx context.Context, fingerprint string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(fingerprint, "fingerprint"); err != nil {
		return false, err
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM transactions WHERE fingerprint = ?`, fingerprint).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up fingerprint: %w", err)
	}
	return n > 0, nil
}
