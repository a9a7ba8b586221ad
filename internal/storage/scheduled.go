package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/mny-engine/mny/internal/common"
	"github.com/mny-engine/mny/internal/model"
	"github.com/mny-engine/mny/internal/schedule"
)

// InsertScheduledTransaction saves a scheduled transaction template.
// Exactly one of On and Schedule must be set; the recurrence rules are
// serialized as JSON.
func (s *SQLiteStorage) InsertScheduledTransaction(ctx context.Context, st *model.ScheduledTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("scheduled transaction cannot be nil")
	}
	if st.Amount <= 0 {
		return fmt.Errorf("scheduled amount must be positive, got %d", st.Amount)
	}
	if (st.On == nil) == (st.Schedule == nil) {
		return fmt.Errorf("scheduled transaction requires exactly one of a date or a schedule")
	}
	switch st.Type {
	case model.Deposit, model.Withdrawal:
		if st.EndpointID == "" {
			return fmt.Errorf("%w: scheduled %s requires a transaction endpoint", common.ErrMissingCounterparty, st.Type)
		}
	case model.TransferOut:
		if st.TransferAccountID == "" {
			return fmt.Errorf("%w: scheduled transfer requires a destination account", common.ErrMissingCounterparty)
		}
	default:
		return fmt.Errorf("unknown scheduled transaction type %q", st.Type)
	}

	var repeats sql.NullString
	if st.Schedule != nil {
		if err := st.Schedule.Validate(); err != nil {
			return fmt.Errorf("invalid schedule: %w", err)
		}
		data, err := json.Marshal(st.Schedule)
		if err != nil {
			return fmt.Errorf("failed to encode schedule: %w", err)
		}
		repeats = sql.NullString{String: string(data), Valid: true}
	}

	var onDate sql.NullTime
	if st.On != nil {
		onDate = sql.NullTime{Time: *st.On, Valid: true}
	}

	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.Currency == "" {
		st.Currency = model.DefaultCurrency
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_transactions (
			id, user_id, account_id, endpoint_id, transfer_account_id,
			category_id, type, amount, currency, on_date, repeats
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID,
		st.UserID,
		st.AccountID,
		nullable(st.EndpointID),
		nullable(st.TransferAccountID),
		nullable(st.CategoryID),
		string(st.Type),
		st.Amount,
		st.Currency,
		onDate,
		repeats,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scheduled transaction: %w", err)
	}
	return nil
}

// ListScheduledTransactions returns a user's scheduled transaction
// templates in creation order, with referenced names resolved.
func (s *SQLiteStorage) ListScheduledTransactions(ctx context.Context, userID string) ([]model.ScheduledTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			st.id, st.user_id, st.account_id, a.name,
			COALESCE(st.endpoint_id, ''), COALESCE(e.label, ''),
			COALESCE(st.transfer_account_id, ''), COALESCE(ta.name, ''),
			COALESCE(st.category_id, ''), COALESCE(c.name, ''),
			st.type, st.amount, st.currency, st.on_date, st.repeats
		FROM scheduled_transactions st
		JOIN accounts a ON a.id = st.account_id
		LEFT JOIN transaction_endpoints e ON e.id = st.endpoint_id
		LEFT JOIN accounts ta ON ta.id = st.transfer_account_id
		LEFT JOIN categories c ON c.id = st.category_id
		WHERE st.user_id = ?
		ORDER BY st.created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var scheduled []model.ScheduledTransaction
	for rows.Next() {
		var st model.ScheduledTransaction
		var typ string
		var onDate sql.NullTime
		var repeats sql.NullString
		if err := rows.Scan(
			&st.ID, &st.UserID, &st.AccountID, &st.AccountName,
			&st.EndpointID, &st.EndpointName,
			&st.TransferAccountID, &st.TransferAccountName,
			&st.CategoryID, &st.CategoryName,
			&typ, &st.Amount, &st.Currency, &onDate, &repeats,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled transaction: %w", err)
		}
		st.Type = model.TransactionType(typ)
		if onDate.Valid {
			t := onDate.Time
			st.On = &t
		}
		if repeats.Valid {
			var sched schedule.Schedule
			if err := json.Unmarshal([]byte(repeats.String), &sched); err != nil {
				return nil, fmt.Errorf("failed to decode schedule for %s: %w", st.ID, err)
			}
			st.Schedule = &sched
		}
		scheduled = append(scheduled, st)
	}
	return scheduled, rows.Err()
}
