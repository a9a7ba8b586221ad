package storage

import (
	"context"
	"fmt"

	"github.com/mny-engine/mny/internal/common"
	"github.com/mny-engine/mny/internal/model"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	return ctx.Err()
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	return nil
}

// validateTransaction checks the model invariants before anything is
// written: a positive amount, a known type, and the counterparty field the
// type requires.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("transaction cannot be nil")
	}
	if txn.Amount <= 0 {
		return fmt.Errorf("transaction amount must be positive, got %d", txn.Amount)
	}
	if txn.TransactedAt.IsZero() {
		return fmt.Errorf("transaction has no occurrence time")
	}
	if err := validateString(txn.UserID, "user ID"); err != nil {
		return err
	}
	if err := validateString(txn.AccountID, "account ID"); err != nil {
		return err
	}

	switch txn.Type {
	case model.Deposit, model.Withdrawal:
		if txn.EndpointID == "" {
			return fmt.Errorf("%w: %s requires a transaction endpoint", common.ErrMissingCounterparty, txn.Type)
		}
	case model.TransferOut, model.TransferIn:
		if txn.TransferAccountID == "" {
			return fmt.Errorf("%w: %s requires a mirror account", common.ErrMissingCounterparty, txn.Type)
		}
	default:
		return fmt.Errorf("unknown transaction type %q", txn.Type)
	}

	return nil
}
