// Package importer records externally sourced transactions, skipping any
// whose fingerprint is already stored.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/mny-engine/mny/internal/common"
	"github.com/mny-engine/mny/internal/model"
	"github.com/mny-engine/mny/internal/service"
)

// Record is one parsed transaction from an import source. Amount is signed
// cents: positive for money in, negative for money out.
type Record struct {
	Date     time.Time
	Endpoint string
	Number   string
	Status   model.Status
	Amount   int64
}

// Result summarizes an import run.
type Result struct {
	Imported int
	Skipped  int
}

// Importer writes import records into the store with fingerprint dedup.
type Importer struct {
	store service.Storage
	retry service.RetryOptions
}

// New creates an importer over the given store.
func New(store service.Storage) *Importer {
	return &Importer{store: store}
}

// Import records the given transactions against the named account (empty
// means the user's default account). Records whose fingerprint already
// exists in the store are skipped, so re-importing the same file is
// idempotent.
func (i *Importer) Import(ctx context.Context, userID, accountName string, records []Record) (Result, error) {
	var result Result

	var account *model.Account
	var err error
	if accountName == "" {
		account, err = i.store.DefaultAccount(ctx, userID)
	} else {
		account, err = i.store.GetAccountByName(ctx, userID, accountName)
	}
	if err != nil {
		return result, fmt.Errorf("%w: %v", common.ErrNoAccount, err)
	}

	for n, rec := range records {
		if rec.Endpoint == "" {
			return result, fmt.Errorf("record %d: %w: no payee", n+1, common.ErrMissingCounterparty)
		}
		if rec.Amount == 0 {
			common.LogDebug("Skipping zero-amount record", common.Fields{"record": n + 1})
			result.Skipped++
			continue
		}

		typ := model.Deposit
		amount := rec.Amount
		if amount < 0 {
			typ = model.Withdrawal
			amount = -amount
		}

		endpoint, err := i.store.FindOrCreateEndpoint(ctx, userID, rec.Endpoint)
		if err != nil {
			return result, fmt.Errorf("record %d: %w", n+1, err)
		}

		status := rec.Status
		if status == "" {
			status = model.StatusUnknown
		}

		txn := &model.Transaction{
			UserID:       userID,
			AccountID:    account.ID,
			AccountName:  account.Name,
			EndpointID:   endpoint.ID,
			EndpointName: endpoint.Label,
			Type:         typ,
			Amount:       amount,
			Number:       rec.Number,
			TransactedAt: rec.Date,
			Status:       status,
		}
		txn.Fingerprint = txn.GenerateFingerprint()

		exists, err := i.store.FingerprintExists(ctx, txn.Fingerprint)
		if err != nil {
			return result, fmt.Errorf("record %d: %w", n+1, err)
		}
		if exists {
			result.Skipped++
			continue
		}

		err = common.WithRetry(ctx, func() error {
			return i.store.InsertTransaction(ctx, txn)
		}, i.retry)
		if err != nil {
			return result, fmt.Errorf("record %d: %w", n+1, err)
		}
		result.Imported++
	}

	common.LogInfo("Import complete", common.Fields{
		"account":  account.Name,
		"imported": result.Imported,
		"skipped":  result.Skipped,
	})

	return result, nil
}
