package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionType identifies the direction and counterparty class of a
// transaction.
type TransactionType string

// Transaction types. Transfers always exist as a mirrored pair: the out
// record on the sending account and the in record on the receiving one.
const (
	Deposit     TransactionType = "deposit"
	Withdrawal  TransactionType = "withdrawal"
	TransferOut TransactionType = "transfer_out"
	TransferIn  TransactionType = "transfer_in"
)

// Status is the reconciliation state of a persisted transaction.
type Status string

// Transaction statuses.
const (
	StatusUnknown    Status = "unknown"
	StatusReconciled Status = "reconciled"
	StatusCleared    Status = "cleared"
)

// Transaction is a single monetary event against an account. Amount is
// always positive minor units (cents); the sign is derived from Type.
// Simulated transactions produced by forecasting carry no ID and no Status.
type Transaction struct {
	TransactedAt        time.Time
	ID                  string
	UserID              string
	AccountID           string
	AccountName         string
	EndpointID          string // counterparty endpoint for deposits/withdrawals
	EndpointName        string
	TransferAccountID   string // mirror account for transfers
	TransferAccountName string
	CategoryID          string
	CategoryName        string
	Type                TransactionType
	Currency            string
	Number              string // check or reference number from imports
	Status              Status
	Fingerprint         string
	Amount              int64
}

// AdjustedAmount returns the amount signed by transaction type: inflows
// (deposit, transfer_in) are positive, outflows negative.
func (t *Transaction) AdjustedAmount() int64 {
	if t.Type == Deposit || t.Type == TransferIn {
		return t.Amount
	}
	return -t.Amount
}

// CounterpartyName is the display name of the other side of this
// transaction: the endpoint label for deposits and withdrawals, the mirror
// account name for transfers.
func (t *Transaction) CounterpartyName() string {
	switch t.Type {
	case Deposit, Withdrawal:
		return t.EndpointName
	case TransferOut, TransferIn:
		return t.TransferAccountName
	}
	return ""
}

// FromName is the display name of where the money came from.
func (t *Transaction) FromName() string {
	switch t.Type {
	case Deposit:
		return t.EndpointName
	case TransferIn:
		return t.TransferAccountName
	default:
		return t.AccountName
	}
}

// ToName is the display name of where the money went.
func (t *Transaction) ToName() string {
	switch t.Type {
	case Withdrawal:
		return t.EndpointName
	case TransferOut:
		return t.TransferAccountName
	default:
		return t.AccountName
	}
}

// GenerateFingerprint creates a deterministic identity string for duplicate
// detection. Two transactions with equal fingerprints are considered the
// same record for import purposes.
func (t *Transaction) GenerateFingerprint() string {
	data := fmt.Sprintf("%s:%s:%s:%d:%s",
		t.TransactedAt.Format("2006-01-02"),
		t.AccountID,
		t.Type,
		t.Amount,
		t.CounterpartyName())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// DayOf normalizes a timestamp to its calendar day. Day-keyed maps use the
// result directly, so the location is fixed to UTC for key stability.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the first instant of the timestamp's calendar day in
// its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of the timestamp's calendar day in
// its own location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
