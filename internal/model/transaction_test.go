package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdjustedAmount(t *testing.T) {
	tests := []struct {
		name string
		typ  TransactionType
		want int64
	}{
		{"deposit is positive", Deposit, 2500},
		{"transfer in is positive", TransferIn, 2500},
		{"withdrawal is negative", Withdrawal, -2500},
		{"transfer out is negative", TransferOut, -2500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := Transaction{Type: tt.typ, Amount: 2500}
			assert.Equal(t, tt.want, txn.AdjustedAmount())
		})
	}
}

func TestCounterpartyName(t *testing.T) {
	txn := Transaction{
		Type:                Withdrawal,
		EndpointName:        "Corner Store",
		TransferAccountName: "Savings",
	}
	assert.Equal(t, "Corner Store", txn.CounterpartyName())

	txn.Type = TransferOut
	assert.Equal(t, "Savings", txn.CounterpartyName())
}

func TestFromAndToNames(t *testing.T) {
	tests := []struct {
		name     string
		typ      TransactionType
		wantFrom string
		wantTo   string
	}{
		{"deposit flows endpoint to account", Deposit, "Employer", "Checking"},
		{"withdrawal flows account to endpoint", Withdrawal, "Checking", "Employer"},
		{"transfer out flows account to mirror", TransferOut, "Checking", "Savings"},
		{"transfer in flows mirror to account", TransferIn, "Savings", "Checking"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := Transaction{
				Type:                tt.typ,
				AccountName:         "Checking",
				EndpointName:        "Employer",
				TransferAccountName: "Savings",
			}
			assert.Equal(t, tt.wantFrom, txn.FromName())
			assert.Equal(t, tt.wantTo, txn.ToName())
		})
	}
}

func TestGenerateFingerprint(t *testing.T) {
	base := Transaction{
		TransactedAt: time.Date(2026, time.April, 1, 10, 0, 0, 0, time.UTC),
		AccountID:    "acct-1",
		Type:         Withdrawal,
		Amount:       1299,
		EndpointName: "Corner Store",
	}

	t.Run("identical fields yield identical fingerprints", func(t *testing.T) {
		other := base
		// Time of day does not participate; only the calendar date does.
		other.TransactedAt = time.Date(2026, time.April, 1, 23, 30, 0, 0, time.UTC)
		assert.Equal(t, base.GenerateFingerprint(), other.GenerateFingerprint())
	})

	t.Run("any identity field changes the fingerprint", func(t *testing.T) {
		for name, mutate := range map[string]func(*Transaction){
			"date":         func(x *Transaction) { x.TransactedAt = x.TransactedAt.AddDate(0, 0, 1) },
			"account":      func(x *Transaction) { x.AccountID = "acct-2" },
			"type":         func(x *Transaction) { x.Type = Deposit },
			"amount":       func(x *Transaction) { x.Amount = 1300 },
			"counterparty": func(x *Transaction) { x.EndpointName = "Other Store" },
		} {
			other := base
			mutate(&other)
			assert.NotEqual(t, base.GenerateFingerprint(), other.GenerateFingerprint(), name)
		}
	})
}

func TestDisplayCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{12345, "$123.45"},
		{100, "$1.00"},
		{5, "$0.05"},
		{0, "$0.00"},
		{-2050, "$-20.50"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayCents(tt.cents, DefaultCurrency))
	}
}

func TestDayBoundaries(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	at := time.Date(2026, time.April, 1, 15, 30, 45, 123, loc)

	t.Run("DayOf normalizes to UTC midnight", func(t *testing.T) {
		day := DayOf(at)
		assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), day)
	})

	t.Run("StartOfDay and EndOfDay keep the location", func(t *testing.T) {
		start := StartOfDay(at)
		end := EndOfDay(at)
		assert.Equal(t, loc, start.Location())
		assert.Equal(t, 0, start.Hour())
		assert.Equal(t, 23, end.Hour())
		assert.True(t, start.Before(at) && at.Before(end))
	})
}
