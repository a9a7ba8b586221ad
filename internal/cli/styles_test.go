package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mny-engine/mny/internal/model"
	"github.com/mny-engine/mny/internal/report"
)

func TestRenderRowsEmpty(t *testing.T) {
	assert.Contains(t, RenderRows(nil), "No transactions.")
}

func TestRenderRows(t *testing.T) {
	jan := func(d int) time.Time {
		return time.Date(2026, time.January, d, 0, 0, 0, 0, time.UTC)
	}
	out := RenderRows([]report.Row{
		{
			Date: jan(2), Account: "Checking", Type: model.Deposit,
			From: "Employer", To: "Checking", Category: "Salary",
			Amount: "$1000.00", Balance: "$1000.00", Status: model.StatusCleared,
		},
		{
			Date: jan(5), Account: "Joint Savings", Type: model.Withdrawal,
			From: "Joint Savings", To: "Groceries", Category: "Food",
			Amount: "$25.00", Balance: "$975.00", Status: model.StatusUnknown,
		},
	})

	assert.Contains(t, out, "Date")
	assert.Contains(t, out, "Balance")
	assert.Contains(t, out, "2026-01-02")
	assert.Contains(t, out, "$975.00")

	// Columns stay aligned even though the account names differ in
	// length: the amount cells start at the same offset on every row.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	first := lines[len(lines)-2]
	second := lines[len(lines)-1]
	require.Contains(t, first, "$1000.00")
	require.Contains(t, second, "$25.00")
	assert.Equal(t, strings.Index(first, "$1000.00"), strings.Index(second, "$25.00"))
}
