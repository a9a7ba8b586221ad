package model

import "fmt"

// DefaultCurrency is used when an operation does not name one.
const DefaultCurrency = "usd"

// DisplayCents formats an amount in minor units as a display string, e.g.
// 12345 -> "$123.45". Only USD formatting is implemented; the currency tag
// is carried on transactions but not converted.
func DisplayCents(cents int64, currency string) string {
	_ = currency
	return fmt.Sprintf("$%.2f", float64(cents)/100.0)
}
