package model

// User owns accounts, endpoints, categories and transactions.
type User struct {
	ID    string
	Email string
}

// Account is a named container for transactions. Its balance is always
// derived from its transactions, never stored.
type Account struct {
	ID        string
	UserID    string
	Name      string
	IsDefault bool
}

// TransactionEndpoint is an external counterparty (payer or payee) that is
// not modeled as an internal account.
type TransactionEndpoint struct {
	ID     string
	UserID string
	Label  string
}

// Category labels transactions for reporting. Categories may nest one
// level via ParentID.
type Category struct {
	ID       string
	UserID   string
	ParentID string
	Name     string
}

// Uncategorized is the report sentinel for transactions without a category.
const Uncategorized = "Uncategorized"
