package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mny-engine/mny/internal/common"
	"github.com/mny-engine/mny/internal/model"
)

// CreateUser saves a user, assigning an ID if unset.
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user cannot be nil")
	}
	if err := validateString(user.Email, "email"); err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email) VALUES (?, ?)`,
		user.ID, user.Email)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStorage) GetUser(ctx context.Context, id string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var user model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email FROM users WHERE id = ?`, id).
		Scan(&user.ID, &user.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var user model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email FROM users WHERE email = ?`, email).
		Scan(&user.ID, &user.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// CreateAccount saves an account, assigning an ID if unset.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("account cannot be nil")
	}
	if err := validateString(account.UserID, "user ID"); err != nil {
		return err
	}
	if err := validateString(account.Name, "account name"); err != nil {
		return err
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, name, is_default) VALUES (?, ?, ?, ?)`,
		account.ID, account.UserID, account.Name, account.IsDefault)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by ID.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.scanAccount(s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, is_default FROM accounts WHERE id = ?`, id), id)
}

// GetAccountByName retrieves a user's account by name.
func (s *SQLiteStorage) GetAccountByName(ctx context.Context, userID, name string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.scanAccount(s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, is_default FROM accounts WHERE user_id = ? AND name = ?`,
		userID, name), name)
}

// DefaultAccount returns the user's default account, falling back to the
// oldest account when no default is set.
func (s *SQLiteStorage) DefaultAccount(ctx context.Context, userID string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.scanAccount(s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, is_default FROM accounts
		 WHERE user_id = ? ORDER BY is_default DESC, created_at ASC LIMIT 1`,
		userID), "default")
}

func (s *SQLiteStorage) scanAccount(row *sql.Row, ref string) (*model.Account, error) {
	var account model.Account
	err := row.Scan(&account.ID, &account.UserID, &account.Name, &account.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", ref, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// ListAccounts returns all of a user's accounts ordered by creation time.
func (s *SQLiteStorage) ListAccounts(ctx context.Context, userID string) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, is_default FROM accounts
		 WHERE user_id = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// AccountBalance replays the account's transactions through the end of the
// given day and returns the resulting balance.
func (s *SQLiteStorage) AccountBalance(ctx context.Context, accountID string, asOf time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var balance int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN type IN ('deposit', 'transfer_in') THEN amount ELSE -amount END), 0)
		 FROM transactions WHERE account_id = ? AND transacted_at <= ?`,
		accountID, model.EndOfDay(asOf)).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to derive account balance: %w", err)
	}
	return balance, nil
}

// NetWorth sums the balances of all the user's accounts as of the given
// day.
func (s *SQLiteStorage) NetWorth(ctx context.Context, userID string, asOf time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN t.type IN ('deposit', 'transfer_in') THEN t.amount ELSE -t.amount END), 0)
		 FROM transactions t WHERE t.user_id = ? AND t.transacted_at <= ?`,
		userID, model.EndOfDay(asOf)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to derive net worth: %w", err)
	}
	return total, nil
}

// FindOrCreateEndpoint returns the user's endpoint with the given label,
// creating it if absent.
func (s *SQLiteStorage) FindOrCreateEndpoint(ctx context.Context, userID, label string) (*model.TransactionEndpoint, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(label, "endpoint label"); err != nil {
		return nil, err
	}

	var ep model.TransactionEndpoint
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, label FROM transaction_endpoints WHERE user_id = ? AND label = ?`,
		userID, label).Scan(&ep.ID, &ep.UserID, &ep.Label)
	if err == nil {
		return &ep, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up endpoint: %w", err)
	}

	ep = model.TransactionEndpoint{ID: uuid.NewString(), UserID: userID, Label: label}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO transaction_endpoints (id, user_id, label) VALUES (?, ?, ?)`,
		ep.ID, ep.UserID, ep.Label); err != nil {
		return nil, fmt.Errorf("failed to insert endpoint: %w", err)
	}
	return &ep, nil
}

// GetEndpoint retrieves an endpoint by ID.
func (s *SQLiteStorage) GetEndpoint(ctx context.Context, id string) (*model.TransactionEndpoint, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var ep model.TransactionEndpoint
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, label FROM transaction_endpoints WHERE id = ?`, id).
		Scan(&ep.ID, &ep.UserID, &ep.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("endpoint %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get endpoint: %w", err)
	}
	return &ep, nil
}

// ListEndpoints returns all of a user's endpoints.
func (s *SQLiteStorage) ListEndpoints(ctx context.Context, userID string) ([]model.TransactionEndpoint, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, label FROM transaction_endpoints
		 WHERE user_id = ? ORDER BY label ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list endpoints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var endpoints []model.TransactionEndpoint
	for rows.Next() {
		var ep model.TransactionEndpoint
		if err := rows.Scan(&ep.ID, &ep.UserID, &ep.Label); err != nil {
			return nil, fmt.Errorf("failed to scan endpoint: %w", err)
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, rows.Err()
}

// CreateCategory saves a category, assigning an ID if unset.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("category cannot be nil")
	}
	if err := validateString(category.Name, "category name"); err != nil {
		return err
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, parent_id, name) VALUES (?, ?, ?, ?)`,
		category.ID, category.UserID, nullable(category.ParentID), category.Name)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// GetCategoryByName retrieves a user's category by name.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, userID, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var c model.Category
	var parent sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, parent_id, name FROM categories WHERE user_id = ? AND name = ?`,
		userID, name).Scan(&c.ID, &c.UserID, &parent, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	c.ParentID = parent.String
	return &c, nil
}

// ListCategories returns all of a user's categories.
func (s *SQLiteStorage) ListCategories(ctx context.Context, userID string) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, parent_id, name FROM categories
		 WHERE user_id = ? ORDER BY name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		var parent sql.NullString
		if err := rows.Scan(&c.ID, &c.UserID, &parent, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.ParentID = parent.String
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
