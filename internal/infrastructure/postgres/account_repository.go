package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"fintrack/internal/domain/account"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// ResolveOrCreate finds or creates the local account for a provider account.
// The DO UPDATE arm only touches updated_at, so concurrent callers all get
// the same winning row back, and (xmax = 0) tells inserts from updates
// without a second round trip.
func (r *AccountRepository) ResolveOrCreate(ctx context.Context, params account.ResolveParams) (*account.Account, bool, error) {
	query := `
		INSERT INTO accounts (id, user_id, credential_id, provider_account_id, name, account_type, subtype, balance, available_balance, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP)
		ON CONFLICT (credential_id, provider_account_id)
		DO UPDATE SET updated_at = CURRENT_TIMESTAMP
		RETURNING id, user_id, credential_id, provider_account_id, name, account_type, subtype,
		          balance, available_balance, last_updated, created_at, updated_at,
		          (xmax = 0) AS inserted
	`

	var acc account.Account
	var created bool

	// subtype is NOT NULL with an empty-string default, so the empty
	// domain value goes in and comes out as ''.
	err := r.db.QueryRowContext(
		ctx, query,
		params.ID, params.UserID, params.CredentialID, params.ProviderAccountID,
		params.Name, params.AccountType, params.Subtype,
		params.Balance, params.AvailableBalance,
	).Scan(
		&acc.ID, &acc.UserID, &acc.CredentialID, &acc.ProviderAccountID,
		&acc.Name, &acc.AccountType, &acc.Subtype,
		&acc.Balance, &acc.AvailableBalance, &acc.LastUpdated,
		&acc.CreatedAt, &acc.UpdatedAt, &created,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve account: %w", err)
	}

	return &acc, created, nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.Account, error) {
	query := `
		SELECT id, user_id, credential_id, provider_account_id, name, account_type, subtype,
		       balance, available_balance, last_updated, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	acc, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// ListByUserID retrieves all accounts for a specific user
func (r *AccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	query := `
		SELECT id, user_id, credential_id, provider_account_id, name, account_type, subtype,
		       balance, available_balance, last_updated, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, userID)
}

// ListByCredentialID retrieves all accounts linked through a credential
func (r *AccountRepository) ListByCredentialID(ctx context.Context, credentialID string) ([]*account.Account, error) {
	query := `
		SELECT id, user_id, credential_id, provider_account_id, name, account_type, subtype,
		       balance, available_balance, last_updated, created_at, updated_at
		FROM accounts
		WHERE credential_id = $1
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, credentialID)
}

func (r *AccountRepository) list(ctx context.Context, query string, arg any) ([]*account.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// UpdateBalances applies balance updates keyed by provider account id.
// Updates whose provider account has no local row under the credential fall
// through the join and are skipped, which is the intended asymmetry: balance
// refresh never creates accounts.
func (r *AccountRepository) UpdateBalances(ctx context.Context, credentialID string, updates []account.BalanceUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	providerIDs := make([]string, len(updates))
	balances := make([]string, len(updates))
	available := make([]string, len(updates))
	for i, u := range updates {
		providerIDs[i] = u.ProviderAccountID
		balances[i] = u.Balance.String()
		available[i] = u.AvailableBalance.String()
	}

	query := `
		UPDATE accounts AS a
		SET balance = v.balance::numeric,
		    available_balance = v.available_balance::numeric,
		    last_updated = CURRENT_TIMESTAMP,
		    updated_at = CURRENT_TIMESTAMP
		FROM (
			SELECT unnest($2::text[]) AS provider_account_id,
			       unnest($3::text[]) AS balance,
			       unnest($4::text[]) AS available_balance
		) AS v
		WHERE a.credential_id = $1
		  AND a.provider_account_id = v.provider_account_id
	`

	result, err := r.db.ExecContext(ctx, query, credentialID, pq.Array(providerIDs), pq.Array(balances), pq.Array(available))
	if err != nil {
		return 0, fmt.Errorf("failed to update balances: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count updated balances: %w", err)
	}

	return int(n), nil
}

// Delete removes an account
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*account.Account, error) {
	var acc account.Account

	err := row.Scan(
		&acc.ID, &acc.UserID, &acc.CredentialID, &acc.ProviderAccountID,
		&acc.Name, &acc.AccountType, &acc.Subtype,
		&acc.Balance, &acc.AvailableBalance, &acc.LastUpdated,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &acc, nil
}
