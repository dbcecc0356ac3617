package account

import "context"

// Repository defines the interface for account data access.
// This interface is defined in the domain layer, but implemented in the
// infrastructure layer.
type Repository interface {
	// ResolveOrCreate atomically finds or creates the local account for a
	// provider account. The boolean reports whether a new row was created.
	ResolveOrCreate(ctx context.Context, params ResolveParams) (*Account, bool, error)

	// GetByID retrieves an account by its ID. Returns ErrAccountNotFound
	// when no row matches.
	GetByID(ctx context.Context, id string) (*Account, error)

	// ListByUserID retrieves all accounts for a specific user
	ListByUserID(ctx context.Context, userID int64) ([]*Account, error)

	// ListByCredentialID retrieves all accounts linked through a credential
	ListByCredentialID(ctx context.Context, credentialID string) ([]*Account, error)

	// UpdateBalances applies balance updates to accounts already mapped under
	// the credential, keyed by provider account id. Updates for unknown
	// provider accounts are silently skipped. Returns the number of rows
	// actually updated.
	UpdateBalances(ctx context.Context, credentialID string, updates []BalanceUpdate) (int, error)

	// Delete removes an account
	Delete(ctx context.Context, id string) error
}
