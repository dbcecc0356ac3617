package transaction

import (
	"context"
)

// Repository defines the interface for transaction data access
type Repository interface {
	// Create inserts a manually entered transaction.
	Create(ctx context.Context, params CreateParams) (*Transaction, error)

	// GetByID retrieves a transaction by its local id. Returns
	// ErrTransactionNotFound when no row matches.
	GetByID(ctx context.Context, id string) (*Transaction, error)

	// GetByProviderID retrieves a transaction by provider transaction id.
	// Returns (nil, nil) when no row matches.
	GetByProviderID(ctx context.Context, providerTransactionID string) (*Transaction, error)

	// UpsertByProviderID inserts the transaction or, when a row with the same
	// provider transaction id exists, overwrites its mutable fields. The
	// boolean reports whether a new row was created.
	UpsertByProviderID(ctx context.Context, params UpsertParams) (*Transaction, bool, error)

	// List retrieves transactions for a user, newest first, narrowed by the
	// filter.
	List(ctx context.Context, userID int64, filter ListFilter) ([]*Transaction, error)

	// CountByUserID returns the number of stored transactions for a user
	CountByUserID(ctx context.Context, userID int64) (int64, error)

	// Update applies the non-nil fields of params to an existing transaction
	Update(ctx context.Context, id string, params UpdateParams) (*Transaction, error)

	// Delete removes a transaction
	Delete(ctx context.Context, id string) error
}
