package credential

import "context"

// Repository persists provider credentials. Find-style lookups return
// (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Credential, error)
	GetByID(ctx context.Context, id string) (*Credential, error)
	GetActiveByUserID(ctx context.Context, userID int64) (*Credential, error)
	GetByItemID(ctx context.Context, itemID string) (*Credential, error)
	SetStatus(ctx context.Context, id string, status Status) error
	MarkError(ctx context.Context, id string, message string) error
	ListActiveUserIDs(ctx context.Context) ([]int64, error)
}
