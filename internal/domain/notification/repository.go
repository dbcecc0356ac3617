package notification

import "context"

// Repository persists device registrations.
type Repository interface {
	// UpsertDevice registers a device token, reassigning it if it already
	// belongs to another user.
	UpsertDevice(ctx context.Context, params RegisterDeviceParams) (*Device, error)

	// GetActiveTokensByUserID returns the active device tokens for a user
	GetActiveTokensByUserID(ctx context.Context, userID int64) ([]string, error)

	// DeactivateToken marks a device token inactive. Used when the push
	// service reports the token as no longer registered.
	DeactivateToken(ctx context.Context, token string) error
}
