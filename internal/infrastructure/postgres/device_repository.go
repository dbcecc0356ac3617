package postgres

import (
	"context"
	"fmt"

	"fintrack/internal/domain/notification"
)

// DeviceRepository implements the notification.Repository interface for PostgreSQL
type DeviceRepository struct {
	db *DB
}

// NewDeviceRepository creates a new PostgreSQL device repository
func NewDeviceRepository(db *DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// UpsertDevice registers a device token. A token already registered to
// another user is reassigned and reactivated.
func (r *DeviceRepository) UpsertDevice(ctx context.Context, params notification.RegisterDeviceParams) (*notification.Device, error) {
	query := `
		INSERT INTO devices (id, user_id, token, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (token)
		DO UPDATE SET user_id = EXCLUDED.user_id, active = TRUE, updated_at = CURRENT_TIMESTAMP
		RETURNING id, user_id, token, active, created_at, updated_at
	`

	var dev notification.Device
	err := r.db.QueryRowContext(ctx, query, params.ID, params.UserID, params.Token).Scan(
		&dev.ID, &dev.UserID, &dev.Token, &dev.Active, &dev.CreatedAt, &dev.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert device: %w", err)
	}

	return &dev, nil
}

// GetActiveTokensByUserID returns the active device tokens for a user
func (r *DeviceRepository) GetActiveTokensByUserID(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT token FROM devices WHERE user_id = $1 AND active`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating device tokens: %w", err)
	}

	return tokens, nil
}

// DeactivateToken marks a device token inactive
func (r *DeviceRepository) DeactivateToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE devices SET active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to deactivate device token: %w", err)
	}
	return nil
}
