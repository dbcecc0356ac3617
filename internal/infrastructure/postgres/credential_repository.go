package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/domain/credential"
)

// CredentialRepository implements the credential.Repository interface for PostgreSQL
type CredentialRepository struct {
	db *DB
}

// NewCredentialRepository creates a new PostgreSQL credential repository
func NewCredentialRepository(db *DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

const credentialColumns = `id, user_id, item_id, access_token, status, last_error, created_at, updated_at`

// Create persists a new provider credential
func (r *CredentialRepository) Create(ctx context.Context, params credential.CreateParams) (*credential.Credential, error) {
	query := `
		INSERT INTO credentials (id, user_id, item_id, access_token, status)
		VALUES ($1, $2, $3, $4, 'active')
		RETURNING ` + credentialColumns

	cred, err := scanCredential(r.db.QueryRowContext(ctx, query, params.ID, params.UserID, params.ItemID, params.AccessToken))
	if err != nil {
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	return cred, nil
}

// GetByID retrieves a credential by id. Returns (nil, nil) when no row matches.
func (r *CredentialRepository) GetByID(ctx context.Context, id string) (*credential.Credential, error) {
	return r.getOne(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE id = $1`, id)
}

// GetActiveByUserID retrieves the user's active credential.
// Returns (nil, nil) when the user has none.
func (r *CredentialRepository) GetActiveByUserID(ctx context.Context, userID int64) (*credential.Credential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM credentials
		WHERE user_id = $1 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.getOne(ctx, query, userID)
}

// GetByItemID retrieves a credential by the provider's item id.
// Returns (nil, nil) when no row matches.
func (r *CredentialRepository) GetByItemID(ctx context.Context, itemID string) (*credential.Credential, error) {
	return r.getOne(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE item_id = $1`, itemID)
}

// SetStatus updates the lifecycle status of a credential
func (r *CredentialRepository) SetStatus(ctx context.Context, id string, status credential.Status) error {
	query := `UPDATE credentials SET status = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to set credential status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check status update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("credential %s not found", id)
	}

	return nil
}

// MarkError moves a credential to the error state and records the provider's
// error message.
func (r *CredentialRepository) MarkError(ctx context.Context, id string, message string) error {
	query := `
		UPDATE credentials
		SET status = 'error', last_error = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, message)
	if err != nil {
		return fmt.Errorf("failed to mark credential error: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check error update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("credential %s not found", id)
	}

	return nil
}

// ListActiveUserIDs returns the distinct ids of users with an active
// credential. Used by the scheduler to enumerate sync work.
func (r *CredentialRepository) ListActiveUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM credentials WHERE status = 'active' ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", err)
	}

	return userIDs, nil
}

func (r *CredentialRepository) getOne(ctx context.Context, query string, arg any) (*credential.Credential, error) {
	cred, err := scanCredential(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return cred, nil
}

func scanCredential(row rowScanner) (*credential.Credential, error) {
	var cred credential.Credential
	var status string
	var lastError sql.NullString

	err := row.Scan(
		&cred.ID, &cred.UserID, &cred.ItemID, &cred.AccessToken,
		&status, &lastError, &cred.CreatedAt, &cred.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cred.Status = credential.Status(status)
	if lastError.Valid {
		cred.LastError = lastError.String
	}

	return &cred, nil
}
