// Package credential holds the provider link credentials for a user. A
// credential pairs the provider's item identifier with the access token
// needed to fetch that item's accounts and transactions.
package credential

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a provider credential.
type Status string

const (
	StatusActive            Status = "active"
	StatusError             Status = "error"
	StatusPendingExpiration Status = "pending_expiration"
)

// ErrNoLinkedConnection is returned when an operation requires an active
// provider credential and the user has none.
var ErrNoLinkedConnection = errors.New("no linked provider connection")

// Credential is a stored provider link.
type Credential struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	ItemID      string    `json:"item_id"`
	AccessToken string    `json:"-"`
	Status      Status    `json:"status"`
	LastError   string    `json:"last_error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateParams carries the fields needed to persist a new credential.
type CreateParams struct {
	ID          string
	UserID      int64
	ItemID      string
	AccessToken string
}

// IsActive reports whether the credential can be used for provider calls.
func (c *Credential) IsActive() bool {
	return c.Status == StatusActive
}
