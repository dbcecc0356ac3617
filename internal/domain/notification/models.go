// Package notification delivers push notifications about credential health
// to the user's registered devices.
package notification

import (
	"errors"
	"time"
)

var (
	ErrInvalidToken = errors.New("device token is required")
)

// Device is a registered push notification target.
type Device struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Token     string    `json:"-"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RegisterDeviceParams carries the fields for a device registration.
type RegisterDeviceParams struct {
	ID     string
	UserID int64
	Token  string
}

// Validate validates the registration parameters.
func (p RegisterDeviceParams) Validate() error {
	if p.ID == "" {
		return errors.New("device ID is required")
	}
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if p.Token == "" {
		return ErrInvalidToken
	}
	return nil
}
