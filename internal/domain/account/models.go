// Package account manages the mapping between provider-side accounts and
// their local representation.
package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Account types the provider is known to report.
var accountTypes = map[string]struct{}{
	"depository": {},
	"credit":     {},
	"loan":       {},
	"investment": {},
	"other":      {},
}

// Domain errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidInput       = errors.New("invalid input")
)

// Account is a locally stored bank account linked through a provider
// credential. ProviderAccountID is the provider's identifier for the account
// and is unique within a credential.
type Account struct {
	ID                string          `json:"id"`
	UserID            int64           `json:"userId"`
	CredentialID      string          `json:"credentialId"`
	ProviderAccountID string          `json:"providerAccountId"`
	Name              string          `json:"name"`
	AccountType       string          `json:"accountType"`
	Subtype           string          `json:"subtype,omitempty"`
	Balance           decimal.Decimal `json:"balance"`
	AvailableBalance  decimal.Decimal `json:"availableBalance"`
	LastUpdated       time.Time       `json:"lastUpdated"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Snapshot is the provider's current view of one account, as returned by an
// accounts fetch.
type Snapshot struct {
	ProviderAccountID string
	Name              string
	AccountType       string
	Subtype           string
	Balance           decimal.Decimal
	AvailableBalance  decimal.Decimal
}

// ResolveParams contains parameters for resolving or creating a local
// account for a provider account.
type ResolveParams struct {
	ID                string
	UserID            int64
	CredentialID      string
	ProviderAccountID string
	Name              string
	AccountType       string
	Subtype           string
	Balance           decimal.Decimal
	AvailableBalance  decimal.Decimal
}

// Validate validates the resolve parameters.
func (p ResolveParams) Validate() error {
	if p.ID == "" {
		return errors.New("account ID is required")
	}
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if p.CredentialID == "" {
		return errors.New("credential ID is required")
	}
	if p.ProviderAccountID == "" {
		return errors.New("provider account ID is required")
	}
	if p.AccountType != "" && !IsValidAccountType(p.AccountType) {
		return ErrInvalidAccountType
	}
	return nil
}

// BalanceUpdate carries new balances for one provider account.
type BalanceUpdate struct {
	ProviderAccountID string
	Balance           decimal.Decimal
	AvailableBalance  decimal.Decimal
}

// IsValidAccountType checks if the provided account type is valid.
func IsValidAccountType(t string) bool {
	_, ok := accountTypes[t]
	return ok
}
