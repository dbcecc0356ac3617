package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/domain/category"
)

// Domain errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrConstraintViolation wraps a database uniqueness violation, mostly a
	// duplicate provider transaction id.
	ErrConstraintViolation = errors.New("constraint violation")
)

// Transaction is a stored transaction. Synced rows carry the provider's
// transaction id; manually entered rows leave it nil. Amounts follow the
// provider's convention: outflows positive, inflows negative.
type Transaction struct {
	ID                    string            `json:"id"`
	UserID                int64             `json:"userId"`
	AccountID             string            `json:"accountId"`
	ProviderTransactionID *string           `json:"providerTransactionId,omitempty"`
	Amount                decimal.Decimal   `json:"amount"`
	Date                  time.Time         `json:"date"`
	Description           string            `json:"description"`
	MerchantName          string            `json:"merchantName,omitempty"`
	Category              category.Category `json:"category"`
	Pending               bool              `json:"pending"`
	CreatedAt             time.Time         `json:"createdAt"`
	UpdatedAt             time.Time         `json:"updatedAt"`
}

// CreateParams carries the fields for a manually entered transaction. Manual
// rows have no provider transaction id and are never touched by sync.
type CreateParams struct {
	ID           string
	UserID       int64
	AccountID    string
	Amount       decimal.Decimal
	Date         time.Time
	Description  string
	MerchantName string
	Category     category.Category
}

// UpsertParams is used when reconciling provider transactions into the store.
type UpsertParams struct {
	ID                    string
	UserID                int64
	AccountID             string
	ProviderTransactionID string
	Amount                decimal.Decimal
	Date                  time.Time
	Description           string
	MerchantName          string
	Category              category.Category
	Pending               bool
}

// UpdateParams carries optional field updates for an existing transaction.
type UpdateParams struct {
	Amount       *decimal.Decimal
	Date         *time.Time
	Description  *string
	MerchantName *string
	Category     *category.Category
	Pending      *bool
}

// ListFilter narrows a transaction listing.
type ListFilter struct {
	AccountID string
	StartDate *time.Time
	EndDate   *time.Time
	Category  category.Category
	Limit     int
	Offset    int
}
