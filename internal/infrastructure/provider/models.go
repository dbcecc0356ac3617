// Package provider holds the HTTP client for the account aggregation
// provider and the wire types it returns.
package provider

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account represents an account from the provider API
type Account struct {
	AccountID string   `json:"account_id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Subtype   string   `json:"subtype"`
	Balances  Balances `json:"balances"`
}

// Balances carries the provider's current balance figures. Available may be
// absent for account types that have no meaningful available balance.
type Balances struct {
	Current   decimal.Decimal  `json:"current"`
	Available *decimal.Decimal `json:"available"`
}

// AvailableOrCurrent returns the available balance, falling back to the
// current balance when the provider sent none.
func (b Balances) AvailableOrCurrent() decimal.Decimal {
	if b.Available != nil {
		return *b.Available
	}
	return b.Current
}

// Transaction represents a transaction from the provider API. Amounts follow
// the provider's convention: outflows positive, inflows negative.
type Transaction struct {
	TransactionID           string                   `json:"transaction_id"`
	AccountID               string                   `json:"account_id"`
	Amount                  decimal.Decimal          `json:"amount"`
	Date                    string                   `json:"date"` // "2006-01-02"
	Name                    string                   `json:"name"`
	MerchantName            string                   `json:"merchant_name"`
	Category                []string                 `json:"category"`
	PersonalFinanceCategory *PersonalFinanceCategory `json:"personal_finance_category,omitempty"`
	Pending                 bool                     `json:"pending"`
}

// PersonalFinanceCategory is the provider's newer category taxonomy.
type PersonalFinanceCategory struct {
	Primary  string `json:"primary"`
	Detailed string `json:"detailed"`
}

// PrimaryCategory returns the best available provider category name: the
// personal finance primary when present, otherwise the first legacy category
// entry, otherwise the empty string.
func (t *Transaction) PrimaryCategory() string {
	if t.PersonalFinanceCategory != nil && t.PersonalFinanceCategory.Primary != "" {
		return t.PersonalFinanceCategory.Primary
	}
	if len(t.Category) > 0 {
		return t.Category[0]
	}
	return ""
}

// ParsedDate parses the transaction date
func (t *Transaction) ParsedDate() (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", t.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date '%s': %w", t.Date, err)
	}
	return parsed, nil
}

// ErrorResponse represents an error response from the provider API
type ErrorResponse struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}
