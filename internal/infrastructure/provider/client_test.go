package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/accounts/get" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req accountsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.AccessToken != "access-token-1" {
			t.Errorf("unexpected access token %q", req.AccessToken)
		}
		if req.ClientID != "client-1" || req.Secret != "secret-1" {
			t.Error("expected client credentials in request body")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"accounts": [
				{
					"account_id": "acc_1",
					"name": "Checking",
					"type": "depository",
					"subtype": "checking",
					"balances": {"current": 100.00, "available": 95.50}
				},
				{
					"account_id": "acc_2",
					"name": "Credit Card",
					"type": "credit",
					"subtype": "credit card",
					"balances": {"current": 250.10}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "client-1", "secret-1", 0)

	accounts, err := client.GetAccounts(context.Background(), "access-token-1")
	if err != nil {
		t.Fatalf("GetAccounts() error: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].AccountID != "acc_1" {
		t.Errorf("unexpected account id %q", accounts[0].AccountID)
	}
	if accounts[0].Balances.Current.String() != "100" {
		t.Errorf("unexpected balance %s", accounts[0].Balances.Current)
	}
	if accounts[0].Balances.AvailableOrCurrent().String() != "95.5" {
		t.Errorf("unexpected available balance %s", accounts[0].Balances.AvailableOrCurrent())
	}
	// No available balance sent for the credit account.
	if accounts[1].Balances.AvailableOrCurrent().String() != "250.1" {
		t.Errorf("expected fallback to current balance, got %s", accounts[1].Balances.AvailableOrCurrent())
	}
}

func TestGetTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions/get" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req transactionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.StartDate != "2026-07-01" || req.EndDate != "2026-07-31" {
			t.Errorf("unexpected window %s..%s", req.StartDate, req.EndDate)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"transactions": [
				{
					"transaction_id": "tx_1",
					"account_id": "acc_1",
					"amount": 12.50,
					"date": "2026-07-15",
					"name": "Coffee Shop",
					"merchant_name": "Coffee Co",
					"category": ["Food and Drink", "Coffee"],
					"personal_finance_category": {"primary": "FOOD_AND_DRINK", "detailed": "FOOD_AND_DRINK_COFFEE"},
					"pending": false
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "client-1", "secret-1", 0)

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	txs, err := client.GetTransactions(context.Background(), "access-token-1", start, end)
	if err != nil {
		t.Fatalf("GetTransactions() error: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}

	tx := txs[0]
	if tx.PrimaryCategory() != "FOOD_AND_DRINK" {
		t.Errorf("PrimaryCategory() = %q", tx.PrimaryCategory())
	}
	parsed, err := tx.ParsedDate()
	if err != nil {
		t.Fatalf("ParsedDate() error: %v", err)
	}
	if !parsed.Equal(time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParsedDate() = %v", parsed)
	}
}

func TestGetTransactionsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_type": "INVALID_INPUT", "error_code": "INVALID_ACCESS_TOKEN", "error_message": "could not find matching access token"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "client-1", "secret-1", 0)

	_, err := client.GetTransactions(context.Background(), "bad-token", time.Now().AddDate(0, 0, -30), time.Now())
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestPrimaryCategoryFallback(t *testing.T) {
	tests := []struct {
		name     string
		tx       Transaction
		expected string
	}{
		{
			name: "personal finance category wins",
			tx: Transaction{
				Category:                []string{"Travel"},
				PersonalFinanceCategory: &PersonalFinanceCategory{Primary: "TRANSPORTATION"},
			},
			expected: "TRANSPORTATION",
		},
		{
			name:     "legacy category fallback",
			tx:       Transaction{Category: []string{"Travel", "Taxi"}},
			expected: "Travel",
		},
		{
			name:     "no category at all",
			tx:       Transaction{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tx.PrimaryCategory(); got != tt.expected {
				t.Errorf("PrimaryCategory() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
