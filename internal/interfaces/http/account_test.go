package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fintrack/internal/domain/account"
	"fintrack/internal/shared/middleware"
)

// MockAccountRepo implements account.Repository for testing
type MockAccountRepo struct {
	ResolveOrCreateFunc    func(ctx context.Context, params account.ResolveParams) (*account.Account, bool, error)
	GetByIDFunc            func(ctx context.Context, id string) (*account.Account, error)
	ListByUserIDFunc       func(ctx context.Context, userID int64) ([]*account.Account, error)
	ListByCredentialIDFunc func(ctx context.Context, credentialID string) ([]*account.Account, error)
	UpdateBalancesFunc     func(ctx context.Context, credentialID string, updates []account.BalanceUpdate) (int, error)
	DeleteFunc             func(ctx context.Context, id string) error
}

func (m *MockAccountRepo) ResolveOrCreate(ctx context.Context, params account.ResolveParams) (*account.Account, bool, error) {
	if m.ResolveOrCreateFunc != nil {
		return m.ResolveOrCreateFunc(ctx, params)
	}
	return nil, false, nil
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id string) (*account.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, account.ErrAccountNotFound
}

func (m *MockAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockAccountRepo) ListByCredentialID(ctx context.Context, credentialID string) ([]*account.Account, error) {
	if m.ListByCredentialIDFunc != nil {
		return m.ListByCredentialIDFunc(ctx, credentialID)
	}
	return nil, nil
}

func (m *MockAccountRepo) UpdateBalances(ctx context.Context, credentialID string, updates []account.BalanceUpdate) (int, error) {
	if m.UpdateBalancesFunc != nil {
		return m.UpdateBalancesFunc(ctx, credentialID, updates)
	}
	return 0, nil
}

func (m *MockAccountRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func newAccountHandler(repo *MockAccountRepo) *AccountHandler {
	return NewAccountHandler(account.NewService(repo, &MockCredentialRepo{}))
}

func TestHandleListAccounts(t *testing.T) {
	tests := []struct {
		name           string
		mockRepo       func() *MockAccountRepo
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Success",
			mockRepo: func() *MockAccountRepo {
				return &MockAccountRepo{
					ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*account.Account, error) {
						return []*account.Account{{ID: "acc-1", UserID: userID, Name: "Checking"}}, nil
					},
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Empty result is an array",
			mockRepo: func() *MockAccountRepo {
				return &MockAccountRepo{}
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "[]\n",
		},
		{
			name: "Repository error",
			mockRepo: func() *MockAccountRepo {
				return &MockAccountRepo{
					ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*account.Account, error) {
						return nil, errors.New("db down")
					},
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newAccountHandler(tt.mockRepo())

			req, _ := http.NewRequest(http.MethodGet, "/api/accounts", nil)
			ctx := context.WithValue(req.Context(), middleware.UserIDKey, int64(1))
			req = req.WithContext(ctx)

			rr := httptest.NewRecorder()
			handler.HandleListAccounts(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if tt.expectedBody != "" && rr.Body.String() != tt.expectedBody {
				t.Errorf("unexpected body: %q", rr.Body.String())
			}
		})
	}
}

func TestHandleAccountByID(t *testing.T) {
	ownedRepo := func() *MockAccountRepo {
		return &MockAccountRepo{
			GetByIDFunc: func(ctx context.Context, id string) (*account.Account, error) {
				if id == "acc-1" {
					return &account.Account{ID: "acc-1", UserID: 1, Name: "Checking"}, nil
				}
				return nil, account.ErrAccountNotFound
			},
		}
	}

	tests := []struct {
		name           string
		method         string
		accountID      string
		userID         int64
		expectedStatus int
	}{
		{
			name:           "Get success",
			method:         http.MethodGet,
			accountID:      "acc-1",
			userID:         1,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Get unknown",
			method:         http.MethodGet,
			accountID:      "acc-999",
			userID:         1,
			expectedStatus: http.StatusNotFound,
		},
		{
			// Ownership failures read as not found so ids can't be probed.
			name:           "Get other user's account",
			method:         http.MethodGet,
			accountID:      "acc-1",
			userID:         2,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Delete success",
			method:         http.MethodDelete,
			accountID:      "acc-1",
			userID:         1,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodPost,
			accountID:      "acc-1",
			userID:         1,
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newAccountHandler(ownedRepo())

			req, _ := http.NewRequest(tt.method, "/api/accounts/"+tt.accountID, nil)
			ctx := context.WithValue(req.Context(), middleware.UserIDKey, tt.userID)
			req = req.WithContext(ctx)

			rr := httptest.NewRecorder()
			handler.HandleAccountByID(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandleAccountByID_GetResponseBody(t *testing.T) {
	repo := &MockAccountRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*account.Account, error) {
			return &account.Account{ID: "acc-1", UserID: 1, Name: "Checking", AccountType: "depository"}, nil
		},
	}
	handler := newAccountHandler(repo)

	req, _ := http.NewRequest(http.MethodGet, "/api/accounts/acc-1", nil)
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, int64(1))
	rr := httptest.NewRecorder()

	handler.HandleAccountByID(rr, req.WithContext(ctx))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var acc account.Account
	if err := json.NewDecoder(rr.Body).Decode(&acc); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if acc.ID != "acc-1" || acc.AccountType != "depository" {
		t.Errorf("unexpected account payload: %+v", acc)
	}
}
