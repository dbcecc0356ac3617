package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/credential"
	"fintrack/internal/infrastructure/provider"
)

// fakeProviderClient returns canned provider responses.
type fakeProviderClient struct {
	accounts        []provider.Account
	transactions    []provider.Transaction
	accountsErr     error
	transactionsErr error

	gotStart time.Time
	gotEnd   time.Time
}

func (f *fakeProviderClient) GetAccounts(ctx context.Context, accessToken string) ([]provider.Account, error) {
	if f.accountsErr != nil {
		return nil, f.accountsErr
	}
	return f.accounts, nil
}

func (f *fakeProviderClient) GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]provider.Transaction, error) {
	f.gotStart, f.gotEnd = startDate, endDate
	if f.transactionsErr != nil {
		return nil, f.transactionsErr
	}
	return f.transactions, nil
}

// fakeCredentialRepo serves a single credential.
type fakeCredentialRepo struct {
	cred *credential.Credential
}

func (f *fakeCredentialRepo) Create(ctx context.Context, params credential.CreateParams) (*credential.Credential, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCredentialRepo) GetByID(ctx context.Context, id string) (*credential.Credential, error) {
	if f.cred != nil && f.cred.ID == id {
		return f.cred, nil
	}
	return nil, nil
}

func (f *fakeCredentialRepo) GetActiveByUserID(ctx context.Context, userID int64) (*credential.Credential, error) {
	if f.cred != nil && f.cred.UserID == userID && f.cred.IsActive() {
		return f.cred, nil
	}
	return nil, nil
}

func (f *fakeCredentialRepo) GetByItemID(ctx context.Context, itemID string) (*credential.Credential, error) {
	if f.cred != nil && f.cred.ItemID == itemID {
		return f.cred, nil
	}
	return nil, nil
}

func (f *fakeCredentialRepo) SetStatus(ctx context.Context, id string, status credential.Status) error {
	if f.cred != nil && f.cred.ID == id {
		f.cred.Status = status
	}
	return nil
}

func (f *fakeCredentialRepo) MarkError(ctx context.Context, id string, message string) error {
	if f.cred != nil && f.cred.ID == id {
		f.cred.Status = credential.StatusError
		f.cred.LastError = message
	}
	return nil
}

func (f *fakeCredentialRepo) ListActiveUserIDs(ctx context.Context) ([]int64, error) {
	if f.cred != nil && f.cred.IsActive() {
		return []int64{f.cred.UserID}, nil
	}
	return nil, nil
}

// fakeAccountRepo is an in-memory account.Repository keyed on
// (credential id, provider account id).
type fakeAccountRepo struct {
	byProvider map[string]*account.Account
	updated    int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byProvider: make(map[string]*account.Account)}
}

func (f *fakeAccountRepo) ResolveOrCreate(ctx context.Context, params account.ResolveParams) (*account.Account, bool, error) {
	key := params.CredentialID + "/" + params.ProviderAccountID
	if existing, ok := f.byProvider[key]; ok {
		return existing, false, nil
	}
	acc := &account.Account{
		ID:                params.ID,
		UserID:            params.UserID,
		CredentialID:      params.CredentialID,
		ProviderAccountID: params.ProviderAccountID,
		Name:              params.Name,
		AccountType:       params.AccountType,
		Subtype:           params.Subtype,
		Balance:           params.Balance,
		AvailableBalance:  params.AvailableBalance,
	}
	f.byProvider[key] = acc
	return acc, true, nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (*account.Account, error) {
	for _, acc := range f.byProvider {
		if acc.ID == id {
			return acc, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (f *fakeAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	var out []*account.Account
	for _, acc := range f.byProvider {
		if acc.UserID == userID {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) ListByCredentialID(ctx context.Context, credentialID string) ([]*account.Account, error) {
	var out []*account.Account
	for _, acc := range f.byProvider {
		if acc.CredentialID == credentialID {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) UpdateBalances(ctx context.Context, credentialID string, updates []account.BalanceUpdate) (int, error) {
	n := 0
	for _, u := range updates {
		key := credentialID + "/" + u.ProviderAccountID
		if acc, ok := f.byProvider[key]; ok {
			acc.Balance = u.Balance
			acc.AvailableBalance = u.AvailableBalance
			n++
		}
	}
	f.updated += n
	return n, nil
}

func (f *fakeAccountRepo) Delete(ctx context.Context, id string) error {
	return errors.New("not implemented")
}

func activeCred() *credential.Credential {
	return &credential.Credential{
		ID:          "cred-1",
		UserID:      1,
		ItemID:      "item-1",
		AccessToken: "access-token-1",
		Status:      credential.StatusActive,
	}
}

func newOrchestratorForTest(client provider.Client, credRepo credential.Repository, accRepo account.Repository, txRepo *fakeTransactionRepo) *Orchestrator {
	accounts := account.NewService(accRepo, credRepo)
	reconciler := NewReconciler(txRepo)
	return NewOrchestrator(client, credRepo, accounts, reconciler, 30)
}

func TestRunSyncFullCycle(t *testing.T) {
	ctx := context.Background()

	available := decimal.RequireFromString("95.50")
	client := &fakeProviderClient{
		accounts: []provider.Account{
			{
				AccountID: "acc_1",
				Name:      "Checking",
				Type:      "depository",
				Subtype:   "checking",
				Balances:  provider.Balances{Current: decimal.RequireFromString("100.00"), Available: &available},
			},
		},
		transactions: []provider.Transaction{
			providerTx("tx_1", "acc_1", "12.50", "2026-07-15", "Coffee Shop", "FOOD_AND_DRINK"),
		},
	}
	credRepo := &fakeCredentialRepo{cred: activeCred()}
	accRepo := newFakeAccountRepo()
	txRepo := newFakeTransactionRepo()

	orch := newOrchestratorForTest(client, credRepo, accRepo, txRepo)

	summary, err := orch.RunSync(ctx, 1)
	if err != nil {
		t.Fatalf("RunSync() error: %v", err)
	}

	if summary.Status != StatusSuccess {
		t.Errorf("status = %s, expected success", summary.Status)
	}
	if summary.AccountsFound != 1 || summary.AccountsNew != 1 {
		t.Errorf("accounts found=%d new=%d", summary.AccountsFound, summary.AccountsNew)
	}
	if summary.Created != 1 || summary.Updated != 0 || summary.SkippedUnmapped != 0 {
		t.Errorf("created=%d updated=%d skipped=%d", summary.Created, summary.Updated, summary.SkippedUnmapped)
	}

	// The fetch window is a trailing 30 days.
	window := client.gotEnd.Sub(client.gotStart)
	if window != 30*24*time.Hour {
		t.Errorf("fetch window = %v, expected 720h", window)
	}

	// Balances were refreshed on the mapped account.
	if accRepo.updated != 1 {
		t.Errorf("balance updates = %d, expected 1", accRepo.updated)
	}

	// A second run resolves the same account and updates the transaction.
	summary, err = orch.RunSync(ctx, 1)
	if err != nil {
		t.Fatalf("second RunSync() error: %v", err)
	}
	if summary.AccountsNew != 0 {
		t.Errorf("second run created %d accounts", summary.AccountsNew)
	}
	if summary.Created != 0 || summary.Updated != 1 {
		t.Errorf("second run created=%d updated=%d", summary.Created, summary.Updated)
	}
}

func TestRunSyncNoLinkedConnection(t *testing.T) {
	ctx := context.Background()

	orch := newOrchestratorForTest(&fakeProviderClient{}, &fakeCredentialRepo{}, newFakeAccountRepo(), newFakeTransactionRepo())

	summary, err := orch.RunSync(ctx, 1)
	if err != nil {
		t.Fatalf("RunSync() error: %v", err)
	}
	if summary.Status != StatusNoLinkedAccount {
		t.Errorf("status = %s, expected no_linked_account", summary.Status)
	}
}

func TestRunSyncProviderDown(t *testing.T) {
	ctx := context.Background()

	client := &fakeProviderClient{accountsErr: errors.New("connection refused")}
	credRepo := &fakeCredentialRepo{cred: activeCred()}
	txRepo := newFakeTransactionRepo()

	orch := newOrchestratorForTest(client, credRepo, newFakeAccountRepo(), txRepo)

	summary, err := orch.RunSync(ctx, 1)
	if err == nil {
		t.Fatal("expected error when provider is down")
	}
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("error %v does not wrap ErrProviderUnavailable", err)
	}
	if summary.Status != StatusFailed {
		t.Errorf("status = %s, expected failed", summary.Status)
	}

	// Nothing was written.
	if count, _ := txRepo.CountByUserID(ctx, 1); count != 0 {
		t.Errorf("expected no stored transactions, got %d", count)
	}
}

func TestRunSyncTransactionFetchFails(t *testing.T) {
	ctx := context.Background()

	client := &fakeProviderClient{
		accounts:        []provider.Account{{AccountID: "acc_1", Name: "Checking", Type: "depository"}},
		transactionsErr: errors.New("timeout"),
	}
	credRepo := &fakeCredentialRepo{cred: activeCred()}
	accRepo := newFakeAccountRepo()

	orch := newOrchestratorForTest(client, credRepo, accRepo, newFakeTransactionRepo())

	_, err := orch.RunSync(ctx, 1)
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("error %v does not wrap ErrProviderUnavailable", err)
	}
	// The cycle aborts before mapping accounts.
	if len(accRepo.byProvider) != 0 {
		t.Error("expected no accounts created when transaction fetch fails")
	}
}

func TestRunSyncSkipsTransactionsOnUnknownAccounts(t *testing.T) {
	ctx := context.Background()

	client := &fakeProviderClient{
		accounts: []provider.Account{
			{AccountID: "acc_1", Name: "Checking", Type: "depository"},
		},
		transactions: []provider.Transaction{
			providerTx("tx_1", "acc_1", "10.00", "2026-07-15", "Mapped", "SHOPPING"),
			providerTx("tx_2", "acc_other", "20.00", "2026-07-15", "Unmapped", "SHOPPING"),
		},
	}
	credRepo := &fakeCredentialRepo{cred: activeCred()}

	orch := newOrchestratorForTest(client, credRepo, newFakeAccountRepo(), newFakeTransactionRepo())

	summary, err := orch.RunSync(ctx, 1)
	if err != nil {
		t.Fatalf("RunSync() error: %v", err)
	}
	if summary.Created != 1 || summary.SkippedUnmapped != 1 {
		t.Errorf("created=%d skipped=%d", summary.Created, summary.SkippedUnmapped)
	}
	if summary.Status != StatusSuccess {
		t.Errorf("status = %s, skips alone must not degrade the status", summary.Status)
	}
}
