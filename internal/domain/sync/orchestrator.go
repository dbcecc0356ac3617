package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/credential"
	"fintrack/internal/infrastructure/provider"
)

// Status is the overall outcome of a sync cycle.
type Status string

const (
	StatusSuccess         Status = "success"
	StatusPartial         Status = "partial"
	StatusFailed          Status = "failed"
	StatusNoLinkedAccount Status = "no_linked_account"
)

// ErrProviderUnavailable wraps a provider fetch failure that aborted the
// sync cycle before any local write.
var ErrProviderUnavailable = errors.New("provider unavailable")

const defaultWindowDays = 30

// Summary reports the outcome of one sync cycle for a user.
type Summary struct {
	UserID          int64     `json:"userId"`
	Status          Status    `json:"status"`
	AccountsFound   int       `json:"accountsFound"`
	AccountsNew     int       `json:"accountsNew"`
	Found           int       `json:"found"`
	Created         int       `json:"created"`
	Updated         int       `json:"updated"`
	SkippedUnmapped int       `json:"skippedUnmapped"`
	Errors          []string  `json:"errors"`
	SyncedAt        time.Time `json:"syncedAt"`
}

// Orchestrator drives a full sync cycle: fetch from the provider, map
// accounts, reconcile transactions, refresh balances.
type Orchestrator struct {
	client     provider.Client
	credRepo   credential.Repository
	accounts   *account.Service
	reconciler *Reconciler
	windowDays int
	now        func() time.Time
}

// NewOrchestrator creates a sync orchestrator. windowDays controls the
// trailing transaction fetch window; zero or negative falls back to the
// default of 30 days.
func NewOrchestrator(
	client provider.Client,
	credRepo credential.Repository,
	accounts *account.Service,
	reconciler *Reconciler,
	windowDays int,
) *Orchestrator {
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	return &Orchestrator{
		client:     client,
		credRepo:   credRepo,
		accounts:   accounts,
		reconciler: reconciler,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// RunSync executes one sync cycle for a user. A user without an active
// provider credential gets a no_linked_account summary and a nil error. A
// provider fetch failure aborts the cycle before any local write and the
// returned error wraps ErrProviderUnavailable. Failures on individual
// accounts or transactions never abort the cycle; they are collected into
// the summary and the status becomes partial.
func (o *Orchestrator) RunSync(ctx context.Context, userID int64) (*Summary, error) {
	summary := &Summary{
		UserID:   userID,
		Errors:   []string{},
		SyncedAt: o.now().UTC(),
	}

	cred, err := o.credRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	if cred == nil {
		summary.Status = StatusNoLinkedAccount
		log.Printf("Sync skipped for user %d: no linked provider connection", userID)
		return summary, nil
	}

	// Fetch everything up front so a provider outage never leaves a
	// half-written cycle behind.
	providerAccounts, err := o.client.GetAccounts(ctx, cred.AccessToken)
	if err != nil {
		summary.Status = StatusFailed
		return summary, fmt.Errorf("%w: failed to fetch accounts: %v", ErrProviderUnavailable, err)
	}

	end := o.now().UTC()
	start := end.AddDate(0, 0, -o.windowDays)
	providerTxs, err := o.client.GetTransactions(ctx, cred.AccessToken, start, end)
	if err != nil {
		summary.Status = StatusFailed
		return summary, fmt.Errorf("%w: failed to fetch transactions: %v", ErrProviderUnavailable, err)
	}

	summary.AccountsFound = len(providerAccounts)
	log.Printf("Fetched %d accounts and %d transactions for user %d", len(providerAccounts), len(providerTxs), userID)

	// Resolve each provider account to its local row, creating on first
	// sight. The resulting mapping is what the reconciler keys on.
	mapping := make(map[string]string, len(providerAccounts))
	snaps := make([]account.Snapshot, 0, len(providerAccounts))
	for i := range providerAccounts {
		snap := toSnapshot(&providerAccounts[i])
		snaps = append(snaps, snap)

		local, created, err := o.accounts.ResolveOrCreate(ctx, userID, cred.ID, snap)
		if err != nil {
			errMsg := fmt.Sprintf("failed to resolve account %s: %v", snap.ProviderAccountID, err)
			summary.Errors = append(summary.Errors, errMsg)
			log.Printf("Error: %s", errMsg)
			continue
		}
		if created {
			summary.AccountsNew++
		}
		mapping[snap.ProviderAccountID] = local.ID
	}

	rec := o.reconciler.Reconcile(ctx, userID, mapping, providerTxs)
	summary.Found = rec.Found
	summary.Created = rec.Created
	summary.Updated = rec.Updated
	summary.SkippedUnmapped = rec.SkippedUnmapped
	summary.Errors = append(summary.Errors, rec.Errors...)

	if _, err := o.accounts.RefreshBalances(ctx, userID, cred.ID, snaps); err != nil {
		errMsg := fmt.Sprintf("failed to refresh balances: %v", err)
		summary.Errors = append(summary.Errors, errMsg)
		log.Printf("Error: %s", errMsg)
	}

	if len(summary.Errors) > 0 {
		summary.Status = StatusPartial
	} else {
		summary.Status = StatusSuccess
	}

	log.Printf("Sync completed for user %d: status=%s, accounts=%d (%d new), created=%d, updated=%d, skipped=%d, errors=%d",
		userID, summary.Status, summary.AccountsFound, summary.AccountsNew, summary.Created, summary.Updated,
		summary.SkippedUnmapped, len(summary.Errors))

	return summary, nil
}

func toSnapshot(a *provider.Account) account.Snapshot {
	return account.Snapshot{
		ProviderAccountID: a.AccountID,
		Name:              a.Name,
		AccountType:       a.Type,
		Subtype:           a.Subtype,
		Balance:           a.Balances.Current,
		AvailableBalance:  a.Balances.AvailableOrCurrent(),
	}
}
