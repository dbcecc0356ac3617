package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/domain/credential"
)

// Service contains the business logic for account mapping operations
type Service struct {
	repo     Repository
	credRepo credential.Repository
}

// NewService creates a new account service
func NewService(repo Repository, credRepo credential.Repository) *Service {
	return &Service{repo: repo, credRepo: credRepo}
}

// ResolveOrCreate maps a provider account snapshot to its local account,
// creating the local row on first sight. The boolean reports whether a new
// account was created. The credential must exist, belong to the user, and be
// active; otherwise credential.ErrNoLinkedConnection is returned.
func (s *Service) ResolveOrCreate(ctx context.Context, userID int64, credentialID string, snap Snapshot) (*Account, bool, error) {
	cred, err := s.credRepo.GetByID(ctx, credentialID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load credential: %w", err)
	}
	if cred == nil || cred.UserID != userID || !cred.IsActive() {
		return nil, false, credential.ErrNoLinkedConnection
	}

	params := ResolveParams{
		ID:                uuid.NewString(),
		UserID:            userID,
		CredentialID:      credentialID,
		ProviderAccountID: snap.ProviderAccountID,
		Name:              snap.Name,
		AccountType:       snap.AccountType,
		Subtype:           snap.Subtype,
		Balance:           snap.Balance,
		AvailableBalance:  snap.AvailableBalance,
	}
	if err := params.Validate(); err != nil {
		return nil, false, err
	}

	return s.repo.ResolveOrCreate(ctx, params)
}

// RefreshBalances updates stored balances for the accounts already mapped
// under a credential. Snapshots for provider accounts without a local row
// are skipped; balance refresh never creates accounts. The credential check
// mirrors ResolveOrCreate, so a credential that moved to error mid-cycle
// stops balance writes too. Returns the number of accounts updated.
func (s *Service) RefreshBalances(ctx context.Context, userID int64, credentialID string, snaps []Snapshot) (int, error) {
	cred, err := s.credRepo.GetByID(ctx, credentialID)
	if err != nil {
		return 0, fmt.Errorf("failed to load credential: %w", err)
	}
	if cred == nil || cred.UserID != userID || !cred.IsActive() {
		return 0, credential.ErrNoLinkedConnection
	}

	updates := make([]BalanceUpdate, 0, len(snaps))
	for _, snap := range snaps {
		updates = append(updates, BalanceUpdate{
			ProviderAccountID: snap.ProviderAccountID,
			Balance:           snap.Balance,
			AvailableBalance:  snap.AvailableBalance,
		})
	}

	return s.repo.UpdateBalances(ctx, credentialID, updates)
}

// GetAccount retrieves an account by ID and verifies user ownership
func (s *Service) GetAccount(ctx context.Context, accountID string, userID int64) (*Account, error) {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// Business rule: verify ownership
	if account.UserID != userID {
		return nil, ErrAccountNotFound
	}

	return account, nil
}

// ListAccountsByUserID retrieves all accounts for a specific user
func (s *Service) ListAccountsByUserID(ctx context.Context, userID int64) ([]*Account, error) {
	if userID <= 0 {
		return nil, errors.New("valid user ID is required")
	}

	return s.repo.ListByUserID(ctx, userID)
}

// DeleteAccount deletes an account after verifying ownership
func (s *Service) DeleteAccount(ctx context.Context, accountID string, userID int64) error {
	if _, err := s.GetAccount(ctx, accountID, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, accountID)
}
