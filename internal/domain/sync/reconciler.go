// Package sync contains the transaction reconciliation and sync
// orchestration logic.
package sync

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"fintrack/internal/domain/category"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/infrastructure/provider"
)

// ReconcileSummary contains the results of reconciling one batch of provider
// transactions into the local store.
type ReconcileSummary struct {
	Found           int
	Created         int
	Updated         int
	SkippedUnmapped int // Transactions referencing a provider account with no local row
	Errors          []string
}

// Reconciler merges provider transaction batches into the local store. The
// operation is idempotent: re-running it on the same batch creates nothing
// new.
type Reconciler struct {
	txRepo transaction.Repository
}

// NewReconciler creates a new reconciler
func NewReconciler(txRepo transaction.Repository) *Reconciler {
	return &Reconciler{txRepo: txRepo}
}

// Reconcile processes a batch of provider transactions for a user. mapping
// translates provider account ids to local account ids; transactions whose
// account is not in the mapping are counted as skipped, not failed. A
// failure on one transaction is recorded and the rest of the batch still
// runs.
func (r *Reconciler) Reconcile(ctx context.Context, userID int64, mapping map[string]string, txs []provider.Transaction) *ReconcileSummary {
	summary := &ReconcileSummary{
		Found:  len(txs),
		Errors: []string{},
	}

	for i := range txs {
		apiTx := &txs[i]

		accountID, ok := mapping[apiTx.AccountID]
		if !ok {
			log.Printf("Skipping transaction %s: no local account for provider account %s", apiTx.TransactionID, apiTx.AccountID)
			summary.SkippedUnmapped++
			continue
		}

		created, err := r.reconcileOne(ctx, userID, accountID, apiTx)
		if err != nil {
			errMsg := fmt.Sprintf("failed to process transaction %s: %v", apiTx.TransactionID, err)
			summary.Errors = append(summary.Errors, errMsg)
			log.Printf("Error: %s", errMsg)
			continue
		}

		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	log.Printf("Reconcile completed for user %d: found=%d, created=%d, updated=%d, skipped=%d, errors=%d",
		userID, summary.Found, summary.Created, summary.Updated, summary.SkippedUnmapped, len(summary.Errors))

	return summary
}

func (r *Reconciler) reconcileOne(ctx context.Context, userID int64, accountID string, apiTx *provider.Transaction) (bool, error) {
	if apiTx.TransactionID == "" {
		return false, fmt.Errorf("transaction id is required")
	}

	txDate, err := apiTx.ParsedDate()
	if err != nil {
		return false, err
	}

	params := transaction.UpsertParams{
		ID:                    uuid.NewString(),
		UserID:                userID,
		AccountID:             accountID,
		ProviderTransactionID: apiTx.TransactionID,
		Amount:                apiTx.Amount,
		Date:                  txDate,
		Description:           apiTx.Name,
		MerchantName:          apiTx.MerchantName,
		Category:              category.ToInternal(apiTx.PrimaryCategory()),
		Pending:               apiTx.Pending,
	}

	_, created, err := r.txRepo.UpsertByProviderID(ctx, params)
	if err != nil {
		return false, fmt.Errorf("failed to upsert transaction: %w", err)
	}

	return created, nil
}
