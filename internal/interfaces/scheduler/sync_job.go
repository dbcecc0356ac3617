package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"fintrack/internal/domain/sync"
)

// SyncJob runs one transaction sync cycle for a user through the worker pool.
type SyncJob struct {
	userID       int64
	orchestrator *sync.Orchestrator
}

// NewSyncJob creates a sync job for a user
func NewSyncJob(userID int64, orchestrator *sync.Orchestrator) *SyncJob {
	return &SyncJob{
		userID:       userID,
		orchestrator: orchestrator,
	}
}

// Execute runs the sync cycle. A partial cycle returns an error so the
// pool's metrics count it as a failure, even though its local writes
// were applied normally.
func (j *SyncJob) Execute(ctx context.Context) error {
	summary, err := j.orchestrator.RunSync(ctx, j.userID)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if len(summary.Errors) > 0 {
		log.Printf("Sync for user %d completed with errors: status=%s created=%d updated=%d errors=%d",
			j.userID, summary.Status, summary.Created, summary.Updated, len(summary.Errors))
		return fmt.Errorf("sync completed with %d errors", len(summary.Errors))
	}

	log.Printf("Sync for user %d completed: status=%s accounts=%d/%d created=%d updated=%d skipped=%d",
		j.userID, summary.Status, summary.AccountsNew, summary.AccountsFound,
		summary.Created, summary.Updated, summary.SkippedUnmapped)

	return nil
}

// UserID returns the user ID associated with this job
func (j *SyncJob) UserID() string {
	return strconv.FormatInt(j.userID, 10)
}

// Description returns a human-readable description of the job
func (j *SyncJob) Description() string {
	return fmt.Sprintf("Transaction sync for user %d", j.userID)
}
