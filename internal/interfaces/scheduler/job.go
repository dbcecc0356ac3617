package scheduler

import "context"

// Job is a unit of background work executed by the worker pool.
type Job interface {
	// Execute runs the job. The context carries the pool's per-job timeout
	// and is cancelled on shutdown.
	Execute(ctx context.Context) error

	// UserID identifies whose data the job touches, for logging.
	UserID() string

	// Description is a human-readable label for logs and traces.
	Description() string
}
