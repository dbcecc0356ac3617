package scheduler

import (
	"fintrack/internal/domain/sync"
)

// Dispatcher submits one-off sync jobs to the worker pool. It backs the
// webhook handler, which must acknowledge the provider fast and let the
// sync run in the background.
type Dispatcher struct {
	pool         *WorkerPool
	orchestrator *sync.Orchestrator
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(pool *WorkerPool, orchestrator *sync.Orchestrator) *Dispatcher {
	return &Dispatcher{pool: pool, orchestrator: orchestrator}
}

// DispatchSync enqueues a sync cycle for a user. A full queue returns an
// error; the caller decides whether that is worth surfacing.
func (d *Dispatcher) DispatchSync(userID int64) error {
	return d.pool.Submit(NewSyncJob(userID, d.orchestrator))
}
