package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"fintrack/internal/domain/sync"
	"fintrack/internal/shared/middleware"
)

// SyncRunner runs a sync cycle for a user. Implemented by sync.Orchestrator.
type SyncRunner interface {
	RunSync(ctx context.Context, userID int64) (*sync.Summary, error)
}

// SyncHandler exposes manual sync triggering.
type SyncHandler struct {
	runner SyncRunner
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(runner SyncRunner) *SyncHandler {
	return &SyncHandler{runner: runner}
}

// HandleSync runs a sync cycle for the authenticated user and returns the
// summary. A user without a linked connection gets a 200 with status
// no_linked_account; a provider outage maps to 502.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	summary, err := h.runner.RunSync(r.Context(), userID)
	if err != nil {
		log.Printf("Sync failed for user %d: %v", userID, err)
		http.Error(w, "Sync failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
