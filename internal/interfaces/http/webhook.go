package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"fintrack/internal/domain/credential"
	"fintrack/internal/domain/notification"
)

// SignatureHeader carries the provider's HMAC-SHA256 signature over the raw
// request body, hex encoded.
const SignatureHeader = "X-Provider-Signature"

// SyncDispatcher enqueues a background sync for a user. Implemented by the
// scheduler's worker pool.
type SyncDispatcher interface {
	DispatchSync(userID int64) error
}

// WebhookHandler receives provider webhooks, verifies their signature and
// reacts to transaction and item lifecycle events.
type WebhookHandler struct {
	secret        []byte
	credRepo      credential.Repository
	notifications *notification.Service
	dispatcher    SyncDispatcher
}

// NewWebhookHandler creates a webhook handler. An empty secret disables the
// endpoint: every request is rejected until one is configured.
func NewWebhookHandler(secret string, credRepo credential.Repository, notifications *notification.Service, dispatcher SyncDispatcher) *WebhookHandler {
	return &WebhookHandler{
		secret:        []byte(secret),
		credRepo:      credRepo,
		notifications: notifications,
		dispatcher:    dispatcher,
	}
}

type webhookPayload struct {
	WebhookType string `json:"webhook_type"`
	WebhookCode string `json:"webhook_code"`
	ItemID      string `json:"item_id"`
	Error       *struct {
		ErrorMessage string `json:"error_message"`
	} `json:"error"`
}

// HandleProviderWebhook processes a provider webhook delivery. The 200
// acknowledgement only means the event was accepted; the sync it may trigger
// runs in the background and its outcome never reaches the provider.
func (h *WebhookHandler) HandleProviderWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	if !h.verifySignature(body, r.Header.Get(SignatureHeader)) {
		log.Printf("Webhook rejected: bad or missing signature")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	cred, err := h.credRepo.GetByItemID(r.Context(), payload.ItemID)
	if err != nil {
		log.Printf("Webhook error: failed to look up item %s: %v", payload.ItemID, err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if cred == nil {
		// Unknown items are acknowledged so the provider stops retrying.
		log.Printf("Webhook for unknown item %s (type=%s code=%s), ignoring", payload.ItemID, payload.WebhookType, payload.WebhookCode)
		h.ack(w)
		return
	}

	switch payload.WebhookType {
	case "TRANSACTIONS":
		h.handleTransactionsWebhook(cred, &payload)
	case "ITEM":
		h.handleItemWebhook(r, cred, &payload)
	default:
		log.Printf("Webhook type %s not handled (item=%s)", payload.WebhookType, payload.ItemID)
	}

	h.ack(w)
}

func (h *WebhookHandler) handleTransactionsWebhook(cred *credential.Credential, payload *webhookPayload) {
	switch payload.WebhookCode {
	case "INITIAL_UPDATE", "HISTORICAL_UPDATE", "DEFAULT_UPDATE":
		if err := h.dispatcher.DispatchSync(cred.UserID); err != nil {
			log.Printf("Failed to dispatch sync for user %d: %v", cred.UserID, err)
		}
	default:
		log.Printf("Transactions webhook code %s not handled (item=%s)", payload.WebhookCode, payload.ItemID)
	}
}

func (h *WebhookHandler) handleItemWebhook(r *http.Request, cred *credential.Credential, payload *webhookPayload) {
	ctx := r.Context()

	switch payload.WebhookCode {
	case "ERROR":
		message := ""
		if payload.Error != nil {
			message = payload.Error.ErrorMessage
		}
		if err := h.credRepo.MarkError(ctx, cred.ID, message); err != nil {
			log.Printf("Failed to mark credential %s error: %v", cred.ID, err)
			return
		}
		if h.notifications != nil {
			if err := h.notifications.NotifyCredentialError(ctx, cred.UserID, message); err != nil {
				log.Printf("Failed to notify user %d of credential error: %v", cred.UserID, err)
			}
		}
	case "PENDING_EXPIRATION":
		if err := h.credRepo.SetStatus(ctx, cred.ID, credential.StatusPendingExpiration); err != nil {
			log.Printf("Failed to mark credential %s pending expiration: %v", cred.ID, err)
			return
		}
		if h.notifications != nil {
			if err := h.notifications.NotifyCredentialExpiring(ctx, cred.UserID); err != nil {
				log.Printf("Failed to notify user %d of pending expiration: %v", cred.UserID, err)
			}
		}
	default:
		log.Printf("Item webhook code %s not handled (item=%s)", payload.WebhookCode, payload.ItemID)
	}
}

// verifySignature checks the hex HMAC-SHA256 of the raw body. Both a missing
// header and an unconfigured secret fail closed.
func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if len(h.secret) == 0 || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}

func (h *WebhookHandler) ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"acknowledged": true})
}
