package notification

import (
	"context"
	"fmt"
	"log"
)

// Service contains the business logic for notification operations
type Service struct {
	repo      Repository
	messenger Messenger
}

// NewService creates a new notification service. messenger may be nil when
// push delivery is not configured; notifications are then logged and dropped.
func NewService(repo Repository, messenger Messenger) *Service {
	return &Service{repo: repo, messenger: messenger}
}

// RegisterDevice registers a device token for the authenticated user.
// If the token already belongs to another user, it is reassigned.
func (s *Service) RegisterDevice(ctx context.Context, params RegisterDeviceParams) (*Device, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.repo.UpsertDevice(ctx, params)
}

// NotifyCredentialError tells the user their provider connection stopped
// working and needs to be relinked.
func (s *Service) NotifyCredentialError(ctx context.Context, userID int64, providerMessage string) error {
	body := "Your bank connection stopped working. Please relink your account."
	if providerMessage != "" {
		body = fmt.Sprintf("Your bank connection stopped working: %s. Please relink your account.", providerMessage)
	}
	return s.sendToUser(ctx, userID, "Bank connection error", body)
}

// NotifyCredentialExpiring warns the user their provider consent is about to
// expire.
func (s *Service) NotifyCredentialExpiring(ctx context.Context, userID int64) error {
	return s.sendToUser(ctx, userID, "Bank connection expiring",
		"Your bank connection will expire soon. Renew it to keep your transactions in sync.")
}

func (s *Service) sendToUser(ctx context.Context, userID int64, title, body string) error {
	tokens, err := s.repo.GetActiveTokensByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load device tokens: %w", err)
	}

	if len(tokens) == 0 {
		log.Printf("No active device tokens for user %d", userID)
		return nil
	}

	if s.messenger == nil {
		log.Printf("Push delivery not configured, dropping notification for user %d", userID)
		return nil
	}

	if err := s.messenger.SendMulticast(ctx, tokens, title, body, nil); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	return nil
}
