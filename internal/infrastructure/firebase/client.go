// Package firebase implements push notification delivery through Firebase
// Cloud Messaging.
package firebase

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCM rejects multicast batches above 500 tokens.
const batchLimit = 500

// TokenDeactivator marks an invalid FCM token inactive. Supplied by the
// caller so this package stays decoupled from the device repository.
type TokenDeactivator func(ctx context.Context, token string) error

// Client implements notification.Messenger on Firebase Cloud Messaging.
type Client struct {
	msgClient   *messaging.Client
	deactivator TokenDeactivator
}

// NewClient initializes a Firebase app from a service-account credentials
// file. deactivator may be nil, in which case dead tokens are only logged.
func NewClient(ctx context.Context, credentialsFile string, deactivator TokenDeactivator) (*Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}

	return &Client{msgClient: msgClient, deactivator: deactivator}, nil
}

// SendMulticast pushes one notification to every token, batching to stay
// under the FCM multicast limit. Unregistered tokens found in the
// responses are deactivated so later sends stop paying for them.
func (c *Client) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	var success, failure int
	for start := 0; start < len(tokens); start += batchLimit {
		end := min(start+batchLimit, len(tokens))
		batch := tokens[start:end]

		resp, err := c.msgClient.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		})
		if err != nil {
			return fmt.Errorf("failed to send FCM multicast: %w", err)
		}

		success += resp.SuccessCount
		failure += resp.FailureCount
		if resp.FailureCount > 0 {
			c.pruneFailedTokens(ctx, batch, resp)
		}
	}

	log.Printf("FCM multicast: %d success, %d failure", success, failure)
	return nil
}

func (c *Client) pruneFailedTokens(ctx context.Context, tokens []string, resp *messaging.BatchResponse) {
	for i, sendResp := range resp.Responses {
		if sendResp.Error == nil {
			continue
		}
		if !messaging.IsUnregistered(sendResp.Error) && !messaging.IsInvalidArgument(sendResp.Error) {
			log.Printf("FCM send error for token %s: %v", tokens[i], sendResp.Error)
			continue
		}

		log.Printf("Deactivating invalid FCM token %s: %v", tokens[i], sendResp.Error)
		if c.deactivator == nil {
			continue
		}
		if err := c.deactivator(ctx, tokens[i]); err != nil {
			log.Printf("Failed to deactivate FCM token %s: %v", tokens[i], err)
		}
	}
}
