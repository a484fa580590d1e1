// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

// Package slack posts operational subscription notifications to a
// Slack-compatible incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/signalworks/subscription-gateway/internal/domain/model"
	"github.com/signalworks/subscription-gateway/pkg/httpclient"
	"github.com/signalworks/subscription-gateway/pkg/redaction"
)

const (
	colorGood   = "good"
	colorDanger = "danger"
)

// Attachment is one entry of the webhook's attachments payload
type Attachment struct {
	Fallback string  `json:"fallback"`
	Color    string  `json:"color"`
	Pretext  string  `json:"pretext"`
	Title    string  `json:"title"`
	Fields   []Field `json:"fields"`
	Ts       int64   `json:"ts"`
}

// Field is one title/value pair inside an attachment
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// message is the webhook request body
type message struct {
	Attachments []Attachment `json:"attachments"`
}

// Config holds the configuration for the Slack notifier
type Config struct {
	// WebhookURL is the incoming webhook endpoint. Empty disables the
	// notifier.
	WebhookURL string

	// Timeout is the HTTP client timeout for webhook posts
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout: 10 * time.Second,
	}
}

// NewConfigFromEnv creates a Config from environment variables
func NewConfigFromEnv() Config {
	config := DefaultConfig()

	if webhookURL := os.Getenv("SLACK_WEBHOOK_URL"); webhookURL != "" {
		config.WebhookURL = webhookURL
	}

	if timeoutStr := os.Getenv("SLACK_TIMEOUT"); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil {
			config.Timeout = timeout
		}
	}

	return config
}

// Notifier posts subscription outcomes to the webhook. Delivery is
// best-effort: callers log a returned error and move on, the webhook never
// influences the request outcome.
type Notifier struct {
	config     Config
	httpClient *httpclient.Client

	// now is swappable for tests
	now func() time.Time
}

// NewNotifier creates a new webhook notifier with the given configuration
func NewNotifier(cfg Config) (*Notifier, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("webhook URL is required for Slack notifier")
	}

	return &Notifier{
		config: cfg,
		httpClient: httpclient.NewClient(httpclient.Config{
			Timeout:    cfg.Timeout,
			MaxRetries: 0,
		}),
		now: time.Now,
	}, nil
}

// Notify posts the notification as a color-coded attachment
func (n *Notifier) Notify(ctx context.Context, notification model.Notification) error {
	summary := fmt.Sprintf("Subscription confirmed for contact list '%s'", notification.ListName)
	color := colorGood
	if !notification.Success {
		summary = fmt.Sprintf("Subscription failed for contact list '%s'", notification.ListName)
		color = colorDanger
	}

	fields := []Field{
		{Title: "Email", Value: notification.Email, Short: true},
		{Title: "Contact List", Value: notification.ListName, Short: true},
	}
	if notification.Error != "" {
		fields = append(fields, Field{Title: "Error", Value: notification.Error, Short: false})
	}

	payload := message{
		Attachments: []Attachment{
			{
				Fallback: summary,
				Color:    color,
				Pretext:  "Mailing list subscription update",
				Title:    summary,
				Fields:   fields,
				Ts:       n.now().Unix(),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if _, err := n.httpClient.Request(ctx, http.MethodPost, n.config.WebhookURL, bytes.NewReader(body), headers); err != nil {
		slog.WarnContext(ctx, "webhook notification failed",
			"email", redaction.RedactEmail(notification.Email),
			"list_name", notification.ListName,
			"error", err,
		)
		return fmt.Errorf("webhook post failed: %w", err)
	}

	slog.DebugContext(ctx, "webhook notification delivered",
		"list_name", notification.ListName,
		"success", notification.Success,
	)

	return nil
}
