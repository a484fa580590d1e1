// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

// Package mailjet implements the CRM API adapter for the subscription
// gateway: an authenticated HTTP client plus the reader and writer port
// implementations.
package mailjet

import (
	"os"
	"time"
)

// Config holds the configuration for the Mailjet client
type Config struct {
	// BaseURL is the Mailjet API base URL
	BaseURL string

	// APIKey is the Mailjet public API key for Basic authentication
	APIKey string

	// APISecret is the Mailjet private API key for Basic authentication
	APISecret string

	// SenderDomain is the domain used to derive the confirmation sender
	// address ("{listName}@{SenderDomain}")
	SenderDomain string

	// Timeout is the HTTP client timeout for requests
	Timeout time.Duration

	// MockMode disables real Mailjet API calls (for testing)
	MockMode bool
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.mailjet.com",
		Timeout: 30 * time.Second,
	}
}

// NewConfigFromEnv creates a Config from environment variables
func NewConfigFromEnv() Config {
	config := DefaultConfig()

	if baseURL := os.Getenv("MAILJET_BASE_URL"); baseURL != "" {
		config.BaseURL = baseURL
	}

	if apiKey := os.Getenv("MAILJET_API_KEY"); apiKey != "" {
		config.APIKey = apiKey
	}

	if apiSecret := os.Getenv("MAILJET_API_SECRET"); apiSecret != "" {
		config.APISecret = apiSecret
	}

	if senderDomain := os.Getenv("MAILJET_SENDER_DOMAIN"); senderDomain != "" {
		config.SenderDomain = senderDomain
	}

	if timeoutStr := os.Getenv("MAILJET_TIMEOUT"); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil {
			config.Timeout = timeout
		}
	}

	// Check for mock mode
	if mockMode := os.Getenv("MAILJET_SOURCE"); mockMode == "mock" {
		config.MockMode = true
	}

	return config
}
