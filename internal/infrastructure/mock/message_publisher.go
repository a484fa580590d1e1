// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"log/slog"
	"sync"

	"github.com/signalworks/subscription-gateway/internal/domain/port"
)

// PublishedMessage is one recorded publish call
type PublishedMessage struct {
	Subject string
	Message any
}

// MockMessagePublisher records published messages for test assertions
type MockMessagePublisher struct {
	messages []PublishedMessage
	err      error
	mu       sync.Mutex
}

// Ensure MockMessagePublisher implements the MessagePublisher interface
var _ port.MessagePublisher = (*MockMessagePublisher)(nil)

// NewMockMessagePublisher creates a new mock publisher for testing
func NewMockMessagePublisher() *MockMessagePublisher {
	return &MockMessagePublisher{}
}

// FailWith forces Outcome to return the given error
func (m *MockMessagePublisher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Outcome records the outcome event publish
func (m *MockMessagePublisher) Outcome(ctx context.Context, subject string, message any) error {
	slog.InfoContext(ctx, "mock outcome message published",
		"subject", subject,
		"message_type", "outcome",
	)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, PublishedMessage{Subject: subject, Message: message})
	return m.err
}

// Messages returns the recorded publishes
func (m *MockMessagePublisher) Messages() []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	messages := make([]PublishedMessage, len(m.messages))
	copy(messages, m.messages)
	return messages
}
