// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"log/slog"
	"sync"

	"github.com/signalworks/subscription-gateway/internal/domain/model"
	"github.com/signalworks/subscription-gateway/internal/domain/port"
)

// MockNotifier records every notification for test assertions
type MockNotifier struct {
	notifications []model.Notification
	err           error
	mu            sync.Mutex
}

// Ensure MockNotifier implements the Notifier interface
var _ port.Notifier = (*MockNotifier)(nil)

// NewMockNotifier creates a new mock notifier for testing
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// FailWith forces Notify to return the given error
func (m *MockNotifier) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Notify records the notification
func (m *MockNotifier) Notify(ctx context.Context, notification model.Notification) error {
	slog.InfoContext(ctx, "mock notification dispatched",
		"list_name", notification.ListName,
		"success", notification.Success,
	)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, notification)
	return m.err
}

// Notifications returns the recorded notifications
func (m *MockNotifier) Notifications() []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	notifications := make([]model.Notification, len(m.notifications))
	copy(notifications, m.notifications)
	return notifications
}
