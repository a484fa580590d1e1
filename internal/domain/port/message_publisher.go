// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package port

import "context"

// MessagePublisher defines the interface for publishing subscription gateway
// messages. It is implemented by the NATS messaging infrastructure to feed
// downstream audit and dashboard consumers.
type MessagePublisher interface {
	// Outcome publishes a terminal workflow outcome event
	Outcome(ctx context.Context, subject string, message any) error
}
