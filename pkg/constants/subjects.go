// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package constants

// NATS subject constants for message publishing
const (
	// SubscriptionOutcomeSubject carries the terminal outcome of each
	// subscription workflow run for downstream consumers
	SubscriptionOutcomeSubject = "gateway.subscription.outcome"
)
