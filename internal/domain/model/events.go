// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/signalworks/subscription-gateway/pkg/redaction"
)

// OutcomeEvent is the NATS message schema for terminal workflow outcomes.
// Downstream consumers use it for audit trails and operational dashboards;
// the email address is redacted before it leaves the process.
type OutcomeEvent struct {
	ID        string            `json:"id"`
	Action    Action            `json:"action"`
	Email     string            `json:"email"`
	ListName  string            `json:"list_name"`
	State     SubscriptionState `json:"state"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewOutcomeEvent builds an OutcomeEvent for a finished workflow run.
func NewOutcomeEvent(req SubscriptionRequest, outcome SubscriptionOutcome, errDetail string) *OutcomeEvent {
	return &OutcomeEvent{
		ID:        uuid.New().String(),
		Action:    req.Action,
		Email:     redaction.RedactEmail(req.Email),
		ListName:  req.ListName,
		State:     outcome.State,
		Success:   errDetail == "",
		Error:     errDetail,
		Timestamp: time.Now().UTC(),
	}
}
