// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/signalworks/subscription-gateway/internal/domain/model"
)

// Notifier dispatches an operational message to the messaging webhook.
// Implementations are best-effort: the workflow logs a returned error and
// never lets it affect the HTTP response.
type Notifier interface {
	Notify(ctx context.Context, notification model.Notification) error
}
