// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package model

// Notification is the operational message dispatched to the messaging
// webhook after a subscribe attempt has been finalized. It is best-effort
// only and never influences the HTTP response.
type Notification struct {
	Email    string `json:"email"`
	ListName string `json:"list_name"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}
