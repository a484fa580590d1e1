// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

// Package redaction provides helpers for masking personal data in logs and
// outbound messages.
package redaction

import "strings"

// RedactEmail masks the local part of an email address, keeping the first
// character and the full domain so that log lines remain correlatable.
// "jane.doe@example.com" becomes "j***@example.com". Strings that do not
// look like an email address are fully masked.
func RedactEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "***"
	}

	return email[:1] + "***" + email[at:]
}
