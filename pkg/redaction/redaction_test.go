// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package redaction

import "testing"

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"typical address", "jane.doe@example.com", "j***@example.com"},
		{"single-char local part", "j@example.com", "j***@example.com"},
		{"no at sign", "not-an-email", "***"},
		{"empty string", "", "***"},
		{"leading at sign", "@example.com", "***"},
		{"trailing at sign", "jane@", "***"},
		{"multiple at signs", "a@b@example.com", "a***@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactEmail(tt.input); got != tt.want {
				t.Errorf("RedactEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
