// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package model

import (
	"encoding/base64"
	"net/http"
	"net/url"
)

// SubscriptionOutcome is the terminal result of a workflow run. RedirectURL
// takes precedence over the JSON body: a non-empty value means the caller is
// answered with a 301 redirect instead of a {message} body.
type SubscriptionOutcome struct {
	StatusCode  int    `json:"status_code"`
	Message     string `json:"message"`
	RedirectURL string `json:"redirect_url,omitempty"`

	// State is the derived subscription state the branch was taken on,
	// carried for logging and outcome events.
	State SubscriptionState `json:"state"`
}

// IsRedirect reports whether the outcome answers the caller with a redirect.
func (o SubscriptionOutcome) IsRedirect() bool {
	return o.RedirectURL != ""
}

// RedirectOutcome builds a 301 outcome to the given URL.
func RedirectOutcome(state SubscriptionState, redirectURL string) SubscriptionOutcome {
	return SubscriptionOutcome{
		StatusCode:  http.StatusMovedPermanently,
		RedirectURL: redirectURL,
		State:       state,
	}
}

// MessageOutcome builds a JSON-body outcome with the given status and message.
func MessageOutcome(state SubscriptionState, statusCode int, message string) SubscriptionOutcome {
	return SubscriptionOutcome{
		StatusCode: statusCode,
		Message:    message,
		State:      state,
	}
}

// EncodeRedirectPayload produces the opaque query payload carried on
// subscribe redirects. The parameter order is fixed — emailAddr, listName,
// then an optional error — and the string is percent-encoded before being
// base64-encoded. The encoded value is appended to the redirect target as the
// entire query string, not as a key=value pair. This is an external contract
// consumed by the subscribe landing pages.
func EncodeRedirectPayload(email, listName, errDetail string) string {
	query := "emailAddr=" + url.QueryEscape(email) + "&listName=" + url.QueryEscape(listName)
	if errDetail != "" {
		query += "&error=" + url.QueryEscape(errDetail)
	}

	return base64.StdEncoding.EncodeToString([]byte(query))
}
