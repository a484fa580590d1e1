// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package model

// Action selects the workflow branch requested by the caller.
type Action string

// Action constants for the subscription workflow
const (
	// ActionAdd starts the double opt-in flow: the contact is attached to
	// the list unsubscribed and a confirmation email is dispatched
	ActionAdd Action = "add"
	// ActionSubscribe completes the double opt-in flow by setting the
	// membership's subscribed flag
	ActionSubscribe Action = "subscribe"
)

// IsValid reports whether the action is one of the supported values.
func (a Action) IsValid() bool {
	return a == ActionAdd || a == ActionSubscribe
}

// SubscriptionRequest is the immutable per-request input that drives all
// workflow branching.
type SubscriptionRequest struct {
	Action   Action `json:"action"`
	Email    string `json:"email"`
	ListName string `json:"list_name"`
}

// SubscriptionState is the contact's position in the double opt-in lifecycle,
// derived fresh from remote state on every request and never persisted.
type SubscriptionState string

// SubscriptionState constants
const (
	// StateUnknown means the state could not be established
	StateUnknown SubscriptionState = "unknown"
	// StateNoContact means the email address has no CRM contact
	StateNoContact SubscriptionState = "no_contact"
	// StateContactNoList means the contact exists but is not on the target list
	StateContactNoList SubscriptionState = "contact_no_list"
	// StateContactOnListUnsubscribed means the contact is on the list pending confirmation
	StateContactOnListUnsubscribed SubscriptionState = "contact_on_list_unsubscribed"
	// StateContactOnListSubscribed means the double opt-in is complete
	StateContactOnListSubscribed SubscriptionState = "contact_on_list_subscribed"
)

// DeriveState maps the resolved remote facts to a SubscriptionState.
func DeriveState(contactExists, onList, subscribed bool) SubscriptionState {
	switch {
	case !contactExists:
		return StateNoContact
	case !onList:
		return StateContactNoList
	case subscribed:
		return StateContactOnListSubscribed
	default:
		return StateContactOnListUnsubscribed
	}
}
