// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

// Package model defines the domain models and entities for the subscription gateway.
package model

import "fmt"

// Contact represents a CRM contact looked up by email address.
// A zero ID together with Exists=false means the address is unknown to the
// CRM; the workflow may create it within the same request, after which the
// contact is treated as existing without a re-query.
type Contact struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Exists bool   `json:"exists"`
}

// ContactList represents a named CRM contact list.
type ContactList struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	SubscriberCount int64  `json:"subscriber_count"`
}

// ListMembership links a contact to a contact list. Absence of a membership
// means "not a member"; a membership with Subscribed=false means the double
// opt-in confirmation is still pending.
type ListMembership struct {
	ListID     int64 `json:"list_id"`
	ContactID  int64 `json:"contact_id"`
	Subscribed bool  `json:"subscribed"`
}

// RecipientRecord is the join entity the CRM requires to mutate a
// membership's subscribed flag. It has no direct lookup; it is resolved by
// scanning the full recipient listing.
type RecipientRecord struct {
	ID        int64 `json:"id"`
	ContactID int64 `json:"contact_id"`
	ListID    int64 `json:"list_id"`
}

// EmailTemplate represents a transactional email template in the CRM.
type EmailTemplate struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ConfirmationTemplateName returns the conventional name of the confirmation
// template for a contact list: "{listName}-confirmation".
func ConfirmationTemplateName(listName string) string {
	return fmt.Sprintf("%s-confirmation", listName)
}
