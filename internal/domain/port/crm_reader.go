// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

// Package port defines the interfaces between the subscription workflow and
// its infrastructure adapters.
package port

import (
	"context"

	"github.com/signalworks/subscription-gateway/internal/domain/model"
)

// CRMReader defines the read-only resolver queries against the CRM API.
// Implementations return the typed errors from pkg/errors so that the
// workflow can distinguish "definitely absent" (NotFound) from "unknown due
// to error" instead of collapsing both into an empty result.
type CRMReader interface {
	// ListContactLists enumerates all contact lists
	ListContactLists(ctx context.Context) ([]model.ContactList, error)

	// GetContactList resolves a contact list by exact name match.
	// A missing list is a NotFound error, terminal for the request.
	GetContactList(ctx context.Context, name string) (*model.ContactList, error)

	// GetTemplate resolves the confirmation email template by exact name
	// match. A missing template is a TemplateMissing error, terminal for
	// the request before any mutation.
	GetTemplate(ctx context.Context, name string) (*model.EmailTemplate, error)

	// GetContact looks up a contact by email address. A NotFound lookup
	// yields Contact{ID: 0, Exists: false} with a nil error; any other
	// failure is returned as-is.
	GetContact(ctx context.Context, email string) (*model.Contact, error)

	// ListMemberships returns the contact's list memberships, with
	// Subscribed derived by inverting the provider's unsubscribed flag.
	ListMemberships(ctx context.Context, email string) ([]model.ListMembership, error)

	// GetRecipientRecord scans the full recipient listing for the record
	// joining the contact to the list. NotFound if no record matches.
	GetRecipientRecord(ctx context.Context, contactID, listID int64) (*model.RecipientRecord, error)
}
