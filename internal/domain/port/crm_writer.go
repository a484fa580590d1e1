// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/signalworks/subscription-gateway/internal/domain/model"
)

// CRMWriter defines the mutations the workflow may perform against the CRM API.
type CRMWriter interface {
	// CreateContact creates a contact for the email address. Success is a
	// Created response; any other outcome is an error.
	CreateContact(ctx context.Context, email string) (*model.Contact, error)

	// AttachToList attaches the contact to the list in the unsubscribed
	// state. The first confirmation requires an explicit follow-up action
	// (double opt-in). Returns the membership including the contact ID.
	AttachToList(ctx context.Context, listID int64, email string) (*model.ListMembership, error)

	// FinalizeSubscription resolves the recipient record joining the
	// contact to the list and sets its subscribed flag. A Not Modified
	// response counts as success per the provider's idempotent-PUT
	// semantics.
	FinalizeSubscription(ctx context.Context, contactID, listID int64) error

	// SendConfirmationEmail dispatches the templated confirmation email,
	// with the list name interpolated into subject and template variables
	// and the sender address derived from the list name.
	SendConfirmationEmail(ctx context.Context, email string, templateID int64, listName string) error
}

// CRMReaderWriter combines all CRM read and write operations.
type CRMReaderWriter interface {
	CRMReader
	CRMWriter

	// IsReady checks if the CRM API is reachable
	IsReady(ctx context.Context) error
}
