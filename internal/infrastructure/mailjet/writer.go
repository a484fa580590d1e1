// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package mailjet

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/signalworks/subscription-gateway/internal/domain/model"
	"github.com/signalworks/subscription-gateway/pkg/errors"
	"github.com/signalworks/subscription-gateway/pkg/redaction"
)

// CreateContact creates a contact for the email address. Success is strictly
// a 201 Created response.
func (c *Client) CreateContact(ctx context.Context, email string) (*model.Contact, error) {
	slog.InfoContext(ctx, "creating contact in Mailjet",
		"email", redaction.RedactEmail(email))

	var response contactResponse
	resp, err := c.makeRequest(ctx, http.MethodPost, "/v3/REST/contact", nil,
		ContactCreateOptions{Email: email}, &response)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, errors.NewUnexpected(fmt.Sprintf("contact creation returned status %d", resp.StatusCode))
	}
	if len(response.Data) == 0 {
		return nil, errors.NewUnexpected("contact creation returned no data")
	}

	slog.InfoContext(ctx, "contact created in Mailjet",
		"contact_id", response.Data[0].ID)

	return &model.Contact{
		ID:     response.Data[0].ID,
		Email:  email,
		Exists: true,
	}, nil
}

// AttachToList attaches the contact to the list in the unsubscribed state.
// The membership stays pending until the contact confirms (double opt-in).
func (c *Client) AttachToList(ctx context.Context, listID int64, email string) (*model.ListMembership, error) {
	slog.InfoContext(ctx, "attaching contact to list in Mailjet",
		"list_id", listID, "email", redaction.RedactEmail(email))

	var response listRecipientResponse
	_, err := c.makeRequest(ctx, http.MethodPost, "/v3/REST/listrecipient", nil,
		ListRecipientCreateOptions{
			ContactAlt:     email,
			ListID:         listID,
			IsUnsubscribed: true,
		}, &response)
	if err != nil {
		return nil, err
	}

	if len(response.Data) == 0 {
		return nil, errors.NewUnexpected("list attachment returned no data")
	}

	slog.InfoContext(ctx, "contact attached to list in Mailjet",
		"list_id", listID, "contact_id", response.Data[0].ContactID)

	return &model.ListMembership{
		ListID:     listID,
		ContactID:  response.Data[0].ContactID,
		Subscribed: false,
	}, nil
}

// FinalizeSubscription resolves the recipient record joining the contact to
// the list and clears its unsubscribed flag. A 304 Not Modified means the
// record already carried the target state and counts as success.
func (c *Client) FinalizeSubscription(ctx context.Context, contactID, listID int64) error {
	record, err := c.GetRecipientRecord(ctx, contactID, listID)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "finalizing subscription in Mailjet",
		"recipient_id", record.ID, "contact_id", contactID, "list_id", listID)

	path := "/v3/REST/listrecipient/" + strconv.FormatInt(record.ID, 10)
	resp, err := c.makeRequest(ctx, http.MethodPut, path, nil,
		ListRecipientUpdateOptions{IsUnsubscribed: false}, nil)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotModified {
		return errors.NewUnexpected(fmt.Sprintf("subscription update returned status %d", resp.StatusCode))
	}

	slog.InfoContext(ctx, "subscription finalized in Mailjet",
		"recipient_id", record.ID, "status_code", resp.StatusCode)

	return nil
}

// SendConfirmationEmail dispatches the templated confirmation email. The
// sender address is derived from the list name and the configured sender
// domain.
func (c *Client) SendConfirmationEmail(ctx context.Context, email string, templateID int64, listName string) error {
	slog.InfoContext(ctx, "sending confirmation email via Mailjet",
		"email", redaction.RedactEmail(email),
		"template_id", templateID, "list_name", listName)

	options := SendOptions{
		FromEmail:          fmt.Sprintf("%s@%s", listName, c.config.SenderDomain),
		Subject:            fmt.Sprintf("Please confirm your subscription to %s", listName),
		MjTemplateID:       templateID,
		MjTemplateLanguage: true,
		Vars:               map[string]any{"listName": listName},
		Recipients:         []SendRecipient{{Email: email}},
	}

	if _, err := c.makeRequest(ctx, http.MethodPost, "/v3/send", nil, options, nil); err != nil {
		return err
	}

	slog.InfoContext(ctx, "confirmation email sent",
		"email", redaction.RedactEmail(email), "list_name", listName)

	return nil
}
