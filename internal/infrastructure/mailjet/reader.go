// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package mailjet

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/signalworks/subscription-gateway/internal/domain/model"
	"github.com/signalworks/subscription-gateway/pkg/errors"
	"github.com/signalworks/subscription-gateway/pkg/redaction"
)

// scanPageSize is the page size for enumeration endpoints. The recipient
// listing has no server-side filter by (contact, list) pair, so lookups scan
// the full listing page by page.
const scanPageSize = 1000

// ListContactLists enumerates all contact lists
func (c *Client) ListContactLists(ctx context.Context) ([]model.ContactList, error) {
	var lists []model.ContactList

	for offset := 0; ; offset += scanPageSize {
		values, err := queryValues(pageOptions{Limit: scanPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}

		var response listResponse
		if _, err := c.makeRequest(ctx, http.MethodGet, "/v3/REST/contactslist", values, nil, &response); err != nil {
			return nil, err
		}

		for _, obj := range response.Data {
			lists = append(lists, model.ContactList{
				ID:              obj.ID,
				Name:            obj.Name,
				SubscriberCount: obj.SubscriberCount,
			})
		}

		if int64(len(response.Data)) < scanPageSize {
			break
		}
	}

	return lists, nil
}

// GetContactList resolves a contact list by exact name match
func (c *Client) GetContactList(ctx context.Context, name string) (*model.ContactList, error) {
	lists, err := c.ListContactLists(ctx)
	if err != nil {
		return nil, err
	}

	for _, list := range lists {
		if list.Name == name {
			slog.DebugContext(ctx, "contact list resolved",
				"list_name", name, "list_id", list.ID)
			return &list, nil
		}
	}

	return nil, errors.NewNotFound(fmt.Sprintf("contact list '%s' not found", name))
}

// GetTemplate resolves a transactional template by exact name match
func (c *Client) GetTemplate(ctx context.Context, name string) (*model.EmailTemplate, error) {
	for offset := 0; ; offset += scanPageSize {
		values, err := queryValues(pageOptions{Limit: scanPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}

		var response templateResponse
		if _, err := c.makeRequest(ctx, http.MethodGet, "/v3/REST/template", values, nil, &response); err != nil {
			return nil, err
		}

		for _, obj := range response.Data {
			if obj.Name == name {
				return &model.EmailTemplate{ID: obj.ID, Name: obj.Name}, nil
			}
		}

		if int64(len(response.Data)) < scanPageSize {
			break
		}
	}

	return nil, errors.NewTemplateMissing(fmt.Sprintf("email template '%s' not found", name))
}

// GetContact looks up a contact by email address. A missing contact is not an
// error: the workflow creates it within the same request.
func (c *Client) GetContact(ctx context.Context, email string) (*model.Contact, error) {
	var response contactResponse
	_, err := c.makeRequest(ctx, http.MethodGet, "/v3/REST/contact/"+url.PathEscape(email), nil, nil, &response)
	if err != nil {
		var notFound errors.NotFound
		if stderrors.As(err, &notFound) {
			slog.DebugContext(ctx, "contact not found in Mailjet",
				"email", redaction.RedactEmail(email))
			return &model.Contact{Email: email}, nil
		}
		return nil, err
	}

	if len(response.Data) == 0 {
		return &model.Contact{Email: email}, nil
	}

	return &model.Contact{
		ID:     response.Data[0].ID,
		Email:  email,
		Exists: true,
	}, nil
}

// ListMemberships returns the contact's list memberships with the subscribed
// flag derived by inverting the provider's IsUnsub polarity
func (c *Client) ListMemberships(ctx context.Context, email string) ([]model.ListMembership, error) {
	contact, err := c.GetContact(ctx, email)
	if err != nil {
		return nil, err
	}
	if !contact.Exists {
		return nil, nil
	}

	var response membershipResponse
	path := "/v3/REST/contact/" + url.PathEscape(email) + "/getcontactslists"
	if _, err := c.makeRequest(ctx, http.MethodGet, path, nil, nil, &response); err != nil {
		return nil, err
	}

	memberships := make([]model.ListMembership, 0, len(response.Data))
	for _, obj := range response.Data {
		memberships = append(memberships, model.ListMembership{
			ListID:     obj.ListID,
			ContactID:  contact.ID,
			Subscribed: !obj.IsUnsub,
		})
	}

	return memberships, nil
}

// GetRecipientRecord scans the full recipient listing for the record joining
// the contact to the list
func (c *Client) GetRecipientRecord(ctx context.Context, contactID, listID int64) (*model.RecipientRecord, error) {
	for offset := 0; ; offset += scanPageSize {
		values, err := queryValues(pageOptions{Limit: scanPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}

		var response listRecipientResponse
		if _, err := c.makeRequest(ctx, http.MethodGet, "/v3/REST/listrecipient", values, nil, &response); err != nil {
			return nil, err
		}

		for _, obj := range response.Data {
			if obj.ContactID == contactID && obj.ListID == listID {
				return &model.RecipientRecord{
					ID:        obj.ID,
					ContactID: obj.ContactID,
					ListID:    obj.ListID,
				}, nil
			}
		}

		if int64(len(response.Data)) < scanPageSize {
			break
		}
	}

	return nil, errors.NewNotFound(fmt.Sprintf("no recipient record for contact %d on list %d", contactID, listID))
}
