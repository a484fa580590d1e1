// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

// Package mock provides in-memory implementations of the domain ports for
// testing and local development.
package mock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/signalworks/subscription-gateway/internal/domain/model"
	"github.com/signalworks/subscription-gateway/internal/domain/port"
	"github.com/signalworks/subscription-gateway/pkg/errors"
)

// MockCRM provides a mock implementation of CRMReaderWriter backed by
// in-memory state. Every operation records its name so tests can assert call
// order, and any operation can be forced to fail via FailWith.
type MockCRM struct {
	contacts   map[string]*model.Contact
	lists      map[string]*model.ContactList
	templates  map[string]*model.EmailTemplate
	recipients map[int64]*ListRecipient
	nextID     int64

	calls    []string
	failures map[string]error
	mu       sync.Mutex
}

// ListRecipient pairs a recipient record with its subscribed flag in the
// mock's storage
type ListRecipient struct {
	Record     model.RecipientRecord
	Subscribed bool
	Email      string
}

// NewMockCRM creates a new mock CRM with sample data
func NewMockCRM() *MockCRM {
	mock := &MockCRM{
		contacts:   make(map[string]*model.Contact),
		lists:      make(map[string]*model.ContactList),
		templates:  make(map[string]*model.EmailTemplate),
		recipients: make(map[int64]*ListRecipient),
		failures:   make(map[string]error),
		nextID:     1000,
	}

	// Sample data for testing
	mock.lists["weekly-digest"] = &model.ContactList{ID: 20, Name: "weekly-digest", SubscriberCount: 42}
	mock.lists["daily-news"] = &model.ContactList{ID: 10, Name: "daily-news", SubscriberCount: 7}
	mock.templates["weekly-digest-confirmation"] = &model.EmailTemplate{ID: 77, Name: "weekly-digest-confirmation"}
	mock.templates["daily-news-confirmation"] = &model.EmailTemplate{ID: 78, Name: "daily-news-confirmation"}

	return mock
}

var _ port.CRMReaderWriter = (*MockCRM)(nil)

// FailWith forces the named operation to return the given error
func (m *MockCRM) FailWith(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[operation] = err
}

// Calls returns the recorded operation names in invocation order
func (m *MockCRM) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// AddContact seeds a contact, optionally attached to lists
func (m *MockCRM) AddContact(email string, subscribedLists, pendingLists []int64) *model.Contact {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	contact := &model.Contact{ID: m.nextID, Email: email, Exists: true}
	m.contacts[email] = contact

	for _, listID := range subscribedLists {
		m.attachLocked(contact, listID, true)
	}
	for _, listID := range pendingLists {
		m.attachLocked(contact, listID, false)
	}

	return contact
}

func (m *MockCRM) attachLocked(contact *model.Contact, listID int64, subscribed bool) *ListRecipient {
	m.nextID++
	recipient := &ListRecipient{
		Record: model.RecipientRecord{
			ID:        m.nextID,
			ContactID: contact.ID,
			ListID:    listID,
		},
		Subscribed: subscribed,
		Email:      contact.Email,
	}
	m.recipients[recipient.Record.ID] = recipient
	return recipient
}

// Subscribed reports whether the contact is subscribed to the list
func (m *MockCRM) Subscribed(email string, listID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	contact, exists := m.contacts[email]
	if !exists {
		return false
	}
	for _, recipient := range m.recipients {
		if recipient.Record.ContactID == contact.ID && recipient.Record.ListID == listID {
			return recipient.Subscribed
		}
	}
	return false
}

func (m *MockCRM) record(operation string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, operation)
	return m.failures[operation]
}

// ListContactLists enumerates the seeded contact lists
func (m *MockCRM) ListContactLists(ctx context.Context) ([]model.ContactList, error) {
	if err := m.record("ListContactLists"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	lists := make([]model.ContactList, 0, len(m.lists))
	for _, list := range m.lists {
		lists = append(lists, *list)
	}
	return lists, nil
}

// GetContactList resolves a contact list by name
func (m *MockCRM) GetContactList(ctx context.Context, name string) (*model.ContactList, error) {
	slog.DebugContext(ctx, "mock CRM: getting contact list", "list_name", name)

	if err := m.record("GetContactList"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	list, exists := m.lists[name]
	if !exists {
		return nil, errors.NewNotFound(fmt.Sprintf("contact list '%s' not found", name))
	}
	listCopy := *list
	return &listCopy, nil
}

// GetTemplate resolves a template by name
func (m *MockCRM) GetTemplate(ctx context.Context, name string) (*model.EmailTemplate, error) {
	slog.DebugContext(ctx, "mock CRM: getting template", "template_name", name)

	if err := m.record("GetTemplate"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tmpl, exists := m.templates[name]
	if !exists {
		return nil, errors.NewTemplateMissing(fmt.Sprintf("email template '%s' not found", name))
	}
	tmplCopy := *tmpl
	return &tmplCopy, nil
}

// GetContact looks up a contact by email address
func (m *MockCRM) GetContact(ctx context.Context, email string) (*model.Contact, error) {
	if err := m.record("GetContact"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	contact, exists := m.contacts[email]
	if !exists {
		return &model.Contact{Email: email}, nil
	}
	contactCopy := *contact
	return &contactCopy, nil
}

// ListMemberships returns the contact's memberships
func (m *MockCRM) ListMemberships(ctx context.Context, email string) ([]model.ListMembership, error) {
	if err := m.record("ListMemberships"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	contact, exists := m.contacts[email]
	if !exists {
		return nil, nil
	}

	var memberships []model.ListMembership
	for _, recipient := range m.recipients {
		if recipient.Record.ContactID == contact.ID {
			memberships = append(memberships, model.ListMembership{
				ListID:     recipient.Record.ListID,
				ContactID:  contact.ID,
				Subscribed: recipient.Subscribed,
			})
		}
	}
	return memberships, nil
}

// GetRecipientRecord resolves the record joining the contact to the list
func (m *MockCRM) GetRecipientRecord(ctx context.Context, contactID, listID int64) (*model.RecipientRecord, error) {
	if err := m.record("GetRecipientRecord"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, recipient := range m.recipients {
		if recipient.Record.ContactID == contactID && recipient.Record.ListID == listID {
			record := recipient.Record
			return &record, nil
		}
	}
	return nil, errors.NewNotFound(fmt.Sprintf("no recipient record for contact %d on list %d", contactID, listID))
}

// CreateContact creates a contact in the mock storage
func (m *MockCRM) CreateContact(ctx context.Context, email string) (*model.Contact, error) {
	slog.DebugContext(ctx, "mock CRM: creating contact")

	if err := m.record("CreateContact"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.contacts[email]; exists {
		return nil, errors.NewConflict("contact already exists")
	}
	m.nextID++
	contact := &model.Contact{ID: m.nextID, Email: email, Exists: true}
	m.contacts[email] = contact
	contactCopy := *contact
	return &contactCopy, nil
}

// AttachToList attaches the contact to the list in the unsubscribed state
func (m *MockCRM) AttachToList(ctx context.Context, listID int64, email string) (*model.ListMembership, error) {
	if err := m.record("AttachToList"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	contact, exists := m.contacts[email]
	if !exists {
		return nil, errors.NewNotFound("contact not found")
	}
	recipient := m.attachLocked(contact, listID, false)
	return &model.ListMembership{
		ListID:     listID,
		ContactID:  recipient.Record.ContactID,
		Subscribed: false,
	}, nil
}

// FinalizeSubscription sets the recipient record's subscribed flag
func (m *MockCRM) FinalizeSubscription(ctx context.Context, contactID, listID int64) error {
	if err := m.record("FinalizeSubscription"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, recipient := range m.recipients {
		if recipient.Record.ContactID == contactID && recipient.Record.ListID == listID {
			recipient.Subscribed = true
			return nil
		}
	}
	return errors.NewNotFound(fmt.Sprintf("no recipient record for contact %d on list %d", contactID, listID))
}

// SendConfirmationEmail records the send without dispatching anything
func (m *MockCRM) SendConfirmationEmail(ctx context.Context, email string, templateID int64, listName string) error {
	slog.DebugContext(ctx, "mock CRM: sending confirmation email",
		"template_id", templateID, "list_name", listName)

	return m.record("SendConfirmationEmail")
}

// IsReady always reports ready
func (m *MockCRM) IsReady(ctx context.Context) error {
	return nil
}
