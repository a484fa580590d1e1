// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package mailjet

// Mailjet wraps every REST resource in the same envelope. The concrete Data
// type differs per resource, so each response gets its own struct.

// ContactObject represents a Mailjet contact resource
type ContactObject struct {
	ID    int64  `json:"ID"`
	Email string `json:"Email"`
}

// contactResponse is the envelope for contact queries
type contactResponse struct {
	Count int64           `json:"Count"`
	Data  []ContactObject `json:"Data"`
	Total int64           `json:"Total"`
}

// ListObject represents a Mailjet contact list resource
type ListObject struct {
	ID              int64  `json:"ID"`
	Name            string `json:"Name"`
	SubscriberCount int64  `json:"SubscriberCount"`
}

// listResponse is the envelope for contact list queries
type listResponse struct {
	Count int64        `json:"Count"`
	Data  []ListObject `json:"Data"`
	Total int64        `json:"Total"`
}

// TemplateObject represents a Mailjet transactional template resource
type TemplateObject struct {
	ID   int64  `json:"ID"`
	Name string `json:"Name"`
}

// templateResponse is the envelope for template queries
type templateResponse struct {
	Count int64            `json:"Count"`
	Data  []TemplateObject `json:"Data"`
	Total int64            `json:"Total"`
}

// ListRecipientObject is the join resource between a contact and a contact
// list. It is the only resource whose subscribed flag can be mutated, and it
// has no direct lookup by (contact, list) pair.
type ListRecipientObject struct {
	ID             int64 `json:"ID"`
	ContactID      int64 `json:"ContactID"`
	ListID         int64 `json:"ListID"`
	IsUnsubscribed bool  `json:"IsUnsubscribed"`
}

// listRecipientResponse is the envelope for list recipient queries
type listRecipientResponse struct {
	Count int64                 `json:"Count"`
	Data  []ListRecipientObject `json:"Data"`
	Total int64                 `json:"Total"`
}

// MembershipObject is one entry of a contact's list membership query.
// IsUnsub is the provider's polarity; the domain model inverts it.
type MembershipObject struct {
	ListID   int64 `json:"ListID"`
	IsUnsub  bool  `json:"IsUnsub"`
	IsActive bool  `json:"IsActive"`
}

// membershipResponse is the envelope for membership queries
type membershipResponse struct {
	Count int64              `json:"Count"`
	Data  []MembershipObject `json:"Data"`
	Total int64              `json:"Total"`
}

// ContactCreateOptions is the body for contact creation
type ContactCreateOptions struct {
	Email string `json:"Email"`
}

// ListRecipientCreateOptions is the body for attaching a contact to a list.
// IsUnsubscribed is always true on attach: the first confirmation requires
// an explicit follow-up action.
type ListRecipientCreateOptions struct {
	ContactAlt     string `json:"ContactAlt"`
	ListID         int64  `json:"ListID"`
	IsUnsubscribed bool   `json:"IsUnsubscribed"`
}

// ListRecipientUpdateOptions is the body for mutating a recipient record
type ListRecipientUpdateOptions struct {
	IsUnsubscribed bool `json:"IsUnsubscribed"`
}

// SendRecipient is one recipient of a transactional send
type SendRecipient struct {
	Email string `json:"Email"`
}

// SendOptions is the body for the transactional send endpoint
type SendOptions struct {
	FromEmail          string          `json:"FromEmail"`
	Subject            string          `json:"Subject"`
	MjTemplateID       int64           `json:"Mj-TemplateID"`
	MjTemplateLanguage bool            `json:"Mj-TemplateLanguage"`
	Vars               map[string]any  `json:"Vars"`
	Recipients         []SendRecipient `json:"Recipients"`
}

// pageOptions are the pagination query parameters shared by the enumeration
// endpoints (encoded with go-querystring)
type pageOptions struct {
	Limit  int `url:"Limit,omitempty"`
	Offset int `url:"Offset,omitempty"`
}

// ErrorObject is Mailjet's JSON error envelope
type ErrorObject struct {
	ErrorCode    string `json:"ErrorCode"`
	ErrorMessage string `json:"ErrorMessage"`
}
