// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalworks/subscription-gateway/internal/domain/model"
	"github.com/signalworks/subscription-gateway/internal/infrastructure/mock"
	"github.com/signalworks/subscription-gateway/pkg/errors"
)

const testSiteURL = "https://www.example.com"

func newTestWorkflow(crm *mock.MockCRM, notifier *mock.MockNotifier, publisher *mock.MockMessagePublisher) SubscriptionWorkflow {
	return NewSubscriptionWorkflow(
		WithCRMReader(crm),
		WithCRMWriter(crm),
		WithNotifier(notifier),
		WithPublisher(publisher),
		WithSiteBaseURL(testSiteURL),
	)
}

func decodePayload(t *testing.T, redirectURL string) string {
	t.Helper()
	_, encoded, found := strings.Cut(redirectURL, "?")
	require.True(t, found, "redirect URL must carry a query payload")
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	return string(decoded)
}

func TestSubscribeParseGuard(t *testing.T) {
	crm := mock.NewMockCRM()
	workflow := newTestWorkflow(crm, mock.NewMockNotifier(), mock.NewMockMessagePublisher())

	tests := []struct {
		name string
		req  model.SubscriptionRequest
	}{
		{
			name: "invalid action",
			req:  model.SubscriptionRequest{Action: "remove", Email: "jane@example.com", ListName: "weekly-digest"},
		},
		{
			name: "missing email",
			req:  model.SubscriptionRequest{Action: model.ActionAdd, ListName: "weekly-digest"},
		},
		{
			name: "missing list name",
			req:  model.SubscriptionRequest{Action: model.ActionAdd, Email: "jane@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := workflow.Subscribe(context.Background(), tt.req)
			assert.Equal(t, http.StatusInternalServerError, outcome.StatusCode)
			assert.Equal(t, "Unable to parse request.", outcome.Message)
		})
	}

	assert.Empty(t, crm.Calls(), "parse failures must not reach the CRM")
}

func TestSubscribeNewContact(t *testing.T) {
	t.Run("add creates, attaches unsubscribed and sends confirmation", func(t *testing.T) {
		crm := mock.NewMockCRM()
		notifier := mock.NewMockNotifier()
		workflow := newTestWorkflow(crm, notifier, mock.NewMockMessagePublisher())

		outcome := workflow.Subscribe(context.Background(), model.SubscriptionRequest{
			Action:   model.ActionAdd,
			Email:    "jane@example.com",
			ListName: "weekly-digest",
		})

		assert.Equal(t, http.StatusOK, outcome.StatusCode)
		assert.Equal(t, "A confirmation email has been sent to jane@example.com for contact list 'weekly-digest'",
			outcome.Message)
		assert.False(t, outcome.IsRedirect())
		assert.Empty(t, notifier.Notifications(),
			"the confirmation email branch must not ping the webhook")

		calls := crm.Calls()
		var mutations []string
		for _, call := range calls {
			switch call {
			case "CreateContact", "AttachToList", "SendConfirmationEmail":
				mutations = append(mutations, call)
			}
		}
		assert.Equal(t, []string{"CreateContact", "AttachToList", "SendConfirmationEmail"}, mutations,
			"mutations must happen exactly once, in order")

		assert.False(t, crm.Subscribed("jane@example.com", 20),
			"add must leave the membership pending confirmation")
	})

	t.Run("create failure surfaces as 500", func(t *testing.T) {
		crm := mock.NewMockCRM()
		crm.FailWith("CreateContact", errors.NewServiceUnavailable("mj-0008: throttled"))
		workflow := newTestWorkflow(crm, mock.NewMockNotifier(), mock.NewMockMessagePublisher())

		outcome := workflow.Subscribe(context.Background(), model.SubscriptionRequest{
			Action:   model.ActionAdd,
			Email:    "jane@example.com",
			ListName: "weekly-digest",
		})

		assert.Equal(t, http.StatusInternalServerError, outcome.StatusCode)
		assert.Equal(t, "mj-0008: throttled", outcome.Message)
	})
}

func TestSubscribeMissingListOrTemplate(t *testing.T) {
	t.Run("unknown list is terminal before any mutation", func(t *testing.T) {
		crm := mock.NewMockCRM()
		workflow := newTestWorkflow(crm, mock.NewMockNotifier(), mock.NewMockMessagePublisher())

		outcome := workflow.Subscribe(context.Background(), model.SubscriptionRequest{
			Action:   model.ActionAdd,
			Email:    "jane@example.com",
			ListName: "no-such-list",
		})

		assert.Equal(t, http.StatusInternalServerError, outcome.StatusCode)
		for _, call := range crm.Calls() {
			assert.NotContains(t, []string{"CreateContact", "AttachToList", "SendConfirmationEmail", "FinalizeSubscription"}, call)
		}
	})

	t.Run("missing template is terminal before any mutation", func(t *testing.T) {
		crm := mock.NewMockCRM()
		crm.FailWith("GetTemplate", errors.NewTemplateMissing("email template 'weekly-digest-confirmation' not found"))
		workflow := newTestWorkflow(crm, mock.NewMockNotifier(), mock.NewMockMessagePublisher())

		outcome := workflow.Subscribe(context.Background(), model.SubscriptionRequest{
			Action:   model.ActionAdd,
			Email:    "jane@example.com",
			ListName: "weekly-digest",
		})

		assert.Equal(t, http.StatusInternalServerError, outcome.StatusCode)
		assert.Contains(t, outcome.Message, "weekly-digest-confirmation")
		for _, call := range crm.Calls() {
			assert.NotContains(t, []string{"CreateContact", "AttachToList", "SendConfirmationEmail"}, call)
		}
	})
}

func TestSubscribeAlreadySubscribed(t *testing.T) {
	t.Run("add yields 409 without mutation", func(t *testing.T) {
		crm := mock.NewMockCRM()
		crm.AddContact("jane@example.com", []int64{20}, nil)
		workflow := newTestWorkflow(crm, mock.NewMockNotifier(), mock.NewMockMessagePublisher())

		outcome := workflow.Subscribe(context.Background(), model.SubscriptionRequest{
			Action:   model.ActionAdd,
			Email:    "jane@example.com",
			ListName: "weekly-digest",
		})

		assert.Equal(t, http.StatusConflict, outcome.StatusCode)
		assert.Equal(t, "jane@example.com is already subscribed to contact list 'weekly-digest'", outcome.Message)
		assert.Equal(t, model.StateContactOnListSubscribed, outcome.State)

		for _, call := range crm.Calls() {
			assert.NotContains(t, []string{"CreateContact", "AttachToList", "SendConfirmationEmail", "FinalizeSubscription"}, call)
		}
	})

	t.Run("subscribe redirects to success without mutation or notification", func(t *testing.T) {
		crm := mock.NewMockCRM()
		crm.AddContact("jane@example.com", []int64{20}, nil)
		notifier := mock.NewMockNotifier()
		publisher := mock.NewMockMessagePublisher()
		workflow := newTestWorkflow(crm, notifier, publisher)

		outcome := workflow.Subscribe(context.Background(), model.SubscriptionRequest{
			Action:   model.ActionSubscribe,
			Email:    "jane@example.com",
			ListName: "weekly-digest",
		})

		assert.Equal(t, http.StatusMovedPermanently, outcome.StatusCode)
		assert.True(t, strings.HasPrefix(outcome.RedirectURL, testSiteURL+"/subscribe?"))
		assert.Equal(t, "emailAddr=jane%40example.com&listName=weekly-digest", decodePayload(t, outcome.RedirectURL))

		for _, call := range crm.Calls() {
			assert.NotEqual(t, "FinalizeSubscription", call)
		}

		assert.Empty(t, notifier.Notifications(),
			"the idempotent redirect must not ping the webhook")
		assert.Len(t, publisher.Messages(), 1,
			"the outcome event still records the terminal outcome")
	})
}

func TestSubscribePendingConfirmation(t *testing.T) {
	t.Run("add re-sends the confirmation email", func(t *testing.T) {
		crm := mock.NewMockCRM()
		crm.AddContact("jane@example.com", nil, []int64{20})
		workflow := newTestWorkflow(crm, mock.NewMockNotifier(), mock.NewMockMessagePublisher())

		outcome := workflow.Subscribe(context.Background(), model.SubscriptionRequest{
			Action:   model.ActionAdd,
			Email:    "jane@example.com",
			ListName: "weekly-digest",
		})

		assert.Equal(t, http.StatusOK, outcome.StatusCode)
		assert.Contains(t, crm.Calls(), "SendConfirmationEmail")
		assert.NotContains(t, crm.Calls(), "CreateContact")
	})

	t.Run("subscribe finalizes and redirects to success", func(t *testing.T) {
		crm := mock.NewMockCRM()
		crm.AddContact("jane@example.com", nil, []int64{20})
		notifier := mock.NewMockNotifier()
		publisher := mock.NewMockMessagePublisher()
		workflow := newTestWorkflow(crm, notifier, publisher)

		outcome := workflow.Subscribe(context.Background(), model.SubscriptionRequest{
			Action:   model.ActionSubscribe,
			Email:    "jane@example.com",
			ListName: "weekly-digest",
		})

		assert.Equal(t, http.StatusMovedPermanently, outcome.StatusCode)
		assert.Equal(t, model.StateContactOnListSubscribed, outcome.State)
		assert.True(t, crm.Subscribed("jane@example.com", 20))

		notifications := notifier.Notifications()
		require.Len(t, notifications, 1)
		assert.True(t, notifications[0].Success)
		assert.Equal(t, "weekly-digest", notifications[0].ListName)

		messages := publisher.Messages()
		require.Len(t, messages, 1)
		event, ok := messages[0].Message.(*model.OutcomeEvent)
		require.True(t, ok)
		assert.True(t, event.Success)
		assert.Equal(t, "j***@example.com", event.Email)
	})

	t.Run("finalize failure notifies and redirects to failure with error detail", func(t *testing.T) {
		crm := mock.NewMockCRM()
		crm.AddContact("jane@example.com", nil, []int64{20})
		crm.FailWith("FinalizeSubscription", errors.NewServiceUnavailable("mj-0011: update refused"))
		notifier := mock.NewMockNotifier()
		publisher := mock.NewMockMessagePublisher()
		workflow := newTestWorkflow(crm, notifier, publisher)

		outcome := workflow.Subscribe(context.Background(), model.SubscriptionRequest{
			Action:   model.ActionSubscribe,
			Email:    "jane@example.com",
			ListName: "weekly-digest",
		})

		assert.Equal(t, http.StatusMovedPermanently, outcome.StatusCode)
		assert.True(t, strings.HasPrefix(outcome.RedirectURL, testSiteURL+"/subscribe/failure?"))

		payload := decodePayload(t, outcome.RedirectURL)
		assert.Equal(t, "emailAddr=jane%40example.com&listName=weekly-digest&error=mj-0011%3A+update+refused", payload)

		notifications := notifier.Notifications()
		require.Len(t, notifications, 1)
		assert.False(t, notifications[0].Success)
		assert.Equal(t, "mj-0011: update refused", notifications[0].Error)

		messages := publisher.Messages()
		require.Len(t, messages, 1)
		event := messages[0].Message.(*model.OutcomeEvent)
		assert.False(t, event.Success)
	})
}

func TestSubscribeExistingContactNotOnList(t *testing.T) {
	crm := mock.NewMockCRM()
	crm.AddContact("jane@example.com", []int64{10}, nil) // on another list only
	workflow := newTestWorkflow(crm, mock.NewMockNotifier(), mock.NewMockMessagePublisher())

	outcome := workflow.Subscribe(context.Background(), model.SubscriptionRequest{
		Action:   model.ActionAdd,
		Email:    "jane@example.com",
		ListName: "weekly-digest",
	})

	assert.Equal(t, http.StatusOK, outcome.StatusCode)
	assert.Contains(t, crm.Calls(), "AttachToList")
	assert.NotContains(t, crm.Calls(), "CreateContact")
	assert.False(t, crm.Subscribed("jane@example.com", 20))
}

func TestSubscribeDispatchIsBestEffort(t *testing.T) {
	crm := mock.NewMockCRM()
	crm.AddContact("jane@example.com", nil, []int64{20})
	notifier := mock.NewMockNotifier()
	notifier.FailWith(errors.NewServiceUnavailable("webhook down"))
	publisher := mock.NewMockMessagePublisher()
	publisher.FailWith(errors.NewServiceUnavailable("nats down"))
	workflow := newTestWorkflow(crm, notifier, publisher)

	outcome := workflow.Subscribe(context.Background(), model.SubscriptionRequest{
		Action:   model.ActionSubscribe,
		Email:    "jane@example.com",
		ListName: "weekly-digest",
	})

	assert.Equal(t, http.StatusMovedPermanently, outcome.StatusCode)
	assert.True(t, strings.HasPrefix(outcome.RedirectURL, testSiteURL+"/subscribe?"),
		"delivery failures must not change the outcome")
}

func TestSubscribeWithoutOptionalPorts(t *testing.T) {
	crm := mock.NewMockCRM()
	crm.AddContact("jane@example.com", nil, []int64{20})
	workflow := NewSubscriptionWorkflow(
		WithCRMReader(crm),
		WithCRMWriter(crm),
		WithSiteBaseURL(testSiteURL),
	)

	outcome := workflow.Subscribe(context.Background(), model.SubscriptionRequest{
		Action:   model.ActionSubscribe,
		Email:    "jane@example.com",
		ListName: "weekly-digest",
	})

	assert.Equal(t, http.StatusMovedPermanently, outcome.StatusCode)
}
