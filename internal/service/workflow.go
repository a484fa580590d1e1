// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

// Package service implements the subscription workflow use cases on top of
// the domain ports.
package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/signalworks/subscription-gateway/internal/domain/model"
	"github.com/signalworks/subscription-gateway/internal/domain/port"
	"github.com/signalworks/subscription-gateway/pkg/concurrent"
	"github.com/signalworks/subscription-gateway/pkg/constants"
	"github.com/signalworks/subscription-gateway/pkg/errors"
	"github.com/signalworks/subscription-gateway/pkg/redaction"
)

// unableToParseMessage is the response body for requests the gateway cannot
// interpret. External contract with the subscribe form.
const unableToParseMessage = "Unable to parse request."

// SubscriptionWorkflow defines the interface for the subscription use case
type SubscriptionWorkflow interface {
	// Subscribe resolves the contact's subscription state and executes the
	// branch the request's action selects. The returned outcome is always
	// terminal; remote failures are folded into it rather than returned.
	Subscribe(ctx context.Context, req model.SubscriptionRequest) model.SubscriptionOutcome
}

// subscriptionWorkflowOrchestratorOption defines a function type for setting options
type subscriptionWorkflowOrchestratorOption func(*subscriptionWorkflowOrchestrator)

// WithCRMReader sets the CRM reader
func WithCRMReader(reader port.CRMReader) subscriptionWorkflowOrchestratorOption {
	return func(w *subscriptionWorkflowOrchestrator) {
		w.crmReader = reader
	}
}

// WithCRMWriter sets the CRM writer
func WithCRMWriter(writer port.CRMWriter) subscriptionWorkflowOrchestratorOption {
	return func(w *subscriptionWorkflowOrchestrator) {
		w.crmWriter = writer
	}
}

// WithNotifier sets the webhook notifier (optional)
func WithNotifier(notifier port.Notifier) subscriptionWorkflowOrchestratorOption {
	return func(w *subscriptionWorkflowOrchestrator) {
		w.notifier = notifier
	}
}

// WithPublisher sets the outcome event publisher (optional)
func WithPublisher(publisher port.MessagePublisher) subscriptionWorkflowOrchestratorOption {
	return func(w *subscriptionWorkflowOrchestrator) {
		w.publisher = publisher
	}
}

// WithSiteBaseURL sets the public site base URL for redirect targets
func WithSiteBaseURL(baseURL string) subscriptionWorkflowOrchestratorOption {
	return func(w *subscriptionWorkflowOrchestrator) {
		w.siteBaseURL = strings.TrimRight(baseURL, "/")
	}
}

// subscriptionWorkflowOrchestrator orchestrates the subscription process
type subscriptionWorkflowOrchestrator struct {
	crmReader   port.CRMReader
	crmWriter   port.CRMWriter
	notifier    port.Notifier
	publisher   port.MessagePublisher
	siteBaseURL string
	pool        *concurrent.WorkerPool
}

// NewSubscriptionWorkflow creates a new subscription workflow orchestrator
func NewSubscriptionWorkflow(opts ...subscriptionWorkflowOrchestratorOption) SubscriptionWorkflow {
	workflow := &subscriptionWorkflowOrchestrator{
		pool: concurrent.NewWorkerPool(2),
	}
	for _, opt := range opts {
		opt(workflow)
	}
	return workflow
}

// Subscribe executes the subscription use case
func (w *subscriptionWorkflowOrchestrator) Subscribe(ctx context.Context, req model.SubscriptionRequest) model.SubscriptionOutcome {
	slog.DebugContext(ctx, "executing subscription use case",
		"action", req.Action,
		"email", redaction.RedactEmail(req.Email),
		"list_name", req.ListName,
	)

	if !req.Action.IsValid() || req.Email == "" || req.ListName == "" {
		return model.MessageOutcome(model.StateUnknown, http.StatusInternalServerError, unableToParseMessage)
	}

	outcome, errDetail, finalized := w.run(ctx, req)
	w.dispatch(ctx, req, outcome, errDetail, finalized)
	return outcome
}

// run resolves remote state and executes the branch. It returns the terminal
// outcome, the error detail carried into notifications and events, and
// whether a finalize-subscription mutation was attempted.
func (w *subscriptionWorkflowOrchestrator) run(ctx context.Context, req model.SubscriptionRequest) (model.SubscriptionOutcome, string, bool) {
	// List and template resolution are independent; run them concurrently
	// with an explicit join. The template must resolve before any mutation:
	// attaching a contact without a deliverable confirmation email would
	// strand the membership in the pending state.
	var (
		list     *model.ContactList
		template *model.EmailTemplate
	)
	err := w.pool.Run(ctx,
		func() error {
			var lookupErr error
			list, lookupErr = w.crmReader.GetContactList(ctx, req.ListName)
			return lookupErr
		},
		func() error {
			var lookupErr error
			template, lookupErr = w.crmReader.GetTemplate(ctx, model.ConfirmationTemplateName(req.ListName))
			return lookupErr
		},
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve contact list or template",
			"error", err,
			"list_name", req.ListName,
		)
		return w.failure(model.StateUnknown, err)
	}

	contact, err := w.crmReader.GetContact(ctx, req.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve contact",
			"error", err,
			"email", redaction.RedactEmail(req.Email),
		)
		return w.failure(model.StateUnknown, err)
	}

	contactExisted := contact.Exists

	var membership *model.ListMembership
	if contact.Exists {
		memberships, err := w.crmReader.ListMemberships(ctx, req.Email)
		if err != nil {
			slog.ErrorContext(ctx, "failed to resolve memberships",
				"error", err,
				"email", redaction.RedactEmail(req.Email),
			)
			return w.failure(model.StateUnknown, err)
		}
		for i := range memberships {
			if memberships[i].ListID == list.ID {
				membership = &memberships[i]
				break
			}
		}
	} else {
		created, err := w.crmWriter.CreateContact(ctx, req.Email)
		if err != nil {
			slog.ErrorContext(ctx, "failed to create contact",
				"error", err,
				"email", redaction.RedactEmail(req.Email),
			)
			return w.failure(model.StateNoContact, err)
		}
		contact = created
	}

	if membership == nil {
		attached, err := w.crmWriter.AttachToList(ctx, list.ID, req.Email)
		if err != nil {
			slog.ErrorContext(ctx, "failed to attach contact to list",
				"error", err,
				"list_id", list.ID,
				"email", redaction.RedactEmail(req.Email),
			)
			state := model.DeriveState(contactExisted, false, false)
			return w.failure(state, err)
		}
		membership = attached
		if contact.ID == 0 {
			contact.ID = attached.ContactID
		}
	}

	state := model.DeriveState(contactExisted, true, membership.Subscribed)

	switch {
	case membership.Subscribed && req.Action == model.ActionAdd:
		message := fmt.Sprintf("%s is already subscribed to contact list '%s'", req.Email, req.ListName)
		return model.MessageOutcome(state, http.StatusConflict, message), message, false

	case membership.Subscribed && req.Action == model.ActionSubscribe:
		// Already confirmed; the redirect is idempotent and mutates nothing
		return model.RedirectOutcome(state, w.successURL(req)), "", false

	case req.Action == model.ActionAdd:
		if err := w.crmWriter.SendConfirmationEmail(ctx, req.Email, template.ID, req.ListName); err != nil {
			slog.ErrorContext(ctx, "failed to send confirmation email",
				"error", err,
				"template_id", template.ID,
				"list_name", req.ListName,
			)
			return w.failure(state, err)
		}
		message := fmt.Sprintf("A confirmation email has been sent to %s for contact list '%s'", req.Email, req.ListName)
		return model.MessageOutcome(state, http.StatusOK, message), "", false

	case req.Action == model.ActionSubscribe:
		if err := w.crmWriter.FinalizeSubscription(ctx, contact.ID, list.ID); err != nil {
			slog.ErrorContext(ctx, "failed to finalize subscription",
				"error", err,
				"contact_id", contact.ID,
				"list_id", list.ID,
			)
			detail := errorDetail(err)
			return model.RedirectOutcome(state, w.failureURL(req, detail)), detail, true
		}
		return model.RedirectOutcome(model.StateContactOnListSubscribed, w.successURL(req)), "", true

	default:
		return model.MessageOutcome(state, http.StatusInternalServerError, "Unable to process subscription request."),
			"Unable to process subscription request.", false
	}
}

// dispatch delivers the notification and the outcome event. Both are
// best-effort and run concurrently; failures are logged and never change the
// outcome.
func (w *subscriptionWorkflowOrchestrator) dispatch(ctx context.Context, req model.SubscriptionRequest, outcome model.SubscriptionOutcome, errDetail string, finalized bool) {
	var fns []func() error

	// The webhook notification accompanies the finalize-subscription
	// attempt only; resolver failures, the confirmation email branch and
	// the already-subscribed idempotent redirect stay out of the channel.
	if w.notifier != nil && finalized {
		notification := model.Notification{
			Email:    req.Email,
			ListName: req.ListName,
			Success:  errDetail == "",
			Error:    errDetail,
		}
		fns = append(fns, func() error {
			if err := w.notifier.Notify(ctx, notification); err != nil {
				slog.WarnContext(ctx, "notification dispatch failed", "error", err)
			}
			return nil
		})
	}

	if w.publisher != nil {
		event := model.NewOutcomeEvent(req, outcome, errDetail)
		fns = append(fns, func() error {
			if err := w.publisher.Outcome(ctx, constants.SubscriptionOutcomeSubject, event); err != nil {
				slog.WarnContext(ctx, "outcome event publish failed", "error", err)
			}
			return nil
		})
	}

	if len(fns) == 0 {
		return
	}
	_ = w.pool.Run(ctx, fns...)
}

// failure maps a typed CRM error to a terminal outcome
func (w *subscriptionWorkflowOrchestrator) failure(state model.SubscriptionState, err error) (model.SubscriptionOutcome, string, bool) {
	detail := errorDetail(err)

	var conflict errors.Conflict
	if stderrors.As(err, &conflict) {
		return model.MessageOutcome(state, http.StatusConflict, detail), detail, false
	}

	return model.MessageOutcome(state, http.StatusInternalServerError, detail), detail, false
}

// successURL builds the post-confirmation redirect target
func (w *subscriptionWorkflowOrchestrator) successURL(req model.SubscriptionRequest) string {
	payload := model.EncodeRedirectPayload(req.Email, req.ListName, "")
	return w.siteBaseURL + "/subscribe?" + payload
}

// failureURL builds the failed-confirmation redirect target
func (w *subscriptionWorkflowOrchestrator) failureURL(req model.SubscriptionRequest, errDetail string) string {
	payload := model.EncodeRedirectPayload(req.Email, req.ListName, errDetail)
	return w.siteBaseURL + "/subscribe/failure?" + payload
}

// errorDetail extracts the message carried by the typed error set
func errorDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
