// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// messageResponse is the JSON body for terminal non-redirect outcomes.
// External contract with the subscribe form.
type messageResponse struct {
	Message string `json:"message"`
}

// handleSubscribe runs the subscription workflow for GET /subscribe
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseSubscriptionRequest(r.URL.RawQuery)
	if err != nil {
		slog.WarnContext(ctx, "unable to parse subscription request",
			"error", err,
			"raw_query", r.URL.RawQuery,
		)
		s.writeMessage(ctx, w, http.StatusInternalServerError, "Unable to parse request.")
		return
	}

	outcome := s.workflow.Subscribe(ctx, req)

	if outcome.IsRedirect() {
		// The encoded payload is the entire query string; a plain
		// http.Redirect would re-escape it
		w.Header().Set("Location", outcome.RedirectURL)
		w.WriteHeader(outcome.StatusCode)
		return
	}

	s.writeMessage(ctx, w, outcome.StatusCode, outcome.Message)
}

// handleLivez reports process liveness
func (s *Server) handleLivez(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReadyz reports whether the gateway's dependencies can serve traffic
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	for _, check := range s.checks {
		if err := check.Check(ctx); err != nil {
			slog.WarnContext(ctx, "readiness check failed",
				"dependency", check.Name,
				"error", err,
			)
			s.writeMessage(ctx, w, http.StatusServiceUnavailable, check.Name+" is not ready")
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// writeMessage writes the JSON message body with the given status
func (s *Server) writeMessage(ctx context.Context, w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(messageResponse{Message: message}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response body", "error", err)
	}
}
