// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package mailjet

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/signalworks/subscription-gateway/pkg/errors"
	"github.com/signalworks/subscription-gateway/pkg/httpclient"
)

// generalError is the last-resort error detail when the response carries
// nothing usable
const generalError = "General Error"

// ErrorDetail resolves the human-readable detail of a Mailjet error response.
// Resolution order: the JSON error envelope formatted "{code}: {message}",
// then the plain response body, then "General Error". Parse failures along
// the way are expected for non-JSON bodies and never surfaced.
func ErrorDetail(body []byte) string {
	var errObj ErrorObject
	if err := json.Unmarshal(body, &errObj); err == nil {
		if errObj.ErrorCode != "" && errObj.ErrorMessage != "" {
			return errObj.ErrorCode + ": " + errObj.ErrorMessage
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}

	return generalError
}

// MapHTTPError maps httpclient errors to domain errors with proper context logging
func MapHTTPError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	if retryableErr, ok := err.(*httpclient.RetryableError); ok {
		detail := ErrorDetail([]byte(retryableErr.Message))

		slog.WarnContext(ctx, "Mailjet HTTP error occurred",
			"status_code", retryableErr.StatusCode,
			"detail", detail,
		)

		// The detail is the full normalized message; wrapping the raw
		// response would duplicate it in caller-facing output.
		switch retryableErr.StatusCode {
		case http.StatusNotFound:
			return errors.NewNotFound(detail)
		case http.StatusConflict:
			return errors.NewConflict(detail)
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.NewUnauthorized(detail)
		case http.StatusBadRequest:
			return errors.NewValidation(detail)
		case http.StatusTooManyRequests:
			return errors.NewServiceUnavailable(detail)
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return errors.NewServiceUnavailable(detail)
		default:
			slog.ErrorContext(ctx, "Unexpected Mailjet HTTP status code",
				"status_code", retryableErr.StatusCode,
				"detail", detail,
			)
			return errors.NewUnexpected(detail)
		}
	}

	// Network, timeout and other transport failures
	slog.ErrorContext(ctx, "Mailjet request failed with non-HTTP error",
		"error", err.Error(),
	)
	return errors.NewServiceUnavailable("Mailjet request failed", err)
}
