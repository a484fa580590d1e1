// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

// Package api exposes the subscription gateway's HTTP surface.
package api

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/signalworks/subscription-gateway/internal/domain/model"
)

// parseSubscriptionRequest decodes the subscribe query string into a request.
// The contract with the public form is lenient about encoding: values are
// percent-decoded, and a key with no value at all is read as the string
// "true". All three parameters are required; anything else is a parse
// failure and the workflow is never invoked.
func parseSubscriptionRequest(rawQuery string) (model.SubscriptionRequest, error) {
	params := make(map[string]string)

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}

		key, value, found := strings.Cut(pair, "=")
		if !found {
			value = "true"
		}

		decodedKey, err := url.QueryUnescape(key)
		if err != nil {
			return model.SubscriptionRequest{}, fmt.Errorf("undecodable query key %q: %w", key, err)
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			return model.SubscriptionRequest{}, fmt.Errorf("undecodable query value for %q: %w", decodedKey, err)
		}

		params[decodedKey] = decodedValue
	}

	req := model.SubscriptionRequest{
		Action:   model.Action(params["action"]),
		Email:    params["emailAddr"],
		ListName: params["listName"],
	}

	if req.Action == "" || req.Email == "" || req.ListName == "" {
		return model.SubscriptionRequest{}, fmt.Errorf("missing required query parameters")
	}

	return req, nil
}
