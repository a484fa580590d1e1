// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

// Package constants defines global constants used throughout the subscription gateway.
package constants

// Service constants
const (
	// ServiceName is the name of this service
	ServiceName = "subscription-gateway"
)

// HTTP header constants
const (
	// RequestIDHeader is the HTTP header name for request ID
	RequestIDHeader = "X-Request-Id"
)

// Environment variables
const (
	// EnvNATSURL is the environment variable for NATS server URL
	EnvNATSURL = "NATS_URL"
	// EnvSlackWebhookURL is the environment variable for the messaging webhook URL
	EnvSlackWebhookURL = "SLACK_WEBHOOK_URL"
	// EnvGatewayListenAddr is the environment variable for the HTTP listen address
	EnvGatewayListenAddr = "GATEWAY_LISTEN_ADDR"
	// EnvGatewaySiteBaseURL is the environment variable for the public site base URL
	// used to build subscribe success/failure redirects
	EnvGatewaySiteBaseURL = "GATEWAY_SITE_BASE_URL"
)
