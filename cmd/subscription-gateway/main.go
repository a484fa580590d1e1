// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

// The subscription-gateway binary serves the public subscribe endpoint and
// bridges it to the CRM API, the messaging webhook and the NATS outcome
// stream.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/signalworks/subscription-gateway/internal/api"
	"github.com/signalworks/subscription-gateway/internal/domain/port"
	"github.com/signalworks/subscription-gateway/internal/infrastructure/mailjet"
	"github.com/signalworks/subscription-gateway/internal/infrastructure/mock"
	natsinfra "github.com/signalworks/subscription-gateway/internal/infrastructure/nats"
	"github.com/signalworks/subscription-gateway/internal/infrastructure/slack"
	"github.com/signalworks/subscription-gateway/internal/service"
	"github.com/signalworks/subscription-gateway/pkg/constants"
	"github.com/signalworks/subscription-gateway/pkg/log"
	"github.com/signalworks/subscription-gateway/pkg/utils"
)

func main() {
	log.InitStructureLogConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.ErrorContext(ctx, "subscription gateway exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	otelShutdown, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.Error("failed to shut down OpenTelemetry SDK", "error", err)
		}
	}()

	// CRM adapter
	crmConfig := mailjet.NewConfigFromEnv()
	var crm port.CRMReaderWriter
	mailjetClient, err := mailjet.NewClient(crmConfig)
	if err != nil {
		return err
	}
	if mailjetClient == nil {
		slog.WarnContext(ctx, "Mailjet client in mock mode, using in-memory CRM")
		crm = mock.NewMockCRM()
	} else {
		crm = mailjetClient
	}

	checks := []api.ReadinessCheck{
		{Name: "crm", Check: crm.IsReady},
	}

	// Webhook notifier (optional)
	var notifier port.Notifier
	slackConfig := slack.NewConfigFromEnv()
	if slackConfig.WebhookURL == "" {
		slog.WarnContext(ctx, "webhook URL not configured, notifications disabled",
			"env", constants.EnvSlackWebhookURL)
	} else {
		slackNotifier, err := slack.NewNotifier(slackConfig)
		if err != nil {
			return err
		}
		notifier = slackNotifier
	}

	// NATS outcome publisher (optional). Startup tolerates a briefly
	// unavailable broker; request-path CRM calls stay retry-free.
	var publisher port.MessagePublisher
	if os.Getenv(constants.EnvNATSURL) == "" {
		slog.WarnContext(ctx, "NATS URL not configured, outcome events disabled",
			"env", constants.EnvNATSURL)
	} else {
		natsConfig := natsinfra.NewConfigFromEnv()
		var natsClient *natsinfra.NATSClient
		retryConfig := utils.NewRetryConfig(5, time.Second, 30*time.Second)
		err := utils.RetryWithExponentialBackoff(ctx, retryConfig, func() error {
			var connectErr error
			natsClient, connectErr = natsinfra.NewClient(ctx, natsConfig)
			return connectErr
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				slog.Error("failed to close NATS connection", "error", err)
			}
		}()

		publisher = natsinfra.NewMessagePublisher(natsClient)
		checks = append(checks, api.ReadinessCheck{Name: "nats", Check: natsClient.IsReady})
	}

	siteBaseURL := os.Getenv(constants.EnvGatewaySiteBaseURL)
	if siteBaseURL == "" {
		slog.WarnContext(ctx, "site base URL not configured, redirects will be relative",
			"env", constants.EnvGatewaySiteBaseURL)
	}

	workflow := service.NewSubscriptionWorkflow(
		service.WithCRMReader(crm),
		service.WithCRMWriter(crm),
		service.WithNotifier(notifier),
		service.WithPublisher(publisher),
		service.WithSiteBaseURL(siteBaseURL),
	)

	server := api.NewServer(workflow, api.NewConfigFromEnv(), checks...)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
