// Package notify delivers birthday messages to the team Slack channel via an
// incoming webhook. Delivery is fire-and-forget: no retries beyond what the
// HTTP transport does, and a disabled notifier logs the would-be message and
// reports success so dry runs behave like real runs everywhere else.
package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"

	"github.com/tbourn/go-birthday-bot/internal/observability"
)

// ErrNoWebhook is returned when Send is called without a configured webhook.
var ErrNoWebhook = errors.New("no webhook URL configured")

// SlackNotifier posts messages to a Slack incoming webhook.
type SlackNotifier struct {
	// WebhookURL is the Slack incoming-webhook endpoint.
	WebhookURL string
	// Enabled gates actual delivery; when false, messages are logged only.
	Enabled bool
}

// NewSlackNotifier constructs a notifier.
func NewSlackNotifier(webhookURL string, enabled bool) *SlackNotifier {
	return &SlackNotifier{WebhookURL: webhookURL, Enabled: enabled}
}

// Send posts text to the webhook. With delivery disabled it logs the message
// and returns nil so the send pipeline still marks the message as handled in
// dry-run setups.
func (n *SlackNotifier) Send(ctx context.Context, text string) error {
	if n.WebhookURL == "" {
		log.Warn().Msg("no webhook URL configured, skipping slack message")
		return ErrNoWebhook
	}
	if !n.Enabled {
		log.Info().Str("message", text).Msg("slack notifications disabled, would have sent")
		observability.SlackDeliveries.WithLabelValues("dry_run").Inc()
		return nil
	}

	if err := slack.PostWebhookContext(ctx, n.WebhookURL, &slack.WebhookMessage{Text: text}); err != nil {
		observability.SlackDeliveries.WithLabelValues("failed").Inc()
		return err
	}
	observability.SlackDeliveries.WithLabelValues("sent").Inc()
	log.Info().Str("message", text).Msg("slack message sent")
	return nil
}
