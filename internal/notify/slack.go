// Package notify delivers finished reports to Slack.
package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Notifier posts report messages to a Slack destination, either through an
// incoming webhook or as a bot user posting to a channel.
type Notifier struct {
	webhookURL string
	client     *slack.Client
	channel    string
}

// NewWebhook creates a notifier that posts through an incoming webhook.
func NewWebhook(url string) *Notifier {
	return &Notifier{webhookURL: url}
}

// NewBot creates a notifier that posts to a channel as a bot user.
func NewBot(token, channel string) *Notifier {
	return &Notifier{client: slack.New(token), channel: channel}
}

// Send posts the overview and the details as two separate messages. The
// overview always goes first; if it cannot be delivered the details are
// not attempted.
func (n *Notifier) Send(ctx context.Context, overview, details string) error {
	if err := n.post(ctx, overview); err != nil {
		return fmt.Errorf("failed to post overview: %w", err)
	}
	if err := n.post(ctx, details); err != nil {
		return fmt.Errorf("failed to post details: %w", err)
	}
	return nil
}

func (n *Notifier) post(ctx context.Context, text string) error {
	if n.webhookURL != "" {
		return slack.PostWebhookContext(ctx, n.webhookURL, &slack.WebhookMessage{Text: text})
	}
	_, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false))
	return err
}
