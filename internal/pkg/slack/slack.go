package slack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
)

// Notifier posts operational notices to the team's channels.
type Notifier interface {
	Info(ctx context.Context, message string) error
	Error(ctx context.Context, message string) error
}

type Options struct {
	InfoChannelID  string
	ErrorChannelID string
}

type poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

type Client struct {
	client  poster
	options Options
}

// New returns a Slack-backed notifier, or a log-only one when no token is configured.
func New(token string, options Options) Notifier {
	if token == "" {
		return LogNotifier{}
	}
	return &Client{client: slack.New(token), options: options}
}

func (c *Client) postMessage(ctx context.Context, channelID, message string) error {
	if channelID == "" {
		return nil
	}
	_, _, err := c.client.PostMessageContext(ctx,
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (c *Client) Info(ctx context.Context, message string) error {
	return c.postMessage(ctx, c.options.InfoChannelID, message)
}

func (c *Client) Error(ctx context.Context, message string) error {
	return c.postMessage(ctx, c.options.ErrorChannelID, message)
}

// LogNotifier writes notices to the application log.
type LogNotifier struct{}

func (LogNotifier) Info(ctx context.Context, message string) error {
	slog.InfoContext(ctx, "ops notice", "message", message)
	return nil
}

func (LogNotifier) Error(ctx context.Context, message string) error {
	slog.ErrorContext(ctx, "ops notice", "message", message)
	return nil
}
