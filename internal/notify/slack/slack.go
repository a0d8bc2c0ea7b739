// Package slack implements the notify Adapter for Slack.
package slack

import (
	"context"
	"errors"
	"fmt"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/zulandar/evodex/internal/notify"
)

const maxRetries = 3

// slackClient is the part of the Slack API the adapter calls.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Adapter posts events to one Slack channel.
type Adapter struct {
	client    slackClient
	channelID string
}

// AdapterOpts configures New. Client, when set, replaces the real API client.
type AdapterOpts struct {
	BotToken  string
	ChannelID string
	Client    slackClient
}

// New returns an Adapter posting to opts.ChannelID.
func New(opts AdapterOpts) (*Adapter, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: channel is required")
	}
	client := opts.Client
	if client == nil {
		client = slackapi.New(opts.BotToken)
	}
	return &Adapter{client: client, channelID: opts.ChannelID}, nil
}

// Name returns "slack".
func (a *Adapter) Name() string { return "slack" }

// Send posts evt as an attachment with the title as fallback text.
func (a *Adapter) Send(ctx context.Context, evt notify.Event) error {
	options := []slackapi.MsgOption{
		slackapi.MsgOptionText(evt.Title, false),
		slackapi.MsgOptionAttachments(eventToAttachment(evt)),
	}
	err := retryOnRateLimit(ctx, func() error {
		_, _, postErr := a.client.PostMessageContext(ctx, a.channelID, options...)
		return postErr
	})
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

// eventToAttachment converts an Event to a Slack Attachment.
func eventToAttachment(evt notify.Event) slackapi.Attachment {
	att := slackapi.Attachment{
		Title:    evt.Title,
		Text:     evt.Body,
		Color:    evt.Color,
		Fallback: evt.Title,
	}
	for _, f := range evt.Fields {
		att.Fields = append(att.Fields, slackapi.AttachmentField{
			Title: f.Name,
			Value: f.Value,
			Short: f.Short,
		})
	}
	return att
}

// retryOnRateLimit runs fn, waiting out Slack's rate limit up to maxRetries
// times. Any other error is returned at once.
func retryOnRateLimit(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		wait, limited := rateLimitWait(err, attempt)
		if !limited || attempt == maxRetries {
			return err
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// rateLimitWait reports whether err is a rate limit and how long to back off.
// Slack's Retry-After wins; without one the wait doubles per attempt.
func rateLimitWait(err error, attempt int) (time.Duration, bool) {
	var rle *slackapi.RateLimitedError
	if err == nil || !errors.As(err, &rle) {
		return 0, false
	}
	if rle.RetryAfter > 0 {
		return rle.RetryAfter, true
	}
	return time.Second << attempt, true
}
