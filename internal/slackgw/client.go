// Package slackgw wraps the Slack Web API calls the bot needs: rewriting the
// daily channel message, opening modals, and posting threaded replies.
package slackgw

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

type Client struct {
	api *slack.Client
}

func New(botToken string) *Client {
	return &Client{api: slack.New(botToken)}
}

// PostMessage posts a new channel message and returns its timestamp.
func (c *Client) PostMessage(ctx context.Context, channelID, text string, blocks []slack.Block) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return "", fmt.Errorf("post message: %w", err)
	}
	return ts, nil
}

// UpdateMessage rewrites an existing message in place. Passing no blocks
// clears any interactive elements the message had.
func (c *Client) UpdateMessage(ctx context.Context, channelID, ts, text string, blocks []slack.Block) error {
	_, _, _, err := c.api.UpdateMessageContext(ctx, channelID, ts,
		slack.MsgOptionText(text, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	return nil
}

// OpenModal displays a modal view for the interaction's trigger ID.
func (c *Client) OpenModal(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	if _, err := c.api.OpenViewContext(ctx, triggerID, view); err != nil {
		return fmt.Errorf("open view: %w", err)
	}
	return nil
}

// PostThreadReply posts a reply under parentTS and returns the reply's timestamp.
func (c *Client) PostThreadReply(ctx context.Context, channelID, parentTS, text string, blocks ...slack.Block) (string, error) {
	opts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(parentTS),
	}
	if len(blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}
	_, ts, err := c.api.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", fmt.Errorf("post thread reply: %w", err)
	}
	return ts, nil
}
