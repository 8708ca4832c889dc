package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

const (
	// userTokenPrefix identifies Slack user tokens; history of private
	// channels is only reachable with a user token
	userTokenPrefix = "xoxp-"
	// channelPageLimit is the maximum page size supported by conversations.list
	channelPageLimit = 1000
)

// Channel is a chat channel visible to the token
type Channel struct {
	ID   string
	Name string
}

// HistoryBound restricts a history request. Latest returns messages before
// the timestamp, Oldest returns messages after it.
type HistoryBound struct {
	Latest string
	Oldest string
}

// HistoryClient is the chat platform surface used by curation
type HistoryClient interface {
	ListChannels(ctx context.Context, cursor string, limit int) ([]Channel, string, error)
	History(ctx context.Context, channelID string, limit int, bound HistoryBound) ([]Message, error)
}

// ValidateToken rejects missing and non-user tokens
func ValidateToken(token string) error {
	if token == "" {
		return &ConfigError{Field: "slack.token", Err: errors.New("no token was provided")}
	}
	if !strings.HasPrefix(token, userTokenPrefix) {
		return &ConfigError{
			Field: "slack.token",
			Err:   errors.New("the provided token is not a user token, please use a user token instead"),
		}
	}
	return nil
}

// SlackClient implements HistoryClient using the Slack Web API
type SlackClient struct {
	api *slack.Client
}

// NewSlackClient validates the token and creates a client
func NewSlackClient(token string, options ...slack.Option) (*SlackClient, error) {
	if err := ValidateToken(token); err != nil {
		return nil, err
	}
	return &SlackClient{api: slack.New(token, options...)}, nil
}

// ListChannels returns one page of public and private channels
func (c *SlackClient) ListChannels(ctx context.Context, cursor string, limit int) ([]Channel, string, error) {
	channels, next, err := c.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
		Cursor: cursor,
		Limit:  limit,
		Types:  []string{"public_channel", "private_channel"},
	})
	if err != nil {
		return nil, "", &TransportError{Op: "conversations.list", Err: err}
	}

	result := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		result = append(result, Channel{ID: ch.ID, Name: ch.Name})
	}
	return result, next, nil
}

// History returns one page of channel history, newest first as delivered by Slack
func (c *SlackClient) History(ctx context.Context, channelID string, limit int, bound HistoryBound) ([]Message, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Limit:     limit,
		Latest:    bound.Latest,
		Oldest:    bound.Oldest,
	})
	if err != nil {
		return nil, &TransportError{Op: "conversations.history", Err: err}
	}

	messages := make([]Message, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		// Blocks are not checked, newer clients attach them to every message
		messages = append(messages, Message{
			Timestamp:   msg.Timestamp,
			User:        msg.User,
			Text:        msg.Text,
			Attachments: len(msg.Attachments),
		})
	}
	return messages, nil
}

// ResolveChannelID pages through the visible channels looking for name.
// Lookup failures are offered for retry up to maxAttempts times; a declined
// retry is fatal.
func ResolveChannelID(ctx context.Context, client HistoryClient, prompter Prompter, name string, maxAttempts int) (string, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "#")
	if name == "" {
		return "", &ConfigError{Field: "slack.channel", Err: errors.New("no channel was provided")}
	}

	cursor := ""
	for {
		channels, next, err := listChannelsWithRetry(ctx, client, prompter, name, cursor, maxAttempts)
		if err != nil {
			return "", err
		}
		for _, ch := range channels {
			if ch.Name == name {
				LogDebug("Resolved channel %s to %s", name, ch.ID)
				return ch.ID, nil
			}
		}
		if next == "" {
			break
		}
		cursor = next
	}

	return "", &ConfigError{
		Field: "slack.channel",
		Err:   fmt.Errorf("could not find channel %s in list of channels for this user", name),
	}
}

func listChannelsWithRetry(ctx context.Context, client HistoryClient, prompter Prompter, name, cursor string, maxAttempts int) ([]Channel, string, error) {
	for attempt := 1; ; attempt++ {
		channels, next, err := client.ListChannels(ctx, cursor, channelPageLimit)
		if err == nil {
			return channels, next, nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		LogWarn("Channel lookup failed (attempt %d/%d): %v", attempt, maxAttempts, err)
		if attempt >= maxAttempts {
			return nil, "", fmt.Errorf("giving up on channel lookup after %d attempts: %w", attempt, err)
		}

		retry, promptErr := prompter.Confirm(ctx,
			fmt.Sprintf("Encountered error while retrieving channel ID for %s (%v), retry? (attempt %d/%d)", name, err, attempt, maxAttempts),
			true)
		if promptErr != nil {
			return nil, "", promptErr
		}
		if !retry {
			return nil, "", err
		}
	}
}
